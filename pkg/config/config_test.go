package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testCfg struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

type checkedCfg struct {
	N int `yaml:"n"`
}

func (c *checkedCfg) Validate() error {
	if c.N < 0 {
		return errors.New("n must be >= 0")
	}
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad(t *testing.T) {
	p := writeConfig(t, "name: raido\nport: 8080\n")
	var cfg testCfg
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "raido" || cfg.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("CFG_TEST_NAME", "from-env")
	p := writeConfig(t, "name: ${CFG_TEST_NAME}\n")
	var cfg testCfg
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("name = %q, want from-env", cfg.Name)
	}
}

func TestLoadUnknownKeyRejected(t *testing.T) {
	p := writeConfig(t, "name: x\nbogus: 1\n")
	var cfg testCfg
	err := Load(p, &cfg)
	if err == nil {
		t.Fatal("unknown key should fail")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error does not name the key: %v", err)
	}
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	p := writeConfig(t, "")
	cfg := testCfg{Name: "default", Port: 1234}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "default" || cfg.Port != 1234 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var cfg testCfg
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &cfg); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestLoadRunsValidator(t *testing.T) {
	p := writeConfig(t, "n: -1\n")
	var cfg checkedCfg
	err := Load(p, &cfg)
	if err == nil {
		t.Fatal("validator error should surface")
	}
	if !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadWithDefaultsFallback(t *testing.T) {
	def := writeConfig(t, "name: fallback\n")
	var cfg testCfg
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "absent.yaml"), def, &cfg); err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.Name != "fallback" {
		t.Errorf("name = %q, want fallback", cfg.Name)
	}
}
