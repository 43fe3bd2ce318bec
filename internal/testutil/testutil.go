// Package testutil provides shared test helpers for setting up sandboxes and journals.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/raido/internal/journal"
	"github.com/starford/raido/pkg/vfs"
)

// TestJournal creates a temporary SQLite journal that is automatically cleaned up.
func TestJournal(t *testing.T) *journal.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := journal.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSandbox creates a temporary directory with a resolver whose search
// path and write directory both point into it.
func TestSandbox(t *testing.T) (string, *vfs.FS) {
	t.Helper()
	root := t.TempDir()
	fs := vfs.New()
	tmpl := filepath.Join(root, "?")
	if err := fs.SetSearchPath(tmpl); err != nil {
		t.Fatal(err)
	}
	if err := fs.SetWriteDir(tmpl); err != nil {
		t.Fatal(err)
	}
	return root, fs
}
