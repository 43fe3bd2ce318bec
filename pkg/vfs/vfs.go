package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Defaults for a handle constructed without options.
const (
	DefaultMaxPathLen  = 256
	DefaultPlaceholder = "?"
	DefaultSeparator   = ";"
)

// FS implements Provider backed by the local file system. Reads resolve a
// name through the search path, first match wins; writes expand the single
// write-directory template. Both configuration strings may be replaced at
// any time and take effect for subsequent operations only.
type FS struct {
	mu         sync.RWMutex
	searchPath string
	writeDir   string

	// Fixed at construction.
	maxPathLen int
	mark       string
	sep        string
}

// Option configures an FS handle.
type Option func(*FS)

// WithMaxPathLen sets the maximum accepted length for configuration
// strings and resolved paths. Values below 1 keep the default.
func WithMaxPathLen(n int) Option {
	return func(f *FS) {
		if n > 0 {
			f.maxPathLen = n
		}
	}
}

// WithPlaceholder overrides the placeholder token substituted in templates.
func WithPlaceholder(mark string) Option {
	return func(f *FS) {
		if mark != "" {
			f.mark = mark
		}
	}
}

// WithSeparator overrides the token separating search-path templates.
func WithSeparator(sep string) Option {
	return func(f *FS) {
		if sep != "" {
			f.sep = sep
		}
	}
}

// New returns an FS with no search path and no write directory configured.
// Instances are independent; there is no process-global state.
func New(opts ...Option) *FS {
	f := &FS{
		maxPathLen: DefaultMaxPathLen,
		mark:       DefaultPlaceholder,
		sep:        DefaultSeparator,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// MaxPathLen returns the length limit the handle enforces.
func (f *FS) MaxPathLen() int {
	return f.maxPathLen
}

// SetSearchPath replaces the search path: directory templates joined by the
// separator token, consulted in order by Exists, Read, and Stat.
func (f *FS) SetSearchPath(path string) error {
	if len(path) > f.maxPathLen {
		return fmt.Errorf("vfs: set search path: %w", ErrTooLong)
	}
	f.mu.Lock()
	f.searchPath = path
	f.mu.Unlock()
	return nil
}

// SearchPath returns the current search path.
func (f *FS) SearchPath() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.searchPath
}

// SetWriteDir replaces the write directory. The value is one template; it
// is never split on the separator token.
func (f *FS) SetWriteDir(dir string) error {
	if len(dir) > f.maxPathLen {
		return fmt.Errorf("vfs: set write dir: %w", ErrTooLong)
	}
	f.mu.Lock()
	f.writeDir = dir
	f.mu.Unlock()
	return nil
}

// WriteDir returns the current write-directory template.
func (f *FS) WriteDir() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.writeDir
}

// lookup resolves name through the search path. Templates are tried in
// configured order and the first candidate that exists wins. A candidate
// over the length limit aborts the search instead of being skipped.
func (f *FS) lookup(name string) (string, fs.FileInfo, error) {
	f.mu.RLock()
	searchPath := f.searchPath
	f.mu.RUnlock()

	if searchPath == "" {
		return "", nil, fmt.Errorf("vfs: lookup %s: %w", name, ErrNoSearchPath)
	}
	for _, tmpl := range templates(searchPath, f.sep) {
		p, err := expand(tmpl, name, f.mark, f.maxPathLen)
		if err != nil {
			return "", nil, err
		}
		fi, err := os.Lstat(p)
		if err == nil {
			return p, fi, nil
		}
	}
	return "", nil, fmt.Errorf("vfs: lookup %s: %w", name, ErrNotFound)
}

// Exists reports whether name resolves to any entry on the search path.
func (f *FS) Exists(name string) (bool, error) {
	_, _, err := f.lookup(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Read resolves name on the search path and returns the full content. The
// returned slice is owned by the caller.
func (f *FS) Read(name string) ([]byte, error) {
	p, _, err := f.lookup(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("vfs: read %s: %w", p, err)
	}
	return data, nil
}

// Stat resolves name on the search path and returns a metadata snapshot.
// Symlinks are classified, not followed.
func (f *FS) Stat(name string) (Info, error) {
	_, fi, err := f.lookup(name)
	if err != nil {
		return Info{}, err
	}
	return Info{Type: classify(fi), Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// Getwd returns the working directory of the process.
func (f *FS) Getwd() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("vfs: getwd: %w", err)
	}
	if len(wd) > f.maxPathLen {
		return "", fmt.Errorf("vfs: getwd: %w", ErrTooLong)
	}
	return wd, nil
}

// writePath expands name against the write directory and applies the
// sandbox guard: a ".." token anywhere in the resolved path rejects the
// operation with opErr before any OS call. The guard is a substring match,
// so names like "a..b" are rejected as well.
func (f *FS) writePath(name string, opErr error) (string, error) {
	f.mu.RLock()
	writeDir := f.writeDir
	f.mu.RUnlock()

	if writeDir == "" {
		return "", fmt.Errorf("vfs: resolve write path: %w", ErrNoWriteDir)
	}
	p, err := expand(writeDir, name, f.mark, f.maxPathLen)
	if err != nil {
		return "", err
	}
	if strings.Contains(p, "..") {
		return "", fmt.Errorf("vfs: resolve %s: traversal rejected: %w", name, opErr)
	}
	return p, nil
}

// makePath creates every missing directory along p, walking the segments
// left to right. Existing directories are tolerated; any other failure
// stops the walk.
func makePath(p string) error {
	if p == "" || p == "." {
		return nil
	}
	var prefix string
	if strings.HasPrefix(p, string(os.PathSeparator)) {
		prefix = string(os.PathSeparator)
	}
	for _, seg := range strings.Split(p, string(os.PathSeparator)) {
		if seg == "" || seg == "." {
			continue
		}
		prefix = filepath.Join(prefix, seg)
		if err := os.Mkdir(prefix, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("vfs: mkdir %s: %w: %v", prefix, ErrMkdirFailed, err)
		}
	}
	return nil
}

// Write replaces the content of name under the write directory, creating
// missing parent directories first. The write is not atomic: a failure
// after partial progress leaves created directories in place.
func (f *FS) Write(name string, data []byte) error {
	p, err := f.writePath(name, ErrWriteFailed)
	if err != nil {
		return err
	}
	if err := makePath(filepath.Dir(p)); err != nil {
		return err
	}
	if err := writeFile(p, data, os.O_WRONLY|os.O_CREATE|os.O_TRUNC); err != nil {
		return fmt.Errorf("vfs: write %s: %w: %v", p, ErrWriteFailed, err)
	}
	return nil
}

// Append appends data to name under the write directory, creating the file
// and any missing parents when absent.
func (f *FS) Append(name string, data []byte) error {
	p, err := f.writePath(name, ErrWriteFailed)
	if err != nil {
		return err
	}
	if err := makePath(filepath.Dir(p)); err != nil {
		return err
	}
	if err := writeFile(p, data, os.O_WRONLY|os.O_CREATE|os.O_APPEND); err != nil {
		return fmt.Errorf("vfs: append %s: %w: %v", p, ErrWriteFailed, err)
	}
	return nil
}

func writeFile(p string, data []byte, flag int) error {
	fh, err := os.OpenFile(p, flag, 0o644)
	if err != nil {
		return err
	}
	_, werr := fh.Write(data)
	cerr := fh.Close()
	if werr != nil {
		return werr
	}
	return cerr
}

// Mkdir creates name (and any missing parents) under the write directory.
// Unlike the implicit creation done by Write, an existing target fails.
func (f *FS) Mkdir(name string) error {
	p, err := f.writePath(name, ErrMkdirFailed)
	if err != nil {
		return err
	}
	if err := makePath(filepath.Dir(p)); err != nil {
		return err
	}
	if err := os.Mkdir(p, 0o755); err != nil {
		return fmt.Errorf("vfs: mkdir %s: %w: %v", p, ErrMkdirFailed, err)
	}
	return nil
}

// Delete removes name under the write directory. Only files and empty
// directories can be removed; anything else fails.
func (f *FS) Delete(name string) error {
	p, err := f.writePath(name, ErrRemoveFailed)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("vfs: delete %s: %w: %v", p, ErrRemoveFailed, err)
	}
	return nil
}

// WriteRoot returns the write-directory template expanded with an empty
// name, cleaned: the directory every write lands under.
func (f *FS) WriteRoot() (string, error) {
	p, err := f.writePath("", ErrWriteFailed)
	if err != nil {
		return "", err
	}
	return filepath.Clean(p), nil
}
