// Package vfs implements a sandboxed virtual file system. Reads resolve a
// bare name through a search path of directory templates; writes are
// confined to a single write-directory template.
package vfs

// Provider is the interface for template-resolved file operations.
type Provider interface {
	// SetSearchPath replaces the separator-joined list of directory
	// templates consulted by Exists, Read, and Stat.
	SetSearchPath(path string) error
	// SearchPath returns the current search path.
	SearchPath() string
	// SetWriteDir replaces the write-directory template. The value is a
	// single template and is never split on the separator.
	SetWriteDir(dir string) error
	// WriteDir returns the current write-directory template.
	WriteDir() string
	// Exists reports whether name resolves to any entry on the search path.
	Exists(name string) (bool, error)
	// Read resolves name on the search path and returns the file content.
	Read(name string) ([]byte, error)
	// Write replaces the content of name under the write directory.
	Write(name string, data []byte) error
	// Append appends data to name under the write directory.
	Append(name string, data []byte) error
	// Stat resolves name on the search path and returns a metadata snapshot.
	Stat(name string) (Info, error)
	// Getwd returns the working directory of the process.
	Getwd() (string, error)
	// Mkdir creates the directory name under the write directory.
	Mkdir(name string) error
	// Delete removes the file or empty directory name under the write directory.
	Delete(name string) error
	// WriteRoot returns the write-directory template expanded with an
	// empty name: the directory every write lands under.
	WriteRoot() (string, error)
}

var _ Provider = (*FS)(nil)
