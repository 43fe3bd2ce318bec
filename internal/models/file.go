// Package models defines the wire types for Raido.
package models

import "time"

// FileStat describes an entry resolved on the search path.
type FileStat struct {
	Path    string    `json:"path"`
	Type    string    `json:"type"` // none, regular, directory, symlink
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// WriteReceipt reports the outcome of a write-side mutation.
type WriteReceipt struct {
	Path     string `json:"path"`
	Written  int64  `json:"written"`  // bytes in this payload
	Size     int64  `json:"size"`     // file size after the operation
	Checksum string `json:"checksum"` // SHA-256 of this payload
}

// PathsConfig is the runtime view of the resolver configuration.
type PathsConfig struct {
	SearchPath string `json:"search_path"`
	WriteDir   string `json:"write_dir"`
}
