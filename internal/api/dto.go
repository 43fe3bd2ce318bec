package api

import (
	"github.com/starford/raido/internal/journal"
	"github.com/starford/raido/internal/models"
)

// SetPathsRequest is the request body for updating the resolver
// configuration. Omitted fields keep their current value.
type SetPathsRequest struct {
	SearchPath *string `json:"search_path,omitempty" example:"./data/?;./base/?"`
	WriteDir   *string `json:"write_dir,omitempty" example:"./data/?"`
}

// PathsResponse is the runtime resolver configuration (aliased from the domain layer).
type PathsResponse = models.PathsConfig

// FileStat describes a resolved file (aliased from the domain layer).
type FileStat = models.FileStat

// WriteReceipt is returned after a successful mutation (aliased from the domain layer).
type WriteReceipt = models.WriteReceipt

// CwdResponse wraps the process working directory.
type CwdResponse struct {
	Cwd string `json:"cwd" example:"/srv/raido" validate:"required"`
}

// OpsResponse wraps journal listings.
type OpsResponse struct {
	Ops []journal.Entry `json:"ops" validate:"required"`
}
