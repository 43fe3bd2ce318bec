package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/raido/internal/fileservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *fileservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)
	uh := NewUploadHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// File operations.
	r.Get("/files/*", h.ReadFile)
	r.Head("/files/*", h.FileExists)
	r.Put("/files/*", h.WriteFile)
	r.Patch("/files/*", h.AppendFile)
	r.Delete("/files/*", h.DeleteFile)

	// Metadata.
	r.Get("/info/*", h.StatFile)
	r.Get("/cwd", h.Getwd)

	// Resolver configuration.
	r.Get("/paths", h.GetPaths)
	r.Put("/paths", h.SetPaths)

	// Directories.
	r.Post("/dirs/*", h.MakeDir)

	// Operation journal.
	r.Get("/ops", h.ListOps)

	// Uploads (auth-protected).
	r.Post("/upload", uh.Upload)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
