package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/fileservice"
	"github.com/starford/raido/internal/journal"
)

// maxBodyBytes caps raw write and append bodies at 50 MB.
const maxBodyBytes = 50 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *fileservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *fileservice.Service) *Handler {
	return &Handler{svc: svc}
}

// filePath extracts the target path from the URL (everything after the
// route prefix). Supports encoded slashes from OpenAPI clients
// (e.g. logs%2Fapp.txt).
func filePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// pathOK rejects request paths that can never be valid write targets.
func pathOK(p string) bool {
	return p != "" && !strings.Contains(p, "..")
}

// ReadFile handles GET /api/files/*.
//
//	@Summary		Read a file resolved through the search path
//	@Tags			files
//	@Produce		octet-stream
//	@Param			path	path		string	true	"File name or relative path"
//	@Success		200		{string}	binary
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [get]
func (h *Handler) ReadFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	data, err := h.svc.Read(r.Context(), path)
	if err != nil {
		respondErr(w, "read file", path, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		slog.Error("write response failed", slog.String("path", path), slog.String("error", err.Error()))
	}
}

// FileExists handles HEAD /api/files/*.
//
//	@Summary		Check whether a name resolves through the search path
//	@Tags			files
//	@Param			path	path	string	true	"File name or relative path"
//	@Success		200		"Found"
//	@Failure		404		"Not found"
//	@Security		BearerAuth
//	@Router			/files/{path} [head]
func (h *Handler) FileExists(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	ok, err := h.svc.Exists(r.Context(), path)
	if err != nil {
		w.WriteHeader(statusFor(err))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// WriteFile handles PUT /api/files/*.
//
//	@Summary		Create or replace a file under the write directory
//	@Tags			files
//	@Accept			octet-stream
//	@Produce		json
//	@Param			path	path		string	true	"Target path"
//	@Param			body	body		string	true	"Raw file content"
//	@Success		201		{object}	WriteReceipt
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [put]
func (h *Handler) WriteFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if !pathOK(path) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	receipt, err := h.svc.Write(r.Context(), path, data)
	if err != nil {
		respondErr(w, "write file", path, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// AppendFile handles PATCH /api/files/*.
//
//	@Summary		Append bytes to a file under the write directory
//	@Tags			files
//	@Accept			octet-stream
//	@Produce		json
//	@Param			path	path		string	true	"Target path"
//	@Param			body	body		string	true	"Raw bytes to append"
//	@Success		200		{object}	WriteReceipt
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [patch]
func (h *Handler) AppendFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if !pathOK(path) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	receipt, err := h.svc.Append(r.Context(), path, data)
	if err != nil {
		respondErr(w, "append file", path, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// DeleteFile handles DELETE /api/files/*.
//
//	@Summary		Delete a file or empty directory under the write directory
//	@Tags			files
//	@Param			path	path	string	true	"Target path"
//	@Success		204		"Deleted"
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/files/{path} [delete]
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if !pathOK(path) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		return
	}
	if err := h.svc.Delete(r.Context(), path); err != nil {
		respondErr(w, "delete", path, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatFile handles GET /api/info/*.
//
//	@Summary		Stat a file resolved through the search path
//	@Tags			files
//	@Produce		json
//	@Param			path	path		string	true	"File name or relative path"
//	@Success		200		{object}	FileStat
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/info/{path} [get]
func (h *Handler) StatFile(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	stat, err := h.svc.Stat(r.Context(), path)
	if err != nil {
		respondErr(w, "stat", path, err)
		return
	}
	writeJSON(w, http.StatusOK, stat)
}

// MakeDir handles POST /api/dirs/*.
//
//	@Summary		Create a directory under the write directory
//	@Tags			dirs
//	@Param			path	path	string	true	"Directory path"
//	@Success		201		"Created"
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/dirs/{path} [post]
func (h *Handler) MakeDir(w http.ResponseWriter, r *http.Request) {
	path := filePath(r)
	if !pathOK(path) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		return
	}
	if err := h.svc.Mkdir(r.Context(), path); err != nil {
		respondErr(w, "mkdir", path, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// Getwd handles GET /api/cwd.
//
//	@Summary		Get the process working directory
//	@Tags			paths
//	@Produce		json
//	@Success		200	{object}	CwdResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cwd [get]
func (h *Handler) Getwd(w http.ResponseWriter, r *http.Request) {
	cwd, err := h.svc.Getwd(r.Context())
	if err != nil {
		respondErr(w, "getwd", "", err)
		return
	}
	writeJSON(w, http.StatusOK, CwdResponse{Cwd: cwd})
}

// GetPaths handles GET /api/paths.
//
//	@Summary		Get the resolver configuration
//	@Tags			paths
//	@Produce		json
//	@Success		200	{object}	PathsResponse
//	@Security		BearerAuth
//	@Router			/paths [get]
func (h *Handler) GetPaths(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Paths(r.Context()))
}

// SetPaths handles PUT /api/paths.
//
//	@Summary		Update the resolver configuration
//	@Tags			paths
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SetPathsRequest	true	"Fields to change; omitted fields keep their value"
//	@Success		200		{object}	PathsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/paths [put]
func (h *Handler) SetPaths(w http.ResponseWriter, r *http.Request) {
	var req SetPathsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.SearchPath == nil && req.WriteDir == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("search_path or write_dir is required"))
		return
	}
	cfg, err := h.svc.SetPaths(r.Context(), req.SearchPath, req.WriteDir)
	if err != nil {
		respondErr(w, "set paths", "", err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// ListOps handles GET /api/ops.
//
//	@Summary		List journaled mutations, newest first
//	@Tags			ops
//	@Produce		json
//	@Param			limit	query		int		false	"Max entries"
//	@Param			path	query		string	false	"Only entries touching this path"
//	@Success		200		{object}	OpsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/ops [get]
func (h *Handler) ListOps(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	var (
		ops []journal.Entry
		err error
	)
	if path := r.URL.Query().Get("path"); path != "" {
		ops, err = h.svc.History(r.Context(), path, limit)
	} else {
		ops, err = h.svc.Recent(r.Context(), limit)
	}
	if err != nil {
		slog.Error("list ops failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, OpsResponse{Ops: ops})
}
