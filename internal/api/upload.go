package api

import (
	"io"
	"net/http"

	"github.com/starford/raido/internal/fileservice"
	"github.com/starford/raido/internal/journal"
)

// maxUploadBytes caps multipart uploads at 50 MB.
const maxUploadBytes = 50 << 20

// UploadHandler accepts multipart file uploads into the write directory.
type UploadHandler struct {
	svc *fileservice.Service
}

// NewUploadHandler creates a handler writing through the file service.
func NewUploadHandler(svc *fileservice.Service) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Upload handles POST /api/upload (multipart/form-data, field "file").
// An optional "path" form field overrides the target name; otherwise the
// client-supplied filename is used.
//
//	@Summary		Upload a file into the write directory
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Param			path	formData	string	false	"Target path overriding the filename"
//	@Success		201		{object}	WriteReceipt
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/upload [post]
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	target := r.FormValue("path")
	if target == "" {
		target = header.Filename
	}
	if !pathOK(target) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read upload"))
		return
	}

	receipt, err := h.svc.WriteAs(r.Context(), journal.OpUpload, target, data)
	if err != nil {
		respondErr(w, "upload", target, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}
