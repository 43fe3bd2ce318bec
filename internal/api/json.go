package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/raido/pkg/vfs"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
	Code  string `json:"code,omitempty" example:"write-failed"`
}

// errorBody builds an error body without a machine code. Used for
// request-level problems that never reach the resolver.
func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// errorFor builds the error body for a resolver or service error: the
// fixed message for the error's code plus the machine tag.
func errorFor(err error) errResponse {
	if errors.Is(err, vfs.ErrNotFound) {
		return errResponse{Error: "not found", Code: vfs.CodeFailure.String()}
	}
	code := vfs.CodeOf(err)
	return errResponse{Error: code.Message(), Code: code.String()}
}

// statusFor maps resolver and service errors to HTTP status codes.
// Missing targets are 404, oversized paths 400, configuration and
// filesystem-state conflicts 409, everything else 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, vfs.ErrTooLong):
		return http.StatusBadRequest
	case errors.Is(err, vfs.ErrNoSearchPath),
		errors.Is(err, vfs.ErrNoWriteDir),
		errors.Is(err, vfs.ErrMkdirFailed),
		errors.Is(err, vfs.ErrRemoveFailed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondErr writes the mapped error response, logging server-side
// failures with their operation and path.
func respondErr(w http.ResponseWriter, op, path string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(op+" failed", slog.String("path", path), slog.String("error", err.Error()))
	}
	writeJSON(w, status, errorFor(err))
}
