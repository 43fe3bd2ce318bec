package vfs

import "errors"

// Sentinel errors returned by FS operations. Wrapped errors carry context;
// match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrTooLong      = errors.New("path too long")
	ErrNoWriteDir   = errors.New("no write directory")
	ErrWriteFailed  = errors.New("could not write to file")
	ErrMkdirFailed  = errors.New("could not make directory")
	ErrNoSearchPath = errors.New("no search path")
	ErrRemoveFailed = errors.New("could not delete file or directory")
)

// Code identifies an operation outcome in wire formats and the journal.
type Code int

const (
	CodeOK Code = iota
	CodeFailure
	CodeTooLong
	CodeNoWriteDir
	CodeWriteFailed
	CodeMkdirFailed
	CodeNoSearchPath
	CodeRemoveFailed
)

// String returns the short machine tag for the code.
func (c Code) String() string {
	switch c {
	case CodeOK:
		return "success"
	case CodeFailure:
		return "failure"
	case CodeTooLong:
		return "path-too-long"
	case CodeNoWriteDir:
		return "no-write-directory"
	case CodeWriteFailed:
		return "write-failed"
	case CodeMkdirFailed:
		return "mkdir-failed"
	case CodeNoSearchPath:
		return "no-search-path"
	case CodeRemoveFailed:
		return "remove-failed"
	default:
		return "unknown"
	}
}

// Message returns the fixed human-readable string for the code.
func (c Code) Message() string {
	switch c {
	case CodeOK:
		return "success"
	case CodeFailure:
		return "failure"
	case CodeTooLong:
		return "path too long"
	case CodeNoWriteDir:
		return "no write directory"
	case CodeWriteFailed:
		return "could not write to file"
	case CodeMkdirFailed:
		return "could not make directory"
	case CodeNoSearchPath:
		return "no search path"
	case CodeRemoveFailed:
		return "could not delete file or directory"
	default:
		return "unknown error"
	}
}

// CodeOf maps an error to its outcome code. A nil error is CodeOK; lookup
// misses (ErrNotFound) and errors without a sentinel map to CodeFailure.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrTooLong):
		return CodeTooLong
	case errors.Is(err, ErrNoWriteDir):
		return CodeNoWriteDir
	case errors.Is(err, ErrWriteFailed):
		return CodeWriteFailed
	case errors.Is(err, ErrMkdirFailed):
		return CodeMkdirFailed
	case errors.Is(err, ErrNoSearchPath):
		return CodeNoSearchPath
	case errors.Is(err, ErrRemoveFailed):
		return CodeRemoveFailed
	default:
		return CodeFailure
	}
}
