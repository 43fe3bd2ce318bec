// Package fileservice coordinates sandbox operations with the audit journal.
package fileservice

import (
	"context"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/journal"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/pkg/vfs"
)

// Service executes resolver operations and records every mutation in the
// journal, failed ones included.
type Service struct {
	fs  vfs.Provider
	rec journal.Recorder
}

// NewService creates a new file service.
func NewService(fs vfs.Provider, rec journal.Recorder) *Service {
	return &Service{fs: fs, rec: rec}
}

// Read resolves name on the search path and returns its content.
func (s *Service) Read(_ context.Context, name string) ([]byte, error) {
	return s.fs.Read(name)
}

// Exists reports whether name resolves to any entry on the search path.
func (s *Service) Exists(_ context.Context, name string) (bool, error) {
	return s.fs.Exists(name)
}

// Stat returns a metadata snapshot for name.
func (s *Service) Stat(_ context.Context, name string) (*models.FileStat, error) {
	info, err := s.fs.Stat(name)
	if err != nil {
		return nil, err
	}
	return &models.FileStat{
		Path:    name,
		Type:    info.Type.String(),
		Size:    info.Size,
		ModTime: info.ModTime,
	}, nil
}

// Getwd returns the working directory of the process.
func (s *Service) Getwd(_ context.Context) (string, error) {
	return s.fs.Getwd()
}

// Write replaces the content of name and journals the outcome.
func (s *Service) Write(ctx context.Context, name string, data []byte) (*models.WriteReceipt, error) {
	return s.WriteAs(ctx, journal.OpWrite, name, data)
}

// WriteAs works like Write but journals under the given operation name.
// The upload and fetch surfaces use it to keep their provenance distinct.
func (s *Service) WriteAs(_ context.Context, op, name string, data []byte) (*models.WriteReceipt, error) {
	sum := checksum.Sum(data)
	err := s.fs.Write(name, data)
	if rerr := s.record(op, name, int64(len(data)), sum, err); rerr != nil {
		return nil, rerr
	}
	return &models.WriteReceipt{
		Path:     name,
		Written:  int64(len(data)),
		Size:     int64(len(data)),
		Checksum: sum,
	}, nil
}

// Append appends data to name and journals the outcome.
func (s *Service) Append(_ context.Context, name string, data []byte) (*models.WriteReceipt, error) {
	sum := checksum.Sum(data)
	err := s.fs.Append(name, data)
	if rerr := s.record(journal.OpAppend, name, int64(len(data)), sum, err); rerr != nil {
		return nil, rerr
	}
	r := &models.WriteReceipt{Path: name, Written: int64(len(data)), Checksum: sum}
	// Post-append size is best-effort: the write target may not be
	// resolvable through the search path.
	if info, err := s.fs.Stat(name); err == nil {
		r.Size = info.Size
	}
	return r, nil
}

// Delete removes name under the write directory and journals the outcome.
func (s *Service) Delete(_ context.Context, name string) error {
	err := s.fs.Delete(name)
	return s.record(journal.OpDelete, name, 0, "", err)
}

// Mkdir creates the directory name under the write directory and journals
// the outcome.
func (s *Service) Mkdir(_ context.Context, name string) error {
	err := s.fs.Mkdir(name)
	return s.record(journal.OpMkdir, name, 0, "", err)
}

// Paths returns the current resolver configuration.
func (s *Service) Paths(_ context.Context) *models.PathsConfig {
	return &models.PathsConfig{SearchPath: s.fs.SearchPath(), WriteDir: s.fs.WriteDir()}
}

// SetPaths updates either half of the resolver configuration. Nil fields
// are left unchanged; changes apply to subsequent operations only.
func (s *Service) SetPaths(_ context.Context, search, write *string) (*models.PathsConfig, error) {
	if search != nil {
		if err := s.fs.SetSearchPath(*search); err != nil {
			return nil, err
		}
	}
	if write != nil {
		if err := s.fs.SetWriteDir(*write); err != nil {
			return nil, err
		}
	}
	return &models.PathsConfig{SearchPath: s.fs.SearchPath(), WriteDir: s.fs.WriteDir()}, nil
}

// Recent returns the newest journal entries.
func (s *Service) Recent(_ context.Context, limit int) ([]journal.Entry, error) {
	entries, err := s.rec.Recent(limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(entries), nil
}

// History returns the journal entries for one exact path, newest first.
func (s *Service) History(_ context.Context, path string, limit int) ([]journal.Entry, error) {
	entries, err := s.rec.ByPath(path, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(entries), nil
}

// record journals the outcome of op and hands the operation error back. A
// journal failure is returned instead so a mutation never reports success
// without an audit row.
func (s *Service) record(op, name string, n int64, sum string, opErr error) error {
	e := journal.Entry{
		Op:       op,
		Path:     name,
		Bytes:    n,
		Checksum: sum,
		Code:     vfs.CodeOf(opErr).String(),
	}
	if err := s.rec.Record(e); err != nil {
		return err
	}
	return opErr
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
