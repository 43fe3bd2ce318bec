package journal

import (
	"fmt"
	"time"
)

// Operation names recorded by the service layer.
const (
	OpWrite  = "write"
	OpAppend = "append"
	OpDelete = "delete"
	OpMkdir  = "mkdir"
	OpUpload = "upload"
	OpFetch  = "fetch"
)

// defaultLimit caps listing queries when the caller passes no limit.
const defaultLimit = 50

// Entry is one journaled operation. Failed operations are recorded too,
// with the code naming the failure.
type Entry struct {
	ID        int64     `json:"id"`
	Op        string    `json:"op"`
	Path      string    `json:"path"`
	Bytes     int64     `json:"bytes"`
	Checksum  string    `json:"checksum,omitempty"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// Record appends an entry. The ID is assigned by the database; a zero
// CreatedAt is filled with the current time.
func (db *DB) Record(e Entry) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := db.conn.Exec(`
		INSERT INTO ops (op, path, bytes, checksum, code, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Op, e.Path, e.Bytes, e.Checksum, e.Code, created)
	if err != nil {
		return fmt.Errorf("journal: record %s %s: %w", e.Op, e.Path, err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (db *DB) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return db.list(`
		SELECT id, op, path, bytes, checksum, code, created_at
		FROM ops ORDER BY id DESC LIMIT ?
	`, limit)
}

// ByPath returns the latest entries for one exact path, newest first.
func (db *DB) ByPath(path string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	return db.list(`
		SELECT id, op, path, bytes, checksum, code, created_at
		FROM ops WHERE path = ? ORDER BY id DESC LIMIT ?
	`, path, limit)
}

func (db *DB) list(query string, args ...any) ([]Entry, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Op, &e.Path, &e.Bytes, &e.Checksum, &e.Code, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
