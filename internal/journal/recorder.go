package journal

// Recorder defines the interface for journal operations. Consumers should
// depend on this interface rather than the concrete *DB type to facilitate
// testing with mocks.
type Recorder interface {
	Record(e Entry) error
	Recent(limit int) ([]Entry, error)
	ByPath(path string, limit int) ([]Entry, error)
	Close() error
}

// Verify *DB satisfies Recorder at compile time.
var _ Recorder = (*DB)(nil)
