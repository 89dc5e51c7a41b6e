package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// Backend persists the whole topic list as one snapshot.
type Backend interface {
	Load() ([]Topic, error)
	Save(topics []Topic) error
	// Location names where the snapshot lives, for messages and watching.
	Location() string
	Close() error
}

// Backend kinds accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600

	topicsFile = "topics.json"
	topicsDB   = "topics.db"
)

// ExportFile is the default name for exported topic lists.
const ExportFile = "topics_backup.json"

// OpenBackend creates the data directory and opens the named backend in it.
func OpenBackend(dataDir, kind string) (Backend, error) {
	if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	switch kind {
	case "", BackendJSON:
		return NewFileBackend(filepath.Join(dataDir, topicsFile))
	case BackendSQLite:
		return NewSQLiteBackend(filepath.Join(dataDir, topicsDB))
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want %s or %s)", kind, BackendJSON, BackendSQLite)
	}
}
