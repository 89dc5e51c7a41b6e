package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"revise/internal/fsutil"
)

// FileBackend keeps the snapshot as a pretty-printed JSON array, the same
// shape used for import and export.
type FileBackend struct {
	path string
}

// NewFileBackend opens path, creating an empty snapshot when it is missing.
func NewFileBackend(path string) (*FileBackend, error) {
	b := &FileBackend{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := b.Save([]Topic{}); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *FileBackend) Location() string { return b.path }

func (b *FileBackend) Close() error { return nil }

// Load reads the snapshot. A corrupt or empty file is recovered from the
// .bak copy when possible, otherwise moved aside and replaced with an empty
// list; either way a warning is logged and loading succeeds.
func (b *FileBackend) Load() ([]Topic, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Topic{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return b.recover(fmt.Errorf("%s is empty", b.path))
	}

	var topics []Topic
	if err := json.Unmarshal(data, &topics); err != nil {
		return b.recover(fmt.Errorf("parse %s: %w", b.path, err))
	}
	if topics == nil {
		topics = []Topic{}
	}
	return topics, nil
}

// Save overwrites the snapshot atomically after copying the previous one to
// .bak.
func (b *FileBackend) Save(topics []Topic) error {
	if topics == nil {
		topics = []Topic{}
	}
	fsutil.BestEffortBackup(b.path, dataFilePerm)
	if err := fsutil.WriteJSONAtomic(b.path, topics, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", b.path, err)
	}
	return nil
}

func (b *FileBackend) recover(cause error) ([]Topic, error) {
	corruptPath := fmt.Sprintf("%s.corrupt.%s", b.path, time.Now().Format("20060102-150405"))

	bak, err := os.ReadFile(b.path + ".bak")
	if err == nil && len(bytes.TrimSpace(bak)) > 0 {
		var topics []Topic
		if err := json.Unmarshal(bak, &topics); err == nil {
			_ = os.Rename(b.path, corruptPath)
			if err := fsutil.WriteFileAtomic(b.path, bak, dataFilePerm); err != nil {
				return nil, fmt.Errorf("%v (restore from backup failed: %w)", cause, err)
			}
			log.Printf("[storage] warning: %v (recovered from %s.bak)", cause, b.path)
			if topics == nil {
				topics = []Topic{}
			}
			return topics, nil
		}
	}

	_ = os.Rename(b.path, corruptPath)
	if err := fsutil.WriteJSONAtomic(b.path, []Topic{}, dataFilePerm); err != nil {
		return nil, fmt.Errorf("%v (reset failed: %w)", cause, err)
	}
	log.Printf("[storage] warning: %v (reset to empty; original moved to %s)", cause, corruptPath)
	return []Topic{}, nil
}
