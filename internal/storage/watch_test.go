package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func TestWatchFile_ReportsExternalSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "topics.json")
	b, err := NewFileBackend(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := WatchFile(path)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	if err := b.Save([]Topic{{ID: "1", Name: "A", Subject: "S"}}); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Changes():
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification after save")
	}
}

func TestWatcher_CloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.json")
	w, err := WatchFile(path)
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
