package backup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"revise/internal/storage"
)

func setupManager(t *testing.T) (*Manager, *storage.Storage, string) {
	t.Helper()
	dataDir := t.TempDir()
	store, err := storage.New(dataDir)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if _, err := store.AddTopic("Photosynthesis", "Biology"); err != nil {
		t.Fatal(err)
	}
	topic, err := store.AddTopic("Kinematics", "Physics")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.MarkDone(topic.ID, 0); err != nil {
		t.Fatal(err)
	}
	return NewManager(store, dataDir, "test"), store, dataDir
}

func TestCreate(t *testing.T) {
	m, _, dataDir := setupManager(t)

	name, err := m.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := parseBackupName(name); err != nil {
		t.Errorf("backup name %q does not parse: %v", name, err)
	}

	dir := filepath.Join(dataDir, BackupsDir, name)
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatal(err)
	}
	if manifest.Version != ManifestVersion || manifest.AppVersion != "test" {
		t.Errorf("manifest = %+v", manifest)
	}
	if manifest.Stats["topics"] != 2 || manifest.Stats["reviews"] != 18 || manifest.Stats["completed"] != 1 {
		t.Errorf("stats = %v", manifest.Stats)
	}
	if manifest.Backend != "topics.json" {
		t.Errorf("Backend = %q", manifest.Backend)
	}

	snap, err := os.ReadFile(filepath.Join(dir, SnapshotFile))
	if err != nil {
		t.Fatalf("snapshot missing: %v", err)
	}
	if !strings.Contains(string(snap), "Photosynthesis") {
		t.Errorf("snapshot does not hold the topics: %s", snap)
	}
}

func TestCreate_UniqueNamesWithFixedClock(t *testing.T) {
	m, _, _ := setupManager(t)
	fixed := time.Date(2025, 12, 15, 14, 30, 22, 0, time.Local)
	m.now = func() time.Time { return fixed }

	a, err := m.Create()
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Create()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("duplicate backup name %s", a)
	}
	if a != "2025-12-15_143022_000" || b != "2025-12-15_143022_001" {
		t.Errorf("names = %s, %s", a, b)
	}
}

func TestListAndPrune(t *testing.T) {
	m, _, _ := setupManager(t)
	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.Local)
	for i := 0; i < 4; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		m.now = func() time.Time { return at }
		if _, err := m.Create(); err != nil {
			t.Fatal(err)
		}
	}

	list, err := m.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 4 {
		t.Fatalf("len(List()) = %d, want 4", len(list))
	}
	if !list[0].CreatedAt.After(list[3].CreatedAt) {
		t.Error("List() should be newest first")
	}

	deleted, err := m.Prune(2)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 2 {
		t.Errorf("Prune() deleted %d, want 2", deleted)
	}
	list, _ = m.List()
	if len(list) != 2 || list[1].Name != "2025-01-01_100000_000" {
		t.Errorf("remaining = %+v", list)
	}

	if _, err := m.Prune(-1); err == nil {
		t.Error("Prune(-1) expected error")
	}
}

func TestList_NoBackupDir(t *testing.T) {
	m, _, _ := setupManager(t)
	list, err := m.List()
	if err != nil || len(list) != 0 {
		t.Errorf("List() = %v, %v", list, err)
	}
}

func TestRestore(t *testing.T) {
	m, store, _ := setupManager(t)

	name, err := m.Create()
	if err != nil {
		t.Fatal(err)
	}

	topics, _ := store.Topics()
	if err := store.DeleteTopic(topics[0].ID); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddTopic("Scratch", "Misc"); err != nil {
		t.Fatal(err)
	}

	if err := m.Restore(name); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	restored, _ := store.Topics()
	if len(restored) != 2 || restored[0].ID != topics[0].ID || restored[1].ID != topics[1].ID {
		t.Fatalf("restored = %+v", restored)
	}
	if !restored[1].IsCompleted(0) {
		t.Error("completion lost on restore")
	}

	list, _ := m.List()
	if len(list) != 2 {
		t.Errorf("expected the safety backup next to the original, got %d backups", len(list))
	}
}

func TestRestoreLatest(t *testing.T) {
	m, store, _ := setupManager(t)
	if _, err := m.RestoreLatest(); err == nil {
		t.Fatal("RestoreLatest() expected error with no backups")
	}

	m.now = func() time.Time { return time.Date(2025, 1, 1, 8, 0, 0, 0, time.Local) }
	want, err := m.Create()
	if err != nil {
		t.Fatal(err)
	}
	if err := store.ImportReplace(nil); err != nil {
		t.Fatal(err)
	}

	m.now = time.Now
	got, err := m.RestoreLatest()
	if err != nil {
		t.Fatalf("RestoreLatest() error = %v", err)
	}
	if got != want {
		t.Errorf("restored %s, want %s", got, want)
	}
	topics, _ := store.Topics()
	if len(topics) != 2 {
		t.Errorf("len(topics) = %d, want 2", len(topics))
	}
}

func TestRestore_InvalidNames(t *testing.T) {
	m, _, _ := setupManager(t)
	for _, name := range []string{"", "../etc", "not-a-backup", "2025-01-01_100000_1", "2025-01-01_100000_000/x"} {
		if err := m.Restore(name); err == nil {
			t.Errorf("Restore(%q) expected error", name)
		}
	}
	if err := m.Restore("2025-01-01_100000_000"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Restore(missing) error = %v", err)
	}
}

func TestRestore_CorruptSnapshot(t *testing.T) {
	m, store, _ := setupManager(t)
	name, err := m.Create()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(m.Dir(), name, SnapshotFile)
	if err := os.WriteFile(path, []byte(`{"not":"an array"}`), 0600); err != nil {
		t.Fatal(err)
	}

	if err := m.Restore(name); err == nil {
		t.Fatal("Restore() expected error for corrupt snapshot")
	}
	topics, _ := store.Topics()
	if len(topics) != 2 {
		t.Errorf("store changed after failed restore: %d topics", len(topics))
	}
}

func TestGetBackupAndDelete(t *testing.T) {
	m, _, _ := setupManager(t)
	name, err := m.Create()
	if err != nil {
		t.Fatal(err)
	}

	info, err := m.GetBackup(name)
	if err != nil {
		t.Fatalf("GetBackup() error = %v", err)
	}
	if info.Stats["topics"] != 2 {
		t.Errorf("info = %+v", info)
	}

	if err := m.Delete(name); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := m.GetBackup(name); err == nil {
		t.Error("GetBackup() after delete expected error")
	}
}

func TestParseBackupName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"2025-12-15_143022", true},
		{"2025-12-15_143022_123", true},
		{"2025-12-15_143022_12", false},
		{"2025-12-15", false},
		{"backup", false},
		{"2025-13-15_143022", false},
	}
	for _, tt := range tests {
		_, err := parseBackupName(tt.name)
		if (err == nil) != tt.valid {
			t.Errorf("parseBackupName(%q) error = %v, valid = %v", tt.name, err, tt.valid)
		}
	}
}

func TestScheduler(t *testing.T) {
	m, _, _ := setupManager(t)

	if _, err := NewScheduler(m, "25:99", 3); err == nil {
		t.Error("NewScheduler() expected error for invalid time")
	}

	s, err := NewScheduler(m, "03:30", 1)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	m.now = func() time.Time { return time.Date(2025, 1, 1, 8, 0, 0, 0, time.Local) }
	s.Run()
	m.now = func() time.Time { return time.Date(2025, 1, 2, 8, 0, 0, 0, time.Local) }
	s.Run()

	list, _ := m.List()
	if len(list) != 1 || list[0].Name != "2025-01-02_080000_000" {
		t.Errorf("after two runs with keep=1: %+v", list)
	}
}
