// Package backup keeps timestamped snapshots of the topic list under the
// data directory and restores them through the store.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"revise/internal/fsutil"
	"revise/internal/importer"
	"revise/internal/storage"
)

// Layout constants for the backup format.
const (
	ManifestVersion = "1"
	ManifestFile    = "manifest.json"
	SnapshotFile    = "topics.json"
	BackupsDir      = "backups"

	nameLayout = "2006-01-02_150405"
)

// Manager creates, lists, restores and prunes backups.
type Manager struct {
	store      *storage.Storage
	backupDir  string
	appVersion string
	now        func() time.Time
}

// Manifest describes one backup.
type Manifest struct {
	Version    string         `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	AppVersion string         `json:"app_version"`
	Backend    string         `json:"backend"`
	Files      []string       `json:"files"`
	Stats      map[string]int `json:"stats"`
}

// Info summarizes a backup for listings.
type Info struct {
	Name      string // directory name, e.g. 2025-12-15_143022_123
	Path      string
	CreatedAt time.Time
	Stats     map[string]int
}

// NewManager stores backups in dataDir/backups.
func NewManager(store *storage.Storage, dataDir, appVersion string) *Manager {
	return &Manager{
		store:      store,
		backupDir:  filepath.Join(dataDir, BackupsDir),
		appVersion: appVersion,
		now:        time.Now,
	}
}

// Dir returns the directory holding backups.
func (m *Manager) Dir() string { return m.backupDir }

// Create snapshots the current topic list and returns the backup name.
func (m *Manager) Create() (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := m.store.ExportJSON()
	if err != nil {
		return "", fmt.Errorf("failed to export topics: %w", err)
	}
	var topics []storage.Topic
	if err := json.Unmarshal(data, &topics); err != nil {
		return "", fmt.Errorf("failed to read export: %w", err)
	}

	created, name, path, err := m.reserve()
	if err != nil {
		return "", err
	}

	if err := fsutil.WriteFileAtomic(filepath.Join(path, SnapshotFile), data, 0600); err != nil {
		_ = os.RemoveAll(path)
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  created,
		AppVersion: m.appVersion,
		Backend:    filepath.Base(m.store.Location()),
		Files:      []string{SnapshotFile},
		Stats:      snapshotStats(topics),
	}
	if err := fsutil.WriteJSONAtomic(filepath.Join(path, ManifestFile), manifest, 0600); err != nil {
		_ = os.RemoveAll(path)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	return name, nil
}

// reserve creates a fresh backup directory named after the current time,
// stepping forward a millisecond at a time on collisions.
func (m *Manager) reserve() (time.Time, string, string, error) {
	at := m.now().Truncate(time.Millisecond)
	for i := 0; i < 1000; i++ {
		name := formatName(at)
		path := filepath.Join(m.backupDir, name)
		err := os.Mkdir(path, 0700)
		if err == nil {
			return at, name, path, nil
		}
		if !os.IsExist(err) {
			return time.Time{}, "", "", fmt.Errorf("failed to create backup: %w", err)
		}
		at = at.Add(time.Millisecond)
	}
	return time.Time{}, "", "", fmt.Errorf("failed to create backup: too many backups at %s", at.Format(nameLayout))
}

func snapshotStats(topics []storage.Topic) map[string]int {
	stats := map[string]int{"topics": len(topics)}
	for _, t := range topics {
		stats["reviews"] += len(t.Reviews)
		stats["completed"] += len(t.Completed)
	}
	return stats
}

// List returns all backups, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := m.info(entry.Name())
		if err != nil {
			continue
		}
		backups = append(backups, *info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// GetBackup returns information about a specific backup.
func (m *Manager) GetBackup(name string) (*Info, error) {
	if err := validateBackupName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(m.backupDir, name)); os.IsNotExist(err) {
		return nil, fmt.Errorf("backup not found: %s", name)
	}
	return m.info(name)
}

func (m *Manager) info(name string) (*Info, error) {
	path := filepath.Join(m.backupDir, name)
	var manifest Manifest
	if err := readJSON(filepath.Join(path, ManifestFile), &manifest); err != nil {
		created, perr := parseBackupName(name)
		if perr != nil {
			return nil, fmt.Errorf("invalid backup: %s", name)
		}
		manifest.CreatedAt = created
		manifest.Stats = map[string]int{}
	}
	return &Info{Name: name, Path: path, CreatedAt: manifest.CreatedAt, Stats: manifest.Stats}, nil
}

// Restore replaces the topic list with a backup's snapshot. A safety backup
// of the current state is taken first and named in any error.
func (m *Manager) Restore(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}
	path := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}

	loaded := importer.ParseFile(filepath.Join(path, SnapshotFile), "json", m.store.Now)
	if loaded.Err != nil {
		return fmt.Errorf("backup %s is unreadable: %w", name, loaded.Err)
	}

	safety, err := m.Create()
	if err != nil {
		return fmt.Errorf("failed to create safety backup: %w", err)
	}

	if err := m.store.ImportReplace(loaded.Topics); err != nil {
		return fmt.Errorf("failed to restore %s (safety backup: %s): %w", name, safety, err)
	}
	return nil
}

// RestoreLatest restores the most recent backup and returns its name.
func (m *Manager) RestoreLatest() (string, error) {
	backups, err := m.List()
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", fmt.Errorf("no backups available")
	}
	return backups[0].Name, m.Restore(backups[0].Name)
}

// Delete removes a specific backup.
func (m *Manager) Delete(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}
	path := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("backup not found: %s", name)
	}
	return os.RemoveAll(path)
}

// Prune keeps the keep most recent backups and deletes the rest.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative")
	}
	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, b := range backups[keep:] {
		if err := m.Delete(b.Name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func formatName(t time.Time) string {
	return fmt.Sprintf("%s_%03d", t.Format(nameLayout), t.Nanosecond()/int(time.Millisecond))
}

func validateBackupName(name string) error {
	if name == "" {
		return fmt.Errorf("backup name is required")
	}
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	if _, err := parseBackupName(name); err != nil {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

// parseBackupName accepts 2006-01-02_150405 with an optional _mmm suffix.
func parseBackupName(name string) (time.Time, error) {
	base, ms, hasMS := strings.Cut(name, "_")
	if !hasMS {
		return time.Time{}, fmt.Errorf("invalid backup name")
	}
	clock, msPart, hasSuffix := strings.Cut(ms, "_")
	t, err := time.ParseInLocation(nameLayout, base+"_"+clock, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if !hasSuffix {
		return t, nil
	}
	n, err := strconv.Atoi(msPart)
	if err != nil || len(msPart) != 3 || n < 0 {
		return time.Time{}, fmt.Errorf("invalid milliseconds")
	}
	return t.Add(time.Duration(n) * time.Millisecond), nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
