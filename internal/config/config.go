// Package config handles configuration loading and defaults for revise.
// Configuration is loaded from XDG-compliant paths (typically ~/.config/revise/config.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"revise/internal/fsutil"
	"revise/internal/storage"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvDataDir = "REVISE_DATA_DIR"
	EnvBackend = "REVISE_BACKEND"
)

// Config represents the application configuration.
type Config struct {
	// DataDir overrides the default data directory (~/.revise)
	DataDir string `yaml:"data_dir,omitempty"`

	// Storage selects the persistence backend
	Storage StorageConfig `yaml:"storage,omitempty"`

	// Theme customizes the visual appearance
	Theme ThemeConfig `yaml:"theme,omitempty"`

	// Keys customizes keyboard shortcuts
	Keys KeysConfig `yaml:"keys,omitempty"`

	// UX customizes user experience settings
	UX UXConfig `yaml:"ux,omitempty"`

	// Backup configures automatic snapshot backups while the TUI runs
	Backup BackupConfig `yaml:"backup,omitempty"`
}

// StorageConfig selects where topics are persisted.
type StorageConfig struct {
	// Backend is "json" (topics.json) or "sqlite" (topics.db)
	Backend string `yaml:"backend,omitempty"`
}

// ThemeConfig defines color and style settings.
type ThemeConfig struct {
	// Primary color for focused elements (hex, e.g., "#FF5733")
	Primary string `yaml:"primary,omitempty"`

	// Accent color for completed reviews (hex)
	Accent string `yaml:"accent,omitempty"`

	// Muted color for secondary text (hex)
	Muted string `yaml:"muted,omitempty"`

	// Danger color for overdue reviews (hex)
	Danger string `yaml:"danger,omitempty"`

	// Warning color for reviews due today (hex)
	Warning string `yaml:"warning,omitempty"`
}

// KeysConfig defines customizable keyboard shortcuts.
// Each field accepts a comma-separated list of key bindings.
// Examples: "q,ctrl+c", "tab", "j,down"
type KeysConfig struct {
	// Global keys
	Quit     string `yaml:"quit,omitempty"`      // default: "q,ctrl+c"
	Help     string `yaml:"help,omitempty"`      // default: "?"
	NextPane string `yaml:"next_pane,omitempty"` // default: "tab"

	// Navigation keys
	Up   string `yaml:"up,omitempty"`   // default: "k,up"
	Down string `yaml:"down,omitempty"` // default: "j,down"

	// Topic keys
	Add           string `yaml:"add,omitempty"`            // default: "a"
	Edit          string `yaml:"edit,omitempty"`           // default: "e"
	Delete        string `yaml:"delete,omitempty"`         // default: "x"
	Done          string `yaml:"done,omitempty"`           // default: "d,enter"
	FilterStatus  string `yaml:"filter_status,omitempty"`  // default: "s"
	FilterSubject string `yaml:"filter_subject,omitempty"` // default: "f"
	Search        string `yaml:"search,omitempty"`         // default: "/"

	// Calendar keys
	MoveEarlier string `yaml:"move_earlier,omitempty"` // default: "H,shift+left"
	MoveLater   string `yaml:"move_later,omitempty"`   // default: "L,shift+right"
	PrevMonth   string `yaml:"prev_month,omitempty"`   // default: "["
	NextMonth   string `yaml:"next_month,omitempty"`   // default: "]"
	Toggle      string `yaml:"toggle,omitempty"`       // default: "space"

	// Input keys
	Confirm string `yaml:"confirm,omitempty"` // default: "enter"
	Cancel  string `yaml:"cancel,omitempty"`  // default: "esc"

	// Undo/Redo keys
	Undo string `yaml:"undo,omitempty"` // default: "ctrl+z,u"
	Redo string `yaml:"redo,omitempty"` // default: "ctrl+y,ctrl+shift+z"
}

// UXConfig defines user experience settings.
type UXConfig struct {
	// ConfirmDeletions shows confirmation dialogs before deleting topics
	ConfirmDeletions bool `yaml:"confirm_deletions,omitempty"` // default: true

	// NarrowLayoutThreshold is the terminal width below which to use stacked layout
	NarrowLayoutThreshold int `yaml:"narrow_layout_threshold,omitempty"` // default: 80

	// ShowCompletedMarks appends a check mark to completed reviews on the calendar
	ShowCompletedMarks bool `yaml:"show_completed_marks,omitempty"` // default: true

	// HistoryLimit caps the undo stack for calendar moves; 0 keeps every move
	HistoryLimit int `yaml:"history_limit,omitempty"` // default: 0
}

// BackupConfig controls the daily automatic backup.
type BackupConfig struct {
	// Auto enables the daily backup job
	Auto bool `yaml:"auto,omitempty"`

	// At is the time of day for the job (HH:MM)
	At string `yaml:"at,omitempty"` // default: "21:00"

	// Keep is how many backups survive pruning
	Keep int `yaml:"keep,omitempty"` // default: 14
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Storage: StorageConfig{Backend: storage.BackendJSON},
		Theme: ThemeConfig{
			Primary: "#7C3AED", // Violet
			Accent:  "#10B981", // Emerald
			Muted:   "#6B7280", // Gray
			Danger:  "#EF4444", // Red
			Warning: "#F59E0B", // Amber
		},
		Keys: KeysConfig{
			// Defaults are empty strings, which means use built-in defaults
		},
		UX: UXConfig{
			ConfirmDeletions:      true,
			NarrowLayoutThreshold: 80,
			ShowCompletedMarks:    true,
		},
		Backup: BackupConfig{
			Auto: false,
			At:   "21:00",
			Keep: 14,
		},
	}
}

// defaultDataDir returns the default data directory path.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".revise"
	}
	return filepath.Join(home, ".revise")
}

// Dir returns the configuration directory path (XDG compliant).
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "revise")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "revise")
}

// Path returns the path to the config file.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration from disk, merging with defaults, then applies
// the environment. A .env file in the config directory is read first; it
// never overrides variables already set in the process environment.
// If no config file exists, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	if dir := Dir(); dir != "" {
		if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	if path := Path(); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var userCfg Config
	if err := yaml.Unmarshal(data, &userCfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	var doc yaml.Node
	_ = yaml.Unmarshal(data, &doc) // best-effort; fall back to conservative merge if this fails

	c.mergeFromYAML(&userCfg, &doc)
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackend)); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
}

// Validate rejects settings the rest of the program cannot act on.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendJSON, storage.BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q (want %s or %s)", c.Storage.Backend, storage.BackendJSON, storage.BackendSQLite)
	}
	if c.Backup.Keep < 0 {
		return fmt.Errorf("backup.keep must be non-negative")
	}
	if c.UX.HistoryLimit < 0 {
		return fmt.Errorf("ux.history_limit must be non-negative")
	}
	if _, _, ok := parseClock(c.Backup.At); !ok {
		return fmt.Errorf("backup.at must be HH:MM, got %q", c.Backup.At)
	}
	return nil
}

func parseClock(s string) (int, int, bool) {
	var h, m int
	if n, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil || n != 2 {
		return 0, 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}

// mergeNonEmpty applies non-empty values from other to c.
// It intentionally does not touch booleans (those require presence-aware merging).
func (c *Config) mergeNonEmpty(other *Config) {
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.Storage.Backend != "" {
		c.Storage.Backend = strings.ToLower(other.Storage.Backend)
	}

	mergeString(&c.Theme.Primary, other.Theme.Primary)
	mergeString(&c.Theme.Accent, other.Theme.Accent)
	mergeString(&c.Theme.Muted, other.Theme.Muted)
	mergeString(&c.Theme.Danger, other.Theme.Danger)
	mergeString(&c.Theme.Warning, other.Theme.Warning)

	k, o := &c.Keys, other.Keys
	mergeString(&k.Quit, o.Quit)
	mergeString(&k.Help, o.Help)
	mergeString(&k.NextPane, o.NextPane)
	mergeString(&k.Up, o.Up)
	mergeString(&k.Down, o.Down)
	mergeString(&k.Add, o.Add)
	mergeString(&k.Edit, o.Edit)
	mergeString(&k.Delete, o.Delete)
	mergeString(&k.Done, o.Done)
	mergeString(&k.FilterStatus, o.FilterStatus)
	mergeString(&k.FilterSubject, o.FilterSubject)
	mergeString(&k.Search, o.Search)
	mergeString(&k.MoveEarlier, o.MoveEarlier)
	mergeString(&k.MoveLater, o.MoveLater)
	mergeString(&k.PrevMonth, o.PrevMonth)
	mergeString(&k.NextMonth, o.NextMonth)
	mergeString(&k.Toggle, o.Toggle)
	mergeString(&k.Confirm, o.Confirm)
	mergeString(&k.Cancel, o.Cancel)
	mergeString(&k.Undo, o.Undo)
	mergeString(&k.Redo, o.Redo)

	if other.UX.NarrowLayoutThreshold > 0 {
		c.UX.NarrowLayoutThreshold = other.UX.NarrowLayoutThreshold
	}
	if other.UX.HistoryLimit != 0 {
		c.UX.HistoryLimit = other.UX.HistoryLimit
	}
	mergeString(&c.Backup.At, other.Backup.At)
	if other.Backup.Keep > 0 {
		c.Backup.Keep = other.Backup.Keep
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *Config) mergeFromYAML(other *Config, doc *yaml.Node) {
	c.mergeNonEmpty(other)

	// Without a document we cannot tell an explicit false from an absent key.
	if doc == nil || len(doc.Content) == 0 {
		return
	}

	if yamlHasPath(doc, "ux", "confirm_deletions") {
		c.UX.ConfirmDeletions = other.UX.ConfirmDeletions
	}
	if yamlHasPath(doc, "ux", "show_completed_marks") {
		c.UX.ShowCompletedMarks = other.UX.ShowCompletedMarks
	}
	if yamlHasPath(doc, "backup", "auto") {
		c.Backup.Auto = other.Backup.Auto
	}
	if yamlHasPath(doc, "backup", "keep") {
		c.Backup.Keep = other.Backup.Keep
	}
}

func yamlHasPath(doc *yaml.Node, path ...string) bool {
	if doc == nil || len(path) == 0 {
		return false
	}

	// Document -> root mapping.
	n := doc
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		n = n.Content[0]
	}
	for _, key := range path {
		if n == nil || n.Kind != yaml.MappingNode {
			return false
		}
		var next *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			if k := n.Content[i]; k.Kind == yaml.ScalarNode && k.Value == key {
				next = n.Content[i+1]
				break
			}
		}
		if next == nil {
			return false
		}
		n = next
	}
	return true
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	path := Path()
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(path, data, 0600)
}

// GetDataDir returns the resolved data directory path.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	if c.DataDir == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return c.DataDir
	}

	if strings.HasPrefix(c.DataDir, "~/") || strings.HasPrefix(c.DataDir, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, c.DataDir[2:])
		}
	}
	return c.DataDir
}
