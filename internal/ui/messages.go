// Package ui provides the terminal user interface for revise.
// This file defines message types for async I/O operations using the Bubble Tea
// command pattern. All storage operations return these messages to keep
// the event loop non-blocking.
package ui

import (
	"revise/internal/history"
	"revise/internal/importer"
	"revise/internal/storage"
)

// =============================================================================
// Load Messages
// =============================================================================

// topicsLoadedMsg carries a fresh snapshot for both panes.
type topicsLoadedMsg struct {
	topics   []storage.Topic
	subjects []string
	err      error
}

// storeChangedMsg is sent when the snapshot file changed on disk.
type storeChangedMsg struct{}

// =============================================================================
// Mutation Messages
// =============================================================================

// commandDoneMsg is sent when a storage.Command finished.
type commandDoneMsg struct {
	desc    string
	deleted string // topic id, set for deletions so history can forget it
	err     error
}

// movedMsg is sent when a calendar move finished.
type movedMsg struct {
	entry history.Entry
	moved bool
	err   error
}

// =============================================================================
// Undo/Redo Messages
// =============================================================================

// historyStepMsg is sent when an undo or redo finished.
type historyStepMsg struct {
	redo  bool
	entry history.Entry
	ok    bool
	err   error
}

// =============================================================================
// Import / Export Messages
// =============================================================================

// importLoadedMsg delivers a parsed file awaiting the replace/merge choice.
type importLoadedMsg struct {
	loaded importer.Loaded
}

// importAppliedMsg is sent when parsed topics were stored.
type importAppliedMsg struct {
	result *importer.Result
	merge  bool
	err    error
}

// exportedMsg is sent when the topic list was written to a file.
type exportedMsg struct {
	path string
	n    int
	err  error
}
