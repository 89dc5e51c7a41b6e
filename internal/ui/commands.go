// Package ui provides the terminal user interface for revise.
// This file contains tea.Cmd factories that wrap storage operations. These
// commands run I/O asynchronously to keep the Bubble Tea event loop
// responsive. Each command returns a message type defined in messages.go.
package ui

import (
	"context"
	"time"

	"revise/internal/calendar"
	"revise/internal/fsutil"
	"revise/internal/history"
	"revise/internal/importer"
	"revise/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
)

// importTimeout bounds how long reading an import file may take.
const importTimeout = 30 * time.Second

// =============================================================================
// Load Commands
// =============================================================================

// loadTopicsCmd returns a command that loads all topics and subjects.
func loadTopicsCmd(store *storage.Storage) tea.Cmd {
	return func() tea.Msg {
		topics, err := store.Topics()
		if err != nil {
			return topicsLoadedMsg{err: err}
		}
		subjects, err := store.Subjects()
		return topicsLoadedMsg{topics: topics, subjects: subjects, err: err}
	}
}

// watchCmd waits for the next external change to the snapshot file.
// Returns nil if w is nil (watching disabled).
func watchCmd(w *storage.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-w.Changes(); !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

// =============================================================================
// Mutation Commands
// =============================================================================

// runCmd returns a command that applies a resolved storage command.
func runCmd(store *storage.Storage, c storage.Command) tea.Cmd {
	return func() tea.Msg {
		msg := commandDoneMsg{err: c.Apply(store)}
		if msg.err == nil {
			msg.desc = c.Describe()
			if d, ok := c.(storage.DeleteCmd); ok {
				msg.deleted = d.ID
			}
		}
		return msg
	}
}

// moveToCmd drops a review onto day.
func moveToCmd(m *calendar.Mover, ref *calendar.Ref, day time.Time) tea.Cmd {
	return func() tea.Msg {
		e, moved, err := m.MoveTo(ref, day)
		return movedMsg{entry: e, moved: moved, err: err}
	}
}

// moveByCmd shifts a review by a number of days.
func moveByCmd(m *calendar.Mover, ref *calendar.Ref, days int) tea.Cmd {
	return func() tea.Msg {
		e, moved, err := m.MoveBy(ref, days)
		return movedMsg{entry: e, moved: moved, err: err}
	}
}

// =============================================================================
// Undo/Redo Commands
// =============================================================================

func undoCmd(h *history.Manager) tea.Cmd {
	return func() tea.Msg {
		e, ok, err := h.Undo()
		return historyStepMsg{entry: e, ok: ok, err: err}
	}
}

func redoCmd(h *history.Manager) tea.Cmd {
	return func() tea.Msg {
		e, ok, err := h.Redo()
		return historyStepMsg{redo: true, entry: e, ok: ok, err: err}
	}
}

// =============================================================================
// Import / Export Commands
// =============================================================================

// loadImportCmd parses path off the event loop. The store is not touched
// until the user picks replace or merge.
func loadImportCmd(path string, now func() time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()
		return importLoadedMsg{loaded: <-importer.Load(ctx, path, "", now)}
	}
}

// applyImportCmd stores parsed topics.
func applyImportCmd(store *storage.Storage, topics []storage.Topic, merge bool) tea.Cmd {
	return func() tea.Msg {
		res, err := importer.Apply(store, topics, merge)
		return importAppliedMsg{result: res, merge: merge, err: err}
	}
}

// exportCmd writes the full topic list as pretty-printed JSON.
func exportCmd(store *storage.Storage, path string) tea.Cmd {
	return func() tea.Msg {
		topics, err := store.Export()
		if err != nil {
			return exportedMsg{path: path, err: err}
		}
		err = fsutil.WriteJSONAtomic(path, topics, 0600)
		return exportedMsg{path: path, n: len(topics), err: err}
	}
}
