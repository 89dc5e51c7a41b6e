// Package history keeps undo/redo stacks for review-date moves.
package history

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"revise/internal/storage"
)

// ErrStaleEntry is returned when an entry refers to a topic or review that
// no longer exists. The entry is discarded and the store is not touched.
var ErrStaleEntry = errors.New("history entry refers to a missing topic or review")

// Entry records one review-date move.
type Entry struct {
	TopicID     string
	ReviewIndex int
	OldDate     time.Time
	NewDate     time.Time
	TopicName   string // for status messages only
}

// Describe renders the entry for status lines.
func (e Entry) Describe() string {
	return fmt.Sprintf("review %d of %q: %s → %s", e.ReviewIndex+1, e.TopicName,
		e.OldDate.Format("Jan 2"), e.NewDate.Format("Jan 2"))
}

// DateSetter is the store operation history replays through.
type DateSetter interface {
	SetReviewDate(id string, reviewIndex int, date time.Time) error
}

// Manager holds the two LIFO stacks. Entries are never mutated once
// recorded.
type Manager struct {
	mu    sync.Mutex
	store DateSetter
	undo  []Entry
	redo  []Entry
	limit int
}

// NewManager creates a manager that applies dates through store. The undo
// stack is unbounded until SetLimit is called.
func NewManager(store DateSetter) *Manager {
	return &Manager{store: store}
}

// SetLimit bounds the undo stack, evicting the oldest entries first. Values
// below 1 mean unbounded.
func (m *Manager) SetLimit(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = n
	m.trim()
}

func (m *Manager) trim() {
	if m.limit > 0 && len(m.undo) > m.limit {
		m.undo = append([]Entry(nil), m.undo[len(m.undo)-m.limit:]...)
	}
}

// Record pushes an entry for a move that has already been applied and
// invalidates everything on the redo stack.
func (m *Manager) Record(e Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redo = m.redo[:0]
	m.undo = append(m.undo, e)
	m.trim()
}

// Undo restores the old date of the most recent entry. ok is false when
// there was nothing to undo.
func (m *Manager) Undo() (e Entry, ok bool, err error) {
	return m.step(&m.undo, &m.redo, func(e Entry) time.Time { return e.OldDate }, "undo")
}

// Redo reapplies the new date of the most recently undone entry.
func (m *Manager) Redo() (e Entry, ok bool, err error) {
	return m.step(&m.redo, &m.undo, func(e Entry) time.Time { return e.NewDate }, "redo")
}

// step pops from src, applies the chosen date and pushes onto dst. A failed
// write puts the entry back; a stale entry is dropped.
func (m *Manager) step(src, dst *[]Entry, date func(Entry) time.Time, verb string) (Entry, bool, error) {
	m.mu.Lock()
	if len(*src) == 0 {
		m.mu.Unlock()
		return Entry{}, false, nil
	}
	e := (*src)[len(*src)-1]
	*src = (*src)[:len(*src)-1]
	m.mu.Unlock()

	err := m.store.SetReviewDate(e.TopicID, e.ReviewIndex, date(e))
	switch {
	case err == nil:
		m.mu.Lock()
		*dst = append(*dst, e)
		m.trim()
		m.mu.Unlock()
		return e, true, nil
	case errors.Is(err, storage.ErrTopicNotFound) || errors.Is(err, storage.ErrReviewIndex):
		log.Printf("[history] warning: %s skipped for topic %s review %d: %v", verb, e.TopicID, e.ReviewIndex, err)
		return e, true, fmt.Errorf("%w: %v", ErrStaleEntry, err)
	default:
		m.mu.Lock()
		*src = append(*src, e)
		m.mu.Unlock()
		return e, true, err
	}
}

// Forget drops every entry that refers to topicID, e.g. after deletion.
func (m *Manager) Forget(topicID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = without(m.undo, topicID)
	m.redo = without(m.redo, topicID)
}

func without(entries []Entry, topicID string) []Entry {
	kept := entries[:0]
	for _, e := range entries {
		if e.TopicID != topicID {
			kept = append(kept, e)
		}
	}
	return kept
}

// Clear empties both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	m.redo = nil
}

// CanUndo reports whether Undo has an entry to apply.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

// CanRedo reports whether Redo has an entry to apply.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// Len returns the sizes of the undo and redo stacks.
func (m *Manager) Len() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}
