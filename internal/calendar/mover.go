package calendar

import (
	"time"

	"revise/internal/history"
	"revise/internal/schedule"
	"revise/internal/storage"
)

// ReviewStore is the part of the topic store a Mover needs.
type ReviewStore interface {
	Topic(id string) (storage.Topic, error)
	SetReviewDate(id string, reviewIndex int, date time.Time) error
}

// Mover applies calendar moves and records them for undo.
type Mover struct {
	store   ReviewStore
	history *history.Manager
}

// NewMover wires a store and a history manager.
func NewMover(store ReviewStore, h *history.Manager) *Mover {
	return &Mover{store: store, history: h}
}

// MoveTo places the referenced review on day, keeping its time of day.
// moved is false when the review already sits on that day.
func (m *Mover) MoveTo(ref *Ref, day time.Time) (e history.Entry, moved bool, err error) {
	if ref == nil {
		return history.Entry{}, false, ErrMissingMetadata
	}
	t, err := m.store.Topic(ref.TopicID)
	if err != nil {
		return history.Entry{}, false, err
	}
	if !t.HasReview(ref.ReviewIndex) {
		return history.Entry{}, false, storage.ErrReviewIndex
	}

	old := t.Reviews[ref.ReviewIndex]
	if schedule.SameDay(old, day) {
		return history.Entry{}, false, nil
	}
	local := old.In(day.Location())
	y, mo, d := day.Date()
	next := time.Date(y, mo, d, local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), day.Location())

	if err := m.store.SetReviewDate(ref.TopicID, ref.ReviewIndex, next); err != nil {
		return history.Entry{}, false, err
	}
	e = history.Entry{
		TopicID:     ref.TopicID,
		ReviewIndex: ref.ReviewIndex,
		OldDate:     old,
		NewDate:     next,
		TopicName:   t.Name,
	}
	m.history.Record(e)
	return e, true, nil
}

// MoveBy shifts the referenced review by days calendar days.
func (m *Mover) MoveBy(ref *Ref, days int) (history.Entry, bool, error) {
	if ref == nil {
		return history.Entry{}, false, ErrMissingMetadata
	}
	old, err := m.reviewDate(ref)
	if err != nil {
		return history.Entry{}, false, err
	}
	return m.MoveTo(ref, old.AddDate(0, 0, days))
}

func (m *Mover) reviewDate(ref *Ref) (time.Time, error) {
	t, err := m.store.Topic(ref.TopicID)
	if err != nil {
		return time.Time{}, err
	}
	if !t.HasReview(ref.ReviewIndex) {
		return time.Time{}, storage.ErrReviewIndex
	}
	return t.Reviews[ref.ReviewIndex], nil
}
