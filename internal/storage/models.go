package storage

import (
	"sort"
	"time"
)

// Status is the derived review state of a topic on a given day.
type Status string

const (
	StatusPending Status = "pending" // a review is due today
	StatusStill   Status = "still"   // a past review was never completed
	StatusDone    Status = "done"
	StatusAll     Status = "all" // filter wildcard, never returned by Classify
)

// ParseStatus accepts the status names used by filters. The empty string
// means StatusAll.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case "", StatusAll:
		return StatusAll, true
	case StatusPending, StatusStill, StatusDone:
		return Status(s), true
	}
	return "", false
}

// Topic is one study item with its nine review dates.
type Topic struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Subject   string      `json:"subject"`
	Notes     string      `json:"notes,omitempty"`
	Reviews   []time.Time `json:"reviews"`
	Completed []int       `json:"completed"`
	CreatedAt time.Time   `json:"created_at,omitzero"`
}

// IsCompleted reports whether review i has been marked done.
func (t Topic) IsCompleted(i int) bool {
	for _, c := range t.Completed {
		if c == i {
			return true
		}
	}
	return false
}

// HasReview reports whether i addresses an existing review.
func (t Topic) HasReview(i int) bool {
	return i >= 0 && i < len(t.Reviews)
}

// Clone returns a deep copy so callers cannot alias the store's slices.
func (t Topic) Clone() Topic {
	c := t
	c.Reviews = append([]time.Time(nil), t.Reviews...)
	c.Completed = append([]int(nil), t.Completed...)
	return c
}

func (t *Topic) setCompleted(i int, done bool) {
	if done {
		if !t.IsCompleted(i) {
			t.Completed = append(t.Completed, i)
			sort.Ints(t.Completed)
		}
		return
	}
	kept := t.Completed[:0]
	for _, c := range t.Completed {
		if c != i {
			kept = append(kept, c)
		}
	}
	t.Completed = kept
}

// Filter selects topics in Query. Zero values match everything.
type Filter struct {
	Status  Status
	Subject string // "" or "all" matches any subject
	Search  string // case-insensitive substring of name or subject
}

// TopicView is a query result: the topic, its 1-based list position and its
// status at query time.
type TopicView struct {
	Topic    Topic
	Position int
	Status   Status
}

// Stats counts individual reviews, not topics.
type Stats struct {
	DueToday     int `json:"due_today"`
	StillPending int `json:"still_pending"`
	Completed    int `json:"completed"`
	Topics       int `json:"topics"`
}

// SaveContext describes a completed write, for logging and listeners.
type SaveContext struct {
	Target    string // backend location, e.g. "topics.json"
	Operation string // add, edit, delete, done, undone, move, import
	TopicName string
}
