// Package storage owns the topic list: validation, queries and write-through
// persistence of the full snapshot after every change.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"revise/internal/schedule"
)

var (
	// ErrEmptyField is returned when a name or subject is blank after trimming.
	ErrEmptyField = errors.New("name and subject are required")
	// ErrTopicNotFound is returned for unknown topic ids.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrReviewIndex is returned for review indices outside a topic's schedule.
	ErrReviewIndex = errors.New("review index out of range")
	// ErrPersist wraps backend write failures.
	ErrPersist = errors.New("failed to save topics")
	// ErrAmbiguousRef is returned by Resolve when an id prefix matches more
	// than one topic.
	ErrAmbiguousRef = errors.New("ambiguous topic reference")
)

// Storage is the topic store. Every operation loads the snapshot from the
// backend, applies the change and writes the full snapshot back, so several
// processes sharing a data directory see each other's edits.
type Storage struct {
	mu      sync.Mutex
	backend Backend
	onSave  func(ctx SaveContext)
	now     func() time.Time // injectable clock for deterministic tests
}

// New opens a JSON-backed store in dataDir.
func New(dataDir string) (*Storage, error) {
	return Open(dataDir, BackendJSON)
}

// Open opens a store in dataDir using the named backend kind.
func Open(dataDir, kind string) (*Storage, error) {
	b, err := OpenBackend(dataDir, kind)
	if err != nil {
		return nil, err
	}
	return NewWithBackend(b), nil
}

// NewWithBackend wraps an already opened backend.
func NewWithBackend(b Backend) *Storage {
	return &Storage{backend: b, now: time.Now}
}

// SetNowFunc overrides the clock used for new schedules and status.
// Passing nil resets it to time.Now.
func (s *Storage) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Now returns the current time according to the storage clock.
func (s *Storage) Now() time.Time {
	s.mu.Lock()
	now := s.now
	s.mu.Unlock()
	if now == nil {
		return time.Now()
	}
	return now()
}

// SetOnSave registers a listener called after every successful write.
func (s *Storage) SetOnSave(fn func(ctx SaveContext)) {
	s.mu.Lock()
	s.onSave = fn
	s.mu.Unlock()
}

// Location returns where the backend keeps the snapshot.
func (s *Storage) Location() string {
	return s.backend.Location()
}

// Close releases the backend.
func (s *Storage) Close() error {
	return s.backend.Close()
}

// update runs fn over a freshly loaded snapshot and persists the result.
// The save listener runs after the lock is released.
func (s *Storage) update(op string, fn func(topics []Topic) ([]Topic, string, error)) error {
	s.mu.Lock()
	topics, err := s.backend.Load()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	topics, name, err := fn(topics)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.backend.Save(topics); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	listener := s.onSave
	s.mu.Unlock()

	if listener != nil {
		listener(SaveContext{Target: s.backend.Location(), Operation: op, TopicName: truncateName(name, 50)})
	}
	return nil
}

// updateTopic applies fn to the topic with the given id.
func (s *Storage) updateTopic(op, id string, fn func(t *Topic) error) (Topic, error) {
	var out Topic
	err := s.update(op, func(topics []Topic) ([]Topic, string, error) {
		i := indexOf(topics, id)
		if i < 0 {
			return nil, "", fmt.Errorf("%w: %s", ErrTopicNotFound, id)
		}
		if err := fn(&topics[i]); err != nil {
			return nil, "", err
		}
		out = topics[i].Clone()
		return topics, topics[i].Name, nil
	})
	return out, err
}

func (s *Storage) load() ([]Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Load()
}

func indexOf(topics []Topic, id string) int {
	for i := range topics {
		if topics[i].ID == id {
			return i
		}
	}
	return -1
}

func truncateName(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}

// ============================================================================
// Mutations
// ============================================================================

// AddTopic appends a topic with a fresh schedule starting now.
func (s *Storage) AddTopic(name, subject string) (*Topic, error) {
	name = strings.TrimSpace(name)
	subject = strings.TrimSpace(subject)
	if name == "" || subject == "" {
		return nil, ErrEmptyField
	}

	now := s.Now()
	topic := Topic{
		ID:        uuid.NewString(),
		Name:      name,
		Subject:   subject,
		Reviews:   schedule.Generate(now),
		Completed: []int{},
		CreatedAt: now,
	}

	err := s.update("add", func(topics []Topic) ([]Topic, string, error) {
		return append(topics, topic), topic.Name, nil
	})
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// EditTopic replaces name, subject and notes. Name and subject are trimmed
// and must stay non-empty; notes are stored as given and may be cleared.
func (s *Storage) EditTopic(id, name, subject, notes string) (*Topic, error) {
	name = strings.TrimSpace(name)
	subject = strings.TrimSpace(subject)
	if name == "" || subject == "" {
		return nil, ErrEmptyField
	}

	t, err := s.updateTopic("edit", id, func(t *Topic) error {
		t.Name = name
		t.Subject = subject
		t.Notes = notes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTopic removes a topic. Confirmation is the caller's job.
func (s *Storage) DeleteTopic(id string) error {
	return s.update("delete", func(topics []Topic) ([]Topic, string, error) {
		i := indexOf(topics, id)
		if i < 0 {
			return nil, "", fmt.Errorf("%w: %s", ErrTopicNotFound, id)
		}
		name := topics[i].Name
		return append(topics[:i], topics[i+1:]...), name, nil
	})
}

// MarkDone adds review i to the completion set. Marking an already
// completed review is a no-op that still succeeds.
func (s *Storage) MarkDone(id string, i int) error {
	return s.SetCompleted(id, i, true)
}

// SetCompleted sets or clears the completion of review i.
func (s *Storage) SetCompleted(id string, i int, done bool) error {
	op := "done"
	if !done {
		op = "undone"
	}
	_, err := s.updateTopic(op, id, func(t *Topic) error {
		if !t.HasReview(i) {
			return fmt.Errorf("%w: %d", ErrReviewIndex, i)
		}
		t.setCompleted(i, done)
		return nil
	})
	return err
}

// SetReviewDate moves review i to date. Completion is left untouched and no
// history is recorded here.
func (s *Storage) SetReviewDate(id string, i int, date time.Time) error {
	_, err := s.updateTopic("move", id, func(t *Topic) error {
		if !t.HasReview(i) {
			return fmt.Errorf("%w: %d", ErrReviewIndex, i)
		}
		t.Reviews[i] = date
		return nil
	})
	return err
}

// ImportReplace discards every topic and stores the given list instead.
func (s *Storage) ImportReplace(imported []Topic) error {
	return s.update("import", func([]Topic) ([]Topic, string, error) {
		out := make([]Topic, 0, len(imported))
		ids := make(map[string]struct{}, len(imported))
		for _, t := range imported {
			n := Normalize(t)
			if _, clash := ids[n.ID]; clash {
				n.ID = uuid.NewString()
			}
			ids[n.ID] = struct{}{}
			out = append(out, n)
		}
		return out, fmt.Sprintf("%d topics", len(out)), nil
	})
}

// ImportMerge appends imported topics whose exact (name, subject) pair is not
// already present, including pairs added earlier in the same import. It
// returns how many were added.
func (s *Storage) ImportMerge(imported []Topic) (int, error) {
	added := 0
	err := s.update("import", func(topics []Topic) ([]Topic, string, error) {
		seen := make(map[[2]string]struct{}, len(topics)+len(imported))
		ids := make(map[string]struct{}, len(topics))
		for _, t := range topics {
			seen[[2]string{t.Name, t.Subject}] = struct{}{}
			ids[t.ID] = struct{}{}
		}
		for _, t := range imported {
			key := [2]string{t.Name, t.Subject}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			n := Normalize(t)
			if _, clash := ids[n.ID]; clash {
				n.ID = uuid.NewString()
			}
			ids[n.ID] = struct{}{}
			topics = append(topics, n)
			added++
		}
		return topics, fmt.Sprintf("%d topics", added), nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// Normalize fills a missing id and drops completion indices that are out of
// range or repeated. Everything else is trusted as-is.
func Normalize(t Topic) Topic {
	t = t.Clone()
	if strings.TrimSpace(t.ID) == "" {
		t.ID = uuid.NewString()
	}
	if t.Reviews == nil {
		t.Reviews = []time.Time{}
	}
	completed := make([]int, 0, len(t.Completed))
	for _, c := range t.Completed {
		if !t.HasReview(c) {
			continue
		}
		dup := false
		for _, k := range completed {
			if k == c {
				dup = true
				break
			}
		}
		if !dup {
			completed = append(completed, c)
		}
	}
	t.Completed = completed
	return t
}

// ============================================================================
// Queries
// ============================================================================

// Topics returns every topic in list order.
func (s *Storage) Topics() ([]Topic, error) {
	return s.load()
}

// Topic returns the topic with the given id.
func (s *Storage) Topic(id string) (Topic, error) {
	topics, err := s.load()
	if err != nil {
		return Topic{}, err
	}
	i := indexOf(topics, id)
	if i < 0 {
		return Topic{}, fmt.Errorf("%w: %s", ErrTopicNotFound, id)
	}
	return topics[i], nil
}

// ReviewDate returns the current date of review i.
func (s *Storage) ReviewDate(id string, i int) (time.Time, error) {
	t, err := s.Topic(id)
	if err != nil {
		return time.Time{}, err
	}
	if !t.HasReview(i) {
		return time.Time{}, fmt.Errorf("%w: %d", ErrReviewIndex, i)
	}
	return t.Reviews[i], nil
}

// Resolve finds a topic by full id, 1-based list position or unique id
// prefix, in that order.
func (s *Storage) Resolve(ref string) (Topic, error) {
	ref = strings.TrimSpace(ref)
	topics, err := s.load()
	if err != nil {
		return Topic{}, err
	}
	if i := indexOf(topics, ref); i >= 0 {
		return topics[i], nil
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(topics) {
		return topics[n-1], nil
	}

	var match *Topic
	if ref != "" {
		for i := range topics {
			if !strings.HasPrefix(topics[i].ID, ref) {
				continue
			}
			if match != nil {
				return Topic{}, fmt.Errorf("%w: %s", ErrAmbiguousRef, ref)
			}
			match = &topics[i]
		}
	}
	if match == nil {
		return Topic{}, fmt.Errorf("%w: %s", ErrTopicNotFound, ref)
	}
	return *match, nil
}

// Matches reports whether t passes every predicate of f, given its status.
func (f Filter) Matches(t Topic, status Status) bool {
	if f.Status != "" && f.Status != StatusAll && f.Status != status {
		return false
	}
	if f.Subject != "" && f.Subject != "all" && f.Subject != t.Subject {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Name), q) && !strings.Contains(strings.ToLower(t.Subject), q) {
			return false
		}
	}
	return true
}

// Query returns the topics matching f, in list order, classified against the
// storage clock.
func (s *Storage) Query(f Filter) ([]TopicView, error) {
	topics, err := s.load()
	if err != nil {
		return nil, err
	}
	return Select(topics, f, s.Now()), nil
}

// Select applies f to an already loaded topic list.
func Select(topics []Topic, f Filter, now time.Time) []TopicView {
	views := []TopicView{}
	for i, t := range topics {
		st := Classify(t, now)
		if f.Matches(t, st) {
			views = append(views, TopicView{Topic: t, Position: i + 1, Status: st})
		}
	}
	return views
}

// Subjects lists distinct subjects in first-seen order.
func (s *Storage) Subjects() ([]string, error) {
	topics, err := s.load()
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var out []string
	for _, t := range topics {
		if _, ok := seen[t.Subject]; ok {
			continue
		}
		seen[t.Subject] = struct{}{}
		out = append(out, t.Subject)
	}
	return out, nil
}

// Stats counts reviews due today, overdue and completed.
func (s *Storage) Stats() (Stats, error) {
	topics, err := s.load()
	if err != nil {
		return Stats{}, err
	}
	return CountReviews(topics, s.Now()), nil
}

// Export returns a copy of every topic.
func (s *Storage) Export() ([]Topic, error) {
	topics, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Topic, len(topics))
	for i, t := range topics {
		out[i] = t.Clone()
	}
	return out, nil
}

// ExportJSON returns the pretty-printed snapshot used for backups.
func (s *Storage) ExportJSON() ([]byte, error) {
	topics, err := s.Export()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(topics, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode topics: %w", err)
	}
	return append(data, '\n'), nil
}
