package storage

import (
	"strings"
	"testing"
	"time"
)

// FuzzAddTopic feeds random names and subjects to AddTopic to check that
// validation never panics and accepted topics get a full schedule.
func FuzzAddTopic(f *testing.F) {
	f.Add("", "")
	f.Add("Photosynthesis", "")
	f.Add("", "Biology")
	f.Add("Photosynthesis", "Biology")
	f.Add("   whitespace   ", "  spaces  ")
	f.Add("Topic\nwith\nnewlines", "subject")
	f.Add("Unicode: üéâ 光合作用", "生物")
	f.Add("\x00\x01\x02", "bytes")
	f.Add(strings.Repeat("a", 500), "long")

	f.Fuzz(func(t *testing.T, name, subject string) {
		store := createTestStorage(t)

		defer func() {
			if r := recover(); r != nil {
				t.Errorf("AddTopic panicked with name=%q subject=%q: %v", name, subject, r)
			}
		}()

		topic, err := store.AddTopic(name, subject)

		if strings.TrimSpace(name) == "" || strings.TrimSpace(subject) == "" {
			if err == nil {
				t.Error("AddTopic should reject a blank name or subject")
			}
			return
		}
		if err != nil {
			t.Fatalf("AddTopic failed for valid input: %v", err)
		}

		if topic.ID == "" {
			t.Error("topic.ID should not be empty")
		}
		if topic.Name != strings.TrimSpace(name) {
			t.Errorf("Name = %q, want trimmed %q", topic.Name, strings.TrimSpace(name))
		}
		if len(topic.Reviews) != 9 {
			t.Errorf("len(Reviews) = %d, want 9", len(topic.Reviews))
		}
		if len(topic.Completed) != 0 {
			t.Errorf("new topic should have no completed reviews, got %v", topic.Completed)
		}
		if got := Classify(*topic, t0); got != StatusPending {
			t.Errorf("new topic status = %s, want pending", got)
		}
	})
}

// FuzzNormalize checks that any completion list is reduced to unique,
// in-range indices.
func FuzzNormalize(f *testing.F) {
	f.Add("", []byte{})
	f.Add("abc", []byte{0, 1, 2})
	f.Add("", []byte{8, 9, 10, 255})
	f.Add("dup", []byte{3, 3, 3, 4})

	f.Fuzz(func(t *testing.T, id string, raw []byte) {
		reviews := make([]time.Time, 9)
		for i := range reviews {
			reviews[i] = t0.AddDate(0, 0, i)
		}
		completed := make([]int, len(raw))
		for i, b := range raw {
			completed[i] = int(b) - 4
		}

		in := Topic{ID: id, Name: "n", Subject: "s", Reviews: reviews, Completed: completed}
		out := Normalize(in)

		if strings.TrimSpace(out.ID) == "" {
			t.Error("Normalize should assign an id")
		}
		if strings.TrimSpace(id) != "" && out.ID != id {
			t.Errorf("ID = %q, want the existing %q", out.ID, id)
		}
		seen := map[int]bool{}
		for _, c := range out.Completed {
			if c < 0 || c >= len(out.Reviews) {
				t.Errorf("completed index %d out of range", c)
			}
			if seen[c] {
				t.Errorf("completed index %d repeated", c)
			}
			seen[c] = true
		}
		if len(in.Completed) != len(raw) {
			t.Error("Normalize modified its input")
		}
	})
}
