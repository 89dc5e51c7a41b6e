package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"revise/internal/storage"
)

// JSONParser reads the export format: a JSON array of topic objects. Elements
// are trusted as topic-shaped; only the top-level shape is validated.
type JSONParser struct{}

func (p *JSONParser) Name() string { return "json" }

func (p *JSONParser) Parse(r io.Reader) ([]storage.Topic, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read import: %w", err)
	}

	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil, ErrNotArray
	}

	var records []topicRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, nil, fmt.Errorf("parse import: %w", err)
	}
	topics := make([]storage.Topic, 0, len(records))
	for _, rec := range records {
		topics = append(topics, rec.topic())
	}
	return topics, nil, nil
}

// topicRecord mirrors storage.Topic on the wire but accepts looser dates.
type topicRecord struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Subject   string      `json:"subject"`
	Notes     string      `json:"notes"`
	Reviews   []looseTime `json:"reviews"`
	Completed []int       `json:"completed"`
	CreatedAt looseTime   `json:"created_at"`
}

func (rec topicRecord) topic() storage.Topic {
	t := storage.Topic{
		ID:        rec.ID,
		Name:      rec.Name,
		Subject:   rec.Subject,
		Notes:     rec.Notes,
		Completed: rec.Completed,
		CreatedAt: time.Time(rec.CreatedAt),
	}
	if rec.Reviews != nil {
		t.Reviews = make([]time.Time, len(rec.Reviews))
		for i, r := range rec.Reviews {
			t.Reviews[i] = time.Time(r)
		}
	}
	return t
}

// looseTime decodes an RFC 3339 timestamp or a bare YYYY-MM-DD date, the
// latter at local midnight. null leaves the zero time.
type looseTime time.Time

func (lt *looseTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %s", b)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*lt = looseTime(t)
		return nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return fmt.Errorf("invalid date %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	*lt = looseTime(t)
	return nil
}
