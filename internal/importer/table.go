package importer

import (
	"fmt"
	"strings"
	"time"

	"revise/internal/schedule"
	"revise/internal/storage"
)

// Column names accepted in CSV and spreadsheet headers (case-insensitive).
var columnAliases = map[string]string{
	"NAME":    "NAME",
	"TOPIC":   "NAME",
	"TITLE":   "NAME",
	"SUBJECT": "SUBJECT",
	"NOTES":   "NOTES",
	"NOTE":    "NOTES",
	"CREATED": "CREATED",
	"DATE":    "CREATED",
}

var requiredCols = []string{"NAME", "SUBJECT"}

// tableParser converts header + rows into topics. Each row gets a fresh
// schedule starting at its CREATED date, or at now when absent.
type tableParser struct {
	now func() time.Time
}

func (p tableParser) parse(header []string, rows [][]string) ([]storage.Topic, []string, error) {
	colIndex := make(map[string]int)
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, "\ufeff") // UTF-8 BOM
		}
		if canonical, ok := columnAliases[strings.ToUpper(strings.TrimSpace(col))]; ok {
			if _, seen := colIndex[canonical]; !seen {
				colIndex[canonical] = i
			}
		}
	}
	for _, col := range requiredCols {
		if _, ok := colIndex[col]; !ok {
			return nil, nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	cell := func(row []string, col string) string {
		idx, ok := colIndex[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	now := time.Now()
	if p.now != nil {
		now = p.now()
	}
	var topics []storage.Topic
	var notes []string
	for i, row := range rows {
		line := i + 2 // 1-based, after the header
		name, subject := cell(row, "NAME"), cell(row, "SUBJECT")
		if name == "" && subject == "" {
			continue
		}
		if name == "" || subject == "" {
			notes = append(notes, fmt.Sprintf("row %d: name and subject are required", line))
			continue
		}

		created := now
		if raw := cell(row, "CREATED"); raw != "" {
			d, err := parseDate(raw, now.Location())
			if err != nil {
				notes = append(notes, fmt.Sprintf("row %d: %v; using today", line, err))
			} else {
				created = time.Date(d.Year(), d.Month(), d.Day(), now.Hour(), now.Minute(), now.Second(), 0, now.Location())
			}
		}

		topics = append(topics, storage.Topic{
			Name:      name,
			Subject:   subject,
			Notes:     cell(row, "NOTES"),
			Reviews:   schedule.Generate(created),
			Completed: []int{},
			CreatedAt: created,
		})
	}
	return topics, notes, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"2006/01/02",
		"Jan 2 2006",
		"Jan 2, 2006",
		"2 Jan 2006",
		"January 2, 2006",
		"01-02-06", // excelize default date display
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
