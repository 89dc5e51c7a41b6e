package reports

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"revise/internal/storage"
)

// Wednesday.
var t0 = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// Created three days ago: day 0 done, day 1 overdue.
	s.SetNowFunc(func() time.Time { return t0.AddDate(0, 0, -3) })
	old, err := s.AddTopic("Photosynthesis", "Biology")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.MarkDone(old.ID, 0); err != nil {
		t.Fatal(err)
	}

	// Created today: day 0 due, day 1 tomorrow.
	s.SetNowFunc(func() time.Time { return t0 })
	fresh, err := s.AddTopic("Kinematics", "Physics")
	if err != nil {
		t.Fatal(err)
	}
	_ = fresh
	return s
}

func TestGenerateDaily(t *testing.T) {
	g := NewGenerator(setupStore(t))

	r, err := g.GenerateDaily(t0)
	if err != nil {
		t.Fatalf("GenerateDaily() error = %v", err)
	}
	if len(r.Due) != 1 || r.Due[0].Name != "Kinematics" || r.Due[0].Review != 1 || r.Due[0].Label != "day 0" {
		t.Errorf("Due = %+v", r.Due)
	}
	if len(r.Overdue) != 1 || r.Overdue[0].Name != "Photosynthesis" || r.Overdue[0].Date != "2024-01-08" {
		t.Errorf("Overdue = %+v", r.Overdue)
	}
	if len(r.Done) != 0 {
		t.Errorf("Done = %+v", r.Done)
	}
	if r.TopicCount != 2 {
		t.Errorf("TopicCount = %d", r.TopicCount)
	}
	if len(r.BySubject) != 2 || r.BySubject[0].Subject != "Biology" {
		t.Errorf("BySubject = %+v", r.BySubject)
	}

	earlier, err := g.GenerateDaily(t0.AddDate(0, 0, -3))
	if err != nil {
		t.Fatal(err)
	}
	if len(earlier.Done) != 1 || len(earlier.Due) != 0 {
		t.Errorf("report for creation day = due %+v done %+v", earlier.Due, earlier.Done)
	}
}

func TestGenerateWeekly(t *testing.T) {
	g := NewGenerator(setupStore(t))

	r, err := g.GenerateWeekly(t0)
	if err != nil {
		t.Fatalf("GenerateWeekly() error = %v", err)
	}
	if r.StartDate.Weekday() != time.Sunday || r.StartDate.Day() != 7 {
		t.Errorf("StartDate = %v", r.StartDate)
	}
	if len(r.Days) != 7 || r.Days[0].DayOfWeek != "Sunday" {
		t.Fatalf("Days = %+v", r.Days)
	}

	// Photosynthesis: day 0 (Jan 7, done), day 1 (Jan 8). Kinematics: Jan 10, Jan 11.
	if r.TotalDone != 1 || r.TotalDue != 3 {
		t.Errorf("TotalDone = %d, TotalDue = %d", r.TotalDone, r.TotalDue)
	}
	if r.Days[0].DoneCount != 1 || len(r.Days[1].Due) != 1 || len(r.Days[3].Due) != 1 || len(r.Days[4].Due) != 1 {
		t.Errorf("day breakdown = %+v", r.Days)
	}
	if r.OverdueAtEnd != 0 {
		t.Errorf("OverdueAtEnd = %d", r.OverdueAtEnd)
	}
}

func TestFormatMarkdown(t *testing.T) {
	g := NewGenerator(setupStore(t))
	daily, _ := g.GenerateDaily(t0)
	md := FormatDailyMarkdown(daily)
	for _, want := range []string{
		"# Reviews for Wednesday, January 10, 2024",
		"1 due · 1 overdue · 0 done · 2 topics",
		"## Due today",
		"- Kinematics (Physics), day 0",
		"scheduled 2024-01-08",
		"| Biology | 0 | 1 | 0 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("daily markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Done") {
		t.Error("empty sections should be omitted")
	}

	weekly, _ := g.GenerateWeekly(t0)
	wmd := FormatWeeklyMarkdown(weekly)
	for _, want := range []string{"# Week of January 7, 2024", "## Saturday 2024-01-13", "_Nothing scheduled._", "- 1 already done"} {
		if !strings.Contains(wmd, want) {
			t.Errorf("weekly markdown missing %q:\n%s", want, wmd)
		}
	}
}

func TestFormatJSON(t *testing.T) {
	g := NewGenerator(setupStore(t))
	daily, _ := g.GenerateDaily(t0)
	data, err := FormatDailyJSON(daily)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := decoded["by_subject"]; !ok {
		t.Errorf("missing by_subject: %s", data)
	}

	weekly, _ := g.GenerateWeekly(t0)
	if _, err := FormatWeeklyJSON(weekly); err != nil {
		t.Fatal(err)
	}
}
