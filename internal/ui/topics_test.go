package ui

import (
	"strings"
	"testing"
	"time"

	"revise/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
)

// newTopicFixture stores three topics: Osmosis is overdue since Jan 8,
// the other two were created today.
func newTopicFixture(t *testing.T) (*TopicPane, *storage.Storage) {
	t.Helper()
	store := createTestStorage(t)

	store.SetNowFunc(func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) })
	if _, err := store.AddTopic("Osmosis", "Biology"); err != nil {
		t.Fatal(err)
	}
	store.SetNowFunc(func() time.Time { return t0 })
	for _, tc := range [][2]string{{"Kinematics", "Physics"}, {"Photosynthesis", "Biology"}} {
		if _, err := store.AddTopic(tc[0], tc[1]); err != nil {
			t.Fatal(err)
		}
	}

	p := NewTopicPane(store, createTestStyles(), nil)
	p.SetSize(70, 20)
	reloadPane(t, p, store)
	return p, store
}

func reloadPane(t *testing.T, p *TopicPane, store *storage.Storage) {
	t.Helper()
	topics, err := store.Topics()
	if err != nil {
		t.Fatal(err)
	}
	subjects, err := store.Subjects()
	if err != nil {
		t.Fatal(err)
	}
	p.SetTopics(topics, subjects)
}

func names(p *TopicPane) []string {
	var out []string
	for _, v := range p.views {
		out = append(out, v.Topic.Name)
	}
	return out
}

func TestTopicPane_StatusFilterCycle(t *testing.T) {
	p, _ := newTopicFixture(t)

	tests := []struct {
		want   storage.Status
		topics string
	}{
		{storage.StatusPending, "Kinematics,Photosynthesis"},
		{storage.StatusStill, "Osmosis"},
		{storage.StatusDone, ""},
		{storage.StatusAll, "Osmosis,Kinematics,Photosynthesis"},
	}
	for _, tt := range tests {
		p.Update(keyMsg("s"))
		if p.Filter().Status != tt.want {
			t.Fatalf("status = %q, want %q", p.Filter().Status, tt.want)
		}
		if got := strings.Join(names(p), ","); got != tt.topics {
			t.Errorf("%s: topics = %q, want %q", tt.want, got, tt.topics)
		}
	}
}

func TestTopicPane_SubjectFilterCycle(t *testing.T) {
	p, _ := newTopicFixture(t)

	want := []string{"Biology", "Physics", "all"}
	for _, subject := range want {
		p.Update(keyMsg("f"))
		if p.Filter().Subject != subject {
			t.Fatalf("subject = %q, want %q", p.Filter().Subject, subject)
		}
	}

	p.Update(keyMsg("f"))
	if got := strings.Join(names(p), ","); got != "Osmosis,Photosynthesis" {
		t.Errorf("Biology topics = %q", got)
	}
}

func TestTopicPane_SubjectFilterResetsWhenSubjectDisappears(t *testing.T) {
	p, store := newTopicFixture(t)
	p.Update(keyMsg("f"))
	p.Update(keyMsg("f")) // Physics

	kin, err := store.Resolve("2")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteTopic(kin.ID); err != nil {
		t.Fatal(err)
	}
	reloadPane(t, p, store)

	if p.Filter().Subject != "all" {
		t.Errorf("subject = %q, want all", p.Filter().Subject)
	}
	if len(p.views) != 2 {
		t.Errorf("views = %v", names(p))
	}
}

func TestTopicPane_SearchFiltersLive(t *testing.T) {
	p, _ := newTopicFixture(t)

	p.Update(keyMsg("/"))
	if !p.IsEditing() {
		t.Fatal("search should own the keyboard")
	}
	p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("PHYS")})
	if got := strings.Join(names(p), ","); got != "Kinematics" {
		t.Errorf("search results = %q", got)
	}

	p.Update(keyMsg("enter"))
	if p.IsEditing() || p.Filter().Search != "PHYS" {
		t.Errorf("enter should keep the search, filter = %+v", p.Filter())
	}

	p.Update(keyMsg("/"))
	p.Update(keyMsg("esc"))
	if p.Filter().Search != "" || len(p.views) != 3 {
		t.Errorf("esc should clear the search, filter = %+v", p.Filter())
	}
}

func TestTopicPane_SelectionSurvivesReload(t *testing.T) {
	p, store := newTopicFixture(t)
	p.Update(keyMsg("j"))
	p.Update(keyMsg("j"))
	if sel, _ := p.Selected(); sel.Name != "Photosynthesis" {
		t.Fatalf("selected = %q", sel.Name)
	}

	// A topic added at the end does not move the selection.
	if _, err := store.AddTopic("Acids", "Chemistry"); err != nil {
		t.Fatal(err)
	}
	reloadPane(t, p, store)
	if sel, _ := p.Selected(); sel.Name != "Photosynthesis" {
		t.Errorf("selected after reload = %q", sel.Name)
	}

	p.Update(keyMsg("k"))
	p.Update(keyMsg("k"))
	p.Update(keyMsg("k"))
	if p.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", p.cursor)
	}
}

func TestTopicPane_EditFormPrefilled(t *testing.T) {
	p, _ := newTopicFixture(t)

	p.Update(keyMsg("e"))
	if p.form == nil {
		t.Fatal("edit form should open")
	}
	got := p.form.values()
	if got[0] != "Osmosis" || got[1] != "Biology" || got[2] != "" {
		t.Errorf("form values = %q", got)
	}

	p.Update(tea.KeyMsg{Type: tea.KeyTab})
	p.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if p.form.focus != 0 {
		t.Errorf("focus = %d after tab, shift+tab", p.form.focus)
	}

	p.Update(keyMsg("esc"))
	if p.IsEditing() {
		t.Error("esc should close the form")
	}
}

func TestForm_VerbatimFieldKeepsWhitespace(t *testing.T) {
	f := newForm("Edit topic", []field{
		{label: "Name", value: "  Osmosis  "},
		{label: "Notes", value: "  water moves in ", verbatim: true},
	}, nil)

	got := f.values()
	if got[0] != "Osmosis" {
		t.Errorf("name = %q, want trimmed", got[0])
	}
	if got[1] != "  water moves in " {
		t.Errorf("notes = %q, want verbatim", got[1])
	}
}

func TestTopicPane_ViewMessages(t *testing.T) {
	setupTest(t)
	store := createTestStorage(t)
	p := NewTopicPane(store, createTestStyles(), nil)
	p.SetSize(70, 20)
	reloadPane(t, p, store)

	if view := p.View(); !strings.Contains(view, "No topics yet") {
		t.Errorf("empty view = %q", view)
	}

	p, _ = newTopicFixture(t)
	view := p.View()
	for _, want := range []string{"TOPICS", "status: all · subject: all", "Osmosis", "still", "pending", "today", "3 of 3 topics"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	p.Update(keyMsg("s"))
	p.Update(keyMsg("s"))
	p.Update(keyMsg("s")) // done
	if view := p.View(); !strings.Contains(view, "No topics match the filter.") {
		t.Errorf("filtered view = %q", view)
	}
}

func TestTopicPane_MouseSelectsRow(t *testing.T) {
	p, _ := newTopicFixture(t)

	p.Update(tea.MouseMsg{X: 5, Y: 6, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if sel, _ := p.Selected(); sel.Name != "Photosynthesis" {
		t.Errorf("clicked row selected %q", sel.Name)
	}

	p.Update(tea.MouseMsg{Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress})
	if sel, _ := p.Selected(); sel.Name != "Kinematics" {
		t.Errorf("wheel up selected %q", sel.Name)
	}
}

func TestNextReviewLabel(t *testing.T) {
	created := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
	topic := storage.Topic{Name: "Osmosis", Subject: "Biology"}
	for _, off := range []int{0, 1, 7, 16} {
		topic.Reviews = append(topic.Reviews, created.AddDate(0, 0, off))
	}

	tests := []struct {
		name      string
		completed []int
		now       time.Time
		want      string
	}{
		{"skips past reviews", nil, created.AddDate(0, 0, 2), "Jan 10"},
		{"due today", nil, created.AddDate(0, 0, 7), "today"},
		{"completed today", []int{2}, created.AddDate(0, 0, 7), "Jan 19"},
		{"all done", nil, created.AddDate(0, 0, 30), "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := topic
			tp.Completed = tt.completed
			if got := nextReviewLabel(tp, tt.now); got != tt.want {
				t.Errorf("nextReviewLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}
