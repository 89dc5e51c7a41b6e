// Package ui provides the terminal user interface for revise.
// This file contains tests for the main App model, including layout behavior
// and the message flow between panes and the store.
package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"revise/internal/config"

	tea "github.com/charmbracelet/bubbletea"
)

// TestApp_LayoutModeTransitions verifies layout mode changes based on width.
func TestApp_LayoutModeTransitions(t *testing.T) {
	store := createTestStorage(t)
	app := NewApp(store, nil, createTestStyles(), &AppConfig{
		Keys:                  &config.KeysConfig{},
		NarrowLayoutThreshold: 80,
	})

	tests := []struct {
		name         string
		width        int
		expectedMode LayoutMode
	}{
		{"Very narrow (40)", 40, LayoutNarrow},
		{"At threshold (79)", 79, LayoutNarrow},
		{"At threshold (80)", 80, LayoutWide},
		{"Very wide (200)", 200, LayoutWide},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app.Update(tea.WindowSizeMsg{Width: tc.width, Height: 30})
			if app.layoutMode != tc.expectedMode {
				t.Errorf("Width %d: expected layout mode %v, got %v",
					tc.width, tc.expectedMode, app.layoutMode)
			}
		})
	}
}

func TestApp_NarrowLayoutShowsOnlyActivePane(t *testing.T) {
	setupTest(t)
	app := newTestApp(t, createTestStorage(t), false)
	app.Update(tea.WindowSizeMsg{Width: 60, Height: 30})

	view := app.View()
	if !strings.Contains(view, "[Topics]") {
		t.Error("Expected [Topics] tab highlighted in narrow mode")
	}
	if strings.Contains(view, "CALENDAR") {
		t.Error("Calendar pane should be hidden while topics is active")
	}

	press(t, app, "tab")
	view = app.View()
	if !strings.Contains(view, "[Calendar]") || !strings.Contains(view, "CALENDAR") {
		t.Error("Expected the calendar pane after switching")
	}
}

func TestApp_WideLayoutShowsBothPanes(t *testing.T) {
	setupTest(t)
	app := newTestApp(t, createTestStorage(t), false)

	view := app.View()
	for _, want := range []string{"revise", "TOPICS", "CALENDAR", "January 2024"} {
		if !strings.Contains(view, want) {
			t.Errorf("wide view missing %q", want)
		}
	}
}

func TestApp_AddTopicThroughForm(t *testing.T) {
	setupTest(t)
	store := createTestStorage(t)
	app := newTestApp(t, store, false)

	press(t, app, "a")
	if !app.topicPane.IsEditing() {
		t.Fatal("add form should be open")
	}
	typeText(app, "Photosynthesis")
	press(t, app, "enter")
	typeText(app, "Biology")
	press(t, app, "enter")

	if app.topicPane.IsEditing() {
		t.Error("form should close after submit")
	}
	topics, err := store.Topics()
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 1 || topics[0].Name != "Photosynthesis" || topics[0].Subject != "Biology" {
		t.Fatalf("topics = %+v", topics)
	}
	if !strings.Contains(app.status, `Added "Photosynthesis"`) {
		t.Errorf("status = %q", app.status)
	}
	if !strings.Contains(app.View(), "Photosynthesis") {
		t.Error("new topic should be listed")
	}
}

func TestApp_AddTopicRequiresFields(t *testing.T) {
	setupTest(t)
	store := createTestStorage(t)
	app := newTestApp(t, store, false)

	press(t, app, "a")
	typeText(app, "Only a name")
	press(t, app, "enter", "enter")

	if !app.statusErr || !strings.Contains(app.status, "required") {
		t.Errorf("status = %q (err=%v), want required-field error", app.status, app.statusErr)
	}
	topics, _ := store.Topics()
	if len(topics) != 0 {
		t.Errorf("nothing should be stored, got %d topics", len(topics))
	}
}

func TestApp_DeleteAsksForConfirmation(t *testing.T) {
	setupTest(t)
	store := createTestStorage(t)
	if _, err := store.AddTopic("Kinematics", "Physics"); err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, store, true)

	press(t, app, "x")
	if app.confirmDel == nil {
		t.Fatal("expected confirmation overlay")
	}
	if view := app.View(); !strings.Contains(view, "Delete topic?") || !strings.Contains(view, "Kinematics") {
		t.Errorf("confirmation view = %q", view)
	}

	press(t, app, "n")
	if topics, _ := store.Topics(); len(topics) != 1 {
		t.Fatal("canceling must keep the topic")
	}

	press(t, app, "x", "y")
	if topics, _ := store.Topics(); len(topics) != 0 {
		t.Errorf("topic should be deleted, have %d", len(topics))
	}
}

func TestApp_DeleteWithoutConfirmation(t *testing.T) {
	store := createTestStorage(t)
	if _, err := store.AddTopic("Kinematics", "Physics"); err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, store, false)

	press(t, app, "x")
	if app.confirmDel != nil {
		t.Error("no overlay expected when confirmations are off")
	}
	if topics, _ := store.Topics(); len(topics) != 0 {
		t.Errorf("topic should be deleted, have %d", len(topics))
	}
}

func TestApp_MarkDoneToday(t *testing.T) {
	store := createTestStorage(t)
	topic, err := store.AddTopic("Kinematics", "Physics")
	if err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, store, false)

	press(t, app, "d")
	got, err := store.Topic(topic.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsCompleted(0) {
		t.Errorf("review 0 should be done, completed = %v", got.Completed)
	}

	// Nothing else is due today.
	press(t, app, "d")
	if !app.statusErr || !strings.Contains(app.status, "no review") {
		t.Errorf("status = %q", app.status)
	}
}

func TestApp_MoveAndUndoRedo(t *testing.T) {
	store := createTestStorage(t)
	topic, err := store.AddTopic("Kinematics", "Physics")
	if err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, store, false)
	original := topic.Reviews[0]

	press(t, app, "tab", "L")
	moved, _ := store.ReviewDate(topic.ID, 0)
	if want := original.AddDate(0, 0, 1); !moved.Equal(want) {
		t.Fatalf("after move: %v, want %v", moved, want)
	}
	if !app.calendarPane.Cursor().Equal(time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("cursor should follow the review, at %v", app.calendarPane.Cursor())
	}

	press(t, app, "u")
	back, _ := store.ReviewDate(topic.ID, 0)
	if !back.Equal(original) {
		t.Errorf("after undo: %v, want %v", back, original)
	}
	if !strings.HasPrefix(app.status, "Undid") {
		t.Errorf("status = %q", app.status)
	}

	press(t, app, "U")
	again, _ := store.ReviewDate(topic.ID, 0)
	if !again.Equal(moved) {
		t.Errorf("after redo: %v, want %v", again, moved)
	}

	press(t, app, "U")
	if app.status != "Nothing to redo" {
		t.Errorf("status = %q", app.status)
	}
}

func TestApp_MoveOnEmptyDayReportsMissingReview(t *testing.T) {
	store := createTestStorage(t)
	app := newTestApp(t, store, false)

	press(t, app, "tab", "H")
	if !app.statusErr || !strings.Contains(app.status, "No review selected") {
		t.Errorf("status = %q", app.status)
	}
}

func TestApp_UndoForgetsDeletedTopics(t *testing.T) {
	store := createTestStorage(t)
	topic, err := store.AddTopic("Kinematics", "Physics")
	if err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, store, false)

	press(t, app, "tab", "L", "tab", "x")
	if app.history.CanUndo() {
		t.Errorf("moves of deleted topic %s should be forgotten", topic.ID)
	}
	press(t, app, "u")
	if app.status != "Nothing to undo" {
		t.Errorf("status = %q", app.status)
	}
}

func TestApp_ImportMerge(t *testing.T) {
	setupTest(t)
	store := createTestStorage(t)
	if _, err := store.AddTopic("Kinematics", "Physics"); err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, store, false)

	path := filepath.Join(t.TempDir(), "topics.csv")
	data := "name,subject\nOsmosis,Biology\nKinematics,Physics\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	press(t, app, "i")
	typeText(app, path)
	press(t, app, "enter")
	if app.pendingLoad == nil {
		t.Fatalf("expected import choice, status = %q", app.status)
	}
	if view := app.View(); !strings.Contains(view, "2 topics read") {
		t.Errorf("import view = %q", view)
	}

	press(t, app, "m")
	topics, _ := store.Topics()
	if len(topics) != 2 {
		t.Fatalf("merge should add one topic, have %d", len(topics))
	}
	if app.status != "Imported 1 topics, skipped 1" {
		t.Errorf("status = %q", app.status)
	}
}

func TestApp_ImportReplaceWithEmptyFile(t *testing.T) {
	setupTest(t)
	store := createTestStorage(t)
	for _, name := range []string{"Kinematics", "Optics"} {
		if _, err := store.AddTopic(name, "Physics"); err != nil {
			t.Fatal(err)
		}
	}
	app := newTestApp(t, store, false)

	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("[]"), 0600); err != nil {
		t.Fatal(err)
	}

	press(t, app, "i")
	typeText(app, path)
	press(t, app, "enter")
	if app.pendingLoad == nil {
		t.Fatalf("an empty file should still offer the import choice, status = %q", app.status)
	}
	if view := app.View(); !strings.Contains(view, "0 topics read") {
		t.Errorf("import view = %q", view)
	}

	press(t, app, "r")
	topics, err := store.Topics()
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 0 {
		t.Errorf("replace with an empty file should clear the list, have %d topics", len(topics))
	}
	if app.statusErr {
		t.Errorf("unexpected error status %q", app.status)
	}
}

func TestApp_ImportMissingFile(t *testing.T) {
	app := newTestApp(t, createTestStorage(t), false)

	press(t, app, "i")
	typeText(app, filepath.Join(t.TempDir(), "nope.json"))
	press(t, app, "enter")

	if app.pendingLoad != nil || !app.statusErr {
		t.Errorf("missing file should fail, status = %q", app.status)
	}
}

func TestApp_Export(t *testing.T) {
	store := createTestStorage(t)
	if _, err := store.AddTopic("Kinematics", "Physics"); err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, store, false)
	path := filepath.Join(t.TempDir(), "out.json")

	press(t, app, "o")
	// Replace the prefilled default path.
	app.topicPane.form.inputs[0].SetValue(path)
	press(t, app, "enter")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("export not written: %v (status %q)", err, app.status)
	}
	if !strings.Contains(string(data), `"Kinematics"`) {
		t.Errorf("export = %s", data)
	}
	if !strings.Contains(app.status, "Exported 1 topics") {
		t.Errorf("status = %q", app.status)
	}
}

func TestApp_TitleBarCounts(t *testing.T) {
	setupTest(t)
	store := createTestStorage(t)
	for _, name := range []string{"Kinematics", "Optics"} {
		if _, err := store.AddTopic(name, "Physics"); err != nil {
			t.Fatal(err)
		}
	}
	app := newTestApp(t, store, false)

	bar := app.renderTitleBar()
	if !strings.Contains(bar, "Due 2") || !strings.Contains(bar, "Topics 2") {
		t.Errorf("title bar = %q", bar)
	}
}

func TestApp_QuitShowsSummary(t *testing.T) {
	store := createTestStorage(t)
	if _, err := store.AddTopic("Kinematics", "Physics"); err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, store, false)

	_, cmd := app.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("quit should return tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if !strings.Contains(app.View(), "1 due today") {
		t.Errorf("goodbye = %q", app.View())
	}
}

func TestApp_StatusExpires(t *testing.T) {
	app := newTestApp(t, createTestStorage(t), false)
	app.SetStatus("hello", false)
	app.statusUntil = time.Now().Add(-time.Second)

	app.Update(tickMsg(time.Now()))
	if app.status != "" {
		t.Errorf("status should be cleared, got %q", app.status)
	}
}

func TestApp_ClickFocusesPane(t *testing.T) {
	app := newTestApp(t, createTestStorage(t), false)

	app.Update(tea.MouseMsg{X: app.calendarPaneStart + 3, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if app.activePane != PaneCalendar {
		t.Error("click on the calendar should focus it")
	}
	app.Update(tea.MouseMsg{X: 2, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if app.activePane != PaneTopics {
		t.Error("click on the topic list should focus it")
	}
}
