package ui

import (
	"strings"
	"testing"
)

func TestHelpOverlay_ContentStructure(t *testing.T) {
	setupTest(t)

	help := NewHelpOverlay(createTestStyles())
	help.SetSize(100, 40)
	output := help.View()

	for _, section := range []string{"Keyboard Shortcuts", "Global", "Topics", "Calendar", "Input Mode"} {
		if !strings.Contains(output, section) {
			t.Errorf("help overlay should contain section: %s", section)
		}
	}
	for _, key := range []string{"Tab", "ctrl+z", "Space", "H / L", "Enter", "Esc"} {
		if !strings.Contains(output, key) {
			t.Errorf("help overlay should mention key: %s", key)
		}
	}
}

func TestHelpOverlay_FitsSmallTerminal(t *testing.T) {
	setupTest(t)

	help := NewHelpOverlay(createTestStyles())
	help.SetSize(50, 25)

	for _, line := range strings.Split(help.View(), "\n") {
		if w := len([]rune(line)); w > 50 {
			t.Fatalf("line wider than terminal (%d): %q", w, line)
		}
	}
}

func TestApp_HelpToggle(t *testing.T) {
	setupTest(t)
	app := newTestApp(t, createTestStorage(t), false)

	press(t, app, "?")
	if !app.showHelp {
		t.Fatal("? should open help")
	}
	if !strings.Contains(app.View(), "Keyboard Shortcuts") {
		t.Error("view should show help overlay content")
	}

	// Keys other than close are swallowed.
	press(t, app, "tab")
	if app.activePane != PaneTopics {
		t.Error("active pane should not change while help is shown")
	}

	press(t, app, "esc")
	if app.showHelp {
		t.Error("esc should close help")
	}
	if strings.Contains(app.View(), "Keyboard Shortcuts") {
		t.Error("view should not show help after closing")
	}
}

func TestApp_ContextualHelp(t *testing.T) {
	setupTest(t)
	app := newTestApp(t, createTestStorage(t), false)

	tests := []struct {
		name      string
		pane      PaneID
		expectKey string
	}{
		{"topics pane help", PaneTopics, "add"},
		{"calendar pane help", PaneCalendar, "pick up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.setActivePane(tt.pane)
			if bar := app.renderHelpBar(); !strings.Contains(bar, tt.expectKey) {
				t.Errorf("help bar for %v should contain %q, got %q", tt.pane, tt.expectKey, bar)
			}
		})
	}
}

func TestApp_InputModeHelp(t *testing.T) {
	setupTest(t)
	app := newTestApp(t, createTestStorage(t), false)

	press(t, app, "a")
	bar := app.renderHelpBar()
	if !strings.Contains(bar, "save") || !strings.Contains(bar, "cancel") {
		t.Errorf("help bar should show input mode help, got %q", bar)
	}
}
