package ui

import (
	"testing"
	"time"

	"revise/internal/config"
	"revise/internal/storage"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// t0 is a Wednesday morning; tests run against this fixed clock.
var t0 = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

// setupTest prepares the test environment for deterministic rendering.
func setupTest(t *testing.T) {
	t.Helper()
	// Use ASCII profile to disable all color codes in output
	lipgloss.SetColorProfile(termenv.Ascii)
}

// createTestStorage creates a Storage instance with a temporary directory
// and a clock frozen at t0.
func createTestStorage(t *testing.T) *storage.Storage {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create test storage: %v", err)
	}
	store.SetNowFunc(func() time.Time { return t0 })
	return store
}

// createTestStyles creates a default Styles instance for testing.
func createTestStyles() *Styles {
	return NewStylesFromTheme(&config.ThemeConfig{})
}

// newTestApp builds an app sized for the wide layout with topics loaded.
func newTestApp(t *testing.T, store *storage.Storage, confirm bool) *App {
	t.Helper()
	app := NewApp(store, nil, createTestStyles(), &AppConfig{
		Keys:                  &config.KeysConfig{},
		ConfirmDeletions:      confirm,
		ShowCompletedMarks:    true,
		NarrowLayoutThreshold: 80,
	})
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	settle(t, app, loadTopicsCmd(store))
	return app
}

// keyMsg builds the key message bubbletea would send for s.
func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+z":
		return tea.KeyMsg{Type: tea.KeyCtrlZ}
	case "ctrl+y":
		return tea.KeyMsg{Type: tea.KeyCtrlY}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends each key to the app and settles the resulting commands.
func press(t *testing.T, app *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := app.Update(keyMsg(k))
		settle(t, app, cmd)
	}
}

// typeText sends s as a single runes message, the way a paste arrives.
func typeText(app *App, s string) {
	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// settle runs cmd and feeds app-level results back into the app until
// nothing is left. Timers, cursor blinks and batches are dropped so tests
// never wait on real time.
func settle(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 20; i++ {
		msg := cmd()
		switch msg.(type) {
		case topicsLoadedMsg, commandDoneMsg, movedMsg, historyStepMsg,
			importLoadedMsg, importAppliedMsg, exportedMsg:
			_, cmd = app.Update(msg)
		default:
			return
		}
	}
}
