package ui

import (
	"strings"
	"testing"

	"revise/internal/config"

	"github.com/charmbracelet/lipgloss"
)

func TestNewStyles_UsesThemeColors(t *testing.T) {
	theme := &config.ThemeConfig{
		Primary: "#FF0000",
		Accent:  "#00FF00",
		Muted:   "#0000FF",
		Danger:  "#111111",
		Warning: "#222222",
	}

	styles := NewStylesFromTheme(theme)

	tests := []struct {
		name string
		got  lipgloss.Color
		want lipgloss.Color
	}{
		{"ColorPrimary", styles.ColorPrimary, "#FF0000"},
		{"ColorSuccess", styles.ColorSuccess, "#00FF00"},
		{"ColorMuted", styles.ColorMuted, "#0000FF"},
		{"ColorDanger", styles.ColorDanger, "#111111"},
		{"ColorWarning", styles.ColorWarning, "#222222"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestNewStyles_UsesDefaults(t *testing.T) {
	styles := NewStylesFromTheme(&config.ThemeConfig{})

	if styles.ColorPrimary != lipgloss.Color("#7C3AED") {
		t.Errorf("ColorPrimary = %v, want default #7C3AED", styles.ColorPrimary)
	}
	if styles.ColorSuccess != lipgloss.Color("#10B981") {
		t.Errorf("ColorSuccess = %v, want default #10B981", styles.ColorSuccess)
	}
	if styles.ColorAccent != lipgloss.Color("#3B82F6") {
		t.Errorf("ColorAccent = %v, want fixed #3B82F6", styles.ColorAccent)
	}
}

func TestNewStyles_ComponentStylesInitialized(t *testing.T) {
	styles := NewStylesFromTheme(&config.ThemeConfig{Primary: "#FF0000", Danger: "#EE0000"})

	if styles.TitleStyle.GetBackground() != lipgloss.Color("#FF0000") {
		t.Error("TitleStyle should use Primary color for background")
	}
	if styles.PaneFocusedStyle.GetBorderTopForeground() != lipgloss.Color("#FF0000") {
		t.Error("PaneFocusedStyle should use Primary color for border")
	}
	if styles.DayCursorStyle.GetBackground() != lipgloss.Color("#FF0000") {
		t.Error("DayCursorStyle should use Primary color for background")
	}
	if styles.DayPendingStyle.GetForeground() != lipgloss.Color("#EE0000") {
		t.Error("DayPendingStyle should use Danger color")
	}
}

func TestNewStyles_FromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Theme.Primary = "#123456"

	styles := NewStyles(cfg)

	if styles.ColorPrimary != lipgloss.Color("#123456") {
		t.Errorf("ColorPrimary = %v, want #123456", styles.ColorPrimary)
	}
}

func TestRenderHelp(t *testing.T) {
	setupTest(t)
	styles := createTestStyles()

	output := styles.RenderHelp(
		"a", "add",
		"d", "done",
		"x", // dangling key without description is ignored
	)

	if output != "[a] add  [d] done" {
		t.Errorf("RenderHelp() = %q", output)
	}
	if strings.Contains(output, "[x]") {
		t.Error("dangling key should be dropped")
	}
}
