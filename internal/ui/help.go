package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	name string
	rows [][2]string
}

var helpSections = []helpSection{
	{"Global", [][2]string{
		{"Tab", "Switch pane"},
		{"ctrl+z / u", "Undo calendar move"},
		{"ctrl+y / U", "Redo calendar move"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}},
	{"Topics", [][2]string{
		{"a / e / x", "Add, edit, delete"},
		{"d / Enter", "Mark today's review done"},
		{"s / f", "Cycle status / subject filter"},
		{"/", "Search name or subject"},
		{"i / o", "Import / export file"},
		{"j / k", "Navigate up/down"},
	}},
	{"Calendar", [][2]string{
		{"h j k l", "Move day cursor"},
		{"[ / ]", "Previous / next month"},
		{"t", "Jump to today"},
		{"n / p", "Select review on the day"},
		{"Space", "Toggle review done"},
		{"H / L", "Move review a day earlier/later"},
		{"m, Enter", "Pick up review, drop on day"},
	}},
	{"Input Mode", [][2]string{
		{"Enter / Tab", "Next field / save"},
		{"Esc", "Cancel"},
	}},
}

// HelpOverlay is the centered keyboard reference shown by "?".
type HelpOverlay struct {
	width, height int
	styles        *Styles
}

func NewHelpOverlay(styles *Styles) *HelpOverlay {
	return &HelpOverlay{styles: styles}
}

func (h *HelpOverlay) SetSize(width, height int) {
	h.width, h.height = width, height
}

// View renders the box centered in the terminal. The box narrows to fit
// small terminals but never below 20 columns.
func (h *HelpOverlay) View() string {
	boxWidth := 60
	if h.width > 0 {
		boxWidth = min(60, max(20, h.width-4))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(h.styles.ColorPrimary).
		Padding(1, 2).
		Width(boxWidth)
	keyCol := fg(h.styles.ColorWarning).Width(14)
	desc := fg(h.styles.ColorText)
	heading := fg(h.styles.ColorAccent).Bold(true)

	var b strings.Builder
	b.WriteString(fg(h.styles.ColorPrimary).Bold(true).Render("revise - Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range helpSections {
		b.WriteString("\n" + heading.Render(sec.name) + "\n")
		for _, r := range sec.rows {
			b.WriteString(keyCol.Render(r[0]) + desc.Render(r[1]) + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(fg(h.styles.ColorTextMuted).Italic(true).Render("Press ? or Esc to close"))

	return lipgloss.Place(h.width, h.height, lipgloss.Center, lipgloss.Center, box.Render(b.String()))
}
