package ui

import (
	"strings"

	"revise/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Default palette. Primary, Success, Muted, Danger and Warning can be
// overridden from the theme section of the config file.
const (
	defaultPrimary = "#7C3AED"
	defaultSuccess = "#10B981"
	defaultMuted   = "#6B7280"
	defaultDanger  = "#EF4444"
	defaultWarning = "#F59E0B"

	accentBlue = "#3B82F6"
	surface    = "#374151"
	textBright = "#F9FAFB"
	textDim    = "#9CA3AF"
)

// Styles is the resolved palette plus every component style the panes use.
// Review states map onto the palette as: due today = Warning, overdue =
// Danger, done = Success.
type Styles struct {
	ColorPrimary   lipgloss.Color
	ColorSuccess   lipgloss.Color
	ColorMuted     lipgloss.Color
	ColorDanger    lipgloss.Color
	ColorWarning   lipgloss.Color
	ColorAccent    lipgloss.Color
	ColorBgLight   lipgloss.Color
	ColorText      lipgloss.Color
	ColorTextMuted lipgloss.Color

	// Frame
	TitleStyle, DateStyle                       lipgloss.Style
	PaneStyle, PaneFocusedStyle, PaneTitleStyle lipgloss.Style
	HelpStyle, HelpKeyStyle                     lipgloss.Style
	StatusStyle, ErrorStyle, InputPromptStyle   lipgloss.Style
	StatLabelStyle, StatValueStyle, FilterStyle lipgloss.Style

	// Topic rows
	TopicSelectedStyle, TopicNameStyle, SubjectStyle      lipgloss.Style
	StatusPendingStyle, StatusStillStyle, StatusDoneStyle lipgloss.Style

	// Calendar grid and day list
	WeekdayStyle, DayStyle, DayOutsideStyle, DayTodayStyle lipgloss.Style
	DayCursorStyle, DayPendingStyle, DayDoneStyle          lipgloss.Style
	ReviewDoneIcon, ReviewOpenIcon, ReviewGrabbedTag       string
}

// NewStyles builds the styles for cfg's theme.
func NewStyles(cfg *config.Config) *Styles {
	return NewStylesFromTheme(&cfg.Theme)
}

// NewStylesFromTheme resolves theme against the default palette and builds
// the component styles. Empty theme colors fall back to the defaults.
func NewStylesFromTheme(theme *config.ThemeConfig) *Styles {
	s := &Styles{
		ColorPrimary:   pick(theme.Primary, defaultPrimary),
		ColorSuccess:   pick(theme.Accent, defaultSuccess),
		ColorMuted:     pick(theme.Muted, defaultMuted),
		ColorDanger:    pick(theme.Danger, defaultDanger),
		ColorWarning:   pick(theme.Warning, defaultWarning),
		ColorAccent:    lipgloss.Color(accentBlue),
		ColorBgLight:   lipgloss.Color(surface),
		ColorText:      lipgloss.Color(textBright),
		ColorTextMuted: lipgloss.Color(textDim),
	}
	s.buildFrame()
	s.buildTopicRows()
	s.buildCalendar()
	return s
}

func pick(hex, fallback string) lipgloss.Color {
	if hex == "" {
		hex = fallback
	}
	return lipgloss.Color(hex)
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func pane(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func (s *Styles) buildFrame() {
	s.TitleStyle = fg(s.ColorText).Background(s.ColorPrimary).Bold(true).Padding(0, 1)
	s.DateStyle = fg(s.ColorTextMuted)

	s.PaneStyle = pane(s.ColorMuted)
	s.PaneFocusedStyle = pane(s.ColorPrimary)
	s.PaneTitleStyle = fg(s.ColorPrimary).Bold(true)

	s.HelpStyle = fg(s.ColorTextMuted)
	s.HelpKeyStyle = fg(s.ColorAccent).Bold(true)

	s.StatusStyle = fg(s.ColorSuccess).Italic(true)
	s.ErrorStyle = fg(s.ColorDanger).Bold(true)
	s.InputPromptStyle = fg(s.ColorPrimary).Bold(true)

	s.StatLabelStyle = fg(s.ColorTextMuted)
	s.StatValueStyle = fg(s.ColorText).Bold(true)
	s.FilterStyle = fg(s.ColorTextMuted).Italic(true)
}

func (s *Styles) buildTopicRows() {
	s.TopicSelectedStyle = fg(s.ColorText).Background(s.ColorBgLight).Bold(true)
	s.TopicNameStyle = fg(s.ColorText)
	s.SubjectStyle = fg(s.ColorAccent)

	s.StatusPendingStyle = fg(s.ColorWarning).Bold(true)
	s.StatusStillStyle = fg(s.ColorDanger).Bold(true)
	s.StatusDoneStyle = fg(s.ColorSuccess)
}

func (s *Styles) buildCalendar() {
	cell := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Right)

	s.WeekdayStyle = cell.Foreground(s.ColorTextMuted)
	s.DayStyle = cell.Foreground(s.ColorText)
	s.DayOutsideStyle = s.DayStyle.Foreground(s.ColorMuted)
	s.DayTodayStyle = s.DayStyle.Underline(true).Bold(true)
	s.DayCursorStyle = s.DayStyle.Background(s.ColorPrimary).Bold(true)
	s.DayPendingStyle = s.DayStyle.Foreground(s.ColorDanger)
	s.DayDoneStyle = s.DayStyle.Foreground(s.ColorSuccess)

	s.ReviewDoneIcon = fg(s.ColorSuccess).Render("[✓]")
	s.ReviewOpenIcon = fg(s.ColorDanger).Render("[ ]")
	s.ReviewGrabbedTag = fg(s.ColorWarning).Bold(true).Render(" (moving)")
}

// RenderHelp renders key/description pairs as "[key] desc" separated by two
// spaces. A trailing key without a description is dropped.
func (s *Styles) RenderHelp(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(s.HelpKeyStyle.Render("[" + pairs[i] + "]"))
		b.WriteByte(' ')
		b.WriteString(s.HelpStyle.Render(pairs[i+1]))
	}
	return b.String()
}
