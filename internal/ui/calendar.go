package ui

import (
	"fmt"
	"strings"
	"time"

	"revise/internal/calendar"
	"revise/internal/config"
	"revise/internal/history"
	"revise/internal/schedule"
	"revise/internal/storage"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

// CalendarPane renders a month grid with the reviews of the selected day
// listed underneath. Reviews can be toggled, shifted a day at a time, or
// picked up and dropped on another day.
type CalendarPane struct {
	store     *storage.Storage
	mover     *calendar.Mover
	styles    *Styles
	topics    []storage.Topic
	cursor    time.Time // selected day, local midnight
	entries   []calendar.DayEntry
	sel       int
	grabbed   *calendar.DayEntry
	weekStart time.Weekday
	showMarks bool
	focused   bool
	width     int
	height    int

	keys      CalendarKeyMap
	inputKeys InputKeyMap
}

// NewCalendarPane creates a calendar pane opened on today.
func NewCalendarPane(store *storage.Storage, mover *calendar.Mover, styles *Styles, keyCfg *config.KeysConfig) *CalendarPane {
	if keyCfg == nil {
		keyCfg = &config.KeysConfig{}
	}
	return &CalendarPane{
		store:     store,
		mover:     mover,
		styles:    styles,
		cursor:    schedule.StartOfDay(store.Now()),
		weekStart: time.Sunday,
		showMarks: true,
		keys:      NewCalendarKeyMap(keyCfg),
		inputKeys: NewInputKeyMap(keyCfg),
	}
}

// SetShowMarks controls the completion mark after review titles.
func (p *CalendarPane) SetShowMarks(show bool) { p.showMarks = show }

// SetTopics replaces the snapshot, keeping the selected review when it
// still falls on the selected day.
func (p *CalendarPane) SetTopics(topics []storage.Topic) {
	var keep *calendar.Ref
	if e, ok := p.Selected(); ok {
		keep = &e.Ref
	}
	p.topics = topics
	p.refresh(keep)
}

func (p *CalendarPane) refresh(keep *calendar.Ref) {
	p.entries = calendar.OnDay(p.topics, p.cursor)
	p.sel = min(p.sel, max(0, len(p.entries)-1))
	if keep != nil {
		for i, e := range p.entries {
			if e.Ref == *keep {
				p.sel = i
				break
			}
		}
	}
	if p.grabbed != nil && !p.refExists(p.grabbed.Ref) {
		p.grabbed = nil
	}
}

func (p *CalendarPane) refExists(ref calendar.Ref) bool {
	for _, t := range p.topics {
		if t.ID == ref.TopicID {
			return t.HasReview(ref.ReviewIndex)
		}
	}
	return false
}

// Follow moves the cursor to where a moved review landed and selects it.
func (p *CalendarPane) Follow(e history.Entry, toNew bool) {
	date := e.OldDate
	if toNew {
		date = e.NewDate
	}
	p.cursor = schedule.StartOfDay(date.In(p.cursor.Location()))
	p.refresh(&calendar.Ref{TopicID: e.TopicID, ReviewIndex: e.ReviewIndex})
}

// Selected returns the review under the list cursor.
func (p *CalendarPane) Selected() (calendar.DayEntry, bool) {
	if p.sel < 0 || p.sel >= len(p.entries) {
		return calendar.DayEntry{}, false
	}
	return p.entries[p.sel], true
}

// selectedRef is nil when the day has no reviews; moves then fail with
// calendar.ErrMissingMetadata.
func (p *CalendarPane) selectedRef() *calendar.Ref {
	if e, ok := p.Selected(); ok {
		ref := e.Ref
		return &ref
	}
	return nil
}

// Cursor returns the selected day.
func (p *CalendarPane) Cursor() time.Time { return p.cursor }

// IsGrabbing reports whether a review is picked up awaiting a drop.
func (p *CalendarPane) IsGrabbing() bool { return p.grabbed != nil }

// SetSize sets the pane dimensions.
func (p *CalendarPane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetFocused sets whether this pane is focused.
func (p *CalendarPane) SetFocused(focused bool) {
	p.focused = focused
}

func (p *CalendarPane) moveCursor(to time.Time) {
	p.cursor = schedule.StartOfDay(to)
	p.sel = 0
	p.refresh(nil)
}

// Update handles messages for the calendar pane.
func (p *CalendarPane) Update(msg tea.Msg) tea.Cmd {
	if !p.focused {
		return nil
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return p.handleMouse(msg)

	case tea.KeyMsg:
		if p.grabbed != nil {
			switch {
			case key.Matches(msg, p.keys.Drop):
				ref := p.grabbed.Ref
				p.grabbed = nil
				return moveToCmd(p.mover, &ref, p.cursor)
			case key.Matches(msg, p.inputKeys.Cancel):
				p.grabbed = nil
				return nil
			}
		}

		switch {
		case key.Matches(msg, p.keys.Left):
			p.moveCursor(p.cursor.AddDate(0, 0, -1))
		case key.Matches(msg, p.keys.Right):
			p.moveCursor(p.cursor.AddDate(0, 0, 1))
		case key.Matches(msg, p.keys.Up):
			p.moveCursor(p.cursor.AddDate(0, 0, -7))
		case key.Matches(msg, p.keys.Down):
			p.moveCursor(p.cursor.AddDate(0, 0, 7))
		case key.Matches(msg, p.keys.PrevMonth):
			p.moveCursor(p.cursor.AddDate(0, -1, 0))
		case key.Matches(msg, p.keys.NextMonth):
			p.moveCursor(p.cursor.AddDate(0, 1, 0))
		case key.Matches(msg, p.keys.Today):
			p.moveCursor(p.store.Now())

		case key.Matches(msg, p.keys.NextEntry):
			if len(p.entries) > 0 {
				p.sel = (p.sel + 1) % len(p.entries)
			}
		case key.Matches(msg, p.keys.PrevEntry):
			if len(p.entries) > 0 {
				p.sel = (p.sel - 1 + len(p.entries)) % len(p.entries)
			}

		case key.Matches(msg, p.keys.Toggle):
			if e, ok := p.Selected(); ok {
				return runCmd(p.store, storage.CompleteCmd{
					ID: e.TopicID, Review: e.ReviewIndex, Done: !e.Completed, Name: e.TopicName,
				})
			}

		case key.Matches(msg, p.keys.MoveEarlier):
			return moveByCmd(p.mover, p.selectedRef(), -1)
		case key.Matches(msg, p.keys.MoveLater):
			return moveByCmd(p.mover, p.selectedRef(), 1)

		case key.Matches(msg, p.keys.Grab):
			if e, ok := p.Selected(); ok {
				p.grabbed = &e
			}
		}
	}
	return nil
}

// Grid geometry in pane-local coordinates: border, title, month, weekday
// header, then one row per week; each cell is cellWidth columns wide after
// the border and padding.
const (
	gridTop   = 4
	gridLeft  = 2
	cellWidth = 4
)

// handleMouse selects the clicked day.
func (p *CalendarPane) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionPress {
		return nil
	}
	m := calendar.BuildMonth(p.topics, p.cursor, p.weekStart)
	row := msg.Y - gridTop
	col := (msg.X - gridLeft) / cellWidth
	if row < 0 || row >= len(m.Weeks) || msg.X < gridLeft || col > 6 {
		return nil
	}
	p.moveCursor(m.Weeks[row][col].Date)
	return nil
}

// View renders the calendar pane.
func (p *CalendarPane) View() string {
	var b strings.Builder
	now := p.store.Now()

	b.WriteString(p.styles.PaneTitleStyle.Render("CALENDAR"))
	b.WriteString("\n")
	b.WriteString(p.styles.StatValueStyle.Render(p.cursor.Format("January 2006")))
	b.WriteString("\n")

	for d := 0; d < 7; d++ {
		wd := time.Weekday((int(p.weekStart) + d) % 7)
		b.WriteString(p.styles.WeekdayStyle.Render(wd.String()[:2]))
	}
	b.WriteString("\n")

	m := calendar.BuildMonth(p.topics, p.cursor, p.weekStart)
	for _, week := range m.Weeks {
		for _, c := range week {
			b.WriteString(p.renderCell(c, now))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(p.renderDayList())

	content := b.String()
	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(content)
}

func (p *CalendarPane) renderCell(c calendar.Cell, now time.Time) string {
	mark := " "
	switch {
	case c.Pending > 0:
		mark = "•"
	case c.Done > 0:
		mark = "✓"
	}
	text := fmt.Sprintf("%2d%s", c.Date.Day(), mark)

	switch {
	case schedule.SameDay(c.Date, p.cursor):
		return p.styles.DayCursorStyle.Render(text)
	case !c.InMonth:
		return p.styles.DayOutsideStyle.Render(text)
	case schedule.SameDay(c.Date, now):
		return p.styles.DayTodayStyle.Render(text)
	case c.Pending > 0:
		return p.styles.DayPendingStyle.Render(text)
	case c.Done > 0:
		return p.styles.DayDoneStyle.Render(text)
	}
	return p.styles.DayStyle.Render(text)
}

func (p *CalendarPane) renderDayList() string {
	var b strings.Builder
	b.WriteString(p.styles.PaneTitleStyle.Render(p.cursor.Format("Mon Jan 2")))
	if p.grabbed != nil {
		b.WriteString(p.styles.StatLabelStyle.Render(fmt.Sprintf("  moving %q (%s), enter to drop", p.grabbed.TopicName, schedule.Label(p.grabbed.ReviewIndex))))
	}
	b.WriteString("\n")

	if len(p.entries) == 0 {
		b.WriteString(p.styles.FilterStyle.Render("  No reviews on this day."))
		b.WriteString("\n")
		return b.String()
	}

	avail := max(10, p.width-16)
	for i, e := range p.entries {
		title := e.TopicName + " (" + e.Subject + ")"
		if e.Completed && p.showMarks {
			title += calendar.DoneMark
		}
		title = runewidth.Truncate(title, avail, "..")
		label := schedule.Label(e.ReviewIndex)

		icon := p.styles.ReviewOpenIcon
		if e.Completed {
			icon = p.styles.ReviewDoneIcon
		}
		tag := ""
		if p.grabbed != nil && p.grabbed.Ref == e.Ref {
			tag = p.styles.ReviewGrabbedTag
		}

		if i == p.sel && p.focused {
			box := "[ ]"
			if e.Completed {
				box = "[✓]"
			}
			b.WriteString(p.styles.TopicSelectedStyle.Render(fmt.Sprintf(" %s %s  %s ", box, title, label)) + tag)
		} else {
			b.WriteString(fmt.Sprintf(" %s %s  %s%s", icon, title, p.styles.StatLabelStyle.Render(label), tag))
		}
		b.WriteString("\n")
	}
	return b.String()
}
