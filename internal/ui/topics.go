package ui

import (
	"fmt"
	"strings"
	"time"

	"revise/internal/config"
	"revise/internal/schedule"
	"revise/internal/storage"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// statusCycle is the order the status filter steps through.
var statusCycle = []storage.Status{storage.StatusAll, storage.StatusPending, storage.StatusStill, storage.StatusDone}

// TopicPane shows the filtered topic list and owns the add/edit/search
// inputs.
type TopicPane struct {
	store    *storage.Storage
	styles   *Styles
	topics   []storage.Topic
	views    []storage.TopicView
	subjects []string
	filter   storage.Filter
	cursor   int
	focused  bool
	width    int
	height   int

	form       *form
	searching  bool
	search     textinput.Model
	exportPath string

	// Key bindings
	keys      TopicKeyMap
	inputKeys InputKeyMap
}

// NewTopicPane creates a topic pane with custom key bindings.
func NewTopicPane(store *storage.Storage, styles *Styles, keyCfg *config.KeysConfig) *TopicPane {
	if keyCfg == nil {
		keyCfg = &config.KeysConfig{}
	}
	si := textinput.New()
	si.Placeholder = "name or subject"
	si.CharLimit = 100
	si.Width = 30

	return &TopicPane{
		store:      store,
		styles:     styles,
		filter:     storage.Filter{Status: storage.StatusAll, Subject: "all"},
		focused:    true,
		search:     si,
		exportPath: storage.ExportFile,
		keys:       NewTopicKeyMap(keyCfg),
		inputKeys:  NewInputKeyMap(keyCfg),
	}
}

// SetExportPath sets the path suggested by the export form.
func (p *TopicPane) SetExportPath(path string) {
	if path != "" {
		p.exportPath = path
	}
}

// SetTopics replaces the snapshot and reapplies the filter. A subject
// filter naming a subject that no longer exists falls back to all.
func (p *TopicPane) SetTopics(topics []storage.Topic, subjects []string) {
	p.topics = topics
	p.subjects = subjects
	if p.filter.Subject != "all" && !contains(subjects, p.filter.Subject) {
		p.filter.Subject = "all"
	}
	p.refilter()
}

func (p *TopicPane) refilter() {
	var selected string
	if t, ok := p.Selected(); ok {
		selected = t.ID
	}
	p.views = storage.Select(p.topics, p.filter, p.store.Now())

	p.cursor = min(p.cursor, max(0, len(p.views)-1))
	for i, v := range p.views {
		if v.Topic.ID == selected {
			p.cursor = i
			break
		}
	}
}

// Selected returns the topic under the cursor.
func (p *TopicPane) Selected() (storage.Topic, bool) {
	if p.cursor < 0 || p.cursor >= len(p.views) {
		return storage.Topic{}, false
	}
	return p.views[p.cursor].Topic, true
}

// Filter returns the active filter.
func (p *TopicPane) Filter() storage.Filter { return p.filter }

// SetSize sets the pane dimensions.
func (p *TopicPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.search.Width = max(10, width-14)
	if p.form != nil {
		p.form.setWidth(width - 16)
	}
}

// SetFocused sets whether this pane is focused.
func (p *TopicPane) SetFocused(focused bool) {
	p.focused = focused
}

// IsEditing reports whether a text input owns the keyboard.
func (p *TopicPane) IsEditing() bool {
	return p.form != nil || p.searching
}

// OpenForm shows f in place of the list.
func (p *TopicPane) OpenForm(f *form) tea.Cmd {
	p.form = f
	f.setWidth(p.width - 16)
	return textinput.Blink
}

// Update handles messages for the topic pane.
func (p *TopicPane) Update(msg tea.Msg) tea.Cmd {
	if p.form != nil {
		cmd, done := p.form.update(msg, p.inputKeys)
		if done {
			p.form = nil
		}
		return cmd
	}

	if p.searching {
		return p.updateSearch(msg)
	}

	if !p.focused {
		return nil
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return p.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Down):
			if len(p.views) > 0 {
				p.cursor = min(p.cursor+1, len(p.views)-1)
			}

		case key.Matches(msg, p.keys.Up):
			p.cursor = max(p.cursor-1, 0)

		case key.Matches(msg, p.keys.Add):
			return p.OpenForm(p.addForm())

		case key.Matches(msg, p.keys.Edit):
			if t, ok := p.Selected(); ok {
				return p.OpenForm(p.editForm(t))
			}

		case key.Matches(msg, p.keys.Done):
			return p.markDoneToday()

		case key.Matches(msg, p.keys.FilterStatus):
			p.filter.Status = nextStatus(p.filter.Status)
			p.refilter()

		case key.Matches(msg, p.keys.FilterSubject):
			p.filter.Subject = nextSubject(p.subjects, p.filter.Subject)
			p.refilter()

		case key.Matches(msg, p.keys.Search):
			p.searching = true
			p.search.SetValue(p.filter.Search)
			p.search.Focus()
			return textinput.Blink

		case key.Matches(msg, p.keys.Import):
			return p.OpenForm(p.importForm())

		case key.Matches(msg, p.keys.Export):
			return p.OpenForm(p.exportForm())
		}
	}
	return nil
}

func (p *TopicPane) updateSearch(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, p.inputKeys.Confirm):
			p.searching = false
			p.search.Blur()
			return nil
		case key.Matches(km, p.inputKeys.Cancel):
			p.searching = false
			p.search.Blur()
			p.search.Reset()
			p.filter.Search = ""
			p.refilter()
			return nil
		}
	}
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	p.filter.Search = strings.TrimSpace(p.search.Value())
	p.refilter()
	return cmd
}

func (p *TopicPane) addForm() *form {
	return newForm("New topic", []field{
		{label: "Name", placeholder: "What are you learning?", limit: 120},
		{label: "Subject", placeholder: "e.g. Biology", limit: 60},
	}, func(v []string) tea.Cmd {
		return runCmd(p.store, storage.AddCmd{Name: v[0], Subject: v[1]})
	})
}

func (p *TopicPane) editForm(t storage.Topic) *form {
	return newForm("Edit topic", []field{
		{label: "Name", value: t.Name, limit: 120},
		{label: "Subject", value: t.Subject, limit: 60},
		{label: "Notes", value: t.Notes, placeholder: "optional", limit: 500, verbatim: true},
	}, func(v []string) tea.Cmd {
		return runCmd(p.store, storage.EditCmd{ID: t.ID, Name: v[0], Subject: v[1], Notes: v[2]})
	})
}

func (p *TopicPane) importForm() *form {
	return newForm("Import topics", []field{
		{label: "File", placeholder: "topics.json, .csv or .xlsx", limit: 400},
	}, func(v []string) tea.Cmd {
		if v[0] == "" {
			return nil
		}
		return loadImportCmd(v[0], p.store.Now)
	})
}

func (p *TopicPane) exportForm() *form {
	return newForm("Export topics", []field{
		{label: "File", value: p.exportPath, limit: 400},
	}, func(v []string) tea.Cmd {
		if v[0] == "" {
			return nil
		}
		return exportCmd(p.store, v[0])
	})
}

// markDoneToday completes the selected topic's review due today.
func (p *TopicPane) markDoneToday() tea.Cmd {
	t, ok := p.Selected()
	if !ok {
		return nil
	}
	i := t.DueTodayIndex(p.store.Now())
	if i < 0 {
		return func() tea.Msg {
			return commandDoneMsg{err: fmt.Errorf("no review of %q is due today", t.Name)}
		}
	}
	return runCmd(p.store, storage.CompleteCmd{ID: t.ID, Review: i, Done: true, Name: t.Name})
}

func nextStatus(s storage.Status) storage.Status {
	for i, st := range statusCycle {
		if st == s {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return storage.StatusAll
}

func nextSubject(subjects []string, current string) string {
	if current == "all" || current == "" {
		if len(subjects) == 0 {
			return "all"
		}
		return subjects[0]
	}
	for i, s := range subjects {
		if s == current && i+1 < len(subjects) {
			return subjects[i+1]
		}
	}
	return "all"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// visibleRows is how many topic rows fit below the header.
func (p *TopicPane) visibleRows() int {
	rows := p.height - 7 // title, filter line, separator, notes, stats
	if rows < 3 {
		rows = 5
	}
	return rows
}

func (p *TopicPane) window() int {
	rows := p.visibleRows()
	if p.cursor >= rows {
		return p.cursor - rows + 1
	}
	return 0
}

// handleMouse processes mouse events for the topic pane.
func (p *TopicPane) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if len(p.views) == 0 {
		return nil
	}

	// Rows start after the border, title, filter line and separator.
	const headerRows = 4

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		p.cursor = max(p.cursor-1, 0)
	case tea.MouseButtonWheelDown:
		p.cursor = min(p.cursor+1, len(p.views)-1)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		row := msg.Y - headerRows
		if row < 0 || row >= p.visibleRows() {
			return nil
		}
		if idx := p.window() + row; idx < len(p.views) {
			p.cursor = idx
		}
	}
	return nil
}

// View renders the topic pane.
func (p *TopicPane) View() string {
	var b strings.Builder

	b.WriteString(p.styles.PaneTitleStyle.Render("TOPICS"))
	b.WriteString("\n")
	b.WriteString(p.renderFilterLine())
	b.WriteString("\n")

	sepWidth := p.width - 4
	if sepWidth < 10 {
		sepWidth = 30
	}
	b.WriteString(lipgloss.NewStyle().Foreground(p.styles.ColorMuted).Render(strings.Repeat("─", sepWidth)))
	b.WriteString("\n")

	switch {
	case p.form != nil:
		b.WriteString(p.form.view(p.styles))
	case len(p.topics) == 0:
		b.WriteString(p.styles.FilterStyle.Render("  No topics yet. Press 'a' to add one."))
		b.WriteString("\n")
	case len(p.views) == 0:
		b.WriteString(p.styles.FilterStyle.Render("  No topics match the filter."))
		b.WriteString("\n")
	default:
		p.renderRows(&b)
	}

	content := b.String()
	style := p.styles.PaneStyle
	if p.focused {
		style = p.styles.PaneFocusedStyle
	}
	return style.Width(p.width).Height(p.height).Render(content)
}

func (p *TopicPane) renderFilterLine() string {
	if p.searching {
		return p.styles.InputPromptStyle.Render("/ ") + p.search.View()
	}
	parts := []string{
		"status: " + string(p.filter.Status),
		"subject: " + p.filter.Subject,
	}
	if p.filter.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", p.filter.Search))
	}
	return p.styles.FilterStyle.Render(strings.Join(parts, " · "))
}

func (p *TopicPane) renderRows(b *strings.Builder) {
	start := p.window()
	end := min(start+p.visibleRows(), len(p.views))
	now := p.store.Now()

	for i := start; i < end; i++ {
		v := p.views[i]
		badge := p.statusBadge(v.Status)
		next := nextReviewLabel(v.Topic, now)

		// Layout: [space][badge 7][space][name (subject)][space][next]
		avail := p.width - 4 - 9 - runewidth.StringWidth(next) - 1
		if avail < 8 {
			avail = 8
		}
		label := runewidth.Truncate(v.Topic.Name+" ("+v.Topic.Subject+")", avail, "..")
		pad := max(1, avail-runewidth.StringWidth(label))

		if i == p.cursor && p.focused {
			line := fmt.Sprintf(" %-7s %s%s%s ", string(v.Status), label, strings.Repeat(" ", pad), next)
			b.WriteString(p.styles.TopicSelectedStyle.Render(line))
		} else {
			name := p.styles.TopicNameStyle.Render(runewidth.Truncate(v.Topic.Name, avail, ".."))
			rest := ""
			if w := runewidth.StringWidth(v.Topic.Name); w < avail {
				rest = p.styles.SubjectStyle.Render(runewidth.Truncate(" ("+v.Topic.Subject+")", avail-w, ".."))
			}
			b.WriteString(" " + badge + " " + name + rest + strings.Repeat(" ", pad) + p.styles.StatLabelStyle.Render(next))
		}
		b.WriteString("\n")
	}

	if t, ok := p.Selected(); ok && t.Notes != "" {
		b.WriteString(p.styles.FilterStyle.Render("  " + runewidth.Truncate(t.Notes, max(10, p.width-8), "..")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString("  " + p.styles.StatLabelStyle.Render(fmt.Sprintf("%d of %d topics", len(p.views), len(p.topics))))
	b.WriteString("\n")
}

func (p *TopicPane) statusBadge(s storage.Status) string {
	text := fmt.Sprintf("%-7s", string(s))
	switch s {
	case storage.StatusPending:
		return p.styles.StatusPendingStyle.Render(text)
	case storage.StatusStill:
		return p.styles.StatusStillStyle.Render(text)
	default:
		return p.styles.StatusDoneStyle.Render(text)
	}
}

// nextReviewLabel names the next incomplete review on or after today.
func nextReviewLabel(t storage.Topic, now time.Time) string {
	today := schedule.StartOfDay(now)
	for i, r := range t.Reviews {
		if t.IsCompleted(i) || r.In(now.Location()).Before(today) {
			continue
		}
		if schedule.SameDay(r, now) {
			return "today"
		}
		return r.In(now.Location()).Format("Jan 2")
	}
	return "-"
}
