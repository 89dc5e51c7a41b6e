// Package ui provides the terminal user interface for revise.
// This file contains the main App model which coordinates the panes and
// routes messages using the Bubble Tea architecture.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"revise/internal/calendar"
	"revise/internal/config"
	"revise/internal/history"
	"revise/internal/importer"
	"revise/internal/storage"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// PaneID identifies each pane in the application.
type PaneID int

const (
	PaneTopics PaneID = iota
	PaneCalendar
)

// LayoutMode determines how panes are arranged based on terminal width.
type LayoutMode int

const (
	// LayoutWide shows both panes side-by-side.
	LayoutWide LayoutMode = iota
	// LayoutNarrow shows only the focused pane with a tab bar.
	LayoutNarrow
)

// AppConfig holds user configuration for the app behavior.
type AppConfig struct {
	Keys                  *config.KeysConfig
	ConfirmDeletions      bool
	ShowCompletedMarks    bool
	NarrowLayoutThreshold int
	ExportPath            string
}

// App is the main application model that coordinates all panes.
type App struct {
	store        *storage.Storage
	history      *history.Manager
	watcher      *storage.Watcher
	styles       *Styles
	config       *AppConfig
	topicPane    *TopicPane
	calendarPane *CalendarPane
	helpOverlay  *HelpOverlay
	topics       []storage.Topic
	historyBusy  bool
	confirmDel   *confirmDeleteState
	pendingLoad  *importer.Loaded
	activePane   PaneID
	layoutMode   LayoutMode
	showHelp     bool
	width        int
	height       int
	status       string
	statusErr    bool
	statusUntil  time.Time
	quitting     bool

	// Key bindings
	keys     GlobalKeyMap
	helpKeys HelpKeyMap

	// Pane positions for mouse click detection (x coordinates)
	topicsPaneEnd     int
	calendarPaneStart int
	contentTop        int // Y coordinate where panes start
}

type confirmDeleteState struct {
	title string
	body  string
	cmd   tea.Cmd
}

// NewApp creates a new application. Data loading is deferred to Init()
// to keep the constructor non-blocking.
func NewApp(store *storage.Storage, hist *history.Manager, styles *Styles, cfg *AppConfig) *App {
	if cfg == nil {
		cfg = &AppConfig{
			Keys:                  &config.KeysConfig{},
			ConfirmDeletions:      true,
			ShowCompletedMarks:    true,
			NarrowLayoutThreshold: 80,
		}
	}
	if cfg.Keys == nil {
		cfg.Keys = &config.KeysConfig{}
	}
	if hist == nil {
		hist = history.NewManager(store)
	}

	topicPane := NewTopicPane(store, styles, cfg.Keys)
	topicPane.SetExportPath(cfg.ExportPath)
	calendarPane := NewCalendarPane(store, calendar.NewMover(store, hist), styles, cfg.Keys)
	calendarPane.SetShowMarks(cfg.ShowCompletedMarks)

	app := &App{
		store:        store,
		history:      hist,
		styles:       styles,
		config:       cfg,
		topicPane:    topicPane,
		calendarPane: calendarPane,
		helpOverlay:  NewHelpOverlay(styles),
		activePane:   PaneTopics,
		keys:         NewGlobalKeyMap(cfg.Keys),
		helpKeys:     DefaultHelpKeyMap(),
	}

	topicPane.SetFocused(true)
	calendarPane.SetFocused(false)

	return app
}

// SetWatcher makes the app reload whenever w reports an external change.
// Must be called before the program starts.
func (a *App) SetWatcher(w *storage.Watcher) {
	a.watcher = w
}

// tickMsg is sent periodically for time updates.
type tickMsg time.Time

// tickCmd returns a command that sends a tick every second.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the app and loads all data asynchronously.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		loadTopicsCmd(a.store),
		watchCmd(a.watcher),
	)
}

func (a *App) reload() tea.Cmd {
	return loadTopicsCmd(a.store)
}

// Update handles all messages and routes them appropriately.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Async results are handled regardless of which pane is active.
	switch msg := msg.(type) {
	case topicsLoadedMsg:
		if msg.err != nil {
			a.SetStatus("Load: "+msg.err.Error(), true)
			return a, nil
		}
		a.topics = msg.topics
		a.topicPane.SetTopics(msg.topics, msg.subjects)
		a.calendarPane.SetTopics(msg.topics)
		return a, nil

	case storeChangedMsg:
		return a, tea.Batch(a.reload(), watchCmd(a.watcher))

	case commandDoneMsg:
		if msg.err != nil {
			a.SetStatus(errorText(msg.err), true)
			return a, nil
		}
		if msg.deleted != "" {
			a.history.Forget(msg.deleted)
		}
		a.SetStatus(msg.desc, false)
		return a, a.reload()

	case movedMsg:
		switch {
		case msg.err != nil:
			a.SetStatus("Move: "+errorText(msg.err), true)
			return a, nil
		case !msg.moved:
			a.SetStatus("Review is already on that day", false)
			return a, nil
		}
		a.calendarPane.Follow(msg.entry, true)
		a.SetStatus("Moved "+msg.entry.Describe(), false)
		return a, a.reload()

	case historyStepMsg:
		a.historyBusy = false
		verb, none := "Undid", "Nothing to undo"
		if msg.redo {
			verb, none = "Redid", "Nothing to redo"
		}
		switch {
		case errors.Is(msg.err, history.ErrStaleEntry):
			a.SetStatus(verb+" nothing: "+msg.entry.Describe()+" no longer exists", true)
			return a, a.reload()
		case msg.err != nil:
			a.SetStatus(verb+" failed: "+msg.err.Error(), true)
			return a, nil
		case !msg.ok:
			a.SetStatus(none, false)
			return a, nil
		}
		a.calendarPane.Follow(msg.entry, msg.redo)
		a.SetStatus(verb+": "+msg.entry.Describe(), false)
		return a, a.reload()

	case importLoadedMsg:
		l := msg.loaded
		switch {
		case l.Err != nil:
			a.SetStatus("Import: "+l.Err.Error(), true)
		default:
			a.pendingLoad = &l
		}
		return a, nil

	case importAppliedMsg:
		if msg.err != nil {
			a.SetStatus("Import: "+msg.err.Error(), true)
			return a, nil
		}
		if !msg.merge {
			a.history.Clear()
		}
		a.SetStatus(fmt.Sprintf("Imported %d topics, skipped %d", msg.result.Imported, msg.result.Skipped), false)
		return a, a.reload()

	case exportedMsg:
		if msg.err != nil {
			a.SetStatus("Export: "+msg.err.Error(), true)
			return a, nil
		}
		a.SetStatus(fmt.Sprintf("Exported %d topics to %s", msg.n, msg.path), false)
		return a, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.updateLayout()
		return a, nil

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case tickMsg:
		if a.status != "" && !a.statusUntil.IsZero() && time.Now().After(a.statusUntil) {
			a.status = ""
			a.statusErr = false
			a.statusUntil = time.Time{}
		}
		return a, tickCmd()
	}

	// Anything else (cursor blink and the like) goes to the active pane.
	return a, a.forward(msg)
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	if a.topicPane.IsEditing() {
		return a.topicPane.Update(msg)
	}
	switch a.activePane {
	case PaneCalendar:
		return a.calendarPane.Update(msg)
	default:
		return a.topicPane.Update(msg)
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.confirmDel != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			cmd := a.confirmDel.cmd
			a.confirmDel = nil
			return a, cmd
		case "n", "N", "esc":
			a.confirmDel = nil
			a.SetStatus("Canceled", false)
		}
		return a, nil
	}

	if a.pendingLoad != nil {
		switch msg.String() {
		case "r", "R":
			topics := a.pendingLoad.Topics
			a.pendingLoad = nil
			return a, applyImportCmd(a.store, topics, false)
		case "m", "M", "enter":
			topics := a.pendingLoad.Topics
			a.pendingLoad = nil
			return a, applyImportCmd(a.store, topics, true)
		case "esc", "n", "N":
			a.pendingLoad = nil
			a.SetStatus("Import canceled", false)
		}
		return a, nil
	}

	// Help overlay takes priority
	if a.showHelp {
		if key.Matches(msg, a.helpKeys.Close) {
			a.showHelp = false
		}
		return a, nil
	}

	// Text inputs own the keyboard.
	if a.topicPane.IsEditing() {
		return a, a.topicPane.Update(msg)
	}

	if a.activePane == PaneTopics && key.Matches(msg, a.topicPane.keys.Delete) {
		return a, a.deleteSelected()
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.quitting = true
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return a, nil

	case key.Matches(msg, a.keys.NextPane):
		a.switchPane()
		return a, nil

	case key.Matches(msg, a.keys.Undo):
		if a.historyBusy {
			a.SetStatus("Undo: busy", true)
			return a, nil
		}
		a.historyBusy = true
		return a, undoCmd(a.history)

	case key.Matches(msg, a.keys.Redo):
		if a.historyBusy {
			a.SetStatus("Redo: busy", true)
			return a, nil
		}
		a.historyBusy = true
		return a, redoCmd(a.history)
	}

	return a, a.forward(msg)
}

// deleteSelected deletes the selected topic, asking first when configured.
func (a *App) deleteSelected() tea.Cmd {
	t, ok := a.topicPane.Selected()
	if !ok {
		a.SetStatus("No topic selected", true)
		return nil
	}
	cmd := runCmd(a.store, storage.DeleteCmd{ID: t.ID, Name: t.Name})
	if !a.config.ConfirmDeletions {
		return cmd
	}
	a.confirmDel = &confirmDeleteState{
		title: "Delete topic?",
		body:  runewidth.Truncate(t.Name+" ("+t.Subject+")", 60, "..."),
		cmd:   cmd,
	}
	return nil
}

func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.confirmDel != nil || a.pendingLoad != nil || a.showHelp {
		if msg.Action == tea.MouseActionPress {
			a.confirmDel = nil
			a.pendingLoad = nil
			a.showHelp = false
		}
		return a, nil
	}
	if a.topicPane.IsEditing() {
		return a, nil
	}

	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		// Tab bar click in narrow mode
		if a.layoutMode == LayoutNarrow && msg.Y == a.contentTop-1 {
			if msg.X < a.width/2 {
				a.setActivePane(PaneTopics)
			} else {
				a.setActivePane(PaneCalendar)
			}
			return a, nil
		}
		if a.layoutMode == LayoutWide {
			if msg.X < a.topicsPaneEnd {
				a.setActivePane(PaneTopics)
			} else if msg.X >= a.calendarPaneStart {
				a.setActivePane(PaneCalendar)
			}
		}
	}

	localMsg := msg
	localMsg.Y = msg.Y - a.contentTop
	if a.layoutMode == LayoutWide && a.activePane == PaneCalendar {
		localMsg.X = msg.X - a.calendarPaneStart
	}
	return a, a.forward(localMsg)
}

// switchPane cycles through panes.
func (a *App) switchPane() {
	if a.activePane == PaneTopics {
		a.setActivePane(PaneCalendar)
		return
	}
	a.setActivePane(PaneTopics)
}

// setActivePane sets the active pane and updates focus states.
func (a *App) setActivePane(pane PaneID) {
	a.activePane = pane
	a.topicPane.SetFocused(pane == PaneTopics)
	a.calendarPane.SetFocused(pane == PaneCalendar)
}

// updateLayout recalculates pane sizes based on terminal dimensions.
func (a *App) updateLayout() {
	// Leave room for title bar and help bar
	contentHeight := a.height - 4
	if contentHeight < 10 {
		contentHeight = 10
	}
	a.contentTop = 1
	a.helpOverlay.SetSize(a.width, a.height)

	totalWidth := a.width - 4

	threshold := a.config.NarrowLayoutThreshold
	if threshold <= 0 {
		threshold = 80
	}

	if a.width < threshold {
		a.layoutMode = LayoutNarrow

		// Leave room for the tab bar
		narrowHeight := max(8, contentHeight-1)
		paneWidth := max(20, totalWidth)

		a.topicPane.SetSize(paneWidth, narrowHeight)
		a.calendarPane.SetSize(paneWidth, narrowHeight)

		a.topicsPaneEnd = a.width
		a.calendarPaneStart = 0
		a.contentTop = 2
		return
	}

	a.layoutMode = LayoutWide

	// The calendar grid needs seven 4-column cells plus borders.
	calendarWidth := max(36, (totalWidth*40)/100)
	topicsWidth := totalWidth - calendarWidth - 1

	a.topicPane.SetSize(topicsWidth, contentHeight)
	a.calendarPane.SetSize(calendarWidth, contentHeight)

	// Borders add two columns to each pane; one space separates them.
	a.topicsPaneEnd = topicsWidth + 2
	a.calendarPaneStart = a.topicsPaneEnd + 1
}

// View renders the entire app.
func (a *App) View() string {
	if a.quitting {
		return a.renderGoodbye()
	}
	if a.confirmDel != nil {
		return a.renderConfirmDelete()
	}
	if a.pendingLoad != nil {
		return a.renderImportChoice()
	}
	if a.showHelp {
		return a.helpOverlay.View()
	}

	var b strings.Builder
	b.WriteString(a.renderTitleBar())
	b.WriteString("\n")

	switch a.layoutMode {
	case LayoutNarrow:
		b.WriteString(a.renderPaneTabs())
		b.WriteString("\n")
		if a.activePane == PaneCalendar {
			b.WriteString(a.calendarPane.View())
		} else {
			b.WriteString(a.topicPane.View())
		}
	default:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, a.topicPane.View(), " ", a.calendarPane.View()))
	}
	b.WriteString("\n")
	b.WriteString(a.renderHelpBar())

	return b.String()
}

func (a *App) renderOverlay(border lipgloss.Color, title, body, hint string) string {
	overlayWidth := 60
	if a.width > 0 {
		overlayWidth = min(60, max(20, a.width-4))
	}

	overlayStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		Width(overlayWidth)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(border)

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(a.styles.ColorText).Render(body))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(a.styles.ColorTextMuted).Render(hint))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, overlayStyle.Render(b.String()))
}

func (a *App) renderConfirmDelete() string {
	return a.renderOverlay(a.styles.ColorDanger, a.confirmDel.title, a.confirmDel.body, "[y/enter] delete    [n/esc] cancel")
}

func (a *App) renderImportChoice() string {
	l := a.pendingLoad
	body := fmt.Sprintf("%d topics read from %s (%s).", len(l.Topics), l.Path, l.Format)
	if len(l.Topics) == 0 {
		body += "\nMerging adds nothing; replacing leaves the list empty."
	}
	if len(l.Notes) > 0 {
		body += fmt.Sprintf("\n%d rows had warnings; first: %s", len(l.Notes), l.Notes[0])
	}
	body += "\n\nMerge keeps your topics and adds new name/subject pairs.\nReplace discards the current list."
	return a.renderOverlay(a.styles.ColorPrimary, "Import topics", body, "[m/enter] merge    [r] replace    [esc] cancel")
}

// renderPaneTabs renders a tab bar showing available panes.
func (a *App) renderPaneTabs() string {
	activeTabStyle := lipgloss.NewStyle().Foreground(a.styles.ColorPrimary).Bold(true)
	inactiveTabStyle := lipgloss.NewStyle().Foreground(a.styles.ColorTextMuted)

	var parts []string
	for _, tab := range []struct {
		id    PaneID
		label string
	}{{PaneTopics, "Topics"}, {PaneCalendar, "Calendar"}} {
		if tab.id == a.activePane {
			parts = append(parts, activeTabStyle.Render("["+tab.label+"]"))
		} else {
			parts = append(parts, inactiveTabStyle.Render(" "+tab.label+" "))
		}
	}

	tabBar := strings.Join(parts, "  ")
	if padding := (a.width - lipgloss.Width(tabBar)) / 2; padding > 0 {
		tabBar = strings.Repeat(" ", padding) + tabBar
	}
	return tabBar
}

func (a *App) stats() storage.Stats {
	return storage.CountReviews(a.topics, a.store.Now())
}

// renderGoodbye shows an exit message with the review summary.
func (a *App) renderGoodbye() string {
	st := a.stats()

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  See you later!\n")
	b.WriteString("\n")
	if st.DueToday > 0 || st.StillPending > 0 {
		b.WriteString(fmt.Sprintf("  Still open: %d due today, %d overdue\n\n", st.DueToday, st.StillPending))
	}
	return b.String()
}

// renderTitleBar creates the top title bar with review counts.
func (a *App) renderTitleBar() string {
	title := a.styles.TitleStyle.Render(" revise ")

	st := a.stats()
	statsText := fmt.Sprintf("Due %d · Overdue %d · Done %d · Topics %d", st.DueToday, st.StillPending, st.Completed, st.Topics)
	stats := a.styles.StatLabelStyle.Render(statsText)

	date := a.styles.DateStyle.Render(a.store.Now().Format("Mon Jan 2 · 15:04"))

	used := lipgloss.Width(title) + lipgloss.Width(stats) + lipgloss.Width(date)
	spacer := max(2, a.width-used-4)

	return title + "  " + stats + strings.Repeat(" ", spacer) + date
}

// renderHelpBar creates the bottom help bar with context-sensitive hints.
func (a *App) renderHelpBar() string {
	if a.status != "" {
		if a.statusErr {
			return a.styles.ErrorStyle.Render(a.status)
		}
		return a.styles.StatusStyle.Render(a.status)
	}

	if a.topicPane.IsEditing() {
		return a.styles.RenderHelp(
			"enter", "next/save",
			"esc", "cancel",
		)
	}

	switch a.activePane {
	case PaneCalendar:
		if a.calendarPane.IsGrabbing() {
			return a.styles.RenderHelp(
				"hjkl", "pick day",
				"enter", "drop",
				"esc", "cancel",
			)
		}
		return a.styles.RenderHelp(
			"space", "done",
			"H/L", "move",
			"m", "pick up",
			"n/p", "review",
			"u", "undo",
			"?", "help",
		)
	default:
		return a.styles.RenderHelp(
			"a", "add",
			"d", "done",
			"e", "edit",
			"x", "del",
			"s/f", "filter",
			"/", "search",
			"tab", "calendar",
			"?", "help",
		)
	}
}

// SetStatus sets a status message to display to the user.
func (a *App) SetStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	ttl := 5 * time.Second
	if isErr {
		ttl = 8 * time.Second
	}
	a.statusUntil = time.Now().Add(ttl)
}

// errorText turns known errors into short user-facing text.
func errorText(err error) string {
	switch {
	case errors.Is(err, storage.ErrEmptyField):
		return "Name and subject are required"
	case errors.Is(err, calendar.ErrMissingMetadata):
		return "No review selected on this day"
	case errors.Is(err, storage.ErrPersist):
		return "Could not save: " + err.Error()
	}
	return err.Error()
}

// Run starts the Bubble Tea program.
func Run(store *storage.Storage, hist *history.Manager, watcher *storage.Watcher, styles *Styles, cfg *AppConfig) error {
	app := NewApp(store, hist, styles, cfg)
	app.SetWatcher(watcher)
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
