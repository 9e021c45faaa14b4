package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/crmx/internal/chat"
	"github.com/oakwood-commons/crmx/internal/formatter"
	"github.com/oakwood-commons/crmx/internal/record"
	"github.com/oakwood-commons/crmx/internal/search"
	"github.com/oakwood-commons/crmx/internal/store"
	"github.com/oakwood-commons/crmx/internal/ui/table"
	"github.com/oakwood-commons/crmx/internal/view"
	"github.com/oakwood-commons/crmx/pkg/logger"
)

// Focus identifies the component receiving key presses.
type Focus int

const (
	FocusGrid Focus = iota
	FocusSearch
	FocusFilter
	FocusChat
)

func (f Focus) String() string {
	switch f {
	case FocusSearch:
		return "search"
	case FocusFilter:
		return "filter"
	case FocusChat:
		return "chat"
	}
	return "grid"
}

const (
	defaultWidth    = 100
	defaultHeight   = 30
	minChatHeight   = 6
	sortAscMarker   = " ↑"
	sortDescMarker  = " ↓"
	searchPrompt    = "search ▸ "
	chatInputPrompt = "you ▸ "
)

// ReloadFunc loads the seed dataset again.
type ReloadFunc func(ctx context.Context) ([]record.Record, error)

// Options configures a Model.
type Options struct {
	Schema record.Schema
	Store  *store.Store
	Search *search.Controller
	// Chat is optional; without it the chat panel is unavailable.
	Chat   *chat.Controller
	Reload ReloadFunc
	View   view.Config

	Context    context.Context
	Logger     logr.Logger
	NoColor    bool
	Width      int
	Height     int
	AppName    string
	AboutLines []string
	Source     string
}

type searchDoneMsg struct {
	outcome search.Outcome
}

type chatDoneMsg struct {
	reply chat.Message
}

type reloadDoneMsg struct {
	rows []record.Record
	err  error
}

// Model is the Bubble Tea model of the record browser.
type Model struct {
	schema record.Schema
	store  *store.Store
	search *search.Controller
	chat   *chat.Controller
	reload ReloadFunc
	ctx    context.Context
	log    logr.Logger

	cfg        view.Config
	result     view.Result
	generation uint64
	filterText map[string]string

	focus       Focus
	grid        *table.Model[view.Row]
	searchInput textinput.Model
	filterInput textinput.Model
	filterField string
	chatInput   textinput.Model
	chatLog     viewport.Model
	spinner     spinner.Model
	chatOpen    bool
	searching   bool
	replying    bool
	reloading   bool

	help   HelpModel
	status StatusModel
	footer FooterModel

	appName  string
	source   string
	width    int
	height   int
	noColor  bool
	quitting bool
}

// New creates a model showing the current contents of opts.Store.
func New(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log.GetSink() == nil {
		log = *logger.GetNoopLogger()
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	si := textinput.New()
	si.Prompt = searchPrompt
	si.Placeholder = "e.g. high risk clients over 50 with more than $1M"
	si.CharLimit = 500
	si.SetWidth(width - len(searchPrompt))

	fi := textinput.New()
	fi.CharLimit = 200
	fi.Placeholder = "text, =value, >n, low..high, a|b or a CEL expression"
	fi.SetWidth(width / 2)

	ci := textinput.New()
	ci.Prompt = chatInputPrompt
	ci.Placeholder = "ask the assistant"
	ci.CharLimit = 1000
	ci.SetWidth(width - len(chatInputPrompt) - 4)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := &Model{
		schema:      opts.Schema,
		store:       opts.Store,
		search:      opts.Search,
		chat:        opts.Chat,
		reload:      opts.Reload,
		ctx:         ctx,
		log:         log,
		cfg:         opts.View,
		filterText:  map[string]string{},
		searchInput: si,
		filterInput: fi,
		chatInput:   ci,
		chatLog:     viewport.New(viewport.WithWidth(width-2), viewport.WithHeight(minChatHeight-3)),
		spinner:     sp,
		help:        NewHelpModel(),
		status:      NewStatusModel(),
		footer:      NewFooterModel(),
		appName:     strings.TrimSpace(opts.AppName),
		source:      opts.Source,
		width:       width,
		height:      height,
		noColor:     opts.NoColor,
	}
	if m.appName == "" {
		m.appName = "crmx"
	}
	if m.search != nil {
		m.searchInput.SetValue(m.search.Query())
	}
	m.help.AboutTitle = m.appName
	m.help.AboutLines = opts.AboutLines

	m.grid = table.NewModel[view.Row](nil, m.cells)
	m.applyColorScheme()
	m.derive()
	m.applyLayout()
	return m
}

// Config returns the current view configuration.
func (m *Model) Config() view.Config {
	return m.cfg
}

// Result returns the derived page currently displayed.
func (m *Model) Result() view.Result {
	return m.result
}

// Focus returns the component receiving keys.
func (m *Model) Focus() Focus {
	return m.focus
}

// ChatOpen reports whether the chat panel is shown.
func (m *Model) ChatOpen() bool {
	return m.chatOpen
}

// StatusMessage returns the transient status text.
func (m *Model) StatusMessage() string {
	return m.status.Message
}

// Quitting reports whether the user asked to quit.
func (m *Model) Quitting() bool {
	return m.quitting
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and key presses.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.syncStore()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.applyLayout()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.syncStatus()
		return m, cmd

	case searchDoneMsg:
		m.searching = false
		m.applySearchOutcome(msg.outcome)
		return m, nil

	case chatDoneMsg:
		m.replying = false
		m.log.V(1).Info("assistant replied", "message_id", msg.reply.ID.String())
		m.syncChatLog()
		m.syncStatus()
		return m, nil

	case reloadDoneMsg:
		m.reloading = false
		if msg.err != nil {
			m.log.Error(msg.err, "reload failed")
			m.status.Set("Reload failed: "+msg.err.Error(), StatusError)
		} else {
			gen := m.store.Replace(msg.rows)
			m.log.V(1).Info("reloaded seed data", logger.RowsKey, len(msg.rows), logger.GenerationKey, gen)
			m.status.Set(fmt.Sprintf("Reloaded %d records", len(msg.rows)), StatusSuccess)
			m.derive()
		}
		m.syncStatus()
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	if m.focus == FocusChat {
		var cmd tea.Cmd
		m.chatLog, cmd = m.chatLog.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}
	if m.help.Visible {
		switch key {
		case "?", "esc", "q":
			m.help.Visible = false
		}
		return m, nil
	}

	switch m.focus {
	case FocusSearch:
		return m.handleSearchKey(msg)
	case FocusFilter:
		return m.handleFilterKey(msg)
	case FocusChat:
		return m.handleChatKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m *Model) handleGridKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch actionForKey(msg.String()) {
	case ActionQuit:
		return m.quit()
	case ActionHelp:
		m.help.Visible = !m.help.Visible
		return m, nil
	case ActionSearch:
		return m, m.focusSearch()
	case ActionColumnLeft:
		m.grid.MoveColumn(-1)
	case ActionColumnRight:
		m.grid.MoveColumn(1)
	case ActionSort:
		m.toggleSort()
	case ActionFilter:
		return m, m.openFilterPrompt()
	case ActionClearFilters:
		if len(m.cfg.Filter) > 0 {
			m.cfg = m.cfg.WithFilter(m.cfg.Filter.Clear()).FirstPage()
			m.filterText = map[string]string{}
			m.status.Set("Filters cleared", StatusInfo)
			m.derive()
		}
	case ActionHide:
		m.hideSelectedColumn()
	case ActionShowAll:
		if len(m.cfg.Visibility.Hidden()) > 0 {
			m.cfg = m.cfg.WithVisibility(m.cfg.Visibility.Reset())
			m.status.Set("All columns shown", StatusInfo)
			m.derive()
		}
	case ActionNextPage:
		m.setConfig(m.cfg.NextPage())
	case ActionPrevPage:
		m.setConfig(m.cfg.PrevPage())
	case ActionFirstPage:
		m.setConfig(m.cfg.FirstPage())
	case ActionReload:
		return m, m.startReload()
	case ActionChat:
		return m, m.openChat()
	default:
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		m.syncStatus()
		return m, cmd
	}
	m.syncStatus()
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focusGrid()
		return m, nil
	case "enter":
		return m, m.submitSearch()
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.search != nil {
		m.search.SetQuery(m.searchInput.Value())
	}
	return m, cmd
}

func (m *Model) handleFilterKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filterField = ""
		m.focusGrid()
		return m, nil
	case "enter":
		m.applyFilterPrompt()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) handleChatKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.focusGrid()
		return m, nil
	case "tab":
		m.chatOpen = false
		m.focusGrid()
		m.applyLayout()
		return m, nil
	case "enter":
		return m, m.sendChat()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.chatLog, cmd = m.chatLog.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) focusGrid() {
	m.focus = FocusGrid
	m.searchInput.Blur()
	m.filterInput.Blur()
	m.chatInput.Blur()
	m.grid.Focus()
}

func (m *Model) focusSearch() tea.Cmd {
	if m.search == nil {
		m.status.Set("Search is not available", StatusError)
		return nil
	}
	m.focus = FocusSearch
	m.grid.Blur()
	m.searchInput.SetValue(m.search.Query())
	m.searchInput.SetCursor(len(m.searchInput.Value()))
	return m.searchInput.Focus()
}

// submitSearch starts a search for the input text. Blank queries are ignored
// and a second submission is refused while one is running.
func (m *Model) submitSearch() tea.Cmd {
	if m.reloading {
		m.status.Set("Wait for the reload to finish before searching", StatusError)
		m.syncStatus()
		return nil
	}
	pending, err := m.search.Begin(m.searchInput.Value())
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		return nil
	case errors.Is(err, search.ErrInFlight):
		m.status.Set("A search is already running", StatusError)
		m.syncStatus()
		return nil
	case err != nil:
		m.status.Set(err.Error(), StatusError)
		m.syncStatus()
		return nil
	}
	m.searching = true
	m.status.Clear()
	m.focusGrid()
	m.syncStatus()
	return tea.Batch(runSearch(m.ctx, pending), m.spinner.Tick)
}

func runSearch(ctx context.Context, p *search.Pending) tea.Cmd {
	return func() tea.Msg {
		return searchDoneMsg{outcome: p.Run(ctx)}
	}
}

func (m *Model) applySearchOutcome(out search.Outcome) {
	switch out.Status {
	case search.StatusReplaced:
		noun := "records"
		if out.Rows == 1 {
			noun = "record"
		}
		m.status.Set(fmt.Sprintf("%d %s for %q", out.Rows, noun, out.Query), StatusSuccess)
		m.derive()
	default:
		m.status.Set(out.Notice, StatusError)
	}
	m.syncStatus()
}

func (m *Model) openFilterPrompt() tea.Cmd {
	col, ok := m.selectedColumn()
	if !ok {
		return nil
	}
	m.focus = FocusFilter
	m.filterField = col.Field
	m.grid.Blur()
	m.filterInput.Prompt = "filter " + col.Title() + " ▸ "
	m.filterInput.SetValue(m.filterText[col.Field])
	m.filterInput.SetCursor(len(m.filterInput.Value()))
	return m.filterInput.Focus()
}

// applyFilterPrompt sets the filter of the prompted column. Empty text
// removes it; a parse error keeps the prompt open.
func (m *Model) applyFilterPrompt() {
	field := m.filterField
	text := strings.TrimSpace(m.filterInput.Value())
	if text == "" {
		m.cfg = m.cfg.WithFilter(m.cfg.Filter.Without(field)).FirstPage()
		delete(m.filterText, field)
		m.status.Set("Filter on "+field+" removed", StatusInfo)
	} else {
		pred, err := view.ParseFilter(m.schema, field, text)
		if err != nil {
			m.status.Set(err.Error(), StatusError)
			m.syncStatus()
			return
		}
		m.cfg = m.cfg.WithFilter(m.cfg.Filter.With(field, pred)).FirstPage()
		m.filterText[field] = text
		m.status.Clear()
	}
	m.filterField = ""
	m.focusGrid()
	m.derive()
}

func (m *Model) toggleSort() {
	col, ok := m.selectedColumn()
	if !ok {
		return
	}
	if !col.Sortable {
		m.status.Set(col.Title()+" is not sortable", StatusError)
		return
	}
	m.cfg = m.cfg.ToggleSort(col.Field)
	m.status.Clear()
	m.derive()
}

func (m *Model) hideSelectedColumn() {
	col, ok := m.selectedColumn()
	if !ok {
		return
	}
	if len(m.result.Headers) <= 1 {
		m.status.Set("Cannot hide the last column", StatusError)
		return
	}
	m.cfg = m.cfg.WithVisibility(m.cfg.Visibility.Hide(col.Field))
	m.status.Set(col.Title()+" hidden (H shows all)", StatusInfo)
	m.derive()
}

func (m *Model) setConfig(cfg view.Config) {
	m.cfg = cfg
	m.derive()
}

func (m *Model) startReload() tea.Cmd {
	if m.reload == nil {
		m.status.Set("No seed source to reload", StatusError)
		return nil
	}
	if m.reloading {
		return nil
	}
	if m.searching {
		m.status.Set("Wait for the search to finish before reloading", StatusError)
		m.syncStatus()
		return nil
	}
	m.reloading = true
	m.syncStatus()
	reload, ctx := m.reload, m.ctx
	return tea.Batch(func() tea.Msg {
		rows, err := reload(ctx)
		return reloadDoneMsg{rows: rows, err: err}
	}, m.spinner.Tick)
}

func (m *Model) openChat() tea.Cmd {
	if m.chat == nil {
		m.status.Set("Chat is not available", StatusError)
		return nil
	}
	m.chatOpen = true
	m.focus = FocusChat
	m.grid.Blur()
	m.applyLayout()
	m.syncChatLog()
	return m.chatInput.Focus()
}

func (m *Model) sendChat() tea.Cmd {
	ex, err := m.chat.Begin(m.chatInput.Value())
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return nil
	case errors.Is(err, chat.ErrInFlight):
		m.status.Set("Waiting for the assistant", StatusError)
		m.syncStatus()
		return nil
	case err != nil:
		m.status.Set(err.Error(), StatusError)
		m.syncStatus()
		return nil
	}
	m.chatInput.SetValue("")
	m.replying = true
	m.syncChatLog()
	m.syncStatus()
	ctx := m.ctx
	return tea.Batch(func() tea.Msg {
		return chatDoneMsg{reply: ex.Run(ctx)}
	}, m.spinner.Tick)
}

func (m *Model) busy() bool {
	return m.searching || m.replying || m.reloading
}

// syncStore re-derives when the store was replaced behind the model's back.
func (m *Model) syncStore() {
	if m.store.Generation() != m.generation {
		m.derive()
	}
}

// derive recomputes the page from the store and persists the clamped page
// index into the configuration.
func (m *Model) derive() {
	snap := m.store.Snapshot()
	m.result = view.Derive(m.schema, snap.Rows, m.cfg)
	m.cfg.Page = view.PageSpec{Index: m.result.Page, Size: m.result.PageSize}
	m.generation = snap.Generation
	m.syncGrid()
	m.syncFooter()
	m.syncStatus()
}

func (m *Model) selectedColumn() (record.Column, bool) {
	idx := m.grid.SelectedColumn()
	if idx < 0 || idx >= len(m.result.Headers) {
		return record.Column{}, false
	}
	return m.result.Headers[idx], true
}

// cells formats a derived row for the grid.
func (m *Model) cells(row view.Row) table.Row {
	out := make(table.Row, len(row.Cells))
	for i, v := range row.Cells {
		if i < len(m.result.Headers) {
			out[i] = formatter.FormatCell(m.result.Headers[i], v)
		}
	}
	return out
}

func (m *Model) columnTitle(col record.Column) string {
	title := col.Title()
	if m.cfg.Sort.Field == col.Field {
		if m.cfg.Sort.Direction == view.Descending {
			return title + sortDescMarker
		}
		return title + sortAscMarker
	}
	if _, ok := m.cfg.Filter[col.Field]; ok {
		return title + " *"
	}
	return title
}

func (m *Model) syncGrid() {
	headers := m.result.Headers
	natural := make([]int, len(headers))
	titles := make([]string, len(headers))
	for i, col := range headers {
		titles[i] = m.columnTitle(col)
		// One extra cell for the selection marker.
		natural[i] = table.TextWidth(titles[i]) + 1
	}
	for _, row := range m.result.Rows {
		for i, cell := range m.cells(row) {
			natural[i] = max(natural[i], table.TextWidth(cell))
		}
	}
	widths := table.FitWidths(natural, m.width)
	cols := make([]table.Column, len(headers))
	for i := range headers {
		cols[i] = table.Column{Title: titles[i], Width: widths[i]}
	}

	cursor := m.grid.Cursor()
	m.grid.SetRows(nil)
	m.grid.SetColumns(cols)
	m.grid.SetRows(m.result.Rows)
	if cursor < len(m.result.Rows) {
		m.grid.SetCursor(cursor)
	}
}

func (m *Model) syncFooter() {
	m.footer.Result = m.result
	m.footer.Sort = m.cfg.Sort
	m.footer.Filter = m.cfg.Filter
	m.footer.Hidden = len(m.cfg.Visibility.Hidden())
	m.footer.Source = m.source
	m.footer.Width = m.width
	m.footer.NoColor = m.noColor
}

func (m *Model) syncStatus() {
	m.status.Width = m.width
	m.status.NoColor = m.noColor
	m.status.Busy = ""
	switch {
	case m.searching:
		m.status.Busy = m.spinner.View() + " Searching…"
	case m.reloading:
		m.status.Busy = m.spinner.View() + " Reloading…"
	case m.replying:
		m.status.Busy = m.spinner.View() + " Assistant is typing…"
	}
	m.status.TotalRows = m.result.Total
	m.status.CursorIndex = 0
	if len(m.result.Rows) > 0 {
		m.status.CursorIndex = m.result.Page*m.result.PageSize + m.grid.Cursor() + 1
	}
}

func (m *Model) syncChatLog() {
	if m.chat == nil {
		return
	}
	th := CurrentTheme()
	userStyle := lipgloss.NewStyle().Bold(true)
	botStyle := lipgloss.NewStyle().Bold(true)
	if !m.noColor {
		userStyle = userStyle.Foreground(th.KeyColor)
		botStyle = botStyle.Foreground(th.StatusSuccess)
	}
	wrap := lipgloss.NewStyle().Width(max(m.width-4, 10))
	var b strings.Builder
	for i, msg := range m.chat.Messages() {
		if i > 0 {
			b.WriteString("\n")
		}
		label := botStyle.Render("assistant")
		if msg.From == chat.FromUser {
			label = userStyle.Render("you")
		}
		b.WriteString(wrap.Render(label + " " + msg.At.Format("15:04") + "  " + msg.Text))
	}
	if m.replying {
		b.WriteString("\n" + m.spinner.View())
	}
	m.chatLog.SetContent(b.String())
	m.chatLog.GotoBottom()
}

func (m *Model) chatHeight() int {
	if !m.chatOpen {
		return 0
	}
	return max(minChatHeight, m.height/3)
}

func (m *Model) applyLayout() {
	if m.width <= 0 {
		m.width = defaultWidth
	}
	if m.height <= 0 {
		m.height = defaultHeight
	}
	m.searchInput.SetWidth(max(m.width-len(searchPrompt)-1, 10))
	m.filterInput.SetWidth(max(m.width/2, 10))
	m.chatInput.SetWidth(max(m.width-len(chatInputPrompt)-4, 10))

	// search bar, status line and footer take one line each
	gridHeight := m.height - 3 - m.chatHeight()
	m.grid.SetSize(m.width, max(gridHeight, 3))

	if m.chatOpen {
		// border (2) and the input line
		m.chatLog.SetWidth(max(m.width-2, 10))
		m.chatLog.SetHeight(max(m.chatHeight()-3, 1))
		m.syncChatLog()
	}
	m.help.SetWidth(m.width)
	m.syncGrid()
	m.syncFooter()
	m.syncStatus()
}

func (m *Model) applyColorScheme() {
	th := CurrentTheme()
	m.grid.SetNoColor(m.noColor)
	if !m.noColor {
		m.grid.SetColors(th.HeaderFG, th.HeaderBG, th.SelectedFG, th.SelectedBG)
	}
	m.help.NoColor = m.noColor
	m.status.NoColor = m.noColor
	m.footer.NoColor = m.noColor
}

func (m *Model) inputBar() string {
	th := CurrentTheme()
	style := lipgloss.NewStyle().Width(m.width)
	if !m.noColor {
		style = style.Foreground(th.InputFG).Background(th.InputBG)
	}
	switch m.focus {
	case FocusFilter:
		return style.Render(m.filterInput.View())
	case FocusSearch:
		return style.Render(m.searchInput.View())
	}
	query := ""
	if m.search != nil {
		query = strings.TrimSpace(m.search.Query())
	}
	text := m.appName + "  / to search"
	if query != "" {
		text = m.appName + "  " + searchPrompt + query
	}
	if !m.noColor {
		style = style.Foreground(th.GhostFG)
	}
	return style.Render(text)
}

func (m *Model) chatPanel() string {
	th := CurrentTheme()
	box := lipgloss.NewStyle().
		Border(borderForStyle(th.BorderStyle)).
		Width(max(m.width-2, 10))
	if !m.noColor {
		box = box.BorderForeground(th.SeparatorColor)
	}
	return box.Render(m.chatLog.View() + "\n" + m.chatInput.View())
}

// Render returns the full screen as a string.
func (m *Model) Render() string {
	if m.help.Visible {
		return lipgloss.JoinVertical(lipgloss.Left, m.inputBar(), m.help.View(), m.status.View(), m.footer.View())
	}
	parts := []string{m.inputBar(), m.grid.View()}
	if m.result.Total == 0 {
		parts[1] = m.emptyState()
	}
	if m.chatOpen {
		parts = append(parts, m.chatPanel())
	}
	parts = append(parts, m.status.View(), m.footer.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) emptyState() string {
	msg := "No records"
	if len(m.cfg.Filter) > 0 {
		msg = "No records match the current filters (x clears them)"
	}
	return lipgloss.NewStyle().
		Width(m.width).
		Height(max(m.height-3-m.chatHeight(), 1)).
		Align(lipgloss.Center, lipgloss.Center).
		Render(msg)
}

func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}
