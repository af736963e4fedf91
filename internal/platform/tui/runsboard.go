package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-platformer/internal/registry"
	"github.com/vovakirdan/tui-platformer/internal/storage"
)

const (
	sidebarMinWidth = 100 // below this the level stats go on one header line
	sidebarWidth    = 26
	runsLimit       = 100
	playerMinWidth  = 66 // table width needed for the player column
)

// runOrder selects which runs the board lists.
type runOrder int

const (
	orderBest   runOrder = iota // farthest x, then fewest ticks
	orderRecent                 // newest first
)

func (o runOrder) String() string {
	if o == orderRecent {
		return "recent"
	}
	return "best"
}

// RunsKeyMap defines the key bindings for the run board.
type RunsKeyMap struct {
	Scroll    key.Binding
	NextLevel key.Binding
	PrevLevel key.Binding
	Order     key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k RunsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Scroll, k.NextLevel, k.PrevLevel, k.Order, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k RunsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Scroll, k.NextLevel, k.PrevLevel},
		{k.Order, k.Back, k.Quit},
	}
}

// DefaultRunsKeyMap returns default key bindings.
func DefaultRunsKeyMap() RunsKeyMap {
	return RunsKeyMap{
		Scroll: key.NewBinding(
			key.WithKeys("up", "down", "k", "j"),
			key.WithHelp("↑/↓", "scroll"),
		),
		NextLevel: key.NewBinding(
			key.WithKeys("right", "l", "tab"),
			key.WithHelp("→/tab", "next level"),
		),
		PrevLevel: key.NewBinding(
			key.WithKeys("left", "h", "shift+tab"),
			key.WithHelp("←", "prev level"),
		),
		Order: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "best/recent"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// RunsModel lists the runs recorded on one level at a time, next to the
// level's aggregate stats.
type RunsModel struct {
	levels      []registry.LevelInfo
	levelCursor int
	store       *storage.Store

	order runOrder
	runs  []storage.RunEntry
	stats storage.LevelStats

	table table.Model
	help  help.Model
	keys  RunsKeyMap

	width, height int
	quitting      bool
	goingBack     bool
}

// NewRunsModel creates a run board, opened on startLevel when it is
// registered.
func NewRunsModel(store *storage.Store, width, height int, startLevel string) RunsModel {
	m := RunsModel{
		levels: registry.List(),
		store:  store,
		keys:   DefaultRunsKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	for i, l := range m.levels {
		if l.ID == startLevel {
			m.levelCursor = i
		}
	}
	m.table = m.newTable()
	m.reload()
	return m
}

func (m RunsModel) wide() bool {
	return m.width >= sidebarMinWidth
}

func (m RunsModel) tableWidth() int {
	w := m.width - 4
	if m.wide() {
		w -= sidebarWidth + 4
	}
	return w
}

// newTable builds the run table for the current size. The player column
// only fits on wider screens.
func (m RunsModel) newTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Max X", Width: 8},
		{Title: "Ticks", Width: 7},
		{Title: "Jumps", Width: 6},
		{Title: "Lands", Width: 6},
	}
	if m.tableWidth() >= playerMinWidth {
		columns = append(columns, table.Column{Title: "Player", Width: 10})
	}
	columns = append(columns, table.Column{Title: "Date", Width: 13})

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m RunsModel) level() (registry.LevelInfo, bool) {
	if len(m.levels) == 0 {
		return registry.LevelInfo{}, false
	}
	return m.levels[m.levelCursor], true
}

// reload fetches the runs and stats of the selected level in the current
// order and refills the table.
func (m *RunsModel) reload() {
	m.runs = nil
	m.stats = storage.LevelStats{}

	l, ok := m.level()
	if ok && m.store != nil {
		m.stats.LevelID = l.ID
		if st, err := m.store.GetLevelStats(l.ID); err == nil {
			m.stats = *st
		}

		var runs []storage.RunEntry
		var err error
		if m.order == orderRecent {
			runs, err = m.store.RecentRuns(l.ID, runsLimit)
		} else {
			runs, err = m.store.BestRuns(l.ID, runsLimit)
		}
		if err == nil {
			m.runs = runs
		}
	}
	m.fillTable()
}

func (m *RunsModel) fillTable() {
	withPlayer := len(m.table.Columns()) == 7
	rows := make([]table.Row, 0, len(m.runs))
	for i, r := range m.runs {
		row := table.Row{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.0f", r.MaxLeft),
			fmt.Sprintf("%d", r.Ticks),
			fmt.Sprintf("%d", r.Jumps),
			fmt.Sprintf("%d", r.Landings),
		}
		if withPlayer {
			row = append(row, playerName(r.Player))
		}
		rows = append(rows, append(row, r.CreatedAt.Format("Jan 02 15:04")))
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func (m *RunsModel) moveLevel(delta int) {
	n := len(m.levels)
	if n == 0 {
		return
	}
	m.levelCursor = (m.levelCursor + delta + n) % n
	m.reload()
}

// Init initializes the run board model.
func (m RunsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the run board.
func (m RunsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.NextLevel):
			m.moveLevel(1)
			return m, nil
		case key.Matches(msg, m.keys.PrevLevel):
			m.moveLevel(-1)
			return m, nil
		case key.Matches(msg, m.keys.Order):
			m.order = 1 - m.order
			m.reload()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table = m.newTable()
		m.fillTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the run board.
func (m RunsModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	title := "RUNS"
	if l, ok := m.level(); ok {
		title = fmt.Sprintf("%s RUNS - %s", strings.ToUpper(m.order.String()), l.Title)
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))

	var b strings.Builder
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	runs := panel.Render(m.runsView())

	if m.wide() {
		side := panel.Width(sidebarWidth).Render(m.sidebarView())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, side, "  ", runs))
	} else {
		b.WriteString(centerText(m.summaryLine(), m.width))
		b.WriteString("\n\n")
		b.WriteString(runs)
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render(m.help.View(m.keys)))
	return b.String()
}

// sidebarView lists the levels and the selected level's totals.
func (m RunsModel) sidebarView() string {
	var b strings.Builder
	for i, l := range m.levels {
		line := "  " + l.Title
		if i == m.levelCursor {
			line = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Render("> " + l.Title)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	st := m.stats
	fmt.Fprintf(&b, "Runs     %d\n", st.Runs)
	fmt.Fprintf(&b, "Best x   %.0f\n", st.BestDistance)
	fmt.Fprintf(&b, "Jumps    %d\n", st.TotalJumps)
	fmt.Fprintf(&b, "Ticks    %d\n", st.TotalTicks)
	b.WriteString("Last     " + lastPlayed(st))
	return b.String()
}

// summaryLine is the narrow-screen stand-in for the sidebar.
func (m RunsModel) summaryLine() string {
	l, ok := m.level()
	if !ok {
		return ""
	}
	return fmt.Sprintf("< %s >  %d runs, best x %.0f", l.Title, m.stats.Runs, m.stats.BestDistance)
}

func (m RunsModel) runsView() string {
	if len(m.runs) > 0 {
		return m.table.View()
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4).
		Render("No runs recorded yet.\nFinish a run to see it here.")
}

func lastPlayed(st storage.LevelStats) string {
	if st.LastPlayed.IsZero() {
		return "never"
	}
	return st.LastPlayed.Format("Jan 02 15:04")
}

// IsGoingBack returns true if user wants to go back to menu.
func (m RunsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m RunsModel) IsQuitting() bool {
	return m.quitting
}

// RunRuns runs the run board screen.
// Returns true if user wants to go back to menu, false if quitting.
func RunRuns(store *storage.Store, width, height int, startLevel string) (goBack bool, err error) {
	p := tea.NewProgram(NewRunsModel(store, width, height, startLevel), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := finalModel.(RunsModel)
	if !ok {
		return false, nil
	}
	return m.IsGoingBack(), nil
}

// playerName shows local runs as "local".
func playerName(p string) string {
	if p == "" {
		return "local"
	}
	return p
}
