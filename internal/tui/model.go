// Package tui implements the interactive planner: browse the filtered node
// list, curate and reorder the backlog, and toggle completion, all over the
// same pure core functions the CLI commands use.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ashpool/techplan/internal/config"
	"github.com/ashpool/techplan/internal/graph"
	"github.com/ashpool/techplan/internal/planner"
	"github.com/ashpool/techplan/internal/session"
	"github.com/ashpool/techplan/internal/sim"
	"github.com/ashpool/techplan/internal/ui"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleCategory = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleCursor   = lipgloss.NewStyle().Reverse(true)
	styleDone     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleQueued   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleHint     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// rowRef is one renderable line: either a category header or a node row.
type rowRef struct {
	category string // non-empty for header lines
	index    int    // node index for node lines
}

// Model is the root bubbletea model for the planner.
type Model struct {
	Session *session.Session
	Keys    KeyMap

	slots config.Slots

	search    textinput.Model
	searching bool

	results        string
	showingResults bool

	rows   []rowRef
	cursor int
	width  int
	height int
}

// New builds a planner model over an installed session with the given slot
// presets for in-place simulation runs.
func New(sess *session.Session, slots config.Slots) Model {
	search := textinput.New()
	search.Placeholder = "search by name"
	search.CharLimit = 64

	m := Model{
		Session: sess,
		Keys:    DefaultKeyMap(),
		slots:   slots,
		search:  search,
	}
	m.rebuild()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// rebuild recomputes the visible rows from the session's current filters.
func (m *Model) rebuild() {
	view := planner.BuildListView(
		m.Session.FlatList(),
		m.Session.Filters,
		m.Session.Completed,
		m.Session.Backlog.Members(),
		m.Session.SortMode,
	)

	m.rows = m.rows[:0]
	for _, category := range view.Categories {
		m.rows = append(m.rows, rowRef{category: category})
		for _, idx := range view.Visible[category] {
			m.rows = append(m.rows, rowRef{index: idx})
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	// Never rest on a header line.
	for m.cursor < len(m.rows)-1 && m.rows[m.cursor].category != "" {
		m.cursor++
	}
}

func (m Model) selectedIndex() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return 0, false
	}
	row := m.rows[m.cursor]
	if row.category != "" {
		return 0, false
	}
	return row.index, true
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.showingResults {
			return m.updateResults(msg)
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.Keys.Quit) {
		return m, tea.Quit
	}
	// Any other key returns to the list.
	m.showingResults = false
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.Session.Filters.Search = m.search.Value()
	m.rebuild()
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.Keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.Keys.Toggle):
		if idx, ok := m.selectedIndex(); ok {
			if m.Session.Backlog.Contains(idx) {
				m.Session.Backlog = m.Session.Backlog.Remove(idx)
			} else {
				m.Session.Backlog = m.Session.Backlog.Add(idx)
			}
			m.rebuild()
		}

	case key.Matches(msg, m.Keys.MoveUp):
		m.moveInBacklog(-1)

	case key.Matches(msg, m.Keys.MoveDown):
		m.moveInBacklog(1)

	case key.Matches(msg, m.Keys.Complete):
		if idx, ok := m.selectedIndex(); ok {
			m.Session.Completed[idx] = !m.Session.Completed[idx]
			m.rebuild()
		}

	case key.Matches(msg, m.Keys.BacklogOnly):
		m.Session.Filters.BacklogOnly = !m.Session.Filters.BacklogOnly
		m.rebuild()

	case key.Matches(msg, m.Keys.Completed):
		m.Session.Filters.IncludeCompleted = !m.Session.Filters.IncludeCompleted
		m.rebuild()

	case key.Matches(msg, m.Keys.Sort):
		if m.Session.SortMode == planner.SortByName {
			m.Session.SortMode = planner.SortByCostDesc
		} else {
			m.Session.SortMode = planner.SortByName
		}
		m.rebuild()

	case key.Matches(msg, m.Keys.Search):
		m.searching = true
		m.search.Focus()

	case key.Matches(msg, m.Keys.Simulate):
		m.runSimulation()
	}
	return m, nil
}

// runSimulation explodes the current backlog, simulates it against the slot
// presets, and switches to the results screen.
func (m *Model) runSimulation() {
	g := m.Session.Graph()
	exploded := planner.Explode(g, m.Session.Backlog.Order(), m.Session.Completed)
	result := sim.Simulate(g, m.Session.FlatList(), sim.Config{
		BacklogOrder: exploded,
		Completed:    m.Session.Completed,
		TechSlots:    slotConfigs(m.slots.Tech, graph.NodeTypeTech),
		ProjectSlots: slotConfigs(m.slots.Project, graph.NodeTypeProject),
	})

	m.results = ui.Renderer{}.Timeline(result)
	m.showingResults = true
}

func slotConfigs(defs []config.SlotDef, nodeType graph.NodeType) []sim.SlotConfig {
	out := make([]sim.SlotConfig, 0, len(defs))
	for _, def := range defs {
		out = append(out, sim.SlotConfig{Name: def.Name, Type: nodeType, Pips: def.Pips})
	}
	return out
}

func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	for next >= 0 && next < len(m.rows) && m.rows[next].category != "" {
		next += delta
	}
	if next >= 0 && next < len(m.rows) {
		m.cursor = next
	}
}

// moveInBacklog shifts the selected backlog member one position.
func (m *Model) moveInBacklog(delta int) {
	idx, ok := m.selectedIndex()
	if !ok || !m.Session.Backlog.Contains(idx) {
		return
	}
	order := m.Session.Backlog.Order()
	pos := -1
	for i, member := range order {
		if member == idx {
			pos = i
			break
		}
	}
	target := pos + delta
	if pos < 0 || target < 0 || target >= len(order) {
		return
	}
	order[pos], order[target] = order[target], order[pos]
	m.Session.Backlog = m.Session.Backlog.Reorder(order)
	m.rebuild()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.showingResults {
		return styleTitle.Render("techplan · simulation") + "\n\n" +
			m.results + "\n" + styleHint.Render("press any key to return")
	}

	var b strings.Builder

	b.WriteString(styleTitle.Render("techplan") + "  ")
	b.WriteString(styleHint.Render(fmt.Sprintf("%d queued, %d done",
		m.Session.Backlog.Len(), len(completedSet(m.Session.Completed)))))
	b.WriteString("\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n")
	}

	position := make(map[int]int)
	for pos, idx := range m.Session.Backlog.Order() {
		position[idx] = pos + 1
	}

	top, bottom := m.window()
	flat := m.Session.FlatList()
	for i := top; i < bottom; i++ {
		row := m.rows[i]
		if row.category != "" {
			b.WriteString(styleCategory.Render(row.category) + "\n")
			continue
		}

		r := flat.Rows[row.index]
		marker := "  "
		if m.Session.Completed[row.index] {
			marker = styleDone.Render("✓ ")
		}
		queue := "   "
		if pos, ok := position[row.index]; ok {
			queue = styleQueued.Render(fmt.Sprintf("#%-2d", pos))
		}
		cost := "   ?"
		if r.HasCost {
			cost = fmt.Sprintf("%4d", r.Cost)
		}

		line := fmt.Sprintf("  %s%s %s %s", marker, queue, cost, r.Name)
		if i == m.cursor {
			line = styleCursor.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + m.footer())
	return b.String()
}

// window returns the visible slice of rows around the cursor.
func (m Model) window() (int, int) {
	visible := m.height - 5
	if visible < 5 || visible >= len(m.rows) {
		return 0, len(m.rows)
	}
	top := m.cursor - visible/2
	if top < 0 {
		top = 0
	}
	bottom := top + visible
	if bottom > len(m.rows) {
		bottom = len(m.rows)
		top = bottom - visible
	}
	return top, bottom
}

func (m Model) footer() string {
	bindings := []key.Binding{
		m.Keys.Up, m.Keys.Down, m.Keys.Toggle, m.Keys.MoveUp, m.Keys.MoveDown,
		m.Keys.Complete, m.Keys.BacklogOnly, m.Keys.Completed, m.Keys.Sort,
		m.Keys.Search, m.Keys.Simulate, m.Keys.Quit,
	}
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+styleHint.Render(":"+help.Desc))
	}
	return styleHint.Render(strings.Join(parts, "  "))
}

func completedSet(completed map[int]bool) []int {
	var out []int
	for idx, done := range completed {
		if done {
			out = append(out, idx)
		}
	}
	return out
}
