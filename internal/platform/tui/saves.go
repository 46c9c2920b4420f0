package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-cave/internal/stage"
	"github.com/vovakirdan/tui-cave/internal/storage"
)

// Save browser layout constants
const (
	minWidthForSidebar = 80  // Minimum width to show the view list sidebar
	sidebarWidth       = 20  // Width of view list sidebar
	maxAborts          = 100 // Max abort entries to load
)

// SaveStore is what the save browser reads and edits.
type SaveStore interface {
	ListSlots() ([]storage.Slot, error)
	DeleteSlot(slot int) error
	RecentAborts(limit int) ([]storage.AbortEntry, error)
}

var _ SaveStore = (*storage.Store)(nil)

// browserView is one page of the save browser.
type browserView int

const (
	viewSlots browserView = iota
	viewAborts
	viewCount
)

func (v browserView) String() string {
	if v == viewAborts {
		return "Script aborts"
	}
	return "Save slots"
}

// SavesKeyMap defines the key bindings for the save browser.
type SavesKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextView key.Binding
	PrevView key.Binding
	Resume   key.Binding
	Delete   key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k SavesKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextView, k.Resume, k.Delete, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k SavesKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextView, k.PrevView},
		{k.Resume, k.Delete, k.Back, k.Quit},
	}
}

// DefaultSavesKeyMap returns default key bindings.
func DefaultSavesKeyMap() SavesKeyMap {
	return SavesKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev view"),
		),
		Resume: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "resume"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete slot"),
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

// SavesModel is the Bubble Tea model for the save slot and abort browser.
type SavesModel struct {
	store       SaveStore
	stages      *stage.Table // Stage names, may be nil
	view        browserView
	slots       []storage.Slot
	aborts      []storage.AbortEntry
	loadErr     error
	table       table.Model
	help        help.Model
	keys        SavesKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	resume      int  // Slot picked for resuming, 0 for none
	showSidebar bool // Whether to show the view list sidebar
}

// NewSavesModel creates a new save browser.
func NewSavesModel(store SaveStore, stages *stage.Table, width, height int) SavesModel {
	h := help.New()
	h.ShowAll = false

	m := SavesModel{
		store:       store,
		stages:      stages,
		keys:        DefaultSavesKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.reload()
	return m
}

// columns returns the table columns of the current view.
func (m *SavesModel) columns() []table.Column {
	if m.view == viewAborts {
		return []table.Column{
			{Title: "Frame", Width: 8},
			{Title: "Script", Width: 6},
			{Title: "Offset", Width: 6},
			{Title: "Command", Width: 16},
			{Title: "Reason", Width: 28},
			{Title: "When", Width: 12},
		}
	}
	return []table.Column{
		{Title: "Slot", Width: 4},
		{Title: "Stage", Width: 18},
		{Title: "Position", Width: 9},
		{Title: "Saved", Width: 12},
	}
}

// createTable creates a new table for the current view.
func (m *SavesModel) createTable() table.Model {
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(m.height-8), // Leave room for header, help, and margins
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

// reload reads the current view from the store and rebuilds the table.
func (m *SavesModel) reload() {
	m.loadErr = nil
	m.slots, m.aborts = nil, nil
	if m.store != nil {
		if m.view == viewAborts {
			m.aborts, m.loadErr = m.store.RecentAborts(maxAborts)
		} else {
			m.slots, m.loadErr = m.store.ListSlots()
		}
	}
	m.table = m.createTable()
	m.table.SetRows(m.rows())
	m.table.GotoTop()
}

func (m *SavesModel) stageName(id int) string {
	if m.stages != nil {
		if st, ok := m.stages.Lookup(id); ok && st.Name != "" {
			return st.Name
		}
	}
	return fmt.Sprintf("stage %d", id)
}

// rows formats the loaded entries of the current view.
func (m *SavesModel) rows() []table.Row {
	if m.view == viewAborts {
		rows := make([]table.Row, len(m.aborts))
		for i, a := range m.aborts {
			rows[i] = table.Row{
				strconv.FormatUint(a.Frame, 10),
				fmt.Sprintf("%04d", a.ScriptID),
				strconv.Itoa(a.Offset),
				a.Command,
				a.Reason,
				a.CreatedAt.Format("Jan 02 15:04"),
			}
		}
		return rows
	}

	rows := make([]table.Row, len(m.slots))
	for i, s := range m.slots {
		rows[i] = table.Row{
			strconv.Itoa(s.Slot),
			m.stageName(s.StageID),
			fmt.Sprintf("%d,%d", s.PlayerX, s.PlayerY),
			s.UpdatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows
}

// selectedSlot returns the slot under the table cursor.
func (m *SavesModel) selectedSlot() (int, bool) {
	if m.view != viewSlots || len(m.slots) == 0 {
		return 0, false
	}
	i := m.table.Cursor()
	if i < 0 || i >= len(m.slots) {
		return 0, false
	}
	return m.slots[i].Slot, true
}

// Init initializes the save browser.
func (m SavesModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the save browser.
func (m SavesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextView):
			m.view = (m.view + 1) % viewCount
			m.reload()
			return m, nil

		case key.Matches(msg, m.keys.PrevView):
			m.view = (m.view + viewCount - 1) % viewCount
			m.reload()
			return m, nil

		case key.Matches(msg, m.keys.Resume):
			if n, ok := m.selectedSlot(); ok {
				m.resume = n
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			if n, ok := m.selectedSlot(); ok {
				if err := m.store.DeleteSlot(n); err != nil {
					m.loadErr = err
					return m, nil
				}
				m.reload()
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.table.SetRows(m.rows())
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the save browser.
func (m SavesModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := fmt.Sprintf("SAVES - %s", m.view)
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	content := tableStyle.Render(m.renderTableContent())

	if m.showSidebar {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", content))
	} else {
		b.WriteString(centerText(fmt.Sprintf("< %s >", m.view), m.width))
		b.WriteString("\n\n")
		b.WriteString(content)
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderSidebar lists the browser views.
func (m SavesModel) renderSidebar() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("Views\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for v := browserView(0); v < viewCount; v++ {
		cursor := "  "
		style := lipgloss.NewStyle()
		if v == m.view {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + v.String()))
		sidebar.WriteString("\n")
	}
	return sidebarStyle.Render(sidebar.String())
}

// renderTableContent renders the table or an empty message.
func (m SavesModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	if m.loadErr != nil {
		return emptyStyle.Render(fmt.Sprintf("Cannot read saves:\n%v", m.loadErr))
	}
	if len(m.table.Rows()) == 0 {
		if m.view == viewAborts {
			return emptyStyle.Render("No script aborts recorded.")
		}
		return emptyStyle.Render("No saved games yet.\nScripts save with <SVP.")
	}
	return m.table.View()
}

// IsGoingBack returns true if user wants to go back to menu.
func (m SavesModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m SavesModel) IsQuitting() bool {
	return m.quitting
}

// Resume returns the slot the user picked, or 0.
func (m SavesModel) Resume() int {
	return m.resume
}
