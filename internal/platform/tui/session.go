package tui

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/scene"
)

// Engine bundles what every game session is built from. Deps.Global and
// Deps.Stages are shared read-only between sessions.
type Engine struct {
	Deps  scene.Deps
	Saves SaveStore // Save browser backend, may be nil
	Mono  bool      // Render without colors
}

// NewHost creates a fresh game for one session.
func (e Engine) NewHost(cfg core.RuntimeConfig, start scene.LoadingScene) (*scene.Host, error) {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	first := start
	return scene.NewHost(e.Deps, cfg, &first)
}

func (e Engine) logger() *log.Logger {
	if e.Deps.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Deps.Logger
}

type sessionMode int

const (
	modeMenu sessionMode = iota
	modeSaves
	modeGame
)

// SessionModel manages the full flow: menu -> game -> menu, with the save
// browser reachable from the menu. Local play and SSH sessions both use it.
type SessionModel struct {
	engine   Engine
	config   core.RuntimeConfig
	username string
	mode     sessionMode
	menu     MenuModel
	saves    SavesModel
	game     *Model
	quitting bool
}

// NewSessionModel creates a session. When start is non-nil the session
// begins in the game instead of the menu.
func NewSessionModel(engine Engine, cfg core.RuntimeConfig, username string, start *scene.LoadingScene) SessionModel {
	m := SessionModel{
		engine:   engine,
		config:   cfg,
		username: username,
		menu:     NewMenuModel(engine.Deps.Stages, cfg),
	}
	if start != nil {
		m.startGame(*start)
	}
	return m
}

// startGame switches to a new game, or back to the menu with an error.
func (m *SessionModel) startGame(start scene.LoadingScene) tea.Cmd {
	host, err := m.engine.NewHost(m.config, start)
	if err != nil {
		m.engine.logger().Error("cannot start game", "user", m.username, "error", err)
		m.menu = NewMenuModel(m.engine.Deps.Stages, m.config)
		m.menu.SetStatus(fmt.Sprintf("error: %v", err))
		m.mode = modeMenu
		return nil
	}
	game := NewModel(host, m.config)
	if m.engine.Mono {
		game.SetPalette(MonoPalette())
	}
	m.game = &game
	m.mode = modeGame
	return m.game.Init()
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	if m.mode == modeGame && m.game != nil {
		return m.game.Init()
	}
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.mode {
	case modeGame:
		return m.updateGame(msg)
	case modeSaves:
		return m.updateSaves(msg)
	default:
		return m.updateMenu(msg)
	}
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.menu.WantsSaves() {
		m.saves = NewSavesModel(m.engine.Saves, m.engine.Deps.Stages, m.config.ScreenW, m.config.ScreenH)
		m.mode = modeSaves
		return m, m.saves.Init()
	}

	if selected := m.menu.Selected(); selected != nil {
		return m, m.startGame(scene.LoadingScene{Stage: selected.StageID})
	}

	return m, cmd
}

// updateSaves handles updates when in the save browser.
func (m SessionModel) updateSaves(msg tea.Msg) (tea.Model, tea.Cmd) {
	newSaves, cmd := m.saves.Update(msg)
	if savesModel, ok := newSaves.(SavesModel); ok {
		m.saves = savesModel
	}

	switch {
	case m.saves.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.saves.Resume() > 0:
		return m, m.startGame(scene.LoadingScene{Slot: m.saves.Resume()})
	case m.saves.IsGoingBack():
		m.menu = NewMenuModel(m.engine.Deps.Stages, m.config)
		m.mode = modeMenu
		return m, m.menu.Init()
	}

	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(Model); ok {
		m.game = &gameModel
	}

	if m.game.BackToMenu() {
		m.game = nil
		m.menu = NewMenuModel(m.engine.Deps.Stages, m.config)
		m.mode = modeMenu
		return m, m.menu.Init()
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.mode {
	case modeGame:
		return m.game.View()
	case modeSaves:
		return m.saves.View()
	default:
		return m.menu.View()
	}
}

// Run starts a local session. A non-nil start skips the menu.
func Run(engine Engine, cfg core.RuntimeConfig, start *scene.LoadingScene) error {
	model := NewSessionModel(engine, cfg, "local", start)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
