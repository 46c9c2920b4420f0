package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-cave/internal/core"
	"github.com/vovakirdan/tui-cave/internal/scene"
)

// Model is the Bubble Tea model for one running game.
type Model struct {
	host       *scene.Host
	screen     *core.Screen
	config     core.RuntimeConfig
	keyMapper  *KeyMapper
	held       *HeldKeys
	palette    *Palette
	logger     *log.Logger
	err        error // Frame error; the game stops ticking once set
	debug      bool  // F1 status line
	quitting   bool
	backToMenu bool
}

// NewModel creates a Bubble Tea model around a scene host.
func NewModel(host *scene.Host, cfg core.RuntimeConfig) Model {
	return Model{
		host:      host,
		screen:    core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		config:    cfg,
		keyMapper: NewKeyMapper(),
		held:      NewHeldKeys(host.State.Consts.Input.HoldFrames),
		palette:   DefaultPalette(),
		logger:    host.Logger(),
	}
}

// SetPalette changes how the screen is colored.
func (m *Model) SetPalette(p *Palette) {
	m.palette = p
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		m.saveScreenshot()
		return m, nil
	case "f1":
		m.debug = !m.debug
		return m, nil
	case "esc":
		m.backToMenu = true
		return m, nil
	}

	k, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}
	if k != core.KeyNone {
		m.held.Press(k)
	}
	return m, nil
}

// handleTick runs one simulation frame.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.err != nil || m.quitting || m.backToMenu {
		return m, nil
	}

	if err := m.host.Frame(m.held.Frame()); err != nil {
		m.logger.Error("frame failed", "frame", m.host.State.Frame, "error", err)
		m.err = err
		return m, nil
	}

	return m, tickCmd(m.config.TickRate)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.host.Draw(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".cave", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.logger.Warn("cannot create screenshot directory", "error", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("stage%d_%s.txt", m.host.State.StageID, timestamp)
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.logger.Warn("cannot write screenshot", "path", path, "error", err)
		return
	}
	m.logger.Info("screenshot saved", "path", path)
}

// debugLine describes the interpreter for the F1 overlay.
func (m Model) debugLine() string {
	st := m.host.State
	cur := m.host.VM.Cursor()
	return fmt.Sprintf(" frame %d  vm %s  #%04d:%d depth %d  flags %d  control %03b  held %s ",
		st.Frame, m.host.VM.Status(), int(cur.Script), cur.Offset, cur.Depth(),
		st.Flags.Count(), uint16(st.Control), st.Keys.Held)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.host.Draw(m.screen)
	if m.debug {
		m.screen.DrawTextColored(0, 0, m.debugLine(), core.ColorBrightYellow)
	}
	if m.err != nil {
		m.screen.DrawTextColored(0, 0, fmt.Sprintf(" error: %v ", m.err), core.ColorBrightRed)
		m.screen.DrawTextColored(0, 1, " esc: menu  q: quit ", core.ColorGray)
	}

	return m.palette.Render(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Err returns the error that stopped the game, if any.
func (m Model) Err() error {
	return m.err
}
