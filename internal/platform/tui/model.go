package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/control-arena/internal/arena"
	"github.com/vovakirdan/control-arena/internal/core"
	"github.com/vovakirdan/control-arena/internal/storage"
)

// Game is what the terminal loop drives. *arena.Game implements it.
type Game interface {
	ID() string
	Title() string
	Reset(runtime core.RuntimeConfig)
	Step(in core.InputFrame) core.StepResult
	Render(dst *core.Screen)
	State() core.GameState
	Snapshot() arena.StateView
}

// ResultSaver records finished rounds. *storage.Store implements it.
type ResultSaver interface {
	SaveResult(r storage.Result) (int64, error)
}

// Player identifies who is at the keyboard and where from.
type Player struct {
	Name      string
	Source    string // storage.SourceTerminal or storage.SourceSSH
	SessionID string
}

// Model is the Bubble Tea model for one arena game.
type Model struct {
	game       Game
	screen     *core.Screen
	saver      ResultSaver
	player     Player
	config     core.RuntimeConfig
	loop       int
	keyMapper  *KeyMapper
	inputFrame core.InputFrame
	gameState  core.GameState
	roundStart time.Time
	quitting   bool
	backToMenu bool
	recorded   bool // result saved for the current round
}

// NewModel creates a model for the given game. saver may be nil.
func NewModel(game Game, saver ResultSaver, cfg core.RuntimeConfig, player Player) Model {
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		saver:      saver,
		player:     player,
		config:     cfg,
		keyMapper:  NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
		roundStart: time.Now(),
	}
}

// withLoop tags the model's ticks so a session can tell rounds apart.
func (m Model) withLoop(loop int) Model {
	m.loop = loop
	return m
}

// Init starts the game and the tick loop.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate, m.loop)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		// Render scales the arena, so a resize never restarts the round.
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		if msg.Loop != m.loop {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.record(storage.EndQuit)
		m.quitting = true
		return m, tea.Quit
	}

	if m.inputFrame.Has(core.ActionBack) && (m.gameState.GameOver || m.gameState.Paused) {
		m.record(storage.EndQuit)
		m.backToMenu = true
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.roundStart = time.Now()
		m.recorded = false
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate, m.loop)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State

	if m.gameState.GameOver {
		m.record(storage.EndGameOver)
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate, m.loop)
}

// record saves the current round once. Rounds that never ticked are skipped.
func (m *Model) record(reason string) {
	if m.recorded {
		return
	}
	m.recorded = true

	view := m.game.Snapshot()
	if m.saver == nil || view.Tick == 0 {
		return
	}
	//nolint:errcheck // Best-effort save, game continues regardless
	m.saver.SaveResult(storage.Result{
		SessionID: m.player.SessionID,
		Player:    m.player.Name,
		Source:    m.player.Source,
		Score:     view.Score,
		Level:     view.Level,
		Kills:     view.Kills,
		Ticks:     int64(view.Tick),
		EndReason: reason,
		Duration:  int(time.Since(m.roundStart).Seconds()),
	})
}

// saveScreenshot writes the current frame as plain text under ~/.arena/screenshots.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".arena", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// State returns the last observed game state.
func (m Model) State() core.GameState {
	return m.gameState
}

// IsQuitting returns true if the user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if the user requested to go back to the menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}
