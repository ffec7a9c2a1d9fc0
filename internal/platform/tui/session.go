package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/control-arena/internal/core"
	"github.com/vovakirdan/control-arena/internal/storage"
)

// Store is the score storage a session uses. *storage.Store implements it.
type Store interface {
	ResultSaver
	Leaderboard
	HighScore(source string) (int, error)
}

type screenKind int

const (
	screenMenu screenKind = iota
	screenGame
	screenScores
)

// SessionModel manages the full flow of one player: menu, game and
// scoreboard. It is the top-level model for both local and SSH play.
type SessionModel struct {
	newGame  func() Game
	store    Store
	config   core.RuntimeConfig
	player   Player
	current  screenKind
	menu     MenuModel
	game     Model
	scores   ScoreboardModel
	rounds   int
	quitting bool
}

// NewSessionModel creates a session. store may be nil, in which case
// nothing is recorded and the scoreboard stays empty.
func NewSessionModel(newGame func() Game, store Store, cfg core.RuntimeConfig, player Player) SessionModel {
	m := SessionModel{
		newGame: newGame,
		store:   store,
		config:  cfg,
		player:  player,
	}
	m.menu = m.newMenu()
	return m
}

// StoreOf adapts a possibly nil *storage.Store. A nil pointer must not
// become a non-nil interface.
func StoreOf(s *storage.Store) Store {
	if s == nil {
		return nil
	}
	return s
}

func (m SessionModel) newMenu() MenuModel {
	best := 0
	if m.store != nil {
		//nolint:errcheck // A missing high score only hides the banner
		best, _ = m.store.HighScore("")
	}
	return NewMenuModel(m.config.ScreenW, m.config.ScreenH, best, m.player.Name)
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update routes messages to the active screen.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.current {
	case screenGame:
		return m.updateGame(msg)
	case screenScores:
		return m.updateScores(msg)
	default:
		return m.updateMenu(msg)
	}
}

func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		m.menu = menu
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.menu.Choice() {
	case ChoicePlay:
		m.rounds++
		var saver ResultSaver
		if m.store != nil {
			saver = m.store
		}
		m.game = NewModel(m.newGame(), saver, m.config, m.player).withLoop(m.rounds)
		m.current = screenGame
		return m, m.game.Init()

	case ChoiceScores:
		var board Leaderboard
		if m.store != nil {
			board = m.store
		}
		m.scores = NewScoreboardModel(board, m.config.ScreenW, m.config.ScreenH)
		m.current = screenScores
		return m, m.scores.Init()
	}

	return m, cmd
}

func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.game.Update(msg)
	if game, ok := next.(Model); ok {
		m.game = game
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.game.BackToMenu() {
		return m.backToMenu()
	}

	return m, cmd
}

func (m SessionModel) updateScores(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scores.Update(msg)
	if scores, ok := next.(ScoreboardModel); ok {
		m.scores = scores
	}

	if m.scores.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	if m.scores.IsGoingBack() {
		return m.backToMenu()
	}

	return m, cmd
}

func (m SessionModel) backToMenu() (tea.Model, tea.Cmd) {
	m.current = screenMenu
	m.menu = m.newMenu()
	return m, m.menu.Init()
}

// View renders the active screen.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.current {
	case screenGame:
		return m.game.View()
	case screenScores:
		return m.scores.View()
	default:
		return m.menu.View()
	}
}

// RunSession runs the menu, game and scoreboard flow in the local terminal.
func RunSession(newGame func() Game, store Store, cfg core.RuntimeConfig, player Player) error {
	p := tea.NewProgram(
		NewSessionModel(newGame, store, cfg, player),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
