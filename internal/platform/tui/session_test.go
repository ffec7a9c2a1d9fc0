package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/control-arena/internal/config"
	"github.com/vovakirdan/control-arena/internal/storage"
)

func arenaConfig(t *testing.T) config.ArenaConfig {
	t.Helper()
	return config.DefaultArenaConfig()
}

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(storage.MemoryDSN)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sessionUpdate(t *testing.T, m SessionModel, msg tea.Msg) (SessionModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(SessionModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func TestSessionPlayAndBack(t *testing.T) {
	store := openStore(t)
	g := &scriptedGame{overAt: 2}
	player := Player{Name: "neo", Source: storage.SourceTerminal}
	m := NewSessionModel(func() Game { return g }, StoreOf(store), testRuntime(), player)

	if !strings.Contains(m.View(), "Play") {
		t.Fatal("expected the menu first")
	}

	m, cmd := sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.current != screenGame || cmd == nil {
		t.Fatal("enter on Play should start the game")
	}

	for range 3 {
		m, _ = sessionUpdate(t, m, TickMsg{Loop: m.rounds})
	}
	m, _ = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.current != screenMenu {
		t.Fatal("esc after game over should return to the menu")
	}

	high, err := store.HighScore(storage.SourceTerminal)
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 20 {
		t.Errorf("expected saved score 20, got %d", high)
	}
	if !strings.Contains(m.View(), "Best score: 20") {
		t.Error("menu should show the best score")
	}
}

func TestSessionStaleTicksAfterReplay(t *testing.T) {
	g := &scriptedGame{}
	m := NewSessionModel(func() Game { return g }, nil, testRuntime(), Player{})

	m, _ = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	firstLoop := m.rounds
	m, _ = sessionUpdate(t, m, runeKey("p"))
	m, _ = sessionUpdate(t, m, TickMsg{Loop: firstLoop})
	m, _ = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.current != screenMenu {
		t.Fatal("expected the menu")
	}

	m, _ = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	steps := g.steps
	m, _ = sessionUpdate(t, m, TickMsg{Loop: firstLoop})
	if g.steps != steps {
		t.Error("a tick from the previous round must not step the new one")
	}
	sessionUpdate(t, m, TickMsg{Loop: m.rounds})
	if g.steps != steps+1 {
		t.Errorf("expected one step from the current loop, got %d", g.steps-steps)
	}
}

func TestSessionScoreboard(t *testing.T) {
	store := openStore(t)
	store.SaveResult(storage.Result{Player: "trin", Source: storage.SourceWebSocket, Score: 70})
	store.SaveResult(storage.Result{Player: "tank", Source: storage.SourceSSH, Score: 40})

	m := NewSessionModel(func() Game { return &scriptedGame{} }, StoreOf(store), testRuntime(), Player{})
	m, _ = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.current != screenScores {
		t.Fatal("tab should open the scoreboard")
	}
	view := m.View()
	if !strings.Contains(view, "trin") || !strings.Contains(view, "tank") {
		t.Errorf("All tab should list both players:\n%s", view)
	}

	// All -> Terminal -> SSH
	m, _ = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.scores.Source() != storage.SourceSSH {
		t.Fatalf("expected ssh tab, got %q", m.scores.Source())
	}
	view = m.View()
	if strings.Contains(view, "trin") || !strings.Contains(view, "tank") {
		t.Errorf("SSH tab should only list ssh results:\n%s", view)
	}

	m, _ = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.current != screenMenu {
		t.Error("esc should return to the menu")
	}
}

func TestSessionQuitFromMenu(t *testing.T) {
	m := NewSessionModel(func() Game { return &scriptedGame{} }, nil, testRuntime(), Player{})
	m, cmd := sessionUpdate(t, m, runeKey("q"))
	if !m.quitting || cmd == nil {
		t.Error("q should quit from the menu")
	}
	if m.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestStoreOfNil(t *testing.T) {
	if StoreOf(nil) != nil {
		t.Error("a nil store must stay nil")
	}
}
