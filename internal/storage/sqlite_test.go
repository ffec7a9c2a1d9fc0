package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(MemoryDSN)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "arena.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestStoreFilePersistsAcrossOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "arena.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.SaveScore(SourceTerminal, 70); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	high, err := store.HighScore(SourceTerminal)
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 70 {
		t.Errorf("expected 70 after reopen, got %d", high)
	}
}

func TestStoreMemoryIsShared(t *testing.T) {
	store := openMemory(t)

	// Several statements must land on the same in-memory database.
	for _, score := range []int{10, 20, 30} {
		if _, err := store.SaveScore(SourceWebSocket, score); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	scores, err := store.TopScores(SourceWebSocket, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Errorf("expected 3 scores, got %d", len(scores))
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openMemory(t)

	results := []Result{
		{SessionID: "a", Player: "neo", Source: SourceWebSocket, Score: 40, Level: 2, Kills: 4, Ticks: 300, EndReason: EndGameOver, Duration: 30},
		{SessionID: "b", Player: "trin", Source: SourceWebSocket, Score: 90, Level: 3, Kills: 9, Ticks: 900, EndReason: EndDisconnect, Duration: 90},
		{SessionID: "c", Source: SourceSSH, Score: 60, Level: 3, Kills: 6, EndReason: EndQuit},
	}
	for _, r := range results {
		if _, err := store.SaveResult(r); err != nil {
			t.Fatalf("SaveResult() failed: %v", err)
		}
	}

	ws, err := store.TopScores(SourceWebSocket, 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(ws) != 2 {
		t.Fatalf("expected 2 ws results, got %d", len(ws))
	}
	if ws[0].Score != 90 || ws[0].Player != "trin" || ws[0].EndReason != EndDisconnect {
		t.Errorf("unexpected top result %+v", ws[0])
	}
	if ws[1].Kills != 4 || ws[1].Ticks != 300 || ws[1].Duration != 30 {
		t.Errorf("fields not round-tripped: %+v", ws[1])
	}
	if ws[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	all, err := store.TopScores("", 2)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(all) != 2 || all[0].Score != 90 || all[1].Score != 60 {
		t.Errorf("unexpected overall top 2: %+v", all)
	}
}

func TestStoreRejectsMissingSource(t *testing.T) {
	store := openMemory(t)
	if _, err := store.SaveResult(Result{Score: 10}); err == nil {
		t.Error("expected an error for a result without source")
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openMemory(t)

	high, err := store.HighScore(SourceTerminal)
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("expected 0 for empty store, got %d", high)
	}

	store.SaveScore(SourceTerminal, 30)
	store.SaveScore(SourceTerminal, 80)
	store.SaveScore(SourceSSH, 120)

	if high, _ = store.HighScore(SourceTerminal); high != 80 {
		t.Errorf("expected tui high score 80, got %d", high)
	}
	if high, _ = store.HighScore(""); high != 120 {
		t.Errorf("expected overall high score 120, got %d", high)
	}
}

func TestStoreRecentResults(t *testing.T) {
	store := openMemory(t)
	for i, src := range []string{SourceTerminal, SourceSSH, SourceWebSocket} {
		store.SaveResult(Result{Source: src, Score: i * 10})
	}

	recent, err := store.RecentResults(2)
	if err != nil {
		t.Fatalf("RecentResults() failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 results, got %d", len(recent))
	}
	if recent[0].Source != SourceWebSocket || recent[1].Source != SourceSSH {
		t.Errorf("expected newest first, got %s then %s", recent[0].Source, recent[1].Source)
	}
}

func TestStoreAllStats(t *testing.T) {
	store := openMemory(t)
	store.SaveResult(Result{Source: SourceWebSocket, Score: 20, Kills: 2})
	store.SaveResult(Result{Source: SourceWebSocket, Score: 40, Kills: 4})
	store.SaveResult(Result{Source: SourceSSH, Score: 10, Kills: 1})

	stats, err := store.AllStats()
	if err != nil {
		t.Fatalf("AllStats() failed: %v", err)
	}
	ws, ok := stats[SourceWebSocket]
	if !ok {
		t.Fatal("missing ws stats")
	}
	if ws.Games != 2 || ws.HighScore != 40 || ws.AvgScore != 30 || ws.TotalKills != 6 {
		t.Errorf("unexpected ws stats %+v", ws)
	}
	if _, ok := stats[SourceTerminal]; ok {
		t.Error("sources without results should be absent")
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openMemory(t)
	store.SaveScore(SourceTerminal, 100)
	store.SaveScore(SourceSSH, 50)

	if err := store.ClearScores(SourceTerminal); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	scores, _ := store.TopScores(SourceTerminal, 10)
	if len(scores) != 0 {
		t.Errorf("expected 0 tui scores after clear, got %d", len(scores))
	}
	scores, _ = store.TopScores(SourceSSH, 10)
	if len(scores) != 1 {
		t.Errorf("clear should not touch other sources, got %d", len(scores))
	}
}
