package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/control-arena/internal/arena"
	"github.com/vovakirdan/control-arena/internal/core"
	"github.com/vovakirdan/control-arena/internal/platform/tui"
	"github.com/vovakirdan/control-arena/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start the arena in this terminal.

Controls:
  A/Left, D/Right    - Move
  W/Up/Space         - Jump
  F/X/Enter          - Shoot
  P                  - Pause
  R                  - Restart (after game over)
  B/Esc              - Back to menu (paused or game over)
  Ctrl+S             - Save a screenshot to ~/.arena/screenshots
  Q/Ctrl+C           - Quit

Examples:
  arena play
  arena play --fps 30
  arena play --db ~/.arena/scores.db`,
	Run: runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	logger := newLogger()
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	runtime := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
	}
	player := tui.Player{
		Name:      os.Getenv("USER"),
		Source:    storage.SourceTerminal,
		SessionID: uuid.NewString(),
	}
	newGame := func() tui.Game { return arena.NewGame(cfg.Game) }

	if err := tui.RunSession(newGame, tui.StoreOf(store), runtime, player); err != nil {
		fail("%v", err)
	}
}
