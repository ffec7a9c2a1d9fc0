package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/control-arena/internal/storage"
)

var (
	flagSource string
	flagLimit  int
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Print the leaderboard",
	Long: `Display the top results from the scores database.

Sources:
  ws   - WebSocket clients
  tui  - local terminal
  ssh  - SSH sessions

Examples:
  arena scores --db ~/.arena/scores.db
  arena scores --db ~/.arena/scores.db --source ssh --limit 20`,
	Run: runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagSource, "source", "", "Only show results from this source (ws, tui, ssh)")
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of results to show")
}

func runScores(_ *cobra.Command, _ []string) {
	switch flagSource {
	case "", storage.SourceWebSocket, storage.SourceTerminal, storage.SourceSSH:
	default:
		fail("unknown source %q (want ws, tui or ssh)", flagSource)
	}

	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}

	store, err := storage.Open(cfg.Server.DB)
	if err != nil {
		fail("opening scores database: %v", err)
	}
	defer store.Close()

	scores, err := store.TopScores(flagSource, flagLimit)
	if err != nil {
		fail("retrieving scores: %v", err)
	}

	title := "all sources"
	if flagSource != "" {
		title = flagSource
	}
	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		if cfg.Server.DB == storage.MemoryDSN {
			fmt.Println()
			fmt.Println("The default database lives in memory; pass --db <file> to keep scores.")
		}
		return
	}

	fmt.Printf("  %-4s  %-12s  %-7s  %-5s  %-5s  %-4s  %-10s  %s\n", "Rank", "Player", "Score", "Level", "Kills", "Src", "End", "Date")
	fmt.Printf("  %-4s  %-12s  %-7s  %-5s  %-5s  %-4s  %-10s  %s\n", "----", "------", "-----", "-----", "-----", "---", "---", "----")

	for i, r := range scores {
		player := r.Player
		if player == "" {
			player = "-"
		}
		fmt.Printf("  %-4d  %-12s  %-7d  %-5d  %-5d  %-4s  %-10s  %s\n",
			i+1, player, r.Score, r.Level, r.Kills, r.Source, r.EndReason, r.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	if best, err := store.HighScore(flagSource); err == nil {
		fmt.Printf("Best: %d\n", best)
	}
}
