// arena is the Control the Arena game: a WebSocket host for remote clients,
// a local terminal front-end and an SSH arcade, sharing one leaderboard.
//
// Usage:
//
//	arena serve              - Start the WebSocket host
//	arena play               - Play in this terminal
//	arena ssh                - Start the SSH server for remote terminal play
//	arena scores             - Print the leaderboard
//
// Global flags:
//
//	--config <path>     - Arena/server YAML overriding the built-in defaults
//	--db <path>         - Scores database (default: in memory)
//	--log-level <lvl>   - debug, info, warn or error
//	--fps <rate>        - Terminal tick rate (default: 60)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/control-arena/internal/config"
	"github.com/vovakirdan/control-arena/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
	flagFPS      int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "arena",
	Short: "Control the Arena - a real-time arena shooter",
	Long: `Control the Arena is a side-view arena game. Move, jump and shoot the
enemies that walk in from the right before they wear your HP down.

Available commands:
  serve    - WebSocket host for remote clients
  play     - Play in this terminal
  ssh      - SSH server for remote terminal play
  scores   - Print the leaderboard

Configuration is read from --config, ~/.arena/configs/arena.yaml or
./configs/arena.yaml on top of the built-in defaults. ARENA_HOST, ARENA_PORT,
ARENA_TICK_HZ and ARENA_DB (also from a .env file) override the server section.

Examples:
  arena serve --addr :8765
  arena serve --tick-hz 30 --db ~/.arena/scores.db
  arena play --db ~/.arena/scores.db
  arena ssh --ssh :2222
  arena scores --source ws --limit 20`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to arena config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Scores database file (default: in memory, nothing is kept)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Terminal tick rate (frames per second)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(sshCmd)
	rootCmd.AddCommand(scoresCmd)
}

// loadConfig resolves the configuration: YAML layers, then environment,
// then command-line flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.Server.DB = flagDBPath
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "arena",
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func openStore(cfg config.Config, logger *log.Logger) *storage.Store {
	store, err := storage.Open(cfg.Server.DB)
	if err != nil {
		// Play on without a leaderboard.
		logger.Warn("could not open scores database", "db", cfg.Server.DB, "err", err)
		return nil
	}
	return store
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
