package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/control-arena/internal/config"
	"github.com/vovakirdan/control-arena/internal/server"
)

var (
	flagAddr   string
	flagTickHz int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WebSocket host",
	Long: `Serve the arena over WebSocket. Every connection gets its own arena.

Endpoints:
  /ws       - game socket (JSON messages)
  /healthz  - liveness check
  /scores   - leaderboard as JSON (?source=ws&limit=10)

By default the arena advances once per input message. With --tick-hz the
server advances every session at a fixed rate and pushes state_update
messages on its own; inputs then only steer.

Examples:
  arena serve
  arena serve --addr 0.0.0.0:9000
  arena serve --tick-hz 30`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address host:port (default from config, :8765 on all interfaces)")
	serveCmd.Flags().IntVar(&flagTickHz, "tick-hz", -1, "Fixed simulation rate, 0 = advance per input (default from config)")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	if err := applyServeFlags(&cfg); err != nil {
		fail("%v", err)
	}

	logger := newLogger()
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	var board server.Leaderboard
	if store != nil {
		board = store
	}
	srv := server.New(cfg, board, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", "err", err)
		stop()
		os.Exit(1)
	}
}

func applyServeFlags(cfg *config.Config) error {
	if flagAddr != "" {
		host, port, err := net.SplitHostPort(flagAddr)
		if err != nil {
			return err
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return err
		}
		cfg.Server.Host = host
		cfg.Server.Port = p
	}
	if flagTickHz >= 0 {
		cfg.Server.TickHz = flagTickHz
	}
	return cfg.Validate()
}
