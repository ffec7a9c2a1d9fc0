package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/control-arena/internal/arena"
	"github.com/vovakirdan/control-arena/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var sshCmd = &cobra.Command{
	Use:   "ssh",
	Short: "Start the SSH server for remote terminal play",
	Long: `Start an SSH server. Each connection gets its own menu and arena;
everyone shares the same leaderboard, recorded under the ssh source.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.arena/host_key

Examples:
  arena ssh                           # Listen on :23234 with auto-generated key
  arena ssh --ssh :2222               # Listen on port 2222
  arena ssh --host-key ./my_host_key  # Use specific host key
  arena ssh --db ./scores.db          # Keep scores across restarts

Users can connect with:
  ssh localhost -p 23234`,
	Run: runSSH,
}

func init() {
	sshCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	sshCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	sshCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runSSH(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}

	logger := newLogger()
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	sshCfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		TickRate:    flagFPS,
	}
	newGame := func() tui.Game { return arena.NewGame(cfg.Game) }

	srv, err := tui.NewSSHServer(sshCfg, newGame, tui.StoreOf(store), logger)
	if err != nil {
		fail("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("connect with", "cmd", "ssh localhost -p "+portOf(srv.Addr()))
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("ssh server stopped", "err", err)
		stop()
		os.Exit(1)
	}
}

func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
