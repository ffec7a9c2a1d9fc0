package main

import (
	"strings"
	"testing"

	"github.com/vovakirdan/control-arena/internal/config"
)

func TestServeAddrHelpMatchesDefault(t *testing.T) {
	cfg := config.DefaultConfig()
	usage := serveCmd.Flags().Lookup("addr").Usage

	if !strings.Contains(usage, cfg.Server.Addr()) {
		t.Errorf("--addr help %q does not mention the default %q", usage, cfg.Server.Addr())
	}
	if cfg.Server.Host == "" && !strings.Contains(usage, "all interfaces") {
		t.Errorf("--addr help %q should say an empty host binds all interfaces", usage)
	}
}

func TestApplyServeFlags(t *testing.T) {
	defer func(addr string, hz int) { flagAddr, flagTickHz = addr, hz }(flagAddr, flagTickHz)

	flagAddr, flagTickHz = "127.0.0.1:9000", 30
	cfg := config.DefaultConfig()
	if err := applyServeFlags(&cfg); err != nil {
		t.Fatalf("applyServeFlags: %v", err)
	}
	if cfg.Server.Addr() != "127.0.0.1:9000" || cfg.Server.TickHz != 30 {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}

	flagAddr = "no-port"
	cfg = config.DefaultConfig()
	if err := applyServeFlags(&cfg); err == nil {
		t.Error("expected an error for an address without a port")
	}
}
