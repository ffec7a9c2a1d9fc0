package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Environment variables that override the server section.
const (
	EnvHost   = "ARENA_HOST"
	EnvPort   = "ARENA_PORT"
	EnvTickHz = "ARENA_TICK_HZ"
	EnvDB     = "ARENA_DB"
)

// Load loads the arena configuration.
// Search order: customPath -> ~/.arena/configs/arena.yaml -> ./configs/arena.yaml -> embedded default.
// Files are overlaid on the built-in defaults, so a file may set only the
// keys it cares about.
func Load(customPath string) (Config, error) {
	cfg := DefaultConfig()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	if userCfgPath := userConfigPath("arena.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = DefaultConfig()
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", "arena.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = DefaultConfig()
	}

	if err := yaml.Unmarshal(defaultArenaYAML, &cfg); err != nil {
		return DefaultConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// ApplyEnv loads an optional .env file from the working directory and then
// applies ARENA_* overrides to the server section. Variables already set in
// the process environment win over the file.
func ApplyEnv(cfg *Config, envFiles ...string) error {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	if v, ok := os.LookupEnv(EnvHost); ok {
		cfg.Server.Host = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvPort, v, err)
		}
		cfg.Server.Port = port
	}
	if v, ok := os.LookupEnv(EnvTickHz); ok {
		hz, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvTickHz, v, err)
		}
		cfg.Server.TickHz = hz
	}
	if v, ok := os.LookupEnv(EnvDB); ok {
		cfg.Server.DB = v
	}
	return nil
}

// Validate checks the configuration for values the simulation cannot run with.
func (c Config) Validate() error {
	if err := c.Game.Validate(); err != nil {
		return err
	}
	s := c.Server
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, s.Port)
	}
	if s.TickHz < 0 {
		return fmt.Errorf("%w: server.tick_hz must not be negative", ErrInvalidConfig)
	}
	if s.PingInterval <= 0 || s.PongWait <= s.PingInterval {
		return fmt.Errorf("%w: server.pong_wait must exceed a positive ping_interval", ErrInvalidConfig)
	}
	return nil
}

// Validate checks the simulation tuning.
func (a ArenaConfig) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"arena.width", a.Arena.Width},
		{"arena.height", a.Arena.Height},
		{"physics.gravity", a.Physics.Gravity},
		{"player.move_speed", a.Player.MoveSpeed},
		{"player.jump_velocity", a.Player.JumpVelocity},
		{"bullets.speed", a.Bullets.Speed},
		{"bullets.lifetime", a.Bullets.Lifetime},
		{"enemies.speed", a.Enemies.Speed},
		{"enemies.spawn_interval", a.Enemies.SpawnInterval},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, p.name, p.v)
		}
	}
	if a.Player.MaxHP <= 0 || a.Enemies.MaxHP <= 0 {
		return fmt.Errorf("%w: max_hp must be positive", ErrInvalidConfig)
	}
	if a.Player.Hitbox < 0 || a.Bullets.Hitbox < 0 || a.Enemies.Hitbox < 0 {
		return fmt.Errorf("%w: hitbox radii must not be negative", ErrInvalidConfig)
	}
	if a.Bullets.Damage < 0 || a.Enemies.ContactDamage < 0 {
		return fmt.Errorf("%w: damage must not be negative", ErrInvalidConfig)
	}
	if a.Enemies.KillScore < 0 {
		return fmt.Errorf("%w: enemies.kill_score must not be negative, got %d", ErrInvalidConfig, a.Enemies.KillScore)
	}
	if a.Player.StartX < 0 || a.Player.StartX > a.Arena.Width {
		return fmt.Errorf("%w: player.start_x outside the arena", ErrInvalidConfig)
	}
	return NewLevelTable(a.Levels).Validate()
}

func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arena", "configs", filename)
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
