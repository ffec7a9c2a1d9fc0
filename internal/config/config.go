// Package config provides YAML-based configuration for the arena simulation
// and its hosts, with embedded defaults and environment overrides.
package config

import "time"

// Config is the root of arena.yaml.
type Config struct {
	Game   ArenaConfig  `yaml:"game"`
	Server ServerConfig `yaml:"server"`
}

// ArenaConfig holds the tuning constants of the simulation. It is fixed for
// the lifetime of a Simulation.
type ArenaConfig struct {
	Arena   ArenaBounds   `yaml:"arena"`
	Physics ArenaPhysics  `yaml:"physics"`
	Player  ArenaPlayer   `yaml:"player"`
	Bullets ArenaBullets  `yaml:"bullets"`
	Enemies ArenaEnemies  `yaml:"enemies"`
	Levels  []LevelConfig `yaml:"levels"`
}

// ArenaBounds is the playable area in arena units. Y grows upward from the
// ground line at 0.
type ArenaBounds struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ArenaPhysics defines global physics parameters.
type ArenaPhysics struct {
	Gravity float64 `yaml:"gravity"` // units/s², pulls vertical velocity down
}

// ArenaPlayer defines player parameters.
type ArenaPlayer struct {
	StartX       float64 `yaml:"start_x"`
	MoveSpeed    float64 `yaml:"move_speed"`    // units/s
	JumpVelocity float64 `yaml:"jump_velocity"` // units/s, initial upward velocity
	Hitbox       float64 `yaml:"hitbox"`        // collision radius
	MaxHP        int     `yaml:"max_hp"`
	MuzzleX      float64 `yaml:"muzzle_x"` // projectile spawn offset from player
	MuzzleY      float64 `yaml:"muzzle_y"`
}

// ArenaBullets defines projectile parameters.
type ArenaBullets struct {
	Speed    float64 `yaml:"speed"`    // units/s
	Lifetime float64 `yaml:"lifetime"` // seconds
	Hitbox   float64 `yaml:"hitbox"`
	Damage   int     `yaml:"damage"`
}

// ArenaEnemies defines enemy parameters.
type ArenaEnemies struct {
	Speed         float64 `yaml:"speed"`          // units/s, leftward
	SpawnInterval float64 `yaml:"spawn_interval"` // seconds
	SpawnOffset   float64 `yaml:"spawn_offset"`   // distance past the right edge
	DespawnX      float64 `yaml:"despawn_x"`      // enemies left of this are removed
	Hitbox        float64 `yaml:"hitbox"`
	ContactDamage int     `yaml:"contact_damage"`
	MaxHP         int     `yaml:"max_hp"`
	KillScore     int     `yaml:"kill_score"`
}

// LevelConfig is one row of the level table: the level reached once the
// score is at least MinScore.
type LevelConfig struct {
	Level    int `yaml:"level"`
	MinScore int `yaml:"min_score"`
}

// ServerConfig holds the WebSocket host settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	TickHz          int           `yaml:"tick_hz"` // 0 = advance once per input message
	DB              string        `yaml:"db"`      // "" or ":memory:" keeps scores in memory
	MaxMessageBytes int64         `yaml:"max_message_bytes"`
	PingInterval    time.Duration `yaml:"ping_interval"`
	PongWait        time.Duration `yaml:"pong_wait"`
	WriteWait       time.Duration `yaml:"write_wait"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
