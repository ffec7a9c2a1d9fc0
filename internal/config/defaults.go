package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/arena.yaml
var defaultArenaYAML []byte

// DefaultArenaConfig returns the built-in simulation tuning.
func DefaultArenaConfig() ArenaConfig {
	return ArenaConfig{
		Arena: ArenaBounds{
			Width:  800,
			Height: 400,
		},
		Physics: ArenaPhysics{
			Gravity: 600,
		},
		Player: ArenaPlayer{
			StartX:       0,
			MoveSpeed:    200,
			JumpVelocity: 300,
			Hitbox:       30,
			MaxHP:        100,
			MuzzleX:      20,
			MuzzleY:      20,
		},
		Bullets: ArenaBullets{
			Speed:    400,
			Lifetime: 2.0,
			Hitbox:   10,
			Damage:   50,
		},
		Enemies: ArenaEnemies{
			Speed:         80,
			SpawnInterval: 3.0,
			SpawnOffset:   50,
			DespawnX:      -100,
			Hitbox:        30,
			ContactDamage: 10,
			MaxHP:         100,
			KillScore:     10,
		},
		Levels: []LevelConfig{
			{Level: 1, MinScore: 0},
			{Level: 2, MinScore: 20},
			{Level: 3, MinScore: 50},
		},
	}
}

// DefaultServerConfig returns the built-in host settings.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "",
		Port:            8765,
		TickHz:          0,
		DB:              ":memory:",
		MaxMessageBytes: 1 << 20,
		PingInterval:    25 * time.Second,
		PongWait:        60 * time.Second,
		WriteWait:       10 * time.Second,
	}
}

// DefaultConfig returns the complete built-in configuration.
func DefaultConfig() Config {
	return Config{
		Game:   DefaultArenaConfig(),
		Server: DefaultServerConfig(),
	}
}

// DefaultYAML returns the embedded default arena.yaml.
func DefaultYAML() []byte {
	return defaultArenaYAML
}
