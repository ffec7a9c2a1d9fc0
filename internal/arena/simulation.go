// Package arena implements the Control the Arena simulation: a single
// player who runs, jumps and shoots while enemies walk in from the right.
//
// The Simulation is deterministic and clock-free. The caller supplies the
// current time to Advance and feeds input through ApplyInput; nothing here
// blocks, sleeps, logs or starts goroutines. A Simulation is not safe for
// concurrent use; hosts confine each one to a single goroutine.
package arena

import (
	"time"

	"github.com/vovakirdan/control-arena/internal/config"
	"github.com/vovakirdan/control-arena/internal/core"
)

// Simulation owns the whole game state of one arena.
type Simulation struct {
	cfg    config.ArenaConfig
	levels config.LevelTable

	player      Player
	projectiles []Projectile
	enemies     []Enemy

	score    int
	level    int
	kills    int
	gameOver bool
	tick     uint64

	lastUpdate time.Time
	spawnTimer float64 // seconds since the last enemy spawn
	moveIntent float64 // -1, 0 or +1, consumed by the next Advance
}

// New creates a simulation whose first tick boundary is start.
func New(cfg config.ArenaConfig, start time.Time) *Simulation {
	s := &Simulation{
		cfg:    cfg,
		levels: config.NewLevelTable(cfg.Levels),
	}
	s.Reset(start)
	return s
}

// Reset restores the initial state. It is the only way to leave game over.
func (s *Simulation) Reset(now time.Time) {
	s.player = Player{
		X:        s.cfg.Player.StartX,
		Y:        0,
		HP:       s.cfg.Player.MaxHP,
		OnGround: true,
	}
	s.projectiles = make([]Projectile, 0, 16)
	s.enemies = make([]Enemy, 0, 8)
	s.score = 0
	s.kills = 0
	s.gameOver = false
	s.tick = 0
	s.lastUpdate = now
	s.spawnTimer = 0
	s.moveIntent = 0
	s.level = s.levels.LevelForScore(0)
}

// ApplyInput applies one action to the current tick. Actions the arena does
// not understand are ignored, as is everything once the game is over.
//
// ApplyInput takes no clock, so a projectile's age is counted from the last
// tick boundary. After a long idle gap its first Advance can already expire
// it.
func (s *Simulation) ApplyInput(a core.Action) {
	if s.gameOver {
		return
	}

	switch a {
	case core.ActionMoveLeft:
		s.moveIntent = -1
	case core.ActionMoveRight:
		s.moveIntent = 1
	case core.ActionJump:
		if s.player.OnGround {
			s.player.OnGround = false
			s.player.VerticalVelocity = s.cfg.Player.JumpVelocity
		}
	case core.ActionShoot:
		s.projectiles = append(s.projectiles, Projectile{
			X:         s.player.X + s.cfg.Player.MuzzleX,
			Y:         s.player.Y + s.cfg.Player.MuzzleY,
			Direction: 1,
			CreatedAt: s.lastUpdate,
			Active:    true,
		})
	default:
		// no-op
	}
}

// Advance runs one tick ending at now: player physics, projectiles,
// enemies, collisions, then score-derived state.
func (s *Simulation) Advance(now time.Time) {
	if s.gameOver {
		if now.After(s.lastUpdate) {
			s.lastUpdate = now
		}
		return
	}

	dt := now.Sub(s.lastUpdate).Seconds()
	if dt < 0 {
		// A clock that steps backwards yields an empty tick and keeps the
		// later boundary.
		dt = 0
		now = s.lastUpdate
	}
	s.lastUpdate = now
	s.tick++

	s.updatePlayer(dt)
	s.updateProjectiles(now, dt)
	s.updateEnemies(dt)
	s.resolveCollisions()
	s.level = s.levels.LevelForScore(s.score)
}

func (s *Simulation) updatePlayer(dt float64) {
	p := &s.player

	if s.moveIntent != 0 {
		p.X += s.cfg.Player.MoveSpeed * dt * s.moveIntent
		s.moveIntent = 0
	}
	p.X = core.ClampF(p.X, 0, s.cfg.Arena.Width)

	if !p.OnGround {
		p.VerticalVelocity -= s.cfg.Physics.Gravity * dt
		p.Y += p.VerticalVelocity * dt
		if p.Y <= 0 {
			p.Y = 0
			p.VerticalVelocity = 0
			p.OnGround = true
		}
	}
}

func (s *Simulation) updateProjectiles(now time.Time, dt float64) {
	lifetime := s.cfg.Bullets.Lifetime
	for i := range s.projectiles {
		b := &s.projectiles[i]
		b.X += s.cfg.Bullets.Speed * dt * b.Direction
		if now.Sub(b.CreatedAt).Seconds() > lifetime || b.X < 0 || b.X > s.cfg.Arena.Width {
			b.Active = false
		}
	}
	s.projectiles = compactProjectiles(s.projectiles)
}

func (s *Simulation) updateEnemies(dt float64) {
	existing := len(s.enemies)

	s.spawnTimer += dt
	if s.spawnTimer >= s.cfg.Enemies.SpawnInterval {
		s.enemies = append(s.enemies, Enemy{
			X:     s.cfg.Arena.Width + s.cfg.Enemies.SpawnOffset,
			Y:     0,
			HP:    s.cfg.Enemies.MaxHP,
			Speed: s.cfg.Enemies.Speed,
			Alive: true,
		})
		s.spawnTimer = 0
	}

	// Only enemies that existed before this tick move.
	for i := 0; i < existing; i++ {
		e := &s.enemies[i]
		e.X -= e.Speed * dt
		if e.X < s.cfg.Enemies.DespawnX {
			e.Alive = false
		}
	}
	s.enemies = compactEnemies(s.enemies)
}

func (s *Simulation) resolveCollisions() {
	bulletR := s.cfg.Bullets.Hitbox
	enemyR := s.cfg.Enemies.Hitbox

	for i := range s.projectiles {
		b := &s.projectiles[i]
		if !b.Active {
			continue
		}
		for j := range s.enemies {
			e := &s.enemies[j]
			if !e.Alive || !core.CirclesCollide(b.X, b.Y, bulletR, e.X, e.Y, enemyR) {
				continue
			}
			b.Active = false
			e.HP -= s.cfg.Bullets.Damage
			if e.HP <= 0 {
				e.Alive = false
				s.score += s.cfg.Enemies.KillScore
				s.kills++
			}
			break
		}
	}

	p := &s.player
	for j := range s.enemies {
		e := &s.enemies[j]
		if !e.Alive || !core.CirclesCollide(e.X, e.Y, enemyR, p.X, p.Y, s.cfg.Player.Hitbox) {
			continue
		}
		e.Alive = false
		p.HP -= s.cfg.Enemies.ContactDamage
		if p.HP <= 0 {
			p.HP = 0
			s.gameOver = true
		}
	}

	s.projectiles = compactProjectiles(s.projectiles)
	s.enemies = compactEnemies(s.enemies)
}

// Score returns the current score.
func (s *Simulation) Score() int { return s.score }

// Level returns the level derived from the score at the last tick.
func (s *Simulation) Level() int { return s.level }

// Kills returns the number of enemies destroyed by projectiles.
func (s *Simulation) Kills() int { return s.kills }

// Tick returns the number of ticks advanced since the last reset.
func (s *Simulation) Tick() uint64 { return s.tick }

// IsGameOver reports whether the player has run out of HP.
func (s *Simulation) IsGameOver() bool { return s.gameOver }

// Player returns a copy of the player.
func (s *Simulation) Player() Player { return s.player }

// LastUpdate returns the most recent tick boundary.
func (s *Simulation) LastUpdate() time.Time { return s.lastUpdate }

// Config returns the tuning the simulation was built with.
func (s *Simulation) Config() config.ArenaConfig { return s.cfg }
