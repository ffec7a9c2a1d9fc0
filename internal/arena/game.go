package arena

import (
	"fmt"
	"time"

	"github.com/vovakirdan/control-arena/internal/config"
	"github.com/vovakirdan/control-arena/internal/core"
)

// Glyphs used by Render.
const (
	PlayerChar     = '@'
	PlayerJumpChar = '^'
	EnemyChar      = 'M'
	BulletChar     = '•'
	GroundChar     = '═'
)

// Game drives a Simulation from a fixed-rate terminal loop. Each Step
// advances a simulated clock by exactly one tick, so play is reproducible
// regardless of how late the terminal delivers ticks.
type Game struct {
	cfg     config.ArenaConfig
	runtime core.RuntimeConfig
	sim     *Simulation
	clock   time.Time
	paused  bool

	// Terminals deliver key repeats, not key-up events, so a movement key
	// keeps steering for a short window after the last press.
	heldDir   core.Action
	heldTicks int
}

// NewGame creates a terminal game using the given tuning.
func NewGame(cfg config.ArenaConfig) *Game {
	return &Game{cfg: cfg}
}

// ID returns the identifier used for score storage.
func (g *Game) ID() string {
	return "arena"
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Control the Arena"
}

// Reset starts a new round.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	if runtime.TickRate <= 0 {
		runtime.TickRate = core.DefaultConfig().TickRate
	}
	g.runtime = runtime
	g.clock = time.Unix(0, 0)
	g.sim = New(g.cfg, g.clock)
	g.paused = false
	g.heldDir = core.ActionNone
	g.heldTicks = 0
}

// Step advances the arena by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	if g.sim.IsGameOver() {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	for _, a := range in.Gameplay() {
		switch a {
		case core.ActionMoveLeft, core.ActionMoveRight:
			g.heldDir = a
			g.heldTicks = g.holdWindow()
		default:
			g.sim.ApplyInput(a)
		}
	}
	if g.heldTicks > 0 {
		g.sim.ApplyInput(g.heldDir)
		g.heldTicks--
	}

	g.clock = g.clock.Add(time.Second / time.Duration(g.runtime.TickRate))
	g.sim.Advance(g.clock)

	return core.StepResult{State: g.State()}
}

// holdWindow is a quarter second of ticks, roughly one key-repeat period.
func (g *Game) holdWindow() int {
	return core.Max(1, g.runtime.TickRate/4)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.sim.Score(),
		Level:    g.sim.Level(),
		HP:       g.sim.Player().HP,
		GameOver: g.sim.IsGameOver(),
		Paused:   g.paused,
	}
}

// Snapshot returns the underlying simulation state.
func (g *Game) Snapshot() StateView {
	return g.sim.Snapshot()
}

// Render draws the arena scaled to the screen. Row 0 is the HUD and the
// ground line sits one row above the bottom help line.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	w, h := dst.Width(), dst.Height()
	groundY := h - 2
	if groundY < 2 {
		dst.DrawTextCentered(0, "window too small")
		return
	}

	dst.DrawHLine(0, groundY, w, GroundChar, core.ColorGround)

	for _, e := range g.sim.enemies {
		x, y := g.toScreen(dst, e.X, e.Y, groundY)
		dst.SetColored(x, y, EnemyChar, core.ColorEnemy)
	}
	for _, b := range g.sim.projectiles {
		x, y := g.toScreen(dst, b.X, b.Y, groundY)
		dst.SetColored(x, y, BulletChar, core.ColorProjectile)
	}

	p := g.sim.player
	px, py := g.toScreen(dst, p.X, p.Y, groundY)
	glyph := PlayerChar
	if !p.OnGround {
		glyph = PlayerJumpChar
	}
	dst.SetColored(px, py, glyph, core.ColorPlayer)

	hud := fmt.Sprintf(" Score: %d  Level: %d  HP: %d ", g.sim.score, g.sim.level, p.HP)
	dst.DrawTextColored(1, 0, hud, core.ColorHUD)
	kills := fmt.Sprintf(" Kills: %d ", g.sim.kills)
	dst.DrawTextColored(w-len(kills)-1, 0, kills, core.ColorHUD)
	dst.DrawTextColored(1, h-1, "A/D move  W jump  F shoot  P pause  Q quit", core.ColorGray)

	if g.paused {
		g.drawCenteredMessage(dst, "PAUSED", "Press P to resume")
	}
	if g.sim.gameOver {
		g.drawCenteredMessage(dst, "GAME OVER", fmt.Sprintf("Score: %d  |  Press R to restart", g.sim.score))
	}
}

// toScreen maps arena coordinates to a cell. Arena y grows upward from the
// ground; screen rows grow downward.
func (g *Game) toScreen(dst *core.Screen, x, y float64, groundY int) (int, int) {
	cols := float64(dst.Width() - 1)
	rows := float64(groundY - 2)
	sx := int(x / g.cfg.Arena.Width * cols)
	sy := groundY - 1 - int(y/g.cfg.Arena.Height*rows)
	return sx, core.Clamp(sy, 1, groundY-1)
}

func (g *Game) drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	boxW := core.Max(len(title), len(subtitle)) + 4
	boxH := 5
	boxX := (dst.Width() - boxW) / 2
	boxY := (dst.Height() - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ')
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH))
	dst.DrawText(boxX+(boxW-len(title))/2, boxY+1, title)
	dst.DrawText(boxX+(boxW-len(subtitle))/2, boxY+3, subtitle)
}
