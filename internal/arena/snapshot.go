package arena

// PlayerView is the serialized player.
type PlayerView struct {
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	HP               int     `json:"hp"`
	OnGround         bool    `json:"on_ground"`
	VerticalVelocity float64 `json:"vertical_velocity"`
}

// EntityView is the serialized position of an enemy or projectile.
type EntityView struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	HP int     `json:"hp,omitempty"`
}

// StateView is a self-contained copy of the observable state. It shares no
// memory with the Simulation and can be handed to another goroutine.
type StateView struct {
	Score            int          `json:"score"`
	Level            int          `json:"level"`
	Player           PlayerView   `json:"player"`
	IsGameOver       bool         `json:"is_game_over"`
	EnemiesCount     int          `json:"enemies_count"`
	ProjectilesCount int          `json:"projectiles_count"`
	Tick             uint64       `json:"tick"`
	Kills            int          `json:"kills"`
	Enemies          []EntityView `json:"enemies"`
	Projectiles      []EntityView `json:"projectiles"`
}

// Snapshot returns the current state.
func (s *Simulation) Snapshot() StateView {
	enemies := make([]EntityView, 0, len(s.enemies))
	for _, e := range s.enemies {
		enemies = append(enemies, EntityView{X: e.X, Y: e.Y, HP: e.HP})
	}
	projectiles := make([]EntityView, 0, len(s.projectiles))
	for _, p := range s.projectiles {
		projectiles = append(projectiles, EntityView{X: p.X, Y: p.Y})
	}

	return StateView{
		Score: s.score,
		Level: s.level,
		Player: PlayerView{
			X:                s.player.X,
			Y:                s.player.Y,
			HP:               s.player.HP,
			OnGround:         s.player.OnGround,
			VerticalVelocity: s.player.VerticalVelocity,
		},
		IsGameOver:       s.gameOver,
		EnemiesCount:     len(s.enemies),
		ProjectilesCount: len(s.projectiles),
		Tick:             s.tick,
		Kills:            s.kills,
		Enemies:          enemies,
		Projectiles:      projectiles,
	}
}
