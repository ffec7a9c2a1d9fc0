package arena

import "time"

// Player is the single controllable character. Y is height above the
// ground line; it is never negative.
type Player struct {
	X                float64
	Y                float64
	HP               int
	OnGround         bool
	VerticalVelocity float64
}

// Projectile is a bullet fired by the player.
type Projectile struct {
	X         float64
	Y         float64
	Direction float64 // +1 travels right, -1 left
	CreatedAt time.Time
	Active    bool
}

// Enemy walks toward the left edge at a fixed speed.
type Enemy struct {
	X     float64
	Y     float64
	HP    int
	Speed float64
	Alive bool
}

// compactProjectiles drops inactive projectiles in place, keeping order.
func compactProjectiles(ps []Projectile) []Projectile {
	kept := ps[:0]
	for _, p := range ps {
		if p.Active {
			kept = append(kept, p)
		}
	}
	clearTail(ps, len(kept))
	return kept
}

// compactEnemies drops dead enemies in place, keeping order.
func compactEnemies(es []Enemy) []Enemy {
	kept := es[:0]
	for _, e := range es {
		if e.Alive {
			kept = append(kept, e)
		}
	}
	clearTail(es, len(kept))
	return kept
}

// clearTail zeroes the slots past n so dropped entities do not linger in the
// backing array.
func clearTail[T any](s []T, n int) {
	var zero T
	for i := n; i < len(s); i++ {
		s[i] = zero
	}
}
