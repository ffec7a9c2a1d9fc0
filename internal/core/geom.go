// Package core holds the platform-neutral primitives shared by the arena
// simulation and its front-ends. It imports nothing outside the standard
// library so the simulation stays testable without a terminal or socket.
package core

// Circle is a collision body: a center point and a radius in arena units.
type Circle struct {
	X, Y float64
	R    float64
}

// NewCircle creates a circle centered at (x, y).
func NewCircle(x, y, r float64) Circle {
	return Circle{X: x, Y: y, R: r}
}

// Collides reports whether two circles touch or overlap.
// Touching circles (distance exactly r1+r2) collide.
func (c Circle) Collides(other Circle) bool {
	return CirclesCollide(c.X, c.Y, c.R, other.X, other.Y, other.R)
}

// CirclesCollide compares squared distance against the squared radius sum,
// so no square root is taken.
func CirclesCollide(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x1 - x2
	dy := y1 - y2
	rs := r1 + r2
	return dx*dx+dy*dy <= rs*rs
}

// Rect is an axis-aligned cell rectangle used when drawing onto a Screen.
type Rect struct {
	X, Y int
	W, H int
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate one past the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate one past the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the cell (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
