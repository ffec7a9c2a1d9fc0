package core

import "testing"

func TestCirclesCollide(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Circle
		expected bool
	}{
		{
			name:     "overlapping",
			a:        NewCircle(0, 0, 10),
			b:        NewCircle(5, 5, 10),
			expected: true,
		},
		{
			name:     "exactly touching",
			a:        NewCircle(0, 0, 30),
			b:        NewCircle(40, 0, 10),
			expected: true,
		},
		{
			name:     "just apart",
			a:        NewCircle(0, 0, 30),
			b:        NewCircle(40.0001, 0, 10),
			expected: false,
		},
		{
			name:     "diagonal touch (3-4-5)",
			a:        NewCircle(0, 0, 2),
			b:        NewCircle(3, 4, 3),
			expected: true,
		},
		{
			name:     "concentric",
			a:        NewCircle(7, 7, 1),
			b:        NewCircle(7, 7, 1),
			expected: true,
		},
		{
			name:     "far apart vertical",
			a:        NewCircle(0, 0, 5),
			b:        NewCircle(0, 100, 5),
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Collides(tc.b); got != tc.expected {
				t.Errorf("Collides() = %v, expected %v", got, tc.expected)
			}
			if got := tc.b.Collides(tc.a); got != tc.expected {
				t.Errorf("Collides() (reversed) = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 15)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"inside", 15, 15, true},
		{"top-left corner", 10, 10, true},
		{"bottom-right edge (exclusive)", 30, 25, false},
		{"outside left", 5, 15, false},
		{"outside bottom", 15, 30, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(tc.x, tc.y); got != tc.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, got, tc.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, expected int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{10, 0, 10, 10},
	}

	for _, tc := range tests {
		if got := Clamp(tc.val, tc.min, tc.max); got != tc.expected {
			t.Errorf("Clamp(%d, %d, %d) = %d, expected %d", tc.val, tc.min, tc.max, got, tc.expected)
		}
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, min, max, expected float64
	}{
		{400, 0, 800, 400},
		{-3.5, 0, 800, 0},
		{812.25, 0, 800, 800},
	}

	for _, tc := range tests {
		if got := ClampF(tc.val, tc.min, tc.max); got != tc.expected {
			t.Errorf("ClampF(%f, %f, %f) = %f, expected %f", tc.val, tc.min, tc.max, got, tc.expected)
		}
	}
}
