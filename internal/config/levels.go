package config

import "fmt"

// LevelTable maps a score to a level using ascending MinScore thresholds.
type LevelTable struct {
	rows []LevelConfig
}

// NewLevelTable wraps the configured rows. An empty table always yields
// level 1.
func NewLevelTable(rows []LevelConfig) LevelTable {
	cp := make([]LevelConfig, len(rows))
	copy(cp, rows)
	return LevelTable{rows: cp}
}

// LevelForScore returns the highest level whose threshold the score meets.
func (t LevelTable) LevelForScore(score int) int {
	level := 1
	for _, r := range t.rows {
		if score >= r.MinScore {
			level = r.Level
		}
	}
	return level
}

// MaxLevel returns the last level in the table.
func (t LevelTable) MaxLevel() int {
	if len(t.rows) == 0 {
		return 1
	}
	return t.rows[len(t.rows)-1].Level
}

// Validate requires a row at score 0 and strictly increasing thresholds
// and levels.
func (t LevelTable) Validate() error {
	if len(t.rows) == 0 {
		return nil
	}
	if t.rows[0].MinScore != 0 {
		return fmt.Errorf("%w: first level must start at score 0", ErrInvalidConfig)
	}
	for i := 1; i < len(t.rows); i++ {
		prev, cur := t.rows[i-1], t.rows[i]
		if cur.MinScore <= prev.MinScore || cur.Level <= prev.Level {
			return fmt.Errorf("%w: levels must increase (row %d)", ErrInvalidConfig, i)
		}
	}
	return nil
}
