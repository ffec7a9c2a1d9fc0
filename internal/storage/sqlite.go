// Package storage keeps the arena leaderboard in SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// MemoryDSN keeps the database inside the process. Nothing survives exit.
const MemoryDSN = ":memory:"

// Sources a result can come from.
const (
	SourceWebSocket = "ws"
	SourceTerminal  = "tui"
	SourceSSH       = "ssh"
)

// End reasons recorded with a result.
const (
	EndGameOver   = "game_over"
	EndDisconnect = "disconnect"
	EndQuit       = "quit"
	EndShutdown   = "shutdown"
	EndRestart    = "restart"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// Result is one finished (or abandoned) round.
type Result struct {
	ID        int64
	SessionID string
	Player    string
	Source    string
	Score     int
	Level     int
	Kills     int
	Ticks     int64
	EndReason string
	Duration  int // seconds
	CreatedAt time.Time
}

// Open opens the leaderboard. An empty dsn or MemoryDSN gives a private
// in-memory database; anything else is a file path, created with its parent
// directories if needed.
func Open(dsn string) (*Store, error) {
	memory := dsn == "" || dsn == MemoryDSN
	if memory {
		dsn = MemoryDSN
	} else {
		if dsn[0] == '~' {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
			}
			dsn = filepath.Join(home, dsn[1:])
		}
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if memory {
		// Every new connection to :memory: is a fresh empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL DEFAULT '',
			player TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL,
			score INTEGER NOT NULL,
			level INTEGER NOT NULL DEFAULT 1,
			kills INTEGER NOT NULL DEFAULT 0,
			ticks INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL DEFAULT '',
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_source ON scores(source);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveResult records a round. Returns the ID of the inserted record.
func (s *Store) SaveResult(r Result) (int64, error) {
	if r.Source == "" {
		return 0, errors.New("storage: result without source")
	}
	res, err := s.db.Exec(
		`INSERT INTO scores
		 (session_id, player, source, score, level, kills, ticks, end_reason, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.Player, r.Source, r.Score, r.Level, r.Kills, r.Ticks, r.EndReason, r.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// SaveScore records a bare score from the given source.
func (s *Store) SaveScore(source string, score int) (int64, error) {
	return s.SaveResult(Result{Source: source, Score: score, EndReason: EndGameOver})
}

const resultColumns = `id, session_id, player, source, score, level, kills, ticks, end_reason, duration_secs, created_at`

// TopScores returns the best results, highest first. An empty source means
// every source.
func (s *Store) TopScores(source string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}

	var (
		rows *sql.Rows
		err  error
	)
	if source == "" {
		rows, err = s.db.Query(
			`SELECT `+resultColumns+` FROM scores ORDER BY score DESC, id ASC LIMIT ?`,
			limit,
		)
	} else {
		rows, err = s.db.Query(
			`SELECT `+resultColumns+` FROM scores WHERE source = ? ORDER BY score DESC, id ASC LIMIT ?`,
			source, limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	return scanResults(rows)
}

// RecentResults returns the latest results, newest first.
func (s *Store) RecentResults(limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT `+resultColumns+` FROM scores ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	return scanResults(rows)
}

// HighScore returns the highest score for the source, or over all sources
// when source is empty. Returns 0 if no scores exist.
func (s *Store) HighScore(source string) (int, error) {
	var score sql.NullInt64
	var err error
	if source == "" {
		err = s.db.QueryRow("SELECT MAX(score) FROM scores").Scan(&score)
	} else {
		err = s.db.QueryRow("SELECT MAX(score) FROM scores WHERE source = ?", source).Scan(&score)
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// Stats contains aggregated statistics for one source.
type Stats struct {
	Source     string
	Games      int
	HighScore  int
	AvgScore   float64
	TotalKills int64
	LastPlayed time.Time
}

// AllStats returns statistics for every source that has results, keyed by
// source.
func (s *Store) AllStats() (map[string]*Stats, error) {
	rows, err := s.db.Query(
		`SELECT source, COUNT(*), MAX(score), AVG(score), SUM(kills), MAX(created_at)
		 FROM scores
		 GROUP BY source`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*Stats)
	for rows.Next() {
		var st Stats
		var lastPlayed any
		if err := rows.Scan(&st.Source, &st.Games, &st.HighScore, &st.AvgScore, &st.TotalKills, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.Source] = &st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return stats, nil
}

// ClearScores deletes every result from the source.
func (s *Store) ClearScores(source string) error {
	if _, err := s.db.Exec("DELETE FROM scores WHERE source = ?", source); err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		var createdAt any
		if err := rows.Scan(
			&r.ID,
			&r.SessionID,
			&r.Player,
			&r.Source,
			&r.Score,
			&r.Level,
			&r.Kills,
			&r.Ticks,
			&r.EndReason,
			&r.Duration,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// parseTime handles the driver returning either time.Time or the SQLite
// text form of CURRENT_TIMESTAMP.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
