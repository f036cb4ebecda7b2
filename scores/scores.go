// Package scores stores finished-game results in SQLite.
package scores

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite connection. SQLite only supports one writer, so all
// operations funnel through a mutex and a single connection.
type DB struct {
	conn *sql.DB
	mu   sync.Mutex
}

// Score is one finished game. Game is "snake" or "mines"; Points is the
// snake score or the count of revealed safe cells for minesweeper.
type Score struct {
	ID       int64
	Game     string
	Player   string
	Points   int
	Level    int
	Won      bool
	PlayedAt time.Time
}

// Open creates the database connection and initializes the schema.
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game TEXT NOT NULL,              -- "snake" | "mines"
		player TEXT NOT NULL DEFAULT '',
		points INTEGER NOT NULL,
		level INTEGER NOT NULL DEFAULT 0,
		won BOOLEAN NOT NULL DEFAULT 0,
		played_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scores_game_points ON scores(game, points DESC);
	CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player);
	`

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Insert records one finished game and returns its row id.
func (db *DB) Insert(s Score) (int64, error) {
	if s.Game == "" {
		return 0, fmt.Errorf("game is required")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	res, err := db.conn.Exec(
		"INSERT INTO scores (game, player, points, level, won) VALUES (?, ?, ?, ?, ?)",
		s.Game, s.Player, s.Points, s.Level, s.Won,
	)
	if err != nil {
		return 0, fmt.Errorf("insert score: %w", err)
	}
	return res.LastInsertId()
}

// Top returns the best scores for a game, highest points first.
func (db *DB) Top(game string, limit int) ([]Score, error) {
	if limit <= 0 {
		limit = 10
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(
		"SELECT id, game, player, points, level, won, played_at FROM scores WHERE game = ? ORDER BY points DESC, played_at ASC LIMIT ?",
		game, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Score
	for rows.Next() {
		var s Score
		if err := rows.Scan(&s.ID, &s.Game, &s.Player, &s.Points, &s.Level, &s.Won, &s.PlayedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Best returns a player's highest score for a game, or false if the player
// has none.
func (db *DB) Best(game, player string) (Score, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	row := db.conn.QueryRow(
		"SELECT id, game, player, points, level, won, played_at FROM scores WHERE game = ? AND player = ? ORDER BY points DESC, played_at ASC LIMIT 1",
		game, player,
	)

	var s Score
	err := row.Scan(&s.ID, &s.Game, &s.Player, &s.Points, &s.Level, &s.Won, &s.PlayedAt)
	if err == sql.ErrNoRows {
		return Score{}, false, nil
	}
	if err != nil {
		return Score{}, false, err
	}
	return s, true, nil
}

// Stats returns per-game totals.
func (db *DB) Stats() (totalGames, totalWins int64, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err = db.conn.QueryRow("SELECT COUNT(*) FROM scores").Scan(&totalGames); err != nil {
		return
	}
	err = db.conn.QueryRow("SELECT COUNT(*) FROM scores WHERE won = 1").Scan(&totalWins)
	return
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
