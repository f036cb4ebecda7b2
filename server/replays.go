package server

import (
	"context"
	"database/sql"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// replayCache maintains a cached DuckDB connection over the replay
// directory. The connection is rebuilt when older than refreshRate so new
// parquet files show up without restarting the server.
type replayCache struct {
	dir         string
	refreshRate time.Duration

	mu          sync.RWMutex
	db          *sql.DB
	lastRefresh time.Time
}

func newReplayCache(dir string, refreshRate time.Duration) *replayCache {
	return &replayCache{dir: dir, refreshRate: refreshRate}
}

func (c *replayCache) get() (*sql.DB, error) {
	c.mu.RLock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		db := c.db
		c.mu.RUnlock()
		return db, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil && time.Since(c.lastRefresh) < c.refreshRate {
		return c.db, nil
	}

	newDB, err := c.open()
	if err != nil {
		return nil, err
	}
	if c.db != nil {
		_ = c.db.Close()
	}
	c.db = newDB
	c.lastRefresh = time.Now()
	return c.db, nil
}

func (c *replayCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

// open builds an in-memory DuckDB with one view per replay schema. Snake and
// mines files carry different columns, so they get separate views rather
// than a union.
func (c *replayCache) open() (*sql.DB, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, err
	}
	_, _ = db.Exec("PRAGMA threads=2")

	if err := createReplayView(db, "snake_turns", filepath.Join(c.dir, "snake_*.parquet"),
		`SELECT
			NULL::VARCHAR AS session_id,
			NULL::INTEGER AS turn,
			NULL::INTEGER AS width,
			NULL::INTEGER AS height,
			NULL::INTEGER[] AS body_x,
			NULL::INTEGER[] AS body_y,
			NULL::INTEGER AS target_x,
			NULL::INTEGER AS target_y,
			NULL::INTEGER AS level,
			NULL::INTEGER AS score,
			NULL::INTEGER AS interval_ms,
			NULL::VARCHAR AS outcome`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := createReplayView(db, "mines_moves", filepath.Join(c.dir, "mines_*.parquet"),
		`SELECT
			NULL::VARCHAR AS session_id,
			NULL::INTEGER AS move,
			NULL::INTEGER AS width,
			NULL::INTEGER AS height,
			NULL::INTEGER AS hazards,
			NULL::VARCHAR AS action,
			NULL::INTEGER AS x,
			NULL::INTEGER AS y,
			NULL::VARCHAR AS outcome,
			NULL::INTEGER AS revealed,
			NULL::INTEGER AS flags_left`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// createReplayView points name at the glob, falling back to an empty typed
// view when no files match yet (read_parquet errors on an empty glob).
func createReplayView(db *sql.DB, name, glob, emptySelect string) error {
	quoted := "'" + strings.ReplaceAll(glob, "'", "''") + "'"
	_, err := db.Exec("CREATE OR REPLACE VIEW " + name +
		" AS SELECT * FROM read_parquet([" + quoted + "])")
	if err == nil {
		return nil
	}
	_, err = db.Exec("CREATE OR REPLACE VIEW " + name +
		" AS SELECT * FROM (" + emptySelect + ") WHERE 1=0")
	return err
}

type replaySummary struct {
	SessionID string `json:"session_id"`
	Game      string `json:"game"`
	Width     int32  `json:"width"`
	Height    int32  `json:"height"`
	Steps     int32  `json:"steps"`
	Points    int32  `json:"points"`
	Outcome   string `json:"outcome"`
}

func (s *Server) handleReplaysList(w http.ResponseWriter, r *http.Request) {
	if s.replays == nil {
		httpError(w, http.StatusNotFound, "replay store not configured")
		return
	}
	db, err := s.replays.get()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	limit := parseIntQuery(r, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	out, err := queryReplaySummaries(r.Context(), db, limit)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{"replays": out})
}

func queryReplaySummaries(ctx context.Context, db *sql.DB, limit int) ([]replaySummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT session_id, 'snake' AS game,
			MIN(width)::INTEGER, MIN(height)::INTEGER,
			COUNT(*)::INTEGER AS steps,
			MAX(score)::INTEGER AS points,
			COALESCE(MAX(outcome) FILTER (WHERE outcome <> ''), '') AS outcome
		FROM snake_turns
		GROUP BY session_id
		UNION ALL
		SELECT session_id, 'mines' AS game,
			MIN(width)::INTEGER, MIN(height)::INTEGER,
			COUNT(*)::INTEGER AS steps,
			MAX(revealed)::INTEGER AS points,
			COALESCE(MAX(outcome) FILTER (WHERE outcome IN ('won', 'lost')), '') AS outcome
		FROM mines_moves
		GROUP BY session_id
		ORDER BY steps DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]replaySummary, 0, limit)
	for rows.Next() {
		var rs replaySummary
		if err := rows.Scan(&rs.SessionID, &rs.Game, &rs.Width, &rs.Height, &rs.Steps, &rs.Points, &rs.Outcome); err != nil {
			return nil, err
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

type replayTurn struct {
	Turn       int32       `json:"turn"`
	Body       []pointJSON `json:"body"`
	Target     pointJSON   `json:"target"`
	Level      int32       `json:"level"`
	Score      int32       `json:"score"`
	IntervalMs int32       `json:"interval_ms"`
	Outcome    string      `json:"outcome,omitempty"`
}

type replayMove struct {
	Move      int32     `json:"move"`
	Action    string    `json:"action"`
	At        pointJSON `json:"at"`
	Outcome   string    `json:"outcome"`
	Revealed  int32     `json:"revealed"`
	FlagsLeft int32     `json:"flags_left"`
}

// handleReplayTurns returns the full step-by-step record of one session. The
// snake view is tried first; session ids are UUIDs so the two games cannot
// collide.
func (s *Server) handleReplayTurns(w http.ResponseWriter, r *http.Request) {
	if s.replays == nil {
		httpError(w, http.StatusNotFound, "replay store not configured")
		return
	}
	db, err := s.replays.get()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	id := r.PathValue("id")

	turns, err := querySnakeTurns(r.Context(), db, id)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(turns) > 0 {
		writeJSON(w, map[string]any{"session_id": id, "game": "snake", "turns": turns})
		return
	}

	moves, err := queryMinesMoves(r.Context(), db, id)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(moves) > 0 {
		writeJSON(w, map[string]any{"session_id": id, "game": "mines", "moves": moves})
		return
	}
	httpError(w, http.StatusNotFound, "unknown replay")
}

func querySnakeTurns(ctx context.Context, db *sql.DB, id string) ([]replayTurn, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT turn::INTEGER, body_x, body_y, target_x::INTEGER, target_y::INTEGER,
			level::INTEGER, score::INTEGER, interval_ms::INTEGER, outcome
		FROM snake_turns WHERE session_id = ? ORDER BY turn ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]replayTurn, 0, 256)
	for rows.Next() {
		var t replayTurn
		var bodyX, bodyY any
		if err := rows.Scan(&t.Turn, &bodyX, &bodyY, &t.Target.X, &t.Target.Y,
			&t.Level, &t.Score, &t.IntervalMs, &t.Outcome); err != nil {
			return nil, err
		}
		t.Body = zipPoints(asInt32Slice(bodyX), asInt32Slice(bodyY))
		out = append(out, t)
	}
	return out, rows.Err()
}

func queryMinesMoves(ctx context.Context, db *sql.DB, id string) ([]replayMove, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT move::INTEGER, action, x::INTEGER, y::INTEGER, outcome,
			revealed::INTEGER, flags_left::INTEGER
		FROM mines_moves WHERE session_id = ? ORDER BY move ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]replayMove, 0, 64)
	for rows.Next() {
		var m replayMove
		if err := rows.Scan(&m.Move, &m.Action, &m.At.X, &m.At.Y, &m.Outcome,
			&m.Revealed, &m.FlagsLeft); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// asInt32Slice converts DuckDB's list scan value ([]any of int32 or int64)
// into a flat int32 slice.
func asInt32Slice(v any) []int32 {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int32, 0, len(items))
	for _, it := range items {
		switch n := it.(type) {
		case int32:
			out = append(out, n)
		case int64:
			out = append(out, int32(n))
		case float64:
			out = append(out, int32(n))
		}
	}
	return out
}

func zipPoints(xs, ys []int32) []pointJSON {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	out := make([]pointJSON, n)
	for i := 0; i < n; i++ {
		out[i] = pointJSON{X: int(xs[i]), Y: int(ys[i])}
	}
	return out
}
