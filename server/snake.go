package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brensch/gridarcade/game"
	"github.com/brensch/gridarcade/motion"
	"github.com/brensch/gridarcade/scores"
	"github.com/brensch/gridarcade/store"
)

// snakeSession wraps one motion.State with its driver goroutine. All state
// access goes through mu; the driver and every handler lock it, so the
// engine sees exactly one writer.
type snakeSession struct {
	id     string
	player string

	mu    sync.Mutex
	state *motion.State
	rows  []store.SnakeTurnRow
	ended bool

	hub  *hub
	done chan struct{}
	once sync.Once
}

func (sess *snakeSession) stop() {
	sess.once.Do(func() { close(sess.done) })
}

type snakeCreateRequest struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Player string `json:"player"`
	// StartPaused creates the session without ticking; useful for clients
	// that want to count the player in, and for manual stepping.
	StartPaused bool `json:"start_paused"`
}

type pointJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type snakeStateJSON struct {
	SessionID  string      `json:"session_id"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Body       []pointJSON `json:"body"`
	Target     pointJSON   `json:"target"`
	Heading    string      `json:"heading"`
	Level      int         `json:"level"`
	Score      int         `json:"score"`
	IntervalMs int         `json:"interval_ms"`
	Turn       int         `json:"turn"`
	Paused     bool        `json:"paused"`
	Over       bool        `json:"over"`
	Cause      string      `json:"cause,omitempty"`
}

func (s *Server) handleSnakeCreate(w http.ResponseWriter, r *http.Request) {
	var req snakeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := motion.DefaultConfig
	if req.Width > 0 {
		cfg.Width = req.Width
	}
	if req.Height > 0 {
		cfg.Height = req.Height
	}
	if cfg.Width < 5 || cfg.Height < 5 || cfg.Width > 100 || cfg.Height > 100 {
		httpError(w, http.StatusBadRequest, "grid must be between 5x5 and 100x100")
		return
	}

	state := motion.New(cfg, s.newRand())
	if req.StartPaused {
		state.Pause()
	}

	sess := &snakeSession{
		id:     uuid.NewString(),
		player: req.Player,
		state:  state,
		hub:    newHub(),
		done:   make(chan struct{}),
	}
	sess.rows = append(sess.rows, snapshotRow(sess.id, state))

	s.mu.Lock()
	s.snakes[sess.id] = sess
	s.mu.Unlock()

	go s.driveSnake(sess)

	s.log.Info("snake session created",
		"session_id", sess.id, "width", cfg.Width, "height", cfg.Height, "paused", req.StartPaused)
	writeJSON(w, snapshotJSON(sess.id, state))
}

// driveSnake is the tick driver. It re-reads the interval every tick so
// level-ups speed the game up, and it skips ticks while paused instead of
// tearing the timer down.
func (s *Server) driveSnake(sess *snakeSession) {
	for {
		sess.mu.Lock()
		interval := time.Duration(sess.state.TickIntervalMs()) * time.Millisecond
		sess.mu.Unlock()

		select {
		case <-sess.done:
			return
		case <-time.After(interval):
		}

		sess.mu.Lock()
		if sess.state.Paused() || sess.state.Over() {
			sess.mu.Unlock()
			continue
		}
		res := s.advanceLocked(sess)
		sess.mu.Unlock()

		if res == motion.ResultGameOver {
			sess.stop()
			return
		}
	}
}

// advanceLocked steps the engine once, records the turn, and broadcasts the
// new state. Callers must hold sess.mu.
func (s *Server) advanceLocked(sess *snakeSession) motion.Result {
	res := sess.state.Step()
	if res == motion.ResultContinue && sess.state.Paused() {
		return res
	}

	sess.rows = append(sess.rows, snapshotRow(sess.id, sess.state))
	sess.hub.broadcast(snapshotJSON(sess.id, sess.state))

	if res == motion.ResultGameOver && !sess.ended {
		sess.ended = true
		s.finishSnake(sess)
	}
	return res
}

func (s *Server) finishSnake(sess *snakeSession) {
	st := sess.state
	s.log.Info("snake session over",
		"session_id", sess.id, "score", st.Score(), "level", st.Level(), "cause", st.Cause().String())

	s.recordScore(scores.Score{
		Game:   "snake",
		Player: sess.player,
		Points: st.Score(),
		Level:  st.Level(),
	})

	if s.opts.ReplayDir == "" || len(sess.rows) == 0 {
		return
	}
	if s.opts.SessionLog != nil && s.opts.SessionLog.Has(sess.id) {
		return
	}
	path, err := store.WriteSnakeReplayParquet(s.opts.ReplayDir, sess.rows)
	if err != nil {
		s.log.Error("replay flush failed", "session_id", sess.id, "err", err.Error())
		return
	}
	s.markFlushed(sess.id)
	s.log.Info("replay flushed", "session_id", sess.id, "path", path, "turns", len(sess.rows))
}

func (s *Server) snakeByID(w http.ResponseWriter, r *http.Request) *snakeSession {
	s.mu.Lock()
	sess := s.snakes[r.PathValue("id")]
	s.mu.Unlock()
	if sess == nil {
		httpError(w, http.StatusNotFound, "unknown session")
	}
	return sess
}

func (s *Server) handleSnakeState(w http.ResponseWriter, r *http.Request) {
	sess := s.snakeByID(w, r)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	snap := snapshotJSON(sess.id, sess.state)
	sess.mu.Unlock()
	writeJSON(w, snap)
}

func (s *Server) handleSnakeHeading(w http.ResponseWriter, r *http.Request) {
	sess := s.snakeByID(w, r)
	if sess == nil {
		return
	}

	var req struct {
		Heading string `json:"heading"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, ok := game.ParseDir(req.Heading)
	if !ok {
		httpError(w, http.StatusBadRequest, "heading must be up, down, left or right")
		return
	}

	sess.mu.Lock()
	applied := sess.state.SetHeading(d)
	heading := sess.state.Heading().String()
	sess.mu.Unlock()

	writeJSON(w, map[string]any{"applied": applied, "heading": heading})
}

func (s *Server) handleSnakePause(w http.ResponseWriter, r *http.Request) {
	sess := s.snakeByID(w, r)
	if sess == nil {
		return
	}

	var req struct {
		Paused bool `json:"paused"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess.mu.Lock()
	if req.Paused {
		sess.state.Pause()
	} else {
		sess.state.Resume()
	}
	snap := snapshotJSON(sess.id, sess.state)
	sess.mu.Unlock()
	writeJSON(w, snap)
}

// handleSnakeStep advances a paused session by one tick. Manual stepping of
// a running session would race the driver, so it is rejected.
func (s *Server) handleSnakeStep(w http.ResponseWriter, r *http.Request) {
	sess := s.snakeByID(w, r)
	if sess == nil {
		return
	}

	sess.mu.Lock()
	if !sess.state.Paused() && !sess.state.Over() {
		sess.mu.Unlock()
		httpError(w, http.StatusConflict, "session is running; pause it to step manually")
		return
	}
	sess.state.Resume()
	res := s.advanceLocked(sess)
	if !sess.state.Over() {
		sess.state.Pause()
	}
	snap := snapshotJSON(sess.id, sess.state)
	sess.mu.Unlock()

	if res == motion.ResultGameOver {
		sess.stop()
	}
	writeJSON(w, map[string]any{"result": res.String(), "state": snap})
}

func snapshotJSON(id string, st *motion.State) snakeStateJSON {
	body := st.Body()
	out := snakeStateJSON{
		SessionID:  id,
		Width:      st.Width(),
		Height:     st.Height(),
		Body:       make([]pointJSON, len(body)),
		Target:     pointJSON{X: st.Target().X, Y: st.Target().Y},
		Heading:    st.Heading().String(),
		Level:      st.Level(),
		Score:      st.Score(),
		IntervalMs: st.TickIntervalMs(),
		Turn:       st.Ticks(),
		Paused:     st.Paused(),
		Over:       st.Over(),
		Cause:      st.Cause().String(),
	}
	for i, p := range body {
		out.Body[i] = pointJSON{X: p.X, Y: p.Y}
	}
	return out
}

func snapshotRow(id string, st *motion.State) store.SnakeTurnRow {
	body := st.Body()
	row := store.SnakeTurnRow{
		SessionID:  id,
		Turn:       int32(st.Ticks()),
		Width:      int32(st.Width()),
		Height:     int32(st.Height()),
		BodyX:      make([]int32, len(body)),
		BodyY:      make([]int32, len(body)),
		TargetX:    int32(st.Target().X),
		TargetY:    int32(st.Target().Y),
		Level:      int32(st.Level()),
		Score:      int32(st.Score()),
		IntervalMs: int32(st.TickIntervalMs()),
	}
	for i, p := range body {
		row.BodyX[i] = int32(p.X)
		row.BodyY[i] = int32(p.Y)
	}
	if st.Over() {
		row.Outcome = st.Cause().String()
	}
	return row
}
