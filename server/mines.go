package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/brensch/gridarcade/board"
	"github.com/brensch/gridarcade/scores"
	"github.com/brensch/gridarcade/solver"
	"github.com/brensch/gridarcade/store"
)

// minesSession has no driver goroutine: the board only changes on player
// requests, so the session mutex alone is enough.
type minesSession struct {
	id     string
	player string

	mu    sync.Mutex
	board *board.Board
	rows  []store.MinesMoveRow
	ended bool
}

type minesCreateRequest struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Hazards int    `json:"hazards"`
	Player  string `json:"player"`
}

// minesStateJSON renders the board as the player sees it. Cells are rows of
// single characters, top row first: '-' hidden, 'F' flagged, '0'..'8'
// revealed counts, '*' a revealed hazard.
type minesStateJSON struct {
	SessionID string   `json:"session_id"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Hazards   int      `json:"hazards"`
	FlagsLeft int      `json:"flags_left"`
	Revealed  int      `json:"revealed"`
	SafeLeft  int      `json:"safe_left"`
	Status    string   `json:"status"`
	Rows      []string `json:"rows"`
}

func (s *Server) handleMinesCreate(w http.ResponseWriter, r *http.Request) {
	var req minesCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Width == 0 && req.Height == 0 && req.Hazards == 0 {
		req.Width, req.Height, req.Hazards = 9, 9, 10
	}
	if req.Width < 2 || req.Height < 2 || req.Width > 64 || req.Height > 64 {
		httpError(w, http.StatusBadRequest, "grid must be between 2x2 and 64x64")
		return
	}
	if req.Hazards < 0 || req.Hazards >= req.Width*req.Height {
		httpError(w, http.StatusBadRequest, "hazards must leave at least one safe cell")
		return
	}

	sess := &minesSession{
		id:     uuid.NewString(),
		player: req.Player,
		board:  board.New(req.Width, req.Height, req.Hazards, s.newRand()),
	}

	s.mu.Lock()
	s.mines[sess.id] = sess
	s.mu.Unlock()

	s.log.Info("mines session created",
		"session_id", sess.id, "width", req.Width, "height", req.Height, "hazards", req.Hazards)
	writeJSON(w, minesJSON(sess.id, sess.board))
}

func (s *Server) minesByID(w http.ResponseWriter, r *http.Request) *minesSession {
	s.mu.Lock()
	sess := s.mines[r.PathValue("id")]
	s.mu.Unlock()
	if sess == nil {
		httpError(w, http.StatusNotFound, "unknown session")
	}
	return sess
}

func (s *Server) handleMinesState(w http.ResponseWriter, r *http.Request) {
	sess := s.minesByID(w, r)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	snap := minesJSON(sess.id, sess.board)
	sess.mu.Unlock()
	writeJSON(w, snap)
}

type minesMoveRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleMinesReveal(w http.ResponseWriter, r *http.Request) {
	sess := s.minesByID(w, r)
	if sess == nil {
		return
	}
	var req minesMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess.mu.Lock()
	outcome := sess.board.Reveal(req.X, req.Y)
	sess.recordMove("reveal", req.X, req.Y, outcome.String())
	if outcome != board.OutcomeContinue && !sess.ended {
		sess.ended = true
		s.finishMines(sess, outcome)
	}
	snap := minesJSON(sess.id, sess.board)
	sess.mu.Unlock()

	writeJSON(w, map[string]any{"outcome": outcome.String(), "state": snap})
}

func (s *Server) handleMinesFlag(w http.ResponseWriter, r *http.Request) {
	sess := s.minesByID(w, r)
	if sess == nil {
		return
	}
	var req minesMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess.mu.Lock()
	res := sess.board.ToggleFlag(req.X, req.Y)
	sess.recordMove("flag", req.X, req.Y, res.String())
	snap := minesJSON(sess.id, sess.board)
	sess.mu.Unlock()

	writeJSON(w, map[string]any{"flag": res.String(), "state": snap})
}

func (s *Server) handleMinesHint(w http.ResponseWriter, r *http.Request) {
	sess := s.minesByID(w, r)
	if sess == nil {
		return
	}

	sess.mu.Lock()
	hints := solver.Analyze(sess.board)
	sess.mu.Unlock()

	safe := make([]pointJSON, len(hints.Safe))
	for i, p := range hints.Safe {
		safe[i] = pointJSON{X: p.X, Y: p.Y}
	}
	hazards := make([]pointJSON, len(hints.Hazards))
	for i, p := range hints.Hazards {
		hazards[i] = pointJSON{X: p.X, Y: p.Y}
	}
	writeJSON(w, map[string]any{"safe": safe, "hazards": hazards})
}

// recordMove appends one replay row. Callers must hold sess.mu.
func (sess *minesSession) recordMove(action string, x, y int, outcome string) {
	b := sess.board
	row := store.MinesMoveRow{
		SessionID: sess.id,
		Move:      int32(len(sess.rows)),
		Width:     int32(b.Width()),
		Height:    int32(b.Height()),
		Hazards:   int32(b.Hazards()),
		Action:    action,
		X:         int32(x),
		Y:         int32(y),
		Revealed:  int32(b.RevealedCount()),
		FlagsLeft: int32(b.FlagsLeft()),
	}
	if b.Status() != board.OutcomeContinue {
		row.Outcome = b.Status().String()
	} else {
		row.Outcome = outcome
	}
	sess.rows = append(sess.rows, row)
}

func (s *Server) finishMines(sess *minesSession, outcome board.Outcome) {
	b := sess.board
	s.log.Info("mines session over",
		"session_id", sess.id, "outcome", outcome.String(), "revealed", b.RevealedCount())

	s.recordScore(scores.Score{
		Game:   "mines",
		Player: sess.player,
		Points: b.RevealedCount(),
		Won:    outcome == board.OutcomeWon,
	})

	if s.opts.ReplayDir == "" || len(sess.rows) == 0 {
		return
	}
	if s.opts.SessionLog != nil && s.opts.SessionLog.Has(sess.id) {
		return
	}
	path, err := store.WriteMinesReplayParquet(s.opts.ReplayDir, sess.rows)
	if err != nil {
		s.log.Error("replay flush failed", "session_id", sess.id, "err", err.Error())
		return
	}
	s.markFlushed(sess.id)
	s.log.Info("replay flushed", "session_id", sess.id, "path", path, "moves", len(sess.rows))
}

func minesJSON(id string, b *board.Board) minesStateJSON {
	out := minesStateJSON{
		SessionID: id,
		Width:     b.Width(),
		Height:    b.Height(),
		Hazards:   b.Hazards(),
		FlagsLeft: b.FlagsLeft(),
		Revealed:  b.RevealedCount(),
		SafeLeft:  b.SafeLeft(),
		Status:    b.Status().String(),
		Rows:      make([]string, 0, b.Height()),
	}
	for y := b.Height() - 1; y >= 0; y-- {
		row := make([]byte, b.Width())
		for x := 0; x < b.Width(); x++ {
			c, _ := b.CellAt(x, y)
			switch {
			case c.Flagged:
				row[x] = 'F'
			case !c.Revealed:
				row[x] = '-'
			case c.Hazard:
				row[x] = '*'
			default:
				row[x] = '0' + c.Adjacent
			}
		}
		out.Rows = append(out.Rows, string(row))
	}
	return out
}
