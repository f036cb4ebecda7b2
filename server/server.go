// Package server hosts game sessions over HTTP.
//
// The server is the external tick driver the engines expect: snake sessions
// advance on a per-session timer goroutine, minesweeper sessions advance on
// player requests. Engine state is only ever touched under the session
// mutex, preserving the one-writer model.
package server

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/brensch/gridarcade/scores"
	"github.com/brensch/gridarcade/store"
)

// Options configures optional persistence. Zero values disable recording:
// sessions still play, they just leave no trace.
type Options struct {
	// ReplayDir receives one parquet file per finished session.
	ReplayDir string
	// Scores receives one row per finished session. May be nil.
	Scores *scores.DB
	// SessionLog dedupes replay flushes across restarts. May be nil.
	SessionLog *store.SessionLog
	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Server holds all live sessions.
type Server struct {
	opts Options
	log  *slog.Logger

	mu     sync.Mutex
	snakes map[string]*snakeSession
	mines  map[string]*minesSession

	rngMu sync.Mutex
	rng   *rand.Rand

	replays *replayCache
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		opts:   opts,
		log:    logger,
		snakes: make(map[string]*snakeSession),
		mines:  make(map[string]*minesSession),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if opts.ReplayDir != "" {
		s.replays = newReplayCache(opts.ReplayDir, 30*time.Second)
	}
	return s
}

// RegisterRoutes sets up all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/snake", s.handleSnakeCreate)
	mux.HandleFunc("GET /api/snake/{id}", s.handleSnakeState)
	mux.HandleFunc("POST /api/snake/{id}/heading", s.handleSnakeHeading)
	mux.HandleFunc("POST /api/snake/{id}/pause", s.handleSnakePause)
	mux.HandleFunc("POST /api/snake/{id}/step", s.handleSnakeStep)
	mux.HandleFunc("GET /api/snake/{id}/live", s.handleSnakeLive)

	mux.HandleFunc("POST /api/mines", s.handleMinesCreate)
	mux.HandleFunc("GET /api/mines/{id}", s.handleMinesState)
	mux.HandleFunc("POST /api/mines/{id}/reveal", s.handleMinesReveal)
	mux.HandleFunc("POST /api/mines/{id}/flag", s.handleMinesFlag)
	mux.HandleFunc("GET /api/mines/{id}/hint", s.handleMinesHint)

	mux.HandleFunc("GET /api/scores", s.handleScores)
	mux.HandleFunc("GET /api/replays", s.handleReplaysList)
	mux.HandleFunc("GET /api/replays/{id}", s.handleReplayTurns)
}

// Close stops every live session's driver.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.snakes {
		sess.stop()
	}
	if s.replays != nil {
		_ = s.replays.Close()
	}
}

// newRand hands out an independently seeded rand for a new session. Session
// creation is rare, so a single guarded source is fine.
func (s *Server) newRand() *rand.Rand {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return rand.New(rand.NewSource(s.rng.Int63()))
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	if s.opts.Scores == nil {
		httpError(w, http.StatusNotFound, "score store not configured")
		return
	}
	game := r.URL.Query().Get("game")
	if game == "" {
		game = "snake"
	}
	limit := parseIntQuery(r, "limit", 10)

	top, err := s.opts.Scores.Top(game, limit)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]any{"game": game, "scores": top})
}

// recordScore and flushSnakeReplay run after a session reaches a terminal
// state. Failures are logged, never surfaced to the player: the game result
// stands regardless of persistence.
func (s *Server) recordScore(sc scores.Score) {
	if s.opts.Scores == nil {
		return
	}
	if _, err := s.opts.Scores.Insert(sc); err != nil {
		s.log.Error("score insert failed", "game", sc.Game, "err", err.Error())
	}
}

func (s *Server) markFlushed(sessionID string) {
	if s.opts.SessionLog == nil {
		return
	}
	if err := s.opts.SessionLog.Add(sessionID); err != nil {
		s.log.Error("session log append failed", "session_id", sessionID, "err", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func parseIntQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
