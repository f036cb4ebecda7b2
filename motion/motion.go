// Package motion implements the snake-style motion engine.
//
// The engine owns an ordered body of grid cells plus a single target cell,
// advances the body one step per call along the current heading, and detects
// boundary and self collisions. It never schedules its own ticks: the caller
// (TUI timer, server goroutine) invokes Step at the interval reported by
// TickInterval, which shrinks as levels advance.
package motion

import (
	"math/rand"

	"github.com/brensch/gridarcade/game"
)

// Result is the outcome of a single Step.
type Result int

const (
	ResultContinue Result = iota
	ResultGrew
	ResultLeveledUp
	ResultGameOver
)

func (r Result) String() string {
	switch r {
	case ResultContinue:
		return "continue"
	case ResultGrew:
		return "grew"
	case ResultLeveledUp:
		return "leveled_up"
	case ResultGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Cause explains a ResultGameOver.
type Cause int

const (
	CauseNone Cause = iota
	CauseOutOfBounds
	CauseSelfCollision
)

func (c Cause) String() string {
	switch c {
	case CauseOutOfBounds:
		return "out_of_bounds"
	case CauseSelfCollision:
		return "self_collision"
	default:
		return ""
	}
}

// Config carries the game-design knobs. Intervals are expressed in
// milliseconds so they serialize cleanly; the driver converts to a
// time.Duration.
type Config struct {
	Width  int
	Height int

	// TargetsPerLevel is how many targets must be eaten to advance a level.
	TargetsPerLevel int

	// StartIntervalMs is the tick interval at level 1. Each level-up
	// subtracts IntervalStepMs, floored at MinIntervalMs.
	StartIntervalMs int
	IntervalStepMs  int
	MinIntervalMs   int
}

// DefaultConfig matches the classic feel: 20x20 grid, three targets per
// level, 200ms ticks shrinking by 20ms to a 60ms floor.
var DefaultConfig = Config{
	Width:           20,
	Height:          20,
	TargetsPerLevel: 3,
	StartIntervalMs: 200,
	IntervalStepMs:  20,
	MinIntervalMs:   60,
}

// State is a single game instance. Not safe for concurrent use; there is
// exactly one logical writer at a time.
type State struct {
	cfg Config
	rng *rand.Rand

	body    []game.Point // head at index 0
	heading game.Dir
	target  game.Point

	level      int
	eatenLevel int // targets consumed toward the next level
	score      int
	intervalMs int

	paused bool
	over   bool
	cause  Cause
	ticks  int
}

// New creates a running state: a single-cell body at the grid center,
// heading right, with the first target already placed. rng drives target
// placement so tests can seed it.
func New(cfg Config, rng *rand.Rand) *State {
	if cfg.TargetsPerLevel <= 0 {
		cfg.TargetsPerLevel = DefaultConfig.TargetsPerLevel
	}
	if cfg.StartIntervalMs <= 0 {
		cfg.StartIntervalMs = DefaultConfig.StartIntervalMs
	}
	if cfg.MinIntervalMs <= 0 {
		cfg.MinIntervalMs = DefaultConfig.MinIntervalMs
	}

	s := &State{
		cfg:        cfg,
		rng:        rng,
		body:       []game.Point{{X: cfg.Width / 2, Y: cfg.Height / 2}},
		heading:    game.DirRight,
		level:      1,
		intervalMs: cfg.StartIntervalMs,
	}
	s.spawnTarget()
	return s
}

// spawnTarget places the target uniformly on a cell not occupied by the
// body. Enumerating free cells keeps placement bounded even when the body
// covers most of the grid.
func (s *State) spawnTarget() {
	occupied := make(map[game.Point]struct{}, len(s.body))
	for _, p := range s.body {
		occupied[p] = struct{}{}
	}

	free := make([]game.Point, 0, s.cfg.Width*s.cfg.Height-len(occupied))
	for y := 0; y < s.cfg.Height; y++ {
		for x := 0; x < s.cfg.Width; x++ {
			p := game.Point{X: x, Y: y}
			if _, ok := occupied[p]; ok {
				continue
			}
			free = append(free, p)
		}
	}
	if len(free) == 0 {
		// Body fills the grid; park the target off-board so it can never
		// be eaten again.
		s.target = game.Point{X: -1, Y: -1}
		return
	}
	s.target = free[s.rng.Intn(len(free))]
}

// Step advances the simulation by one tick.
//
// GameOver is absorbing and paused states do not mutate; both return
// without touching the body. Otherwise the new head is computed from the
// current heading, checked against the walls and the pre-move body, and the
// tail is dropped unless the target was eaten this tick.
func (s *State) Step() Result {
	if s.over {
		return ResultGameOver
	}
	if s.paused {
		return ResultContinue
	}

	newHead := s.body[0].Add(s.heading)

	if !newHead.In(s.cfg.Width, s.cfg.Height) {
		s.over = true
		s.cause = CauseOutOfBounds
		return ResultGameOver
	}
	// Self collision is checked against the body before the tail drops:
	// chasing your own tail exactly is still a collision.
	for _, p := range s.body {
		if p == newHead {
			s.over = true
			s.cause = CauseSelfCollision
			return ResultGameOver
		}
	}

	ate := newHead == s.target

	grown := make([]game.Point, 0, len(s.body)+1)
	grown = append(grown, newHead)
	grown = append(grown, s.body...)
	if !ate {
		grown = grown[:len(grown)-1]
	}
	s.body = grown
	s.ticks++

	if !ate {
		return ResultContinue
	}

	s.score++
	s.eatenLevel++
	s.spawnTarget()

	if s.eatenLevel >= s.cfg.TargetsPerLevel {
		s.level++
		s.eatenLevel = 0
		s.intervalMs -= s.cfg.IntervalStepMs
		if s.intervalMs < s.cfg.MinIntervalMs {
			s.intervalMs = s.cfg.MinIntervalMs
		}
		return ResultLeveledUp
	}
	return ResultGrew
}

// SetHeading requests a heading change for the next Step. The exact reverse
// of the current heading is rejected to prevent instant self-collision;
// the return value reports whether the change was applied.
func (s *State) SetHeading(d game.Dir) bool {
	if s.over {
		return false
	}
	if d == s.heading.Opposite() {
		return false
	}
	s.heading = d
	return true
}

// Pause suspends ticking without mutating state. Resume continues from the
// exact prior state.
func (s *State) Pause()  { s.paused = true }
func (s *State) Resume() { s.paused = false }

// Body returns a copy of the body, head first.
func (s *State) Body() []game.Point {
	out := make([]game.Point, len(s.body))
	copy(out, s.body)
	return out
}

func (s *State) Head() game.Point    { return s.body[0] }
func (s *State) Target() game.Point  { return s.target }
func (s *State) Heading() game.Dir   { return s.heading }
func (s *State) Level() int          { return s.level }
func (s *State) Score() int          { return s.score }
func (s *State) Ticks() int          { return s.ticks }
func (s *State) Paused() bool        { return s.paused }
func (s *State) Over() bool          { return s.over }
func (s *State) Cause() Cause        { return s.cause }
func (s *State) TickIntervalMs() int { return s.intervalMs }
func (s *State) Width() int          { return s.cfg.Width }
func (s *State) Height() int         { return s.cfg.Height }
