// Package board implements the minesweeper-style board engine.
//
// The board owns a fixed-size grid of cells with hidden hazards. Hazards are
// planted once at construction, adjacency counts are computed once, and the
// only mutations afterwards are Reveal and ToggleFlag. Won and Lost are
// absorbing: once reached, every further call is a no-op. Resetting means
// constructing a fresh board.
package board

import (
	"math/rand"
)

// FlagAllowance is the fixed number of flags a player may have placed at
// once. It is deliberately independent of the hazard count.
const FlagAllowance = 10

// Outcome is the result of a Reveal call.
type Outcome int

const (
	OutcomeContinue Outcome = iota
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeContinue:
		return "continue"
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	default:
		return "unknown"
	}
}

// FlagOutcome is the result of a ToggleFlag call.
type FlagOutcome int

const (
	// FlagIgnored covers every no-op: revealed cells, out-of-bounds
	// coordinates, and calls after a terminal outcome.
	FlagIgnored FlagOutcome = iota
	FlagPlaced
	FlagRemoved
	FlagNoFlagsLeft
)

func (f FlagOutcome) String() string {
	switch f {
	case FlagIgnored:
		return "ignored"
	case FlagPlaced:
		return "placed"
	case FlagRemoved:
		return "removed"
	case FlagNoFlagsLeft:
		return "no_flags_left"
	default:
		return "unknown"
	}
}

// Cell is a single grid square. Adjacent is only meaningful for
// non-hazard cells.
type Cell struct {
	Hazard   bool
	Revealed bool
	Flagged  bool
	Adjacent uint8
}

// Board is a single game instance. Not safe for concurrent use; callers own
// exactly one writer at a time.
type Board struct {
	width   int
	height  int
	hazards int

	// cells is indexed y*width+x.
	cells []Cell

	flagsLeft int
	safeLeft  int
	status    Outcome
}

// New creates a fully initialized, unrevealed board with hazardCount hazards
// placed uniformly without replacement. The caller must ensure
// 0 <= hazardCount < width*height; rng drives placement so tests can seed it.
func New(width, height, hazardCount int, rng *rand.Rand) *Board {
	b := &Board{
		width:     width,
		height:    height,
		hazards:   hazardCount,
		cells:     make([]Cell, width*height),
		flagsLeft: FlagAllowance,
		safeLeft:  width*height - hazardCount,
		status:    OutcomeContinue,
	}
	b.plantHazards(hazardCount, rng)
	b.countNeighbors()
	return b
}

// plantHazards samples uniform cell indices, retrying on duplicates. The
// hazard count is always a small fraction of the grid, so retries are cheap.
func (b *Board) plantHazards(count int, rng *rand.Rand) {
	placed := 0
	for placed < count {
		i := rng.Intn(len(b.cells))
		if b.cells[i].Hazard {
			continue
		}
		b.cells[i].Hazard = true
		placed++
	}
}

// countNeighbors fills Adjacent for every non-hazard cell. Runs exactly once,
// after placement.
func (b *Board) countNeighbors() {
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.cells[y*b.width+x].Hazard {
				continue
			}
			n := uint8(0)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if nx < 0 || nx >= b.width || ny < 0 || ny >= b.height {
						continue
					}
					if b.cells[ny*b.width+nx].Hazard {
						n++
					}
				}
			}
			b.cells[y*b.width+x].Adjacent = n
		}
	}
}

// Reveal opens the cell at (x, y).
//
// Already-revealed, flagged, and out-of-bounds coordinates are no-ops, as is
// any call after the board reached Won or Lost. Revealing a hazard loses the
// game and opens the whole board. Revealing a zero-adjacency cell cascades
// to its neighbors via an explicit worklist: expansion stops at cells with a
// nonzero count, but those cells are still revealed.
func (b *Board) Reveal(x, y int) Outcome {
	if b.status != OutcomeContinue {
		return b.status
	}
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return OutcomeContinue
	}

	c := &b.cells[y*b.width+x]
	if c.Revealed || c.Flagged {
		return OutcomeContinue
	}

	if c.Hazard {
		b.status = OutcomeLost
		for i := range b.cells {
			b.cells[i].Revealed = true
		}
		return OutcomeLost
	}

	// Flood fill. The worklist only ever holds safe, unrevealed cells.
	work := []int{y*b.width + x}
	for len(work) > 0 {
		i := work[len(work)-1]
		work = work[:len(work)-1]

		cell := &b.cells[i]
		if cell.Revealed {
			continue
		}
		cell.Revealed = true
		b.safeLeft--

		if cell.Adjacent != 0 {
			continue
		}

		cx, cy := i%b.width, i/b.width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := cx+dx, cy+dy
				if nx < 0 || nx >= b.width || ny < 0 || ny >= b.height {
					continue
				}
				n := &b.cells[ny*b.width+nx]
				if n.Revealed || n.Flagged || n.Hazard {
					continue
				}
				work = append(work, ny*b.width+nx)
			}
		}
	}

	if b.safeLeft == 0 {
		b.status = OutcomeWon
		return OutcomeWon
	}
	return OutcomeContinue
}

// ToggleFlag flips the flag on the cell at (x, y). Revealed cells cannot be
// flagged, placing a flag consumes the allowance, and removing one returns
// it. Flagging never reveals and never decides the game.
func (b *Board) ToggleFlag(x, y int) FlagOutcome {
	if b.status != OutcomeContinue {
		return FlagIgnored
	}
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return FlagIgnored
	}

	c := &b.cells[y*b.width+x]
	if c.Revealed {
		return FlagIgnored
	}

	if c.Flagged {
		c.Flagged = false
		b.flagsLeft++
		return FlagRemoved
	}
	if b.flagsLeft == 0 {
		return FlagNoFlagsLeft
	}
	c.Flagged = true
	b.flagsLeft--
	return FlagPlaced
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

// Hazards returns the number of hazards planted at construction.
func (b *Board) Hazards() int { return b.hazards }

// FlagsLeft returns the remaining flag allowance.
func (b *Board) FlagsLeft() int { return b.flagsLeft }

// SafeLeft returns how many non-hazard cells are still unrevealed.
func (b *Board) SafeLeft() int { return b.safeLeft }

// Status returns the current outcome: OutcomeContinue while playable,
// otherwise the terminal outcome.
func (b *Board) Status() Outcome { return b.status }

// CellAt returns a copy of the cell at (x, y) and false if the coordinate is
// out of bounds.
func (b *Board) CellAt(x, y int) (Cell, bool) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Cell{}, false
	}
	return b.cells[y*b.width+x], true
}

// RevealedCount returns the number of revealed cells, hazards included.
func (b *Board) RevealedCount() int {
	n := 0
	for i := range b.cells {
		if b.cells[i].Revealed {
			n++
		}
	}
	return n
}
