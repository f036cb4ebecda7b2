package board

import (
	"math/rand"
	"strings"
	"testing"
)

func dumpBoard(b *Board) string {
	var sb strings.Builder
	for y := b.Height() - 1; y >= 0; y-- {
		for x := 0; x < b.Width(); x++ {
			c, _ := b.CellAt(x, y)
			switch {
			case c.Flagged:
				sb.WriteByte('F')
			case !c.Revealed:
				sb.WriteByte('-')
			case c.Hazard:
				sb.WriteByte('*')
			case c.Adjacent == 0:
				sb.WriteByte('.')
			default:
				sb.WriteByte('0' + c.Adjacent)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func newTestBoard(t *testing.T, w, h, hazards int, seed int64) *Board {
	t.Helper()
	return New(w, h, hazards, rand.New(rand.NewSource(seed)))
}

func TestNew_HazardCountAndAdjacency(t *testing.T) {
	b := newTestBoard(t, 9, 9, 10, 1)

	hazards := 0
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			c, ok := b.CellAt(x, y)
			if !ok {
				t.Fatalf("cell (%d,%d) out of bounds", x, y)
			}
			if c.Hazard {
				hazards++
				continue
			}
			// Brute-force recount of the <=8 neighbors.
			want := uint8(0)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					if n, ok := b.CellAt(x+dx, y+dy); ok && n.Hazard {
						want++
					}
				}
			}
			if c.Adjacent != want {
				t.Fatalf("cell (%d,%d) adjacent=%d want=%d\n%s", x, y, c.Adjacent, want, dumpBoard(b))
			}
		}
	}
	if hazards != 10 {
		t.Fatalf("hazards=%d want=10", hazards)
	}
	if b.SafeLeft() != 71 {
		t.Fatalf("safeLeft=%d want=71", b.SafeLeft())
	}
}

func TestReveal_Idempotent(t *testing.T) {
	b := newTestBoard(t, 9, 9, 10, 2)

	// Find a safe cell.
	var sx, sy int
	found := false
	for y := 0; y < 9 && !found; y++ {
		for x := 0; x < 9 && !found; x++ {
			if c, _ := b.CellAt(x, y); !c.Hazard {
				sx, sy = x, y
				found = true
			}
		}
	}

	first := b.Reveal(sx, sy)
	revealed := b.RevealedCount()
	safeLeft := b.SafeLeft()

	second := b.Reveal(sx, sy)
	if second != first && second != OutcomeContinue {
		// A second reveal may only report the unchanged status.
		t.Fatalf("second reveal outcome=%v first=%v", second, first)
	}
	if b.RevealedCount() != revealed || b.SafeLeft() != safeLeft {
		t.Fatalf("double reveal mutated board: revealed %d->%d safeLeft %d->%d",
			revealed, b.RevealedCount(), safeLeft, b.SafeLeft())
	}
}

func TestReveal_FloodFillStopsAtNumbers(t *testing.T) {
	// 5x5 with a single hazard in the corner. Revealing the far corner
	// must cascade across all zero cells and reveal the bordering
	// numbered cells, but nothing beyond them.
	var b *Board
	for seed := int64(0); ; seed++ {
		b = newTestBoard(t, 5, 5, 1, seed)
		if c, _ := b.CellAt(0, 0); c.Hazard {
			break
		}
	}

	out := b.Reveal(4, 4)
	if out != OutcomeWon {
		t.Fatalf("outcome=%v want=won\n%s", out, dumpBoard(b))
	}
	if c, _ := b.CellAt(0, 0); c.Revealed {
		// Winning reveals only safe cells; the hazard stays hidden.
		t.Fatalf("hazard cell revealed on win\n%s", dumpBoard(b))
	}

	// Every numbered cell is revealed, every hazard is not.
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			c, _ := b.CellAt(x, y)
			if c.Hazard {
				continue
			}
			if !c.Revealed {
				t.Fatalf("safe cell (%d,%d) unrevealed after cascade\n%s", x, y, dumpBoard(b))
			}
		}
	}
}

func TestReveal_HazardLosesAndOpensBoard(t *testing.T) {
	b := newTestBoard(t, 9, 9, 10, 3)

	var hx, hy int
	found := false
	for y := 0; y < 9 && !found; y++ {
		for x := 0; x < 9 && !found; x++ {
			if c, _ := b.CellAt(x, y); c.Hazard {
				hx, hy = x, y
				found = true
			}
		}
	}

	if out := b.Reveal(hx, hy); out != OutcomeLost {
		t.Fatalf("outcome=%v want=lost", out)
	}
	if b.RevealedCount() != 81 {
		t.Fatalf("revealed=%d want=81 after loss", b.RevealedCount())
	}
	if b.Status() != OutcomeLost {
		t.Fatalf("status=%v want=lost", b.Status())
	}

	// Terminal state is absorbing.
	if out := b.Reveal(0, 0); out != OutcomeLost {
		t.Fatalf("post-terminal reveal outcome=%v want=lost", out)
	}
	if out := b.ToggleFlag(0, 0); out != FlagIgnored {
		t.Fatalf("post-terminal flag outcome=%v want=ignored", out)
	}
}

func TestReveal_ZeroHazardBoardWinsImmediately(t *testing.T) {
	b := newTestBoard(t, 5, 5, 0, 1)
	if out := b.Reveal(2, 2); out != OutcomeWon {
		t.Fatalf("outcome=%v want=won\n%s", out, dumpBoard(b))
	}
	if b.RevealedCount() != 25 {
		t.Fatalf("revealed=%d want=25", b.RevealedCount())
	}
}

func TestToggleFlag_BudgetAndRoundTrip(t *testing.T) {
	b := newTestBoard(t, 9, 9, 10, 4)

	if b.FlagsLeft() != FlagAllowance {
		t.Fatalf("flagsLeft=%d want=%d", b.FlagsLeft(), FlagAllowance)
	}

	if out := b.ToggleFlag(3, 3); out != FlagPlaced {
		t.Fatalf("toggle on outcome=%v want=placed", out)
	}
	if b.FlagsLeft() != FlagAllowance-1 {
		t.Fatalf("flagsLeft=%d want=%d", b.FlagsLeft(), FlagAllowance-1)
	}
	if c, _ := b.CellAt(3, 3); c.Revealed {
		t.Fatalf("flagging revealed the cell")
	}

	if out := b.ToggleFlag(3, 3); out != FlagRemoved {
		t.Fatalf("toggle off outcome=%v want=removed", out)
	}
	if b.FlagsLeft() != FlagAllowance {
		t.Fatalf("flag+unflag did not restore budget: flagsLeft=%d", b.FlagsLeft())
	}
	if c, _ := b.CellAt(3, 3); c.Flagged {
		t.Fatalf("flag+unflag left the cell flagged")
	}
}

func TestToggleFlag_ExhaustedAllowance(t *testing.T) {
	b := newTestBoard(t, 9, 9, 10, 5)

	placed := 0
	for y := 0; y < 9 && placed < FlagAllowance; y++ {
		for x := 0; x < 9 && placed < FlagAllowance; x++ {
			if out := b.ToggleFlag(x, y); out != FlagPlaced {
				t.Fatalf("toggle (%d,%d) outcome=%v want=placed", x, y, out)
			}
			placed++
		}
	}
	if b.FlagsLeft() != 0 {
		t.Fatalf("flagsLeft=%d want=0", b.FlagsLeft())
	}
	if out := b.ToggleFlag(8, 8); out != FlagNoFlagsLeft {
		t.Fatalf("toggle outcome=%v want=noFlagsLeft", out)
	}
}

func TestReveal_FlaggedCellIsNoop(t *testing.T) {
	b := newTestBoard(t, 9, 9, 10, 6)

	if out := b.ToggleFlag(4, 4); out != FlagPlaced {
		t.Fatalf("flag outcome=%v", out)
	}
	if out := b.Reveal(4, 4); out != OutcomeContinue {
		t.Fatalf("reveal of flagged cell outcome=%v want=continue", out)
	}
	if c, _ := b.CellAt(4, 4); c.Revealed {
		t.Fatalf("flagged cell was revealed")
	}
}

func TestWin_RequiresExactSafeCount(t *testing.T) {
	// Reveal every safe cell one by one; the win must land on exactly the
	// 71st safe reveal of a 9x9/10 board, never earlier.
	b := newTestBoard(t, 9, 9, 10, 7)

	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			c, _ := b.CellAt(x, y)
			if c.Hazard || c.Revealed {
				continue
			}
			out := b.Reveal(x, y)
			if b.SafeLeft() > 0 && out != OutcomeContinue {
				t.Fatalf("premature outcome=%v with safeLeft=%d\n%s", out, b.SafeLeft(), dumpBoard(b))
			}
			if b.SafeLeft() == 0 && out != OutcomeWon {
				t.Fatalf("outcome=%v want=won at safeLeft=0", out)
			}
		}
	}
	if b.Status() != OutcomeWon {
		t.Fatalf("status=%v want=won", b.Status())
	}
}
