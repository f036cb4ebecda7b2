// Package solver derives minesweeper hints with single-point analysis.
//
// Only player-visible state is consulted: revealed adjacency counts and flag
// positions. Hidden hazard bits are never read, so a hint is exactly what a
// careful player could deduce.
package solver

import (
	"github.com/brensch/gridarcade/board"
	"github.com/brensch/gridarcade/game"
)

// Hints is the result of one analysis pass.
//
// Safe cells are provably hazard-free and can be revealed. Hazard cells
// provably contain a hazard and are flag candidates. Both sets are
// deduplicated; neither contains revealed or flagged cells.
type Hints struct {
	Safe    []game.Point
	Hazards []game.Point
}

// Analyze scans every revealed numbered cell and applies the two
// single-point rules:
//
//   - If the cell's count equals its flagged neighbor count, all remaining
//     unrevealed neighbors are safe.
//   - If the cell's count equals its unrevealed neighbor count (flagged
//     included), all unflagged unrevealed neighbors are hazards.
//
// The pass is read-only and runs in one sweep over the grid.
func Analyze(b *board.Board) Hints {
	safe := map[game.Point]struct{}{}
	hazards := map[game.Point]struct{}{}

	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			c, _ := b.CellAt(x, y)
			if !c.Revealed || c.Adjacent == 0 {
				continue
			}

			var hidden []game.Point
			flags := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					n, ok := b.CellAt(x+dx, y+dy)
					if !ok || n.Revealed {
						continue
					}
					if n.Flagged {
						flags++
						continue
					}
					hidden = append(hidden, game.Point{X: x + dx, Y: y + dy})
				}
			}
			if len(hidden) == 0 {
				continue
			}

			count := int(c.Adjacent)
			switch {
			case count == flags:
				for _, p := range hidden {
					safe[p] = struct{}{}
				}
			case count == flags+len(hidden):
				for _, p := range hidden {
					hazards[p] = struct{}{}
				}
			}
		}
	}

	out := Hints{}
	for y := 0; y < b.Height(); y++ {
		for x := 0; x < b.Width(); x++ {
			p := game.Point{X: x, Y: y}
			if _, ok := safe[p]; ok {
				out.Safe = append(out.Safe, p)
			}
			if _, ok := hazards[p]; ok {
				out.Hazards = append(out.Hazards, p)
			}
		}
	}
	return out
}
