package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/gridarcade/board"
	"github.com/brensch/gridarcade/game"
	"github.com/brensch/gridarcade/scores"
	"github.com/brensch/gridarcade/solver"
	"github.com/brensch/gridarcade/store"
)

type minesModel struct {
	opts  Options
	id    string
	board *board.Board

	cursor    game.Point
	hints     solver.Hints
	showHints bool

	rows     []store.MinesMoveRow
	finished bool
	status   string
}

func newMinesModel(opts Options) *minesModel {
	b := board.New(9, 9, 10, opts.Rand)
	return &minesModel{
		opts:   opts,
		id:     newSessionID(),
		board:  b,
		cursor: game.Point{X: b.Width() / 2, Y: b.Height() / 2},
	}
}

func (m *minesModel) update(msg tea.Msg) (bool, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return false, nil
	}

	switch key.String() {
	case "q", "esc":
		return true, nil
	case "r":
		if m.finished {
			*m = *newMinesModel(m.opts)
		}
	case "up", "k":
		m.moveCursor(game.DirUp)
	case "down", "j":
		m.moveCursor(game.DirDown)
	case "left", "h":
		m.moveCursor(game.DirLeft)
	case "right", "l":
		m.moveCursor(game.DirRight)
	case "enter", " ":
		m.reveal()
	case "f":
		m.flag()
	case "?":
		m.showHints = !m.showHints
		if m.showHints {
			m.hints = solver.Analyze(m.board)
		}
	}
	return false, nil
}

func (m *minesModel) moveCursor(d game.Dir) {
	next := m.cursor.Add(d)
	if next.In(m.board.Width(), m.board.Height()) {
		m.cursor = next
	}
}

func (m *minesModel) reveal() {
	outcome := m.board.Reveal(m.cursor.X, m.cursor.Y)
	m.recordMove("reveal", outcome.String())
	if m.showHints {
		m.hints = solver.Analyze(m.board)
	}
	if outcome != board.OutcomeContinue && !m.finished {
		m.finished = true
		m.status = finishSession(m.opts, scores.Score{
			Game:   "mines",
			Player: m.opts.Player,
			Points: m.board.RevealedCount(),
			Won:    outcome == board.OutcomeWon,
		}, m.flushReplay)
	}
}

func (m *minesModel) flag() {
	res := m.board.ToggleFlag(m.cursor.X, m.cursor.Y)
	m.recordMove("flag", res.String())
	if m.showHints {
		m.hints = solver.Analyze(m.board)
	}
}

func (m *minesModel) recordMove(action, outcome string) {
	b := m.board
	if b.Status() != board.OutcomeContinue {
		outcome = b.Status().String()
	}
	m.rows = append(m.rows, store.MinesMoveRow{
		SessionID: m.id,
		Move:      int32(len(m.rows)),
		Width:     int32(b.Width()),
		Height:    int32(b.Height()),
		Hazards:   int32(b.Hazards()),
		Action:    action,
		X:         int32(m.cursor.X),
		Y:         int32(m.cursor.Y),
		Outcome:   outcome,
		Revealed:  int32(b.RevealedCount()),
		FlagsLeft: int32(b.FlagsLeft()),
	})
}

func (m *minesModel) flushReplay() error {
	if m.opts.ReplayDir == "" || len(m.rows) == 0 {
		return nil
	}
	if m.opts.SessionLog != nil && m.opts.SessionLog.Has(m.id) {
		return nil
	}
	if _, err := store.WriteMinesReplayParquet(m.opts.ReplayDir, m.rows); err != nil {
		return err
	}
	if m.opts.SessionLog != nil {
		return m.opts.SessionLog.Add(m.id)
	}
	return nil
}

func (m *minesModel) view() string {
	b := m.board

	safeHints := make(map[game.Point]bool, len(m.hints.Safe))
	hazardHints := make(map[game.Point]bool, len(m.hints.Hazards))
	if m.showHints {
		for _, p := range m.hints.Safe {
			safeHints[p] = true
		}
		for _, p := range m.hints.Hazards {
			hazardHints[p] = true
		}
	}

	var grid strings.Builder
	for y := b.Height() - 1; y >= 0; y-- {
		for x := 0; x < b.Width(); x++ {
			p := game.Point{X: x, Y: y}
			c, _ := b.CellAt(x, y)
			glyph := m.cellGlyph(p, c, safeHints, hazardHints)
			if p == m.cursor && b.Status() == board.OutcomeContinue {
				glyph = cursorStyle.Render(glyph)
			}
			grid.WriteString(glyph)
			grid.WriteByte(' ')
		}
		if y > 0 {
			grid.WriteByte('\n')
		}
	}

	s := titleStyle.Render("minesweeper") + "\n"
	s += gridStyle.Render(grid.String()) + "\n"
	s += statusStyle.Render(fmt.Sprintf("flags %d  safe cells left %d",
		b.FlagsLeft(), b.SafeLeft())) + "\n"

	switch b.Status() {
	case board.OutcomeWon:
		s += wonStyle.Render("cleared!") + "\n"
	case board.OutcomeLost:
		s += lostStyle.Render("boom") + "\n"
	}
	if m.finished {
		s += statusStyle.Render("r to play again") + "\n"
	}
	if m.status != "" {
		s += statusStyle.Render(m.status) + "\n"
	}
	s += helpStyle.Render("arrows to move, space to reveal, f to flag, ? for hints, q for menu") + "\n"
	return s
}

func (m *minesModel) cellGlyph(p game.Point, c board.Cell, safe, hazard map[game.Point]bool) string {
	switch {
	case c.Flagged:
		return flagStyle.Render("F")
	case !c.Revealed:
		if safe[p] {
			return hintStyle.Render("+")
		}
		if hazard[p] {
			return hintStyle.Render("!")
		}
		return hiddenStyle.Render("·")
	case c.Hazard:
		return hazardStyle.Render("*")
	case c.Adjacent == 0:
		return " "
	default:
		return fmt.Sprintf("%d", c.Adjacent)
	}
}
