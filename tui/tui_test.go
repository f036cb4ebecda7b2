package tui

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/gridarcade/board"
)

func testOptions() Options {
	return Options{Rand: rand.New(rand.NewSource(7))}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestMenu_EnterOpensSnake(t *testing.T) {
	m := New(testOptions())

	next, _ := m.Update(keyMsg("enter"))
	got := next.(Model)
	if got.screen != screenSnake || got.snake == nil {
		t.Fatalf("screen=%d snake=%v", got.screen, got.snake)
	}

	// q inside the game returns to the menu.
	next, _ = got.Update(keyMsg("q"))
	got = next.(Model)
	if got.screen != screenMenu || got.snake != nil {
		t.Fatalf("did not return to menu: screen=%d", got.screen)
	}
}

func TestMenu_CursorStopsAtEdges(t *testing.T) {
	m := New(testOptions())
	for i := 0; i < 5; i++ {
		next, _ := m.Update(keyMsg("up"))
		m = next.(Model)
	}
	if m.cursor != 0 {
		t.Fatalf("cursor=%d want 0", m.cursor)
	}
	for i := 0; i < 10; i++ {
		next, _ := m.Update(keyMsg("down"))
		m = next.(Model)
	}
	if m.cursor != len(menuEntries)-1 {
		t.Fatalf("cursor=%d want %d", m.cursor, len(menuEntries)-1)
	}
}

func TestSnakeModel_TickAdvancesAndRecords(t *testing.T) {
	m := newSnakeModel(testOptions())
	if len(m.rows) != 1 {
		t.Fatalf("initial rows=%d want 1", len(m.rows))
	}

	done, cmd := m.update(snakeTickMsg(time.Now()))
	if done {
		t.Fatalf("tick ended the session")
	}
	if cmd == nil {
		t.Fatalf("no follow-up tick scheduled")
	}
	if m.state.Ticks() != 1 {
		t.Fatalf("ticks=%d want 1", m.state.Ticks())
	}
	if len(m.rows) != 2 {
		t.Fatalf("rows=%d want 2", len(m.rows))
	}
}

func TestSnakeModel_PauseFreezesTicks(t *testing.T) {
	m := newSnakeModel(testOptions())

	m.update(keyMsg("p"))
	if !m.state.Paused() {
		t.Fatalf("p did not pause")
	}
	m.update(snakeTickMsg(time.Now()))
	if m.state.Ticks() != 0 {
		t.Fatalf("paused session advanced to tick %d", m.state.Ticks())
	}
	if len(m.rows) != 1 {
		t.Fatalf("paused tick recorded a row")
	}

	m.update(keyMsg("p"))
	if m.state.Paused() {
		t.Fatalf("p did not resume")
	}
}

func TestMinesModel_CursorStaysInBounds(t *testing.T) {
	m := newMinesModel(testOptions())
	for i := 0; i < 50; i++ {
		m.update(keyMsg("left"))
	}
	if m.cursor.X != 0 {
		t.Fatalf("cursor.X=%d want 0", m.cursor.X)
	}
	for i := 0; i < 50; i++ {
		m.update(keyMsg("up"))
	}
	if m.cursor.Y != m.board.Height()-1 {
		t.Fatalf("cursor.Y=%d want %d", m.cursor.Y, m.board.Height()-1)
	}
}

func TestMinesModel_FlagRecordsMove(t *testing.T) {
	m := newMinesModel(testOptions())

	m.update(keyMsg("f"))
	if len(m.rows) != 1 {
		t.Fatalf("rows=%d want 1", len(m.rows))
	}
	row := m.rows[0]
	if row.Action != "flag" || row.Outcome != "placed" || row.FlagsLeft != board.FlagAllowance-1 {
		t.Fatalf("row=%+v", row)
	}

	m.update(keyMsg("f"))
	if m.rows[1].Outcome != "removed" || m.rows[1].FlagsLeft != board.FlagAllowance {
		t.Fatalf("row=%+v", m.rows[1])
	}
}

func TestMinesModel_ViewShowsFlagCount(t *testing.T) {
	m := newMinesModel(testOptions())
	if !strings.Contains(m.view(), "flags 10") {
		t.Fatalf("view missing flag count:\n%s", m.view())
	}
	m.update(keyMsg("f"))
	if !strings.Contains(m.view(), "flags 9") {
		t.Fatalf("view missing decremented flag count:\n%s", m.view())
	}
}
