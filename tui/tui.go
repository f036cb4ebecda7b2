// Package tui is the terminal client. It runs both games against the
// engines directly, no server involved, and records finished sessions the
// same way the server does.
package tui

import (
	"fmt"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/brensch/gridarcade/scores"
	"github.com/brensch/gridarcade/store"
)

// Options wires the optional persistence into the TUI. All fields may be
// zero; the games still play without them.
type Options struct {
	Player     string
	ReplayDir  string
	Scores     *scores.DB
	SessionLog *store.SessionLog
	Rand       *rand.Rand
}

type screen int

const (
	screenMenu screen = iota
	screenSnake
	screenMines
)

var menuEntries = []string{"snake", "minesweeper", "quit"}

// Model is the root bubbletea model: a menu that hands control to one of
// the per-game models and takes it back when the player quits out.
type Model struct {
	opts   Options
	screen screen
	cursor int

	snake *snakeModel
	mines *minesModel
}

func New(opts Options) Model {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return Model{opts: opts}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case screenSnake:
		done, cmd := m.snake.update(msg)
		if done {
			m.screen = screenMenu
			m.snake = nil
			return m, nil
		}
		return m, cmd
	case screenMines:
		done, cmd := m.mines.update(msg)
		if done {
			m.screen = screenMenu
			m.mines = nil
			return m, nil
		}
		return m, cmd
	}
	return m.updateMenu(msg)
}

func (m Model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuEntries)-1 {
			m.cursor++
		}
	case "enter", " ":
		switch menuEntries[m.cursor] {
		case "snake":
			m.screen = screenSnake
			m.snake = newSnakeModel(m.opts)
			return m, m.snake.init()
		case "minesweeper":
			m.screen = screenMines
			m.mines = newMinesModel(m.opts)
			return m, nil
		case "quit":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	switch m.screen {
	case screenSnake:
		return m.snake.view()
	case screenMines:
		return m.mines.view()
	}

	s := titleStyle.Render("grid arcade") + "\n"
	for i, entry := range menuEntries {
		line := "  " + entry
		if i == m.cursor {
			line = selectedStyle.Render("> " + entry)
		}
		s += line + "\n"
	}
	s += helpStyle.Render("up/down to choose, enter to play, q to quit") + "\n"
	return s
}

// finishSession persists a finished game. Errors come back as a status line
// for the view; the terminal is owned by bubbletea so nothing may log to it.
func finishSession(opts Options, sc scores.Score, flush func() error) string {
	if opts.Scores != nil {
		if _, err := opts.Scores.Insert(sc); err != nil {
			return fmt.Sprintf("score not saved: %v", err)
		}
	}
	if flush != nil {
		if err := flush(); err != nil {
			return fmt.Sprintf("replay not saved: %v", err)
		}
	}
	return ""
}

func newSessionID() string { return uuid.NewString() }
