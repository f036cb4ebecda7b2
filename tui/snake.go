package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/gridarcade/game"
	"github.com/brensch/gridarcade/motion"
	"github.com/brensch/gridarcade/scores"
	"github.com/brensch/gridarcade/store"
)

type snakeTickMsg time.Time

type snakeModel struct {
	opts  Options
	id    string
	state *motion.State

	rows     []store.SnakeTurnRow
	finished bool
	status   string
}

func newSnakeModel(opts Options) *snakeModel {
	m := &snakeModel{
		opts:  opts,
		id:    newSessionID(),
		state: motion.New(motion.DefaultConfig, opts.Rand),
	}
	m.rows = append(m.rows, m.snapshotRow())
	return m
}

func (m *snakeModel) init() tea.Cmd {
	return m.tickCmd()
}

func (m *snakeModel) tickCmd() tea.Cmd {
	interval := time.Duration(m.state.TickIntervalMs()) * time.Millisecond
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return snakeTickMsg(t)
	})
}

// update returns done=true when the player leaves the game.
func (m *snakeModel) update(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case snakeTickMsg:
		if m.finished {
			return false, nil
		}
		res := m.state.Step()
		if !m.state.Paused() || res != motion.ResultContinue {
			m.rows = append(m.rows, m.snapshotRow())
		}
		if res == motion.ResultGameOver {
			m.finish()
			return false, nil
		}
		return false, m.tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return true, nil
		case "r":
			if m.finished {
				*m = *newSnakeModel(m.opts)
				return false, m.init()
			}
		case "up", "w":
			m.state.SetHeading(game.DirUp)
		case "down", "s":
			m.state.SetHeading(game.DirDown)
		case "left", "a":
			m.state.SetHeading(game.DirLeft)
		case "right", "d":
			m.state.SetHeading(game.DirRight)
		case "p", " ":
			if m.state.Paused() {
				m.state.Resume()
			} else {
				m.state.Pause()
			}
		}
	}
	return false, nil
}

func (m *snakeModel) finish() {
	m.finished = true
	m.status = finishSession(m.opts, scores.Score{
		Game:   "snake",
		Player: m.opts.Player,
		Points: m.state.Score(),
		Level:  m.state.Level(),
	}, m.flushReplay)
}

func (m *snakeModel) flushReplay() error {
	if m.opts.ReplayDir == "" {
		return nil
	}
	if m.opts.SessionLog != nil && m.opts.SessionLog.Has(m.id) {
		return nil
	}
	if _, err := store.WriteSnakeReplayParquet(m.opts.ReplayDir, m.rows); err != nil {
		return err
	}
	if m.opts.SessionLog != nil {
		return m.opts.SessionLog.Add(m.id)
	}
	return nil
}

func (m *snakeModel) view() string {
	st := m.state
	width, height := st.Width(), st.Height()

	cells := make([]rune, width*height)
	for i := range cells {
		cells[i] = ' '
	}
	if t := st.Target(); t.In(width, height) {
		cells[t.Y*width+t.X] = '*'
	}
	body := st.Body()
	for i := len(body) - 1; i >= 0; i-- {
		p := body[i]
		glyph := 'o'
		if i == 0 {
			glyph = '@'
		}
		cells[p.Y*width+p.X] = glyph
	}

	var grid strings.Builder
	for y := height - 1; y >= 0; y-- {
		for x := 0; x < width; x++ {
			switch cells[y*width+x] {
			case '@':
				grid.WriteString(headStyle.Render("@"))
			case 'o':
				grid.WriteString(bodyStyle.Render("o"))
			case '*':
				grid.WriteString(targetStyle.Render("*"))
			default:
				grid.WriteByte(' ')
			}
			grid.WriteByte(' ')
		}
		if y > 0 {
			grid.WriteByte('\n')
		}
	}

	s := titleStyle.Render("snake") + "\n"
	s += gridStyle.Render(grid.String()) + "\n"
	s += statusStyle.Render(fmt.Sprintf("score %d  level %d  tick %dms",
		st.Score(), st.Level(), st.TickIntervalMs())) + "\n"

	if st.Over() {
		s += lostStyle.Render("game over: "+st.Cause().String()) + "\n"
		s += statusStyle.Render("r to play again") + "\n"
	} else if st.Paused() {
		s += statusStyle.Render("paused") + "\n"
	}
	if m.status != "" {
		s += statusStyle.Render(m.status) + "\n"
	}
	s += helpStyle.Render("arrows/wasd to steer, space to pause, q for menu") + "\n"
	return s
}

func (m *snakeModel) snapshotRow() store.SnakeTurnRow {
	st := m.state
	body := st.Body()
	row := store.SnakeTurnRow{
		SessionID:  m.id,
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
