package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Sessions are addressed by unguessable UUIDs; the feed is read-only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	liveWriteTimeout = 5 * time.Second
	// liveQueueDepth bounds per-subscriber backlog. A full queue means the
	// reader is slower than the tick rate and gets dropped.
	liveQueueDepth = 32
)

// hub fans session snapshots out to websocket subscribers.
type hub struct {
	mu   sync.Mutex
	subs map[chan snakeStateJSON]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan snakeStateJSON]struct{})}
}

func (h *hub) subscribe() chan snakeStateJSON {
	ch := make(chan snakeStateJSON, liveQueueDepth)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *hub) unsubscribe(ch chan snakeStateJSON) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *hub) broadcast(snap snakeStateJSON) {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- snap:
		default:
			delete(h.subs, ch)
			close(ch)
		}
	}
	h.mu.Unlock()
}

// handleSnakeLive streams one snapshot per tick over a websocket. The
// connection starts with the current state so late joiners see the board
// immediately.
func (s *Server) handleSnakeLive(w http.ResponseWriter, r *http.Request) {
	sess := s.snakeByID(w, r)
	if sess == nil {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "session_id", sess.id, "err", err.Error())
		return
	}
	defer conn.Close()

	sub := sess.hub.subscribe()
	defer sess.hub.unsubscribe(sub)

	// Drain the client's reads so close frames are processed; we never
	// expect payloads.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sess.hub.unsubscribe(sub)
				return
			}
		}
	}()

	sess.mu.Lock()
	first := snapshotJSON(sess.id, sess.state)
	sess.mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	if err := conn.WriteJSON(first); err != nil {
		return
	}

	for {
		select {
		case <-sess.done:
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session over"),
				time.Now().Add(liveWriteTimeout))
			return
		case snap, ok := <-sub:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		}
	}
}
