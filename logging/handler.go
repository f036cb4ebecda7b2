// Package logging provides the slog handler used by the long-running
// processes (the session server). It prints one indented JSON object per
// record, which is what we want for daemon logs read by humans; it is not
// tuned for throughput.
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"
)

// Handler is a slog.Handler emitting indented JSON. Grouped attributes are
// flattened into dotted keys ("session.id") rather than nested objects,
// which keeps grep-ability for the common case of one group level.
type Handler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Leveler

	attrs  []slog.Attr
	prefix string // accumulated group prefix, "a.b." form
}

func NewHandler(w io.Writer, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{
		w:     w,
		mu:    &sync.Mutex{},
		level: level,
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	payload := make(map[string]any, 4+len(h.attrs)+r.NumAttrs())

	when := r.Time
	if when.IsZero() {
		when = time.Now()
	}
	payload["time"] = when.Format(time.RFC3339Nano)
	payload["level"] = r.Level.String()
	payload["msg"] = r.Message

	for _, a := range h.attrs {
		putAttr(payload, h.prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		putAttr(payload, h.prefix, a)
		return true
	})

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		// Last resort: never drop the message itself.
		b = []byte(`{"level":` + strconv.Quote(r.Level.String()) + `,"msg":` + strconv.Quote(r.Message) + `}`)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(append(b, '\n'))
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

func putAttr(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Key == "" && v.Kind() != slog.KindGroup {
		return
	}

	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			putAttr(dst, p, ga)
		}
		return
	}

	dst[prefix+a.Key] = flatten(v)
}

func flatten(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	default:
		return v.Any()
	}
}
