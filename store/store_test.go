package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteSnakeReplayParquet_AtomicPlacement(t *testing.T) {
	dir := t.TempDir()

	rows := []SnakeTurnRow{
		{SessionID: "s1", Turn: 0, Width: 7, Height: 7, BodyX: []int32{3}, BodyY: []int32{3}, TargetX: 5, TargetY: 5, Level: 1, Score: 0, IntervalMs: 200},
		{SessionID: "s1", Turn: 1, Width: 7, Height: 7, BodyX: []int32{4, 3}, BodyY: []int32{3, 3}, TargetX: 5, TargetY: 5, Level: 1, Score: 0, IntervalMs: 200, Outcome: "out_of_bounds"},
	}

	path, err := WriteSnakeReplayParquet(dir, rows)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("file written outside outDir: %s", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "snake_") {
		t.Fatalf("unexpected file name: %s", filepath.Base(path))
	}

	// No leftover tmp file.
	entries, err := os.ReadDir(filepath.Join(dir, "tmp"))
	if err != nil {
		t.Fatalf("read tmp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("tmp dir not empty after rename: %d entries", len(entries))
	}

	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() == 0 {
		t.Fatalf("empty parquet file")
	}
}

func TestWriteMinesReplayParquet_RejectsEmpty(t *testing.T) {
	if _, err := WriteMinesReplayParquet(t.TempDir(), nil); err == nil {
		t.Fatalf("expected error for empty batch")
	}
}

func TestSessionLog_DedupeAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.log")

	l, err := OpenSessionLog(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if l.Has("a") {
		t.Fatalf("fresh log claims to have id")
	}
	if err := l.Add("a"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := l.Add("a"); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if err := l.Add("b"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if l.Count() != 2 {
		t.Fatalf("count=%d want=2", l.Count())
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen and confirm the IDs survived.
	l2, err := OpenSessionLog(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l2.Close()
	if !l2.Has("a") || !l2.Has("b") {
		t.Fatalf("ids lost across reopen")
	}
	if l2.Count() != 2 {
		t.Fatalf("count=%d want=2 after reopen", l2.Count())
	}

	// The re-added duplicate must not have produced a second line.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := strings.Count(string(data), "a\n"); got != 1 {
		t.Fatalf("duplicate lines for id a: %d", got)
	}
}

func TestSessionLog_RequiresPath(t *testing.T) {
	if _, err := OpenSessionLog(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
