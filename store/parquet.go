// Package store persists finished game sessions to Parquet.
//
// Files are written into a tmp directory and renamed into place so readers
// (the replay API scans the directory with DuckDB) never observe a partially
// written file.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// SnakeTurnRow is one tick of a snake session. Body coordinates are stored
// as parallel x/y arrays, which compresses well and matches how the replay
// API returns them.
//
// Outcome is empty on every row except the final one, where it records
// "out_of_bounds" or "self_collision".
type SnakeTurnRow struct {
	SessionID string `parquet:"session_id,dict"`
	Turn      int32  `parquet:"turn"`
	Width     int32  `parquet:"width"`
	Height    int32  `parquet:"height"`

	BodyX []int32 `parquet:"body_x"`
	BodyY []int32 `parquet:"body_y"`

	TargetX int32 `parquet:"target_x"`
	TargetY int32 `parquet:"target_y"`

	Level      int32  `parquet:"level"`
	Score      int32  `parquet:"score"`
	IntervalMs int32  `parquet:"interval_ms"`
	Outcome    string `parquet:"outcome,dict"`
}

// MinesMoveRow is one player action in a minesweeper session. Action is
// "reveal" or "flag"; Outcome records the engine's response to the move.
type MinesMoveRow struct {
	SessionID string `parquet:"session_id,dict"`
	Move      int32  `parquet:"move"`
	Width     int32  `parquet:"width"`
	Height    int32  `parquet:"height"`
	Hazards   int32  `parquet:"hazards"`

	Action string `parquet:"action,dict"`
	X      int32  `parquet:"x"`
	Y      int32  `parquet:"y"`

	Outcome   string `parquet:"outcome,dict"`
	Revealed  int32  `parquet:"revealed"`
	FlagsLeft int32  `parquet:"flags_left"`
}

const (
	snakeSchemaTag = "snake_turn_v1"
	minesSchemaTag = "mines_move_v1"
)

// WriteSnakeReplayParquet writes one batch of snake turns to a new file in
// outDir and returns the final path.
func WriteSnakeReplayParquet(outDir string, rows []SnakeTurnRow) (string, error) {
	return writeAtomic(outDir, "snake", snakeSchemaTag, rows)
}

// WriteMinesReplayParquet writes one batch of minesweeper moves to a new
// file in outDir and returns the final path.
func WriteMinesReplayParquet(outDir string, rows []MinesMoveRow) (string, error) {
	return writeAtomic(outDir, "mines", minesSchemaTag, rows)
}

func writeAtomic[T any](outDir, prefix, schemaTag string, rows []T) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("no rows to write")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	tmpDir := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}

	name := fmt.Sprintf("%s_%d.parquet", prefix, time.Now().UnixNano())
	finalPath := filepath.Join(outDir, name)
	tmpPath := filepath.Join(tmpDir, name+".tmp")
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", schemaTag),
	); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("rename parquet: %w", err)
	}
	return finalPath, nil
}
