package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SessionLog tracks which session IDs have already been flushed to Parquet.
// It is backed by an append-only file with one session ID per line.
//
// On open the file is read into memory for fast dedupe; every Add appends
// and fsyncs. A partial final line from a crash is ignored on the next open.
// This is a dedupe list, not a general-purpose WAL.
type SessionLog struct {
	mu      sync.RWMutex
	path    string
	file    *os.File
	flushed map[string]struct{}
}

func OpenSessionLog(path string) (*SessionLog, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is required")
	}

	flushed := make(map[string]struct{})
	if f, err := os.Open(path); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			id := strings.TrimSpace(scanner.Text())
			if id == "" {
				continue
			}
			flushed[id] = struct{}{}
		}
		_ = f.Close()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &SessionLog{
		path:    path,
		file:    file,
		flushed: flushed,
	}, nil
}

func (l *SessionLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *SessionLog) Has(sessionID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.flushed[sessionID]
	return ok
}

func (l *SessionLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.flushed)
}

func (l *SessionLog) Add(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.flushed[sessionID]; ok {
		return nil
	}
	if l.file == nil {
		return fmt.Errorf("log file is closed")
	}

	if _, err := l.file.WriteString(sessionID + "\n"); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync log: %w", err)
	}
	l.flushed[sessionID] = struct{}{}
	return nil
}
