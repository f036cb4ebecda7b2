package main

import (
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/gridarcade/scores"
	"github.com/brensch/gridarcade/store"
	"github.com/brensch/gridarcade/tui"
)

func main() {
	player := flag.String("player", getEnvOrDefault("PLAYER", os.Getenv("USER")), "Name recorded on the leaderboard")
	replayDir := flag.String("replay-dir", getEnvOrDefault("REPLAY_DIR", "data/replays"), "Directory for per-session replay parquet files (empty disables)")
	scoresPath := flag.String("scores-db", getEnvOrDefault("SCORES_DB", "data/scores.db"), "SQLite leaderboard path (empty disables)")
	sessionLogPath := flag.String("session-log", getEnvOrDefault("SESSION_LOG", "data/flushed_sessions.log"), "Append-only log of sessions already flushed (empty disables)")
	flag.Parse()

	opts := tui.Options{
		Player:    *player,
		ReplayDir: *replayDir,
	}

	if *scoresPath != "" {
		db, err := scores.Open(*scoresPath)
		if err != nil {
			log.Fatalf("open scores db: %v", err)
		}
		defer db.Close()
		opts.Scores = db
	}
	if *sessionLogPath != "" {
		sl, err := store.OpenSessionLog(*sessionLogPath)
		if err != nil {
			log.Fatalf("open session log: %v", err)
		}
		defer sl.Close()
		opts.SessionLog = sl
	}

	p := tea.NewProgram(tui.New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
