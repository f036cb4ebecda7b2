package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brensch/gridarcade/logging"
	"github.com/brensch/gridarcade/scores"
	"github.com/brensch/gridarcade/server"
	"github.com/brensch/gridarcade/store"
)

func main() {
	listen := flag.String("listen", getEnvOrDefault("LISTEN", "127.0.0.1:8080"), "HTTP listen address")
	replayDir := flag.String("replay-dir", getEnvOrDefault("REPLAY_DIR", "data/replays"), "Directory for per-session replay parquet files (empty disables)")
	scoresPath := flag.String("scores-db", getEnvOrDefault("SCORES_DB", "data/scores.db"), "SQLite leaderboard path (empty disables)")
	sessionLogPath := flag.String("session-log", getEnvOrDefault("SESSION_LOG", "data/flushed_sessions.log"), "Append-only log of sessions already flushed (empty disables)")
	logLevel := flag.String("log-level", getEnvOrDefault("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
	flag.Parse()

	logger := slog.New(logging.NewHandler(os.Stdout, parseLevel(*logLevel)))

	opts := server.Options{
		ReplayDir: *replayDir,
		Logger:    logger,
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

	srv := server.New(opts)
	defer srv.Close()

	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	httpSrv := &http.Server{
		Addr:              *listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("server listening", "addr", *listen, "replay_dir", *replayDir)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("serve: %v", err)
	}
	logger.Info("server stopped")
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
