// Command forestd serves the interactive forest supply-chain game over HTTP.
// One session at a time; state snapshots to SQLite after every action so a
// daemon restart resumes the game in progress.
package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"

	"github.com/talgya/timberline/internal/api"
	"github.com/talgya/timberline/internal/config"
	"github.com/talgya/timberline/internal/entropy"
	"github.com/talgya/timberline/internal/game"
	"github.com/talgya/timberline/internal/persistence"
)

type envConfig struct {
	Port       int    `env:"FORESTD_PORT" envDefault:"8080"`
	DBPath     string `env:"FORESTD_DB" envDefault:"data/timberline.db"`
	ConfigPath string `env:"FORESTD_CONFIG"`
	AdminKey   string `env:"FORESTD_ADMIN_KEY"`
	Seed       int64  `env:"FORESTD_SEED" envDefault:"0"`
}

const activeSessionKey = "active_session"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		slog.Error("failed to parse environment", "error", err)
		os.Exit(1)
	}
	if ec.AdminKey == "" {
		slog.Warn("FORESTD_ADMIN_KEY not set — mutating endpoints are open")
	}

	cfg, err := loadConfig(ec.ConfigPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// A fixed seed makes the market replayable; otherwise each session gets
	// fresh entropy.
	var src entropy.Source
	if ec.Seed != 0 {
		src = entropy.NewSeeded(ec.Seed)
		slog.Info("using fixed market seed", "seed", ec.Seed)
	} else {
		src = entropy.NewSystem()
	}

	if dir := filepath.Dir(ec.DBPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(ec.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", ec.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", ec.DBPath)

	g, sessionID := restoreOrCreate(db, cfg.Game, src)

	srv := &api.Server{
		Game:      g,
		SessionID: sessionID,
		DB:        db,
		AdminKey:  ec.AdminKey,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ec.Port) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("received signal, shutting down", "signal", sig)
	case err := <-errCh:
		slog.Error("HTTP server error", "error", err)
	}

	// Final snapshot so the session survives the restart.
	if err := db.SaveSession(sessionID, g.State()); err != nil {
		slog.Error("final session save failed", "error", err)
	}
	slog.Info("session saved", "session_id", sessionID)
}

// restoreOrCreate resumes the active session from the database or starts a
// fresh one.
func restoreOrCreate(db *persistence.DB, cfg config.Game, src entropy.Source) (*game.Game, string) {
	sessionID, err := db.GetMeta(activeSessionKey)
	if err == nil {
		st, loadErr := db.LoadSession(sessionID)
		if loadErr == nil {
			slog.Info("session restored", "session_id", sessionID, "turn", st.Turn, "money", st.Money)
			return game.Resume(cfg, src, st), sessionID
		}
		if !errors.Is(loadErr, persistence.ErrNotFound) {
			slog.Error("failed to load session, starting fresh", "session_id", sessionID, "error", loadErr)
		}
	}

	sessionID = uuid.NewString()
	g := game.New(cfg, src)
	if err := db.SaveSession(sessionID, g.State()); err != nil {
		slog.Error("initial session save failed", "error", err)
	}
	if err := db.SetMeta(activeSessionKey, sessionID); err != nil {
		slog.Error("failed to record active session", "error", err)
	}
	slog.Info("new session started", "session_id", sessionID)
	return g, sessionID
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg, err := config.Default()
		if err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}
