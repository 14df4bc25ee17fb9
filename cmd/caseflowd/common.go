package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caseflow/caseflow/internal/config"
	"github.com/caseflow/caseflow/internal/obslog"
	"github.com/caseflow/caseflow/internal/store"
	"github.com/caseflow/caseflow/internal/store/postgres"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return obslog.New(obslog.Options{
		Development: cfg.Log.Development,
		Level:       parseLevel(cfg.Log.Level),
	})
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database.DSN, cfg.Database.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return postgres.New(pool), nil
}
