package main

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/example/memorizer/internal/config"
	"github.com/example/memorizer/internal/database"
	"github.com/example/memorizer/internal/logger"
	"github.com/example/memorizer/internal/study"
)

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *database.DB
	pairs   *database.SentencePairRepository
	records *database.MemorizationRepository
	stats   *database.StatisticsRepository
	study   *study.Service
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	loc, err := cfg.Reminder.Location()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load timezone")
	}

	log, err := logger.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		_ = log.Sync()
		return nil, errors.Wrap(err, "failed to open database")
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		pairs:   database.NewSentencePairRepository(db),
		records: database.NewMemorizationRepository(db),
		stats:   database.NewStatisticsRepository(db),
	}
	a.study = study.NewService(a.pairs, a.records, a.stats,
		study.WithLocation(loc),
		study.WithLogger(log.Named("study")),
	)

	log.Debug("store opened",
		zap.String("backend", db.Backend()),
		zap.String("env", cfg.Env),
	)
	return a, nil
}

func (a *app) Close() error {
	err := a.db.Close()
	_ = a.log.Sync()
	return err
}
