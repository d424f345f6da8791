package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/cwygoda/shopsearch/internal/adapter/backend"
	"github.com/cwygoda/shopsearch/internal/adapter/sqlite"
	"github.com/cwygoda/shopsearch/internal/auth"
	"github.com/cwygoda/shopsearch/internal/config"
	"github.com/cwygoda/shopsearch/internal/domain"
	"github.com/cwygoda/shopsearch/internal/logging"
	"github.com/cwygoda/shopsearch/internal/search"
)

// appContext holds everything a command needs.
type appContext struct {
	cfg      *config.Config
	log      zerolog.Logger
	repo     *sqlite.Repository
	creds    *auth.Provider
	history  *domain.HistoryService
	searcher *search.Searcher
}

func newAppContext(cmd *cli.Command) (*appContext, error) {
	cfg, err := config.Load(cmd.String("config"), cmd.String("env"))
	if err != nil {
		return nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return nil, err
	}

	repo, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	history := domain.NewHistoryService(repo)
	creds := auth.NewProvider(cfg.Token, cfg.DemoToken, repo)
	client := backend.New(cfg.BackendURL, cfg.RequestTimeout, log)

	delay := cfg.InitialDelay
	if delay == 0 {
		delay = -1
	}
	searcher := search.New(client, creds, search.Options{
		Interval:     cfg.PollInterval,
		InitialDelay: delay,
		MaxAttempts:  cfg.MaxAttempts,
		History:      history,
		Logger:       log,
	})

	log.Debug().
		Str("backend", cfg.BackendURL).
		Str("db", cfg.DBPath).
		Msg("application initialized")

	return &appContext{
		cfg:      cfg,
		log:      log,
		repo:     repo,
		creds:    creds,
		history:  history,
		searcher: searcher,
	}, nil
}

// Close stops the searcher and releases the database.
func (a *appContext) Close() {
	a.searcher.Close()
	if err := a.repo.Close(); err != nil {
		a.log.Warn().Err(err).Msg("close database")
	}
}
