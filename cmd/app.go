package cmd

import (
	"fmt"
	"os"
	"time"

	"charon/internal/config"
	"charon/internal/logging"
	"charon/internal/resolver"
	"charon/internal/store"
	"charon/internal/walker"

	"github.com/rs/zerolog"
)

// app bundles what every subcommand needs: configuration, a logger, a
// resolver and, when enabled, the history store.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	resolver *resolver.Resolver
	store    store.Store

	closeLog func() error
}

func newApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagRoot != "" {
		cfg.FilesAgent.RootDirectory = config.ExpandPath(flagRoot)
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, closeLog, err := logging.New(logging.Config{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	})
	if err != nil {
		return nil, err
	}

	renderer, err := resolver.NewRenderer(cfg.FilesAgent.TreeRenderer, walker.NewSkipSet(cfg.FilesAgent.SkipDirs...), cfg.FilesAgent.TreeMaxEntries)
	if err != nil {
		closeLog()
		return nil, err
	}

	a := &app{
		cfg: cfg,
		log: log,
		resolver: resolver.New(resolver.Options{
			SkipDirs:   cfg.FilesAgent.SkipDirs,
			Extensions: cfg.FilesAgent.SourceExtensions,
			Renderer:   renderer,
			Logger:     log,
		}),
		closeLog: closeLog,
	}

	if cfg.Store.Enabled {
		st, err := store.Open(cfg.Store.DBPath)
		if err != nil {
			// History is optional; lookups still work without it.
			log.Warn().Err(err).Str("path", cfg.Store.DBPath).Msg("history store unavailable")
		} else {
			a.store = st
		}
	}
	return a, nil
}

func (a *app) root() string {
	return a.cfg.FilesAgent.RootDirectory
}

// record appends a resolution to the history store, if there is one.
func (a *app) record(source, query string, res resolver.Result) {
	if a.store == nil {
		return
	}
	_, err := a.store.RecordResolution(store.Resolution{
		Query:      query,
		Root:       a.root(),
		FolderPath: res.FolderPath,
		Score:      res.Score,
		Exact:      res.Exact,
		Success:    res.Success,
		FileCount:  len(res.Files),
		Source:     source,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("recording resolution failed")
	}
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing history store")
		}
	}
	if err := a.closeLog(); err != nil {
		fmt.Fprintln(os.Stderr, "closing log file:", err)
	}
}
