// Package app is the composition root shared by the API server, the
// CLI and the MCP server: it assembles the pipeline from process
// configuration.
package app

import (
	"context"
	"log/slog"

	"bundesanzeiger/pkg/core/agent"
	"bundesanzeiger/pkg/core/anzeiger"
	"bundesanzeiger/pkg/core/cache"
	"bundesanzeiger/pkg/core/captcha"
	"bundesanzeiger/pkg/core/config"
	"bundesanzeiger/pkg/core/extract"
	"bundesanzeiger/pkg/core/pipeline"
)

// App bundles the assembled pipeline with the resources it owns.
type App struct {
	Pipeline *pipeline.Orchestrator
	Agents   *agent.Manager
	Store    cache.Store
	Log      *slog.Logger
}

// New assembles the full pipeline. The cache backend is Postgres when
// DATABASE_URL is set, a local SQLite file otherwise.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	agentCfg, err := agent.LoadConfig(cfg.ModelsPath)
	if err != nil {
		return nil, err
	}
	if cfg.AIProvider != "" {
		agentCfg.ActiveProvider = cfg.AIProvider
	}
	agents := agent.NewManager(agentCfg, log)

	var store cache.Store
	if cfg.UsePostgres() {
		store, err = cache.OpenPostgres(ctx, cfg.DatabaseURL, log)
	} else {
		store, err = cache.OpenSQLite(cfg.DBPath, log)
	}
	if err != nil {
		return nil, err
	}

	sessions := anzeiger.NewSessionManager(log)
	gate := anzeiger.NewGate(captcha.NewClient(cfg.SolverURL, cfg.SolverKey), log)
	fetcher := anzeiger.NewDocumentFetcher(sessions, gate, log)
	extractor := extract.New(agents, log)

	return &App{
		Pipeline: pipeline.New(sessions, fetcher, extractor, store, cfg.Threshold, log),
		Agents:   agents,
		Store:    store,
		Log:      log,
	}, nil
}

// Close releases the cache backend.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
