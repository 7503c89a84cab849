package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/statuswall/internal/cache"
	"github.com/MrSnakeDoc/statuswall/internal/config"
	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/fetch"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
	"github.com/MrSnakeDoc/statuswall/internal/metrics"
	"github.com/MrSnakeDoc/statuswall/internal/resolver"
	"github.com/MrSnakeDoc/statuswall/internal/sources/catalog"
	"github.com/MrSnakeDoc/statuswall/internal/sources/scrape"
	"github.com/MrSnakeDoc/statuswall/internal/sources/statuspage"
)

// Engine is the resolution pipeline shared by the server and the CLI:
// catalog loader, sources, resolver and aggregator.
type Engine struct {
	Loader     *catalog.Loader
	Resolver   *resolver.Resolver
	Aggregator *resolver.Aggregator
}

// NewEngine wires the pipeline on top of the given cache. A nil base uses a
// fresh http.Client.
func NewEngine(cfg *config.Config, log logger.Logger, m *metrics.Metrics, c resolver.StatusCache, base *http.Client) *Engine {
	client := fetch.New(fetch.Options{
		Timeout:      cfg.FetchTimeout,
		Retries:      cfg.FetchRetries,
		RatePerHost:  cfg.FetchRate,
		BurstPerHost: cfg.FetchBurst,
	}, base)

	r := resolver.New(resolver.Options{
		Structured:    statuspage.New(client),
		Scraped:       scrape.New(client),
		Cache:         c,
		TitlePriority: domain.TitlePriorityList(cfg.TitlePriority),
		Logger:        log,
		Metrics:       m,
		Location:      cfg.DisplayLocation,
	})

	return &Engine{
		Loader:     catalog.NewLoader(cfg.ServiceFile),
		Resolver:   r,
		Aggregator: resolver.NewAggregator(r, cfg.MaxConcurrency, log, m),
	}
}

// Check runs a single cycle against the catalog, with a memory cache, and
// returns the result along with the catalog warnings.
func Check(ctx context.Context, cfg *config.Config, log logger.Logger, base *http.Client) (*domain.AggregateResult, []string, error) {
	e := NewEngine(cfg, log, nil, cache.NewMemory(), base)

	cat, err := e.Loader.Services()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load services: %w", err)
	}

	return e.Aggregator.Run(ctx, cat.Services), cat.Warnings, nil
}
