package scheduler

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
	"github.com/MrSnakeDoc/statuswall/internal/sources/catalog"
)

// CatalogLoader supplies the services of a cycle.
type CatalogLoader interface {
	Services() (catalog.Catalog, error)
}

// CycleRunner resolves a list of services.
type CycleRunner interface {
	Run(ctx context.Context, services []domain.ServiceConfig) *domain.AggregateResult
}

// StatusRefresher runs resolution cycles on a timer and on demand, and keeps
// the latest complete result. Readers always see a whole cycle.
type StatusRefresher struct {
	loader        CatalogLoader
	runner        CycleRunner
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	latest   atomic.Pointer[domain.AggregateResult]
	services atomic.Pointer[[]domain.ServiceConfig]

	warnMu       sync.Mutex
	lastWarnings string
}

// NewStatusRefresher creates a refresher. manualTrigger may be nil.
func NewStatusRefresher(
	loader CatalogLoader,
	runner CycleRunner,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *StatusRefresher {
	return &StatusRefresher{
		loader:        loader,
		runner:        runner,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs a first cycle synchronously, then refreshes in the background.
// A first cycle that cannot load the catalog is fatal.
func (sr *StatusRefresher) Start(ctx context.Context) error {
	if _, err := sr.RunCycle(ctx); err != nil {
		return fmt.Errorf("initial refresh failed: %w", err)
	}

	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sr.refresh(ctx)
			case <-sr.manualTrigger:
				sr.logger.Info("manual refresh triggered")
				sr.refresh(ctx)
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the background loop. It is safe to call more than once.
func (sr *StatusRefresher) Stop() {
	sr.stopOnce.Do(func() { close(sr.stopCh) })
}

func (sr *StatusRefresher) refresh(ctx context.Context) {
	if _, err := sr.RunCycle(ctx); err != nil && ctx.Err() == nil {
		sr.logger.Error("failed to refresh statuses", logger.Error(err))
	}
}

// RunCycle loads the catalog, resolves every service and publishes the
// result. A catalog failure or a context that ended during the run aborts
// the cycle, and the previous result is kept.
func (sr *StatusRefresher) RunCycle(ctx context.Context) (*domain.AggregateResult, error) {
	cat, err := sr.loader.Services()
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}
	sr.reportWarnings(cat.Warnings)

	services := slices.Clone(cat.Services)
	sr.services.Store(&services)

	agg := sr.runner.Run(ctx, services)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cycle abandoned: %w", err)
	}
	sr.latest.Store(agg)
	return agg, nil
}

// Latest returns the most recent result, or nil before the first cycle.
func (sr *StatusRefresher) Latest() *domain.AggregateResult {
	return sr.latest.Load()
}

// Services returns the catalog of the most recent cycle, or nil.
func (sr *StatusRefresher) Services() []domain.ServiceConfig {
	p := sr.services.Load()
	if p == nil {
		return nil
	}
	return *p
}

// reportWarnings logs catalog warnings once per distinct set.
func (sr *StatusRefresher) reportWarnings(warnings []string) {
	key := strings.Join(warnings, "\n")

	sr.warnMu.Lock()
	changed := key != sr.lastWarnings
	sr.lastWarnings = key
	sr.warnMu.Unlock()

	if !changed {
		return
	}
	for _, w := range warnings {
		sr.logger.Warn("catalog warning", logger.String("detail", w))
	}
}
