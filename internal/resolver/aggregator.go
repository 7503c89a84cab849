package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
	"github.com/MrSnakeDoc/statuswall/internal/metrics"
)

// ServiceResolver is what the aggregator fans out to.
type ServiceResolver interface {
	Resolve(ctx context.Context, svc domain.ServiceConfig) domain.ResolutionResult
}

// Aggregator resolves a whole catalog in one cycle.
type Aggregator struct {
	resolver    ServiceResolver
	concurrency int
	logger      logger.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewAggregator builds an aggregator. concurrency <= 0 means one goroutine
// per service.
func NewAggregator(r ServiceResolver, concurrency int, log logger.Logger, m *metrics.Metrics) *Aggregator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Aggregator{
		resolver:    r,
		concurrency: concurrency,
		logger:      log,
		metrics:     m,
		now:         time.Now,
	}
}

// Run resolves every service and waits for all of them. The result holds
// exactly one entry per input service, sorted by severity then name.
func (a *Aggregator) Run(ctx context.Context, services []domain.ServiceConfig) *domain.AggregateResult {
	start := a.now()
	cycleID := uuid.NewString()
	log := a.logger.With(logger.String("cycle_id", cycleID))

	results := make([]domain.ResolutionResult, len(services))

	var g errgroup.Group
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i, svc := range services {
		g.Go(func() error {
			results[i] = a.resolveOne(ctx, svc, log)
			return nil
		})
	}
	_ = g.Wait()

	domain.SortResults(results)
	agg := &domain.AggregateResult{
		Services:  results,
		FetchedAt: a.now(),
		CycleID:   cycleID,
		Summary:   domain.Summarize(results),
	}

	elapsed := agg.FetchedAt.Sub(start)
	a.record(agg, elapsed)
	log.Info("resolution cycle completed",
		logger.Int("services", agg.Summary.Total),
		logger.Int("down", len(agg.Summary.Down)),
		logger.Int("degraded", len(agg.Summary.Degraded)),
		logger.Duration("elapsed", elapsed))

	return agg
}

// resolveOne isolates a panicking resolution so the barrier still completes.
func (a *Aggregator) resolveOne(ctx context.Context, svc domain.ServiceConfig, log logger.Logger) (res domain.ResolutionResult) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("resolution panicked",
				logger.String("service", svc.Name),
				logger.String("panic", fmt.Sprint(p)))
			res = domain.NewResult(svc)
			res.Status = svc.Fallback()
			res.StatusDetails = fmt.Sprintf("status unavailable (internal error: %v)", p)
			res.ResolvedVia = domain.ViaFallback
		}
	}()
	return a.resolver.Resolve(ctx, svc)
}

func (a *Aggregator) record(agg *domain.AggregateResult, elapsed time.Duration) {
	if a.metrics == nil {
		return
	}
	a.metrics.ObserveCycleDuration(elapsed)
	a.metrics.SetLastCycleTimestamp(agg.FetchedAt)
	for _, s := range domain.Statuses {
		a.metrics.SetServicesTotal(string(s), agg.Count(s))
	}
}
