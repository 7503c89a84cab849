package deps

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/statuswall/internal/cache"
	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
	"github.com/MrSnakeDoc/statuswall/internal/metrics"
)

// StatusSource is the refresher as seen by handlers.
type StatusSource interface {
	Latest() *domain.AggregateResult
	RunCycle(ctx context.Context) (*domain.AggregateResult, error)
	Services() []domain.ServiceConfig
}

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time // for testing, defaults to time.Now
	AllowedHosts    []string         // Host headers allowed on protected routes
	AllowedCIDRS    []string         // IPs allowed on refresh, infra and metrics endpoints
	TrustProxy      bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	ServiceFile     string           // Path to the service catalog
	RefreshInterval time.Duration    // Background cycle interval
	RedisClient     *redis.Client    // nil when the cache is memory only
	MemoryCache     *cache.Memory    // In-memory status cache tier
	Refresher       StatusSource     // Latest results and on-demand cycles
	RefreshTrigger  chan struct{}    // Channel to trigger a manual refresh
	RefreshBurst    int              // Manual refreshes allowed per IP at once
	RefreshPerMin   int              // Manual refresh refill rate per IP
	Metrics         *metrics.Metrics // nil disables /metrics content
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
