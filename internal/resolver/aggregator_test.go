package resolver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/statuswall/internal/cache"
	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/fetch"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
	"github.com/MrSnakeDoc/statuswall/internal/metrics"
	"github.com/MrSnakeDoc/statuswall/internal/sources/scrape"
	"github.com/MrSnakeDoc/statuswall/internal/sources/statuspage"
)

func liveResolver(timeout time.Duration, c StatusCache) *Resolver {
	f := fetch.New(fetch.Options{Timeout: timeout}, nil)
	return New(Options{
		Structured: statuspage.New(f),
		Scraped:    scrape.New(f),
		Cache:      c,
		Logger:     logger.NewNop(),
	})
}

func TestAggregatorEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":{"indicator":"none","description":"All Systems Operational"}}`))
	}))
	defer srv.Close()

	services := []domain.ServiceConfig{
		{Name: "GitHub", Source: domain.Source{Type: domain.SourceStatuspage, API: srv.URL + "/api/v2/status.json"}},
		{Name: "Internal ERP", Source: domain.Source{Type: domain.SourceNone}},
	}

	agg := NewAggregator(liveResolver(time.Second, cache.NewMemory()), 0, nil, nil).
		Run(context.Background(), services)

	require.Len(t, agg.Services, 2)
	assert.Equal(t, "Internal ERP", agg.Services[0].Name)
	assert.Equal(t, domain.StatusUnknown, agg.Services[0].Status)
	assert.Equal(t, "no status API declared", agg.Services[0].StatusDetails)
	assert.Equal(t, "GitHub", agg.Services[1].Name)
	assert.Equal(t, domain.StatusOperational, agg.Services[1].Status)
	assert.Contains(t, agg.Services[1].StatusDetails, "All Systems Operational")

	assert.NotEmpty(t, agg.CycleID)
	assert.False(t, agg.FetchedAt.IsZero())
	assert.Equal(t, 2, agg.Summary.Total)
	assert.Equal(t, 1, agg.Summary.Operational)
	assert.Equal(t, 1, agg.Summary.Unknown)
}

func TestAggregatorBoundedByPerCallTimeout(t *testing.T) {
	hung := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	}))
	defer hung.Close()

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":{"indicator":"major"}}`))
	}))
	defer ok.Close()

	services := []domain.ServiceConfig{
		{
			Name:           "Hung",
			FallbackStatus: domain.StatusDegraded,
			// no status.json suffix, so a single candidate
			Source: domain.Source{Type: domain.SourceStatuspage, API: hung.URL + "/api"},
		},
		{Name: "Healthy", Source: domain.Source{Type: domain.SourceStatuspage, API: ok.URL + "/api"}},
		{Name: "Internal ERP", Source: domain.Source{Type: domain.SourceNone}},
	}

	start := time.Now()
	agg := NewAggregator(liveResolver(200*time.Millisecond, nil), 0, nil, nil).
		Run(context.Background(), services)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 3*time.Second)
	require.Len(t, agg.Services, 3)

	byName := map[string]domain.ResolutionResult{}
	for _, r := range agg.Services {
		byName[r.Name] = r
	}
	assert.Equal(t, domain.StatusDown, byName["Healthy"].Status)
	assert.Equal(t, domain.StatusDegraded, byName["Hung"].Status)
	assert.Equal(t, domain.ViaFallback, byName["Hung"].ResolvedVia)
	assert.Contains(t, byName["Hung"].StatusDetails, "status unavailable (status API)")
	assert.Equal(t, domain.StatusUnknown, byName["Internal ERP"].Status)
}

type panickyResolver struct{}

func (panickyResolver) Resolve(_ context.Context, svc domain.ServiceConfig) domain.ResolutionResult {
	if svc.Name == "boom" {
		panic("nil map")
	}
	res := domain.NewResult(svc)
	res.Status = domain.StatusOperational
	res.StatusDetails = "fine"
	return res
}

func TestAggregatorRecoversPanics(t *testing.T) {
	services := []domain.ServiceConfig{
		{Name: "fine"},
		{Name: "boom", FallbackStatus: domain.StatusDown},
	}

	agg := NewAggregator(panickyResolver{}, 0, nil, nil).Run(context.Background(), services)

	require.Len(t, agg.Services, 2)
	assert.Equal(t, "boom", agg.Services[0].Name)
	assert.Equal(t, domain.StatusDown, agg.Services[0].Status)
	assert.Contains(t, agg.Services[0].StatusDetails, "nil map")
	assert.Equal(t, []string{"boom"}, agg.Summary.Down)
}

type countingResolver struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (c *countingResolver) Resolve(_ context.Context, svc domain.ServiceConfig) domain.ResolutionResult {
	n := c.inFlight.Add(1)
	for {
		p := c.peak.Load()
		if n <= p || c.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	c.inFlight.Add(-1)

	res := domain.NewResult(svc)
	res.Status = domain.StatusOperational
	res.StatusDetails = "ok"
	return res
}

func TestAggregatorConcurrencyLimit(t *testing.T) {
	services := make([]domain.ServiceConfig, 12)
	for i := range services {
		services[i] = domain.ServiceConfig{Name: fmt.Sprintf("svc-%02d", i)}
	}

	cr := &countingResolver{}
	agg := NewAggregator(cr, 3, nil, nil).Run(context.Background(), services)

	assert.Len(t, agg.Services, 12)
	assert.LessOrEqual(t, cr.peak.Load(), int32(3))
	assert.Equal(t, "svc-00", agg.Services[0].Name)
}

func TestAggregatorEmptyCatalog(t *testing.T) {
	agg := NewAggregator(panickyResolver{}, 0, nil, nil).Run(context.Background(), nil)
	assert.Empty(t, agg.Services)
	assert.Equal(t, 0, agg.Summary.Total)
	assert.NotNil(t, agg.Summary.Down)
}

func TestAggregatorRecordsMetrics(t *testing.T) {
	m := metrics.New()
	services := []domain.ServiceConfig{{Name: "a"}, {Name: "b"}}

	NewAggregator(panickyResolver{}, 0, nil, m).Run(context.Background(), services)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `statuswall_services_total{status="operational"} 2`)
	assert.Contains(t, body, `statuswall_services_total{status="down"} 0`)
	assert.Contains(t, body, "statuswall_cycle_duration_seconds_count 1")
}
