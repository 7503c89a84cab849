package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/statuswall/internal/cache"
	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
	"github.com/MrSnakeDoc/statuswall/internal/metrics"
	"github.com/MrSnakeDoc/statuswall/internal/scheduler"
	"github.com/MrSnakeDoc/statuswall/internal/sources/catalog"
)

type fakeSource struct {
	latest   *domain.AggregateResult
	fresh    *domain.AggregateResult
	err      error
	services []domain.ServiceConfig
	cycles   int
}

func (f *fakeSource) Latest() *domain.AggregateResult { return f.latest }

func (f *fakeSource) RunCycle(context.Context) (*domain.AggregateResult, error) {
	f.cycles++
	return f.fresh, f.err
}

func (f *fakeSource) Services() []domain.ServiceConfig { return f.services }

func sampleAggregate(id string) *domain.AggregateResult {
	results := []domain.ResolutionResult{
		{Name: "Stripe", Status: domain.StatusOperational, StatusDetails: "All Systems Operational (via status API)"},
		{Name: "Brevo", Status: domain.StatusDown, StatusDetails: "Major outage (via status API)"},
	}
	return &domain.AggregateResult{
		Services:  results,
		FetchedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		CycleID:   id,
		Summary:   domain.Summarize(results),
	}
}

func testDeps(src *fakeSource) deps.Deps {
	return deps.Deps{
		Logger:          logger.NewNop(),
		StartTime:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		TimeNow:         func() time.Time { return time.Date(2026, 3, 1, 9, 1, 0, 0, time.UTC) },
		Version:         "1.2.3",
		ServiceFile:     "services.yaml",
		RefreshInterval: time.Minute,
		MemoryCache:     cache.NewMemory(),
		Refresher:       src,
		RefreshTrigger:  make(chan struct{}, 1),
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestStatusServesLatest(t *testing.T) {
	src := &fakeSource{latest: sampleAggregate("c1")}
	rec := httptest.NewRecorder()

	Status(testDeps(src))(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var got domain.AggregateResult
	decode(t, rec, &got)
	assert.Equal(t, "c1", got.CycleID)
	assert.Len(t, got.Services, 2)
	assert.Equal(t, []string{"Brevo"}, got.Summary.Down)
	assert.Zero(t, src.cycles)
}

func TestStatusBeforeFirstCycle(t *testing.T) {
	rec := httptest.NewRecorder()
	Status(testDeps(&fakeSource{}))(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body errorResponse
	decode(t, rec, &body)
	assert.NotEmpty(t, body.Error)
}

func TestStatusFreshRunsCycle(t *testing.T) {
	src := &fakeSource{latest: sampleAggregate("old"), fresh: sampleAggregate("new")}
	rec := httptest.NewRecorder()

	Status(testDeps(src))(rec, httptest.NewRequest(http.MethodGet, "/api/status?fresh=1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, src.cycles)
	var got domain.AggregateResult
	decode(t, rec, &got)
	assert.Equal(t, "new", got.CycleID)
}

func TestStatusFreshFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("catalog unreadable")}
	rec := httptest.NewRecorder()

	Status(testDeps(src))(rec, httptest.NewRequest(http.MethodGet, "/api/status?fresh=true", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorResponse
	decode(t, rec, &body)
	assert.NotContains(t, body.Error, "catalog unreadable")
}

type staticCatalog struct{ services []domain.ServiceConfig }

func (c staticCatalog) Services() (catalog.Catalog, error) {
	return catalog.Catalog{Services: c.services}, nil
}

// timeoutRunner degrades every service to unknown once ctx is done, the way
// a cycle cut short by a disconnecting client would.
type timeoutRunner struct{}

func (timeoutRunner) Run(ctx context.Context, services []domain.ServiceConfig) *domain.AggregateResult {
	results := make([]domain.ResolutionResult, len(services))
	for i, svc := range services {
		results[i] = domain.NewResult(svc)
		if ctx.Err() != nil {
			results[i].Status = domain.StatusUnknown
			results[i].StatusDetails = "request cancelled"
			continue
		}
		results[i].Status = domain.StatusOperational
		results[i].StatusDetails = "ok"
	}
	return &domain.AggregateResult{Services: results, Summary: domain.Summarize(results)}
}

func TestStatusFreshCancelledRequestKeepsLatest(t *testing.T) {
	sr := scheduler.NewStatusRefresher(
		staticCatalog{services: []domain.ServiceConfig{{Name: "Stripe"}, {Name: "Brevo"}}},
		timeoutRunner{}, logger.NewNop(), time.Hour, nil)
	before, err := sr.RunCycle(context.Background())
	require.NoError(t, err)

	d := testDeps(&fakeSource{})
	d.Refresher = sr

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/status?fresh=1", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	Status(d)(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Same(t, before, sr.Latest())
	assert.Equal(t, 2, sr.Latest().Summary.Operational)

	rec = httptest.NewRecorder()
	Status(d)(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "request cancelled")
}

func TestStatusRejectsOtherMethods(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Status(testDeps(&fakeSource{latest: sampleAggregate("c")}))(rec, httptest.NewRequest(method, "/api/status", nil))

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestIsFresh(t *testing.T) {
	assert.True(t, isFresh("1"))
	assert.True(t, isFresh("yes"))
	assert.False(t, isFresh(""))
	assert.False(t, isFresh("0"))
}

func TestRefreshQueuesOnce(t *testing.T) {
	d := testDeps(&fakeSource{})
	h := Refresh(d)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	var body refreshResponse
	decode(t, rec, &body)
	assert.True(t, body.Queued)

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	<-d.RefreshTrigger
	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz(testDeps(&fakeSource{}))(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body healthzResponse
	decode(t, rec, &body)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.InDelta(t, 60, body.UptimeSeconds, 0.001)
}

func TestReadyz(t *testing.T) {
	src := &fakeSource{}
	d := testDeps(src)

	rec := httptest.NewRecorder()
	Readyz(d)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	src.latest = sampleAggregate("ready-1")
	rec = httptest.NewRecorder()
	Readyz(d)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var body readyzResponse
	decode(t, rec, &body)
	assert.True(t, body.Ready)
	assert.Equal(t, "ready-1", body.CycleID)
}

func TestInfraModes(t *testing.T) {
	t.Run("critical before first cycle", func(t *testing.T) {
		src := &fakeSource{services: []domain.ServiceConfig{{Name: "Stripe"}}}
		rec := httptest.NewRecorder()
		Infra(testDeps(src))(rec, httptest.NewRequest(http.MethodGet, "/infra", nil))

		var body infraResponse
		decode(t, rec, &body)
		assert.Equal(t, "critical", body.Mode)
		assert.Equal(t, "never", body.Components["refresher"].LastCycle)
	})

	t.Run("optimal in memory", func(t *testing.T) {
		src := &fakeSource{latest: sampleAggregate("c"), services: []domain.ServiceConfig{{Name: "Stripe"}}}
		d := testDeps(src)
		require.NoError(t, d.MemoryCache.Put(context.Background(), "Stripe", domain.CacheEntry{Status: domain.StatusOperational}))

		rec := httptest.NewRecorder()
		Infra(d)(rec, httptest.NewRequest(http.MethodGet, "/infra", nil))

		var body infraResponse
		decode(t, rec, &body)
		assert.Equal(t, "optimal", body.Mode)
		c := body.Components["cache"]
		assert.Equal(t, "memory", c.Mode)
		require.NotNil(t, c.EntriesCached)
		assert.Equal(t, 1, *c.EntriesCached)
		assert.Equal(t, "2026-03-01 10:00:00", body.Components["refresher"].LastCycle)
	})

	t.Run("degraded when redis is down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		src := &fakeSource{latest: sampleAggregate("c"), services: []domain.ServiceConfig{{Name: "Stripe"}}}
		d := testDeps(src)
		d.RedisClient = client

		rec := httptest.NewRecorder()
		Infra(d)(rec, httptest.NewRequest(http.MethodGet, "/infra", nil))
		var body infraResponse
		decode(t, rec, &body)
		assert.Equal(t, "optimal", body.Mode)
		assert.Equal(t, "redis", body.Components["cache"].Mode)

		mr.Close()
		rec = httptest.NewRecorder()
		Infra(d)(rec, httptest.NewRequest(http.MethodGet, "/infra", nil))
		decode(t, rec, &body)
		assert.Equal(t, "degraded", body.Mode)
		assert.False(t, body.Components["cache"].OK)
		assert.NotEmpty(t, body.Components["cache"].Error)
	})
}

func TestMetricsHandler(t *testing.T) {
	m := metrics.New()
	m.IncResolutions("api")
	d := testDeps(&fakeSource{})
	d.Metrics = m

	rec := httptest.NewRecorder()
	Metrics(d).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "statuswall_resolutions_total")
}
