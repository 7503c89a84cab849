package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsUpdates(t *testing.T) {
	m := New()

	m.ObserveCycleDuration(2 * time.Second)
	m.SetServicesTotal("operational", 3)
	m.SetServicesTotal("down", 1)
	m.IncResolutions("api")
	m.IncResolutions("api")
	m.IncSourceFailures("html")
	m.IncCacheErrors("put")
	m.SetLastCycleTimestamp(time.Unix(100, 0))

	if got := testutil.ToFloat64(m.servicesTotal.WithLabelValues("operational")); got != 3 {
		t.Fatalf("expected operational services 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.servicesTotal.WithLabelValues("down")); got != 1 {
		t.Fatalf("expected down services 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.resolutionsTotal.WithLabelValues("api")); got != 2 {
		t.Fatalf("expected api resolutions 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.sourceFailuresTotal.WithLabelValues("html")); got != 1 {
		t.Fatalf("expected html failures 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.cacheErrorsTotal.WithLabelValues("put")); got != 1 {
		t.Fatalf("expected cache put errors 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.lastCycleGauge); got != 100 {
		t.Fatalf("expected last cycle 100, got %v", got)
	}
	if count := testutil.CollectAndCount(m.cycleDurationSeconds); count == 0 {
		t.Fatalf("expected cycle duration histogram to be collected")
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCycleDuration(time.Second)
	m.SetServicesTotal("down", 1)
	m.IncResolutions("cache")
	m.IncSourceFailures("api")
	m.IncCacheErrors("get")
	m.SetLastCycleTimestamp(time.Now())
	if m.Handler() == nil {
		t.Fatal("expected a default handler")
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.IncResolutions("fallback")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `statuswall_resolutions_total{via="fallback"} 1`) {
		t.Fatalf("metrics output missing resolutions counter:\n%s", rec.Body.String())
	}
}
