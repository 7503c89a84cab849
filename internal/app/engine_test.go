package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/statuswall/internal/config"
	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
)

func statusServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/status.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":{"indicator":"minor","description":"Partially Degraded Service"}}`))
		case "/page":
			_, _ = w.Write([]byte(`<html><body><p>Major outage on checkout</p></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeCatalog(t *testing.T, base string) string {
	t.Helper()
	content := fmt.Sprintf(`services:
  - name: Stripe
    statusUrl: %[1]s
    source:
      type: statuspage
      api: %[1]s/api/v2/status.json
  - name: Lyra
    source:
      type: html
      html:
        url: %[1]s/page
  - name: Legacy
    source:
      type: rss
`, base)
	path := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testConfig(serviceFile string) *config.Config {
	return &config.Config{
		ListenPort:      ":0",
		ShutdownTimeout: time.Second,
		RequestTimeout:  5 * time.Second,
		ServiceFile:     serviceFile,
		RefreshInterval: time.Minute,
		PruneInterval:   time.Hour,
		FetchTimeout:    2 * time.Second,
		MaxConcurrency:  4,
		DisplayLocation: time.UTC,
		RefreshBurst:    1,
		RefreshPerMin:   1,
	}
}

func TestCheckRunsOneCycle(t *testing.T) {
	srv := statusServer(t)
	cfg := testConfig(writeCatalog(t, srv.URL))

	agg, warnings, err := Check(context.Background(), cfg, logger.NewNop(), srv.Client())
	require.NoError(t, err)
	require.NotNil(t, agg)

	require.Len(t, agg.Services, 3)
	assert.Equal(t, "Lyra", agg.Services[0].Name)
	assert.Equal(t, domain.StatusDown, agg.Services[0].Status)
	assert.Equal(t, "Stripe", agg.Services[1].Name)
	assert.Equal(t, domain.StatusDegraded, agg.Services[1].Status)
	assert.Equal(t, "Legacy", agg.Services[2].Name)
	assert.Equal(t, domain.StatusUnknown, agg.Services[2].Status)

	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "rss")
}

func TestCheckMissingCatalog(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	_, _, err := Check(context.Background(), cfg, logger.NewNop(), nil)
	assert.Error(t, err)
}

func TestNewWithMemoryCache(t *testing.T) {
	a, err := New(testConfig("services.yaml"), logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, a.redisClient)
	assert.Nil(t, a.syncer)
	assert.NotNil(t, a.refresher)
	assert.NotNil(t, a.pruner)
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig("services.yaml")
	cfg.RedisAddr = mr.Addr()
	cfg.RedisDT = time.Second
	cfg.RedisRT = time.Second
	cfg.RedisWT = time.Second
	cfg.RedisPoolSize = 2
	cfg.RedisConnectTimeout = 2 * time.Second
	cfg.RedisRetryInterval = 100 * time.Millisecond
	cfg.RedisMaxWait = 200 * time.Millisecond
	cfg.RedisPingTimeout = time.Second
	cfg.RedisWarnThreshold = 3

	a, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.redisClient.Close() })

	assert.NotNil(t, a.redisClient)
	assert.NotNil(t, a.syncer)
}
