package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/statuswall/internal/cache"
	"github.com/MrSnakeDoc/statuswall/internal/config"
	"github.com/MrSnakeDoc/statuswall/internal/httpserver"
	"github.com/MrSnakeDoc/statuswall/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
	"github.com/MrSnakeDoc/statuswall/internal/metrics"
	"github.com/MrSnakeDoc/statuswall/internal/redis"
	"github.com/MrSnakeDoc/statuswall/internal/resolver"
	"github.com/MrSnakeDoc/statuswall/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/statuswall/internal/store/redis"
	"github.com/MrSnakeDoc/statuswall/internal/version"
)

// prunableStatusCache is read and written by the resolver, and pruned in
// the background.
type prunableStatusCache interface {
	resolver.StatusCache
	scheduler.PrunableCache
}

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	memCache    *cache.Memory
	syncer      *scheduler.CacheSyncer
	refresher   *scheduler.StatusRefresher
	pruner      *scheduler.CachePruner
}

// New wires every component of the serve command. Redis is optional: an
// empty address keeps the status cache in memory.
func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	m := metrics.New()
	memCache := cache.NewMemory()

	var (
		redisClient *goredis.Client
		statusCache prunableStatusCache = memCache
		syncer      *scheduler.CacheSyncer
	)

	if cfg.UsesRedis() {
		// Fail fast if Redis is configured but unreachable
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		loggerClient.Info("Redis initialized successfully")

		store := redisstore.NewStore(client)
		redisClient = client
		statusCache = cache.NewTiered(memCache, store)
		syncer = scheduler.NewCacheSyncer(store, memCache, loggerClient)
	} else {
		loggerClient.Info("no redis configured, status cache kept in memory")
	}

	engine := NewEngine(cfg, loggerClient, m, statusCache, nil)

	// Create manual refresh trigger channel
	refreshTrigger := make(chan struct{}, 1)

	refresher := scheduler.NewStatusRefresher(
		engine.Loader,
		engine.Aggregator,
		loggerClient,
		cfg.RefreshInterval,
		refreshTrigger,
	)

	pruner := scheduler.NewCachePruner(
		statusCache,
		refresher,
		loggerClient,
		cfg.PruneInterval,
	)

	// Dependencies passed to routes
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		ServiceFile:     cfg.ServiceFile,
		RefreshInterval: cfg.RefreshInterval,
		RedisClient:     redisClient,
		MemoryCache:     memCache,
		Refresher:       refresher,
		RefreshTrigger:  refreshTrigger,
		RefreshBurst:    cfg.RefreshBurst,
		RefreshPerMin:   cfg.RefreshPerMin,
		Metrics:         m,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		memCache:    memCache,
		syncer:      syncer,
		refresher:   refresher,
		pruner:      pruner,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting statuswall v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("statuswall %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the memory tier so a restart during an outage keeps last-known statuses
	if a.syncer != nil {
		if err := a.syncer.Sync(ctx); err != nil {
			a.logger.Warn("failed to sync cached statuses from redis on startup",
				logger.Error(err))
		}
	}

	// Start refresher (first cycle runs synchronously)
	if err := a.refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start status refresher: %w", err)
	}
	a.logger.Info("status refresher started",
		logger.Duration("interval", a.cfg.RefreshInterval))

	if err := a.pruner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start cache pruner: %w", err)
	}
	a.logger.Info("cache pruner started",
		logger.Duration("interval", a.cfg.PruneInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.refresher.Stop()
	a.pruner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ statuswall stopped cleanly",
		logger.Int("cached_statuses", a.memCache.Count()))
	return nil
}
