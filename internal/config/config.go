package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DotEnvFile is read before the environment, when present. Variables
// already set in the environment win.
const DotEnvFile = ".env"

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per inbound request, ?fresh=1 cycles included

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ServiceFile     string         // path to services.json (or .yaml)
	RefreshInterval time.Duration  // interval between resolution cycles (default: 60s)
	PruneInterval   time.Duration  // interval to prune cache entries of removed services (default: 24h)
	FetchTimeout    time.Duration  // per outbound request (default: 10s)
	FetchRetries    int            // extra attempts on transport errors (default: 0)
	FetchRate       float64        // outbound requests per second per host (default: 5, 0 = unlimited)
	FetchBurst      int            // burst per host (default: 5)
	MaxConcurrency  int            // services resolved in parallel (default: 16, 0 = no limit)
	TitlePriority   []string       // service names classified from the page title first
	DisplayLocation *time.Location // zone used to print cached timestamps

	// Redis, optional: empty RedisAddr keeps the status cache in memory
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, doubles each attempt)
	RedisWarnThreshold    int           // warn after this many attempts

	// Manual refresh throttling, per client IP
	RefreshBurst  int
	RefreshPerMin int

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict /api/refresh to specific IPs or CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Load reads the configuration from the environment. Invalid values panic.
func Load() *Config {
	if err := loadDotEnvIfPresent(DotEnvFile); err != nil {
		panic(fmt.Sprintf("❌ FATAL: failed to read %s: %v", DotEnvFile, err))
	}

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("STATUSWALL_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("STATUSWALL_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("STATUSWALL_REQUEST_TIMEOUT", 30*time.Second),

		// Logging
		LogLevel:  getenv("STATUSWALL_LOG_LEVEL", "info"),
		PrettyLog: mustBool("STATUSWALL_PRETTY_LOG", true),

		// Resolution
		ServiceFile:     getenv("STATUSWALL_SERVICE_FILE", "/app/services.json"),
		RefreshInterval: mustDuration("STATUSWALL_REFRESH_INTERVAL", 60*time.Second),
		PruneInterval:   mustDuration("STATUSWALL_PRUNE_INTERVAL", 24*time.Hour),
		FetchTimeout:    mustDuration("STATUSWALL_FETCH_TIMEOUT", 10*time.Second),
		FetchRetries:    getenvInt("STATUSWALL_FETCH_RETRIES", 0),
		FetchRate:       getenvFloat("STATUSWALL_FETCH_RATE_PER_HOST", 5),
		FetchBurst:      getenvInt("STATUSWALL_FETCH_BURST_PER_HOST", 5),
		MaxConcurrency:  getenvInt("STATUSWALL_MAX_CONCURRENCY", 16),
		TitlePriority:   getenvSlice("STATUSWALL_TITLE_PRIORITY", []string{"doofinder", "sogecommerce", "lyra"}),
		DisplayLocation: mustLocation("STATUSWALL_DISPLAY_TIMEZONE", time.Local),

		// Redis settings
		RedisAddr:             getenv("STATUSWALL_REDIS_ADDR", ""),
		RedisUser:             getenv("STATUSWALL_REDIS_USERNAME", ""),
		RedisPasswordRequired: mustBool("STATUSWALL_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("STATUSWALL_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("STATUSWALL_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Manual refresh
		RefreshBurst:  getenvInt("STATUSWALL_REFRESH_BURST", 3),
		RefreshPerMin: getenvInt("STATUSWALL_REFRESH_PER_MIN", 6),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("STATUSWALL_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("STATUSWALL_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("STATUSWALL_TRUST_PROXY", true),
	}

	// Validate Redis password configuration
	if cfg.RedisAddr != "" && cfg.RedisPasswordRequired {
		cfg.RedisPassword = requireEnv("STATUSWALL_REDIS_PASSWORD")
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// Validate rejects values the scheduler and fetcher cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.RefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("STATUSWALL_REFRESH_INTERVAL must be > 0, got %v", c.RefreshInterval))
	}
	if c.PruneInterval <= 0 {
		errs = append(errs, fmt.Errorf("STATUSWALL_PRUNE_INTERVAL must be > 0, got %v", c.PruneInterval))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("STATUSWALL_FETCH_TIMEOUT must be > 0, got %v", c.FetchTimeout))
	}
	if c.FetchRetries < 0 {
		errs = append(errs, fmt.Errorf("STATUSWALL_FETCH_RETRIES must be >= 0, got %d", c.FetchRetries))
	}
	if c.FetchRate < 0 {
		errs = append(errs, fmt.Errorf("STATUSWALL_FETCH_RATE_PER_HOST must be >= 0, got %v", c.FetchRate))
	}
	if c.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("STATUSWALL_MAX_CONCURRENCY must be >= 0, got %d", c.MaxConcurrency))
	}
	if c.RefreshBurst <= 0 || c.RefreshPerMin <= 0 {
		errs = append(errs, fmt.Errorf("STATUSWALL_REFRESH_BURST and STATUSWALL_REFRESH_PER_MIN must be > 0"))
	}
	return errors.Join(errs...)
}

// UsesRedis reports whether a shared cache is configured.
func (c *Config) UsesRedis() bool {
	return c.RedisAddr != ""
}

// helpers
func loadDotEnvIfPresent(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return nil
	}

	return err
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvSlice(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		return splitAndTrim(v)
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func mustLocation(key string, def *time.Location) *time.Location {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	loc, err := time.LoadLocation(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid time zone for %s: %s", key, v))
	}
	return loc
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
