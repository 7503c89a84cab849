// Package resolver turns service configurations into resolved statuses.
//
// Resolver walks the fallback cascade for one service (status API, cached
// last-known-good, HTML page, configured fallback). Aggregator runs it for
// every service of a cycle concurrently and assembles the sorted result.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
	"github.com/MrSnakeDoc/statuswall/internal/metrics"
)

const cachedAtLayout = "2006-01-02 15:04:05"

// StructuredSource reads a status-page JSON API.
type StructuredSource interface {
	Fetch(ctx context.Context, primary string, candidates []string) (domain.Classification, error)
}

// ScrapedSource classifies an HTML status page.
type ScrapedSource interface {
	Fetch(ctx context.Context, url string, titlePriority bool) (domain.Classification, error)
}

// StatusCache holds the last successful structured result per service.
type StatusCache interface {
	Get(ctx context.Context, name string) (domain.CacheEntry, bool, error)
	Put(ctx context.Context, name string, entry domain.CacheEntry) error
}

// Options configures a Resolver. Structured and Scraped are required.
type Options struct {
	Structured    StructuredSource
	Scraped       ScrapedSource
	Cache         StatusCache // nil disables the cache step
	TitlePriority domain.TitlePriorityList
	Logger        logger.Logger
	Metrics       *metrics.Metrics
	Now           func() time.Time
	Location      *time.Location // cached timestamps are shown in this zone
}

// Resolver resolves a single service. It is safe for concurrent use as long
// as the cache is.
type Resolver struct {
	structured    StructuredSource
	scraped       ScrapedSource
	cache         StatusCache
	titlePriority domain.TitlePriorityList
	logger        logger.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
	loc           *time.Location
}

func New(opts Options) *Resolver {
	r := &Resolver{
		structured:    opts.Structured,
		scraped:       opts.Scraped,
		cache:         opts.Cache,
		titlePriority: opts.TitlePriority,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		now:           opts.Now,
		loc:           opts.Location,
	}
	if r.logger == nil {
		r.logger = logger.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.loc == nil {
		r.loc = time.Local
	}
	return r
}

// Resolve never fails: every path ends in a result with a status and a
// non-empty detail string.
func (r *Resolver) Resolve(ctx context.Context, svc domain.ServiceConfig) domain.ResolutionResult {
	res := r.resolve(ctx, svc)
	r.metrics.IncResolutions(string(res.ResolvedVia))
	return res
}

func (r *Resolver) resolve(ctx context.Context, svc domain.ServiceConfig) domain.ResolutionResult {
	caps := svc.Capabilities()
	log := r.logger.With(logger.String("service", svc.Name))

	switch {
	case caps.HasStructuredSource:
		return r.resolveStructured(ctx, svc, caps, log)
	case caps.HasHTMLSource:
		return r.resolveHTML(ctx, svc, log)
	default:
		details := "status source not configured"
		if svc.Source.Type == domain.SourceNone {
			details = "no status API declared"
		}
		return result(svc, svc.Fallback(), details, domain.ViaUnsourced)
	}
}

func (r *Resolver) resolveStructured(ctx context.Context, svc domain.ServiceConfig, caps domain.Capabilities, log logger.Logger) domain.ResolutionResult {
	cl, apiErr := r.structured.Fetch(ctx, svc.Source.API, svc.Source.APICandidates)
	if apiErr == nil {
		r.store(ctx, svc.Name, cl, log)
		return result(svc, cl.Status, cl.Details+" (via status API)", domain.ViaAPI)
	}

	r.metrics.IncSourceFailures("api")
	log.Debug("status API failed", logger.Error(apiErr))

	if entry, ok := r.lookup(ctx, svc.Name, log); ok {
		details := entry.StatusDetails
		if details == "" {
			details = "cached status"
		}
		details = fmt.Sprintf("%s (cached · %s; API failure: %v)", details, r.formatCachedAt(entry.CachedAt), apiErr)
		status := entry.Status
		if !status.Valid() {
			status = domain.StatusUnknown
		}
		return result(svc, status, details, domain.ViaCache)
	}

	if caps.AllowsFallback && caps.HasHTMLSource {
		scraped, htmlErr := r.scraped.Fetch(ctx, svc.HTMLTarget(), r.titlePriority.Match(svc.Name))
		if htmlErr == nil {
			return result(svc, scraped.Status, scraped.Details+" (HTML fallback)", domain.ViaHTML)
		}
		r.metrics.IncSourceFailures("html")
		log.Debug("HTML fallback failed", logger.Error(htmlErr))
		details := fmt.Sprintf("status unavailable (status API: %v; HTML: %v)", apiErr, htmlErr)
		return result(svc, svc.Fallback(), details, domain.ViaFallback)
	}

	return result(svc, svc.Fallback(), fmt.Sprintf("status unavailable (status API): %v", apiErr), domain.ViaFallback)
}

func (r *Resolver) resolveHTML(ctx context.Context, svc domain.ServiceConfig, log logger.Logger) domain.ResolutionResult {
	scraped, err := r.scraped.Fetch(ctx, svc.HTMLTarget(), r.titlePriority.Match(svc.Name))
	if err != nil {
		r.metrics.IncSourceFailures("html")
		log.Debug("HTML page failed", logger.Error(err))
		return result(svc, svc.Fallback(), fmt.Sprintf("status unavailable (HTML): %v", err), domain.ViaFallback)
	}
	return result(svc, scraped.Status, scraped.Details, domain.ViaHTML)
}

// store records a successful structured result. Failures are logged only.
func (r *Resolver) store(ctx context.Context, name string, cl domain.Classification, log logger.Logger) {
	if r.cache == nil {
		return
	}
	entry := domain.CacheEntry{Status: cl.Status, StatusDetails: cl.Details, CachedAt: r.now()}
	if err := r.cache.Put(ctx, name, entry); err != nil {
		r.metrics.IncCacheErrors("put")
		log.Warn("failed to cache status", logger.Error(err))
	}
}

// lookup treats read errors as misses.
func (r *Resolver) lookup(ctx context.Context, name string, log logger.Logger) (domain.CacheEntry, bool) {
	if r.cache == nil {
		return domain.CacheEntry{}, false
	}
	entry, ok, err := r.cache.Get(ctx, name)
	if err != nil {
		r.metrics.IncCacheErrors("get")
		log.Warn("failed to read cached status", logger.Error(err))
		return domain.CacheEntry{}, false
	}
	return entry, ok
}

func (r *Resolver) formatCachedAt(t time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	return t.In(r.loc).Format(cachedAtLayout)
}

func result(svc domain.ServiceConfig, status domain.Status, details string, via domain.ResolvedVia) domain.ResolutionResult {
	res := domain.NewResult(svc)
	res.Status = status
	res.StatusDetails = details
	res.ResolvedVia = via
	return res
}
