package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/statuswall/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statuswall/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/statuswall/internal/httpserver/mw"
)

func init() { Register(registerStatus) }

// registerStatus wires the status read path and the two ways of starting a
// cycle. Both cycle paths share one guard chain, and so one rate limit
// bucket per client.
func registerStatus(r chi.Router, d deps.Deps) {
	guard := chi.Chain(
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.RefreshBurst,
			RefillPerIPPerMin: d.RefreshPerMin,
			MaxEntries:        4096,
			TrustProxy:        d.TrustProxy,
		}),
	)

	status := handlers.Status(d)
	fresh := guard.Handler(status)

	// every method reaches the handler so non-GET gets a JSON 405
	r.HandleFunc("/api/status", func(w http.ResponseWriter, req *http.Request) {
		if handlers.WantsFresh(req) {
			fresh.ServeHTTP(w, req)
			return
		}
		status(w, req)
	})

	r.With(guard...).Post("/api/refresh", handlers.Refresh(d))
}
