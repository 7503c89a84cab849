package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/statuswall/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statuswall/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/statuswall/internal/httpserver/mw"
)

func init() { Register(registerInfra) }

// Operator endpoints share the refresh allow-list.
func registerInfra(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
		r.Get("/infra", handlers.Infra(d))
		r.Method(http.MethodGet, "/metrics", handlers.Metrics(d))
	})
}
