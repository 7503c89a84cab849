// Package routes holds the HTTP routes. Each file registers itself from
// init(); middleware that needs configuration is applied inside the
// registrar, where deps are available.
package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/statuswall/internal/httpserver/deps"
)

type Registrar func(r chi.Router, d deps.Deps)

var registry []Registrar

// Register adds a registrar. Call from init().
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll is called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}
