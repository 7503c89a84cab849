package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/statuswall/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
)

// Status serves the latest resolution cycle. ?fresh=1 runs a new cycle
// inside the request instead; routes put that path behind the refresh guards.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if WantsFresh(r) {
			agg, err := d.Refresher.RunCycle(r.Context())
			if err != nil {
				d.Logger.Error("on-demand refresh failed", logger.Error(err))
				writeError(w, http.StatusInternalServerError, "unable to resolve statuses")
				return
			}
			writeJSON(w, http.StatusOK, agg)
			return
		}

		agg := d.Refresher.Latest()
		if agg == nil {
			writeError(w, http.StatusServiceUnavailable, "statuses not resolved yet")
			return
		}
		writeJSON(w, http.StatusOK, agg)
	}
}

// WantsFresh reports whether the request asks for an on-demand cycle.
func WantsFresh(r *http.Request) bool {
	return isFresh(r.URL.Query().Get("fresh"))
}

func isFresh(v string) bool {
	switch v {
	case "1", "true", "yes":
		return true
	}
	return false
}
