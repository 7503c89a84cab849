package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/statuswall/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	CycleID string `json:"cycle_id,omitempty"`
}

// Readyz reports ready once a first cycle has been published.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agg := d.Refresher.Latest()
		if agg == nil {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true, CycleID: agg.CycleID})
	}
}
