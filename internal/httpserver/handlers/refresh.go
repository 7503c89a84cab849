package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/statuswall/internal/httpserver/deps"
	"github.com/MrSnakeDoc/statuswall/internal/logger"
)

type refreshResponse struct {
	Queued  bool   `json:"queued"`
	Message string `json:"message"`
}

// Refresh queues a background resolution cycle.
func Refresh(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.RefreshTrigger <- struct{}{}:
			d.Logger.Info("manual refresh triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusAccepted, refreshResponse{Queued: true, Message: "refresh queued"})
		default:
			d.Logger.Warn("refresh already queued",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusTooManyRequests, refreshResponse{Queued: false, Message: "refresh already queued, please wait"})
		}
	}
}
