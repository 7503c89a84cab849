package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/statuswall/internal/httpserver/deps"
)

const infraTimeLayout = "2006-01-02 15:04:05"

type componentStatus struct {
	OK             bool   `json:"ok"`
	ServicesLoaded *int   `json:"services_loaded,omitempty"`
	EntriesCached  *int   `json:"entries_cached,omitempty"`
	LastCycle      string `json:"last_cycle,omitempty"`
	CycleID        string `json:"cycle_id,omitempty"`
	Interval       string `json:"interval,omitempty"`
	Source         string `json:"source,omitempty"`
	Mode           string `json:"mode,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		servicesCount := len(d.Refresher.Services())
		lastCycle := "never"
		var cycleID string
		if agg := d.Refresher.Latest(); agg != nil {
			lastCycle = agg.FetchedAt.Format(infraTimeLayout)
			cycleID = agg.CycleID
		}

		components := map[string]componentStatus{
			"catalog": {
				OK:             servicesCount > 0,
				ServicesLoaded: &servicesCount,
				Source:         d.ServiceFile,
			},
			"refresher": {
				OK:        cycleID != "",
				LastCycle: lastCycle,
				CycleID:   cycleID,
				Interval:  d.RefreshInterval.String(),
			},
			"cache": checkCache(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	// Nothing to show without a catalog or a first cycle
	if c, ok := components["catalog"]; ok && !c.OK {
		return "critical"
	}
	if c, ok := components["refresher"]; ok && !c.OK {
		return "critical"
	}

	// A cache outage only loses last-known-good statuses across restarts
	if c, ok := components["cache"]; ok && !c.OK {
		return "degraded"
	}

	return "optimal"
}

func checkCache(ctx context.Context, d deps.Deps) componentStatus {
	var entries *int
	if d.MemoryCache != nil {
		n := d.MemoryCache.Count()
		entries = &n
	}

	if d.RedisClient == nil {
		return componentStatus{
			OK:            true,
			EntriesCached: entries,
			Mode:          "memory",
			Impact:        "cache-lost-on-restart",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:            false,
			EntriesCached: entries,
			Mode:          "memory",
			Impact:        "redis-unreachable",
			Error:         err.Error(),
		}
	}

	return componentStatus{
		OK:            true,
		EntriesCached: entries,
		Mode:          "redis",
	}
}
