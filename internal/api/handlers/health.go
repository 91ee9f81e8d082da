package handlers

import (
	"net/http"
	"time"

	"securiguard/internal/infrastructure/cache"
)

var startTime = time.Now()

// Health returns basic liveness information
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"app":     h.deps.Config.App.Name,
		"version": h.deps.Config.App.Version,
		"uptime":  time.Since(startTime).Round(time.Second).String(),
	})
}

// Ready reports whether the service can take scans. The cache tier is
// optional, so an unreachable Redis degrades readiness detail but does not
// fail it; providers must merely be registered.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{
		"providers": "ok",
	}
	status := http.StatusOK

	if h.deps.Registry.CountEnabled() == 0 {
		checks["providers"] = "no providers enabled, heuristics only"
	}

	if h.deps.Cache != nil {
		if _, err := h.deps.Cache.Get(r.Context(), "readyz"); err != nil && !cache.IsMiss(err) {
			checks["redis"] = "unreachable"
		} else {
			checks["redis"] = "ok"
		}
	}

	h.respondJSON(w, status, map[string]any{
		"status": "ready",
		"checks": checks,
	})
}
