package handlers

import (
	"encoding/json"
	"net/http"

	"securiguard/internal/config"
	"securiguard/internal/domain/services"
	"securiguard/internal/infrastructure/cache"
	"securiguard/internal/providers"
	"securiguard/pkg/logger"
)

// Dependencies holds everything the HTTP handlers need
type Dependencies struct {
	Config      *config.Config
	Coordinator *services.ScanCoordinator
	Registry    *providers.Registry
	Cache       *cache.RedisCache // may be nil
	Logger      *logger.Logger
}

// Handlers holds all HTTP handlers
type Handlers struct {
	deps   Dependencies
	logger *logger.Logger
}

// New creates a new handlers instance
func New(deps Dependencies) *Handlers {
	return &Handlers{
		deps:   deps,
		logger: deps.Logger.WithComponent("handlers"),
	}
}

// respondJSON writes a JSON response with the given status code
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes a JSON error response
func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
