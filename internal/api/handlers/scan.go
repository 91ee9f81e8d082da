package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"securiguard/internal/domain/models"
	"securiguard/internal/domain/services"
)

// ScanRequest is one scan submission. Exactly the payload matching
// target_kind must be present.
type ScanRequest struct {
	TargetKind string               `json:"target_kind"`
	URL        string               `json:"url,omitempty"`
	Email      *models.EmailMessage `json:"email,omitempty"`
	File       *models.FileMetadata `json:"file,omitempty"`
}

// BatchScanRequest submits several targets at once
type BatchScanRequest struct {
	Targets []ScanRequest `json:"targets"`
}

// BatchScanResponse returns one response per submitted target, in order
type BatchScanResponse struct {
	Results []models.ScanResponse `json:"results"`
}

// Scan handles POST /api/v1/scan. The call blocks until the scan reaches a
// terminal state; a concurrent request for the same target attaches to the
// scan already in flight instead of starting another.
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := req.toTarget()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	handle := h.deps.Coordinator.Scan(r.Context(), target)
	result, err := handle.Wait(r.Context())
	if err != nil {
		// Caller gave up; the scan itself continues in the background
		h.respondError(w, http.StatusRequestTimeout, "request cancelled while scan was running")
		return
	}

	status := http.StatusOK
	if result.State == models.ScanStateFailed {
		status = http.StatusUnprocessableEntity
	}
	h.respondJSON(w, status, result.ToResponse())
}

// BatchScan handles POST /api/v1/scan/batch. Targets are admitted together
// so duplicates inside one batch are deduplicated, then awaited in order.
func (h *Handlers) BatchScan(w http.ResponseWriter, r *http.Request) {
	var req BatchScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Targets) == 0 {
		h.respondError(w, http.StatusBadRequest, "no targets submitted")
		return
	}
	if max := h.deps.Config.Scan.MaxBatchSize; len(req.Targets) > max {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("batch exceeds maximum of %d targets", max))
		return
	}

	targets := make([]models.ScanTarget, 0, len(req.Targets))
	for i, item := range req.Targets {
		target, err := item.toTarget()
		if err != nil {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("target %d: %s", i, err))
			return
		}
		targets = append(targets, target)
	}

	handles := make([]*services.ScanHandle, 0, len(targets))
	for _, target := range targets {
		handles = append(handles, h.deps.Coordinator.Scan(r.Context(), target))
	}

	resp := BatchScanResponse{Results: make([]models.ScanResponse, 0, len(targets))}
	for _, handle := range handles {
		result, err := handle.Wait(r.Context())
		if err != nil {
			h.respondError(w, http.StatusRequestTimeout, "request cancelled while batch was running")
			return
		}
		resp.Results = append(resp.Results, result.ToResponse())
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// Invalidate handles DELETE /api/v1/scan/{fingerprint}. Fingerprints contain
// slashes, so callers path-escape them.
func (h *Handlers) Invalidate(w http.ResponseWriter, r *http.Request) {
	fingerprint, err := url.PathUnescape(chi.URLParam(r, "fingerprint"))
	if err != nil || fingerprint == "" {
		h.respondError(w, http.StatusBadRequest, "fingerprint is required")
		return
	}

	removed := h.deps.Coordinator.Invalidate(r.Context(), fingerprint)
	h.respondJSON(w, http.StatusOK, map[string]any{
		"fingerprint": fingerprint,
		"removed":     removed,
	})
}

// Stats handles GET /api/v1/stats
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.deps.Coordinator.Stats()
	stats["providers_registered"] = h.deps.Registry.Count()
	stats["providers_enabled"] = h.deps.Registry.CountEnabled()
	h.respondJSON(w, http.StatusOK, stats)
}

// toTarget validates a scan request and builds its domain target
func (req ScanRequest) toTarget() (models.ScanTarget, error) {
	kind, ok := models.ParseTargetKind(req.TargetKind)
	if !ok {
		return models.ScanTarget{}, fmt.Errorf("unknown target_kind %q", req.TargetKind)
	}

	switch kind {
	case models.TargetKindURL:
		if req.URL == "" {
			return models.ScanTarget{}, fmt.Errorf("url is required for url targets")
		}
		return models.NewURLTarget(req.URL), nil
	case models.TargetKindEmail:
		if req.Email == nil {
			return models.ScanTarget{}, fmt.Errorf("email is required for email targets")
		}
		return models.NewEmailTarget(*req.Email), nil
	default:
		if req.File == nil {
			return models.ScanTarget{}, fmt.Errorf("file is required for file targets")
		}
		return models.NewFileTarget(*req.File), nil
	}
}
