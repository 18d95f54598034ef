package handler

import (
	"context"
	"net/http"
	"time"

	"erauchess-api/internal/service"
	"erauchess-api/pkg/response"
)

// Handler serves the unauthenticated operational endpoints.
type Handler struct {
	club      *service.ClubService
	version   string
	startTime time.Time
}

// New creates a new handler.
func New(club *service.ClubService, version string) *Handler {
	return &Handler{
		club:      club,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response. The field is named
// state because the envelope owns the top-level status key.
type HealthResponse struct {
	State         string    `json:"state"`
	Timestamp     time.Time `json:"timestamp"`
	Version       string    `json:"version"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, HealthResponse{
		State:         "healthy",
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Check   `json:"checks"`
}

// Check represents an individual readiness check.
type Check struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// Ready handles GET /api/v1/ready
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.club.Ping(ctx); err != nil {
		response.Error(w, r, err)
		return
	}

	response.OK(w, r, ReadyResponse{
		Ready:     true,
		Timestamp: time.Now().UTC(),
		Checks: []Check{
			{Name: "api", State: "ok"},
			{Name: "store", State: "ok"},
		},
	})
}
