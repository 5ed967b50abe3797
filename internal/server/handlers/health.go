package handlers

import (
	"context"

	"bookstand/internal/library"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	version string
	lib     *library.Library
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string, lib *library.Library) *HealthHandler {
	return &HealthHandler{version: version, lib: lib}
}

// HealthRequest is a request for the health status.
type HealthRequest struct{}

// HealthResponse reports liveness and whether the collections look loaded.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Loading bool   `json:"loading"`
}

// Health returns the server status.
func (h *HealthHandler) Health(ctx context.Context, req HealthRequest) (*HealthResponse, error) {
	return &HealthResponse{
		Status:  "ok",
		Version: h.version,
		Loading: h.lib.Loading(),
	}, nil
}
