package handler

import (
	"net/http"
	"time"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	model     string
	sender    string
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(completionModel, sender string) *HealthHandler {
	return &HealthHandler{
		model:     completionModel,
		sender:    sender,
		startTime: time.Now(),
	}
}

// CheckHealth handles GET /health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "healthy",
		"completion": map[string]interface{}{
			"model": h.model,
		},
		"messaging": map[string]interface{}{
			"sender_configured": h.sender != "",
		},
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"timestamp": time.Now().Format(time.RFC3339),
	}

	writeJSON(w, http.StatusOK, response)
}
