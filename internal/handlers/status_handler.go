package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/custos/internal/common"
	"github.com/ternarybob/custos/internal/services/status"
)

// StatusHandler serves dependency status information
type StatusHandler struct {
	statusService *status.Service
	logger        arbor.ILogger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(statusService *status.Service, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
		logger:        logger,
	}
}

// GetStatusHandler handles GET /api/status requests
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"healthy":      h.statusService.Healthy(),
		"dependencies": h.statusService.Snapshot(),
		"goroutines":   common.GetGoroutineCount(),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}
