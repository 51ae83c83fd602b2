package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/custos/internal/interfaces"
)

// TopicsHandler serves the predefined sample questions
type TopicsHandler struct {
	assistant interfaces.AssistantService
	logger    arbor.ILogger
}

// NewTopicsHandler creates a new topics handler
func NewTopicsHandler(assistant interfaces.AssistantService, logger arbor.ILogger) *TopicsHandler {
	return &TopicsHandler{
		assistant: assistant,
		logger:    logger,
	}
}

// GetTopicsHandler handles GET /api/topics requests
func (h *TopicsHandler) GetTopicsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"topics": h.assistant.Topics(),
	})
}
