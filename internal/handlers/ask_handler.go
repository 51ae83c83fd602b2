package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/custos/internal/interfaces"
)

// AskHandler handles question answering HTTP requests
type AskHandler struct {
	assistant interfaces.AssistantService
	validate  *validator.Validate
	logger    arbor.ILogger
}

// NewAskHandler creates a new ask handler
func NewAskHandler(assistant interfaces.AssistantService, logger arbor.ILogger) *AskHandler {
	return &AskHandler{
		assistant: assistant,
		validate:  validator.New(),
		logger:    logger,
	}
}

// AskHandler handles POST /api/ask requests.
//
// Pipeline errors map to HTTP status codes:
//   - ErrInvalidInput       -> 400
//   - ErrCompletionFailed   -> 502
//   - ErrCompletionTimeout  -> 504
//   - anything else         -> 500
func (h *AskHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req interfaces.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error().Err(err).Msg("Failed to decode ask request")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Question field is required")
		return
	}

	h.logger.Info().
		Int("question_length", len(req.Question)).
		Str("use_rag", fmt.Sprintf("%v", req.UseRAG)).
		Msg("Processing ask request")

	result, err := h.assistant.Ask(r.Context(), &req)
	if err != nil {
		h.writeAskError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

func (h *AskHandler) writeAskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interfaces.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, interfaces.ErrCompletionTimeout):
		h.logger.Error().Err(err).Msg("Completion timed out")
		WriteError(w, http.StatusGatewayTimeout, "Answer generation timed out")
	case errors.Is(err, interfaces.ErrCompletionFailed):
		h.logger.Error().Err(err).Msg("Completion failed")
		WriteError(w, http.StatusBadGateway, "Answer generation failed")
	default:
		h.logger.Error().Err(err).Msg("Ask request failed")
		WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// HealthHandler handles GET /api/ask/health requests
func (h *AskHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if err := h.assistant.HealthCheck(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Assistant health check failed")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
