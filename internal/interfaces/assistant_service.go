package interfaces

import (
	"context"

	"github.com/ternarybob/custos/internal/models"
)

// AskRequest represents a single compliance question submitted to the
// assistant. This is the sole inbound contract the core exposes.
type AskRequest struct {
	// User's question, verbatim
	Question string `json:"question" validate:"required"`

	// Whether index retrieval should be attempted for grounding context
	UseRAG bool `json:"use_rag"`
}

// AssistantService answers compliance questions, optionally augmented with
// retrieved context.
type AssistantService interface {
	// Ask runs the full answering pipeline for one question and returns the
	// structured result. Empty questions fail with ErrInvalidInput before
	// any external call; completion failures surface as
	// ErrCompletionFailed / ErrCompletionTimeout. Retrieval failures are
	// recovered internally and never surfaced.
	Ask(ctx context.Context, req *AskRequest) (*models.AnswerResult, error)

	// Topics returns the predefined sample questions grouped by compliance
	// category, for UI/MCP discovery.
	Topics() map[string][]string

	// HealthCheck verifies the assistant can serve queries
	HealthCheck(ctx context.Context) error
}
