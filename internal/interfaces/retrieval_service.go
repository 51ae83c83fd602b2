package interfaces

import (
	"context"

	"github.com/ternarybob/custos/internal/models"
)

// RetrievalService defines the capability contract for retrieving scored
// context passages from the external search index.
type RetrievalService interface {
	// Retrieve queries the search index with the question text and returns
	// passages at or above the configured minimum confidence, sorted by
	// descending confidence (ties keep index order). An empty question fails
	// with ErrInvalidInput; index unavailability or timeout fails with
	// ErrRetrievalUnavailable rather than returning an empty slice, so
	// callers can distinguish "no confident results" from "index down".
	Retrieve(ctx context.Context, question string) ([]models.Passage, error)

	// HealthCheck verifies the search index is reachable
	HealthCheck(ctx context.Context) error
}

// ContextSource is one provider in the pipeline's prioritized fallback chain.
// Sources are evaluated in order; the first non-empty result wins.
type ContextSource interface {
	// Name identifies the source in logs and status reporting
	Name() string

	// Passages returns context passages for the question. An error or an
	// empty slice both cause the pipeline to move to the next source.
	Passages(ctx context.Context, question string) ([]models.Passage, error)
}
