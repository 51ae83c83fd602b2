package assistant

import (
	"context"
	"errors"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/custos/internal/interfaces"
	"github.com/ternarybob/custos/internal/models"
)

// IndexSource adapts a retrieval service into the context source chain.
type IndexSource struct {
	retriever interfaces.RetrievalService
}

// NewIndexSource wraps a retrieval service.
func NewIndexSource(retriever interfaces.RetrievalService) *IndexSource {
	return &IndexSource{retriever: retriever}
}

// Name identifies this source in answer results.
func (s *IndexSource) Name() string {
	return "index"
}

// Passages queries the search index.
func (s *IndexSource) Passages(ctx context.Context, question string) ([]models.Passage, error) {
	return s.retriever.Retrieve(ctx, question)
}

// knowledgeLookup is the slice of the knowledge service the chain needs.
type knowledgeLookup interface {
	Lookup(ctx context.Context, question string) []models.Passage
}

// KnowledgeSource adapts the built-in knowledge base into the chain. Lookups
// never fail, so this source terminates the fallback sequence.
type KnowledgeSource struct {
	kb knowledgeLookup
}

// NewKnowledgeSource wraps the knowledge base.
func NewKnowledgeSource(kb knowledgeLookup) *KnowledgeSource {
	return &KnowledgeSource{kb: kb}
}

// Name identifies this source in answer results.
func (s *KnowledgeSource) Name() string {
	return "knowledge_base"
}

// Passages looks up matching knowledge entries.
func (s *KnowledgeSource) Passages(ctx context.Context, question string) ([]models.Passage, error) {
	return s.kb.Lookup(ctx, question), nil
}

// resolveContext walks the ordered source chain and returns the passages of
// the first source that yields any, along with that source's name. A source
// that fails with ErrRetrievalUnavailable or returns nothing hands over to
// the next one. Invalid input aborts the chain.
func resolveContext(ctx context.Context, sources []interfaces.ContextSource, question string, logger arbor.ILogger) ([]models.Passage, string, error) {
	for _, source := range sources {
		passages, err := source.Passages(ctx, question)
		if err != nil {
			if errors.Is(err, interfaces.ErrInvalidInput) {
				return nil, "", err
			}
			logger.Warn().
				Err(err).
				Str("source", source.Name()).
				Msg("Context source unavailable, trying next")
			continue
		}
		if len(passages) == 0 {
			logger.Debug().
				Str("source", source.Name()).
				Msg("Context source returned no passages, trying next")
			continue
		}
		return passages, source.Name(), nil
	}
	return nil, "", nil
}
