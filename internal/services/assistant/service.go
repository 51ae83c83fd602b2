// -----------------------------------------------------------------------
// Assistant service: the answering pipeline. Validates the question,
// resolves grounding context through the source chain, builds the prompt,
// and runs the completion.
// -----------------------------------------------------------------------

package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/custos/internal/common"
	"github.com/ternarybob/custos/internal/interfaces"
	"github.com/ternarybob/custos/internal/models"
	"github.com/ternarybob/custos/internal/services/knowledge"
)

// Service implements the AssistantService interface.
type Service struct {
	completion    interfaces.CompletionService
	sources       []interfaces.ContextSource
	promptBuilder *PromptBuilder
	topics        map[string][]string
	logger        arbor.ILogger
}

// NewService assembles the answering pipeline. The retriever may be nil when
// index retrieval is disabled; the knowledge base is always present as the
// terminal fallback.
func NewService(
	cfg *common.Config,
	completion interfaces.CompletionService,
	retriever interfaces.RetrievalService,
	kb *knowledge.Service,
	logger arbor.ILogger,
) (*Service, error) {
	if completion == nil {
		return nil, fmt.Errorf("completion service is required")
	}
	if kb == nil {
		return nil, fmt.Errorf("knowledge service is required")
	}
	if logger == nil {
		logger = common.GetLogger()
	}

	var sources []interfaces.ContextSource
	if retriever != nil && cfg.Retrieval.Enabled {
		sources = append(sources, NewIndexSource(retriever))
	}
	sources = append(sources, NewKnowledgeSource(kb))

	maxTokens := cfg.Claude.MaxTokens
	temperature := cfg.Claude.Temperature
	if common.LLMProvider(cfg.LLM.DefaultProvider) == common.LLMProviderGemini {
		maxTokens = cfg.Gemini.MaxTokens
		temperature = cfg.Gemini.Temperature
	}

	logger.Debug().
		Int("context_sources", len(sources)).
		Int("max_context_passages", cfg.Assistant.MaxContextPassages).
		Msg("Assistant service initialized")

	return &Service{
		completion:    completion,
		sources:       sources,
		promptBuilder: NewPromptBuilder(cfg.Assistant.MaxContextPassages, maxTokens, temperature),
		topics:        knowledge.SampleQuestions(),
		logger:        logger,
	}, nil
}

// Ask runs the full answering pipeline for one question.
//
// An empty or whitespace-only question fails with ErrInvalidInput before any
// external call. When the caller requests RAG, context is resolved through
// the source chain; a failed or empty index retrieval falls back to the
// knowledge base and never surfaces an error. The answer is flagged rag_used
// only when passages were actually embedded in the prompt.
func (s *Service) Ask(ctx context.Context, req *interfaces.AskRequest) (*models.AnswerResult, error) {
	if req == nil || strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: question is empty", interfaces.ErrInvalidInput)
	}
	question := strings.TrimSpace(req.Question)

	startTime := time.Now()
	s.logger.Debug().
		Str("use_rag", fmt.Sprintf("%v", req.UseRAG)).
		Int("question_length", len(question)).
		Msg("Processing ask request")

	var (
		passages   []models.Passage
		sourceName string
	)
	if req.UseRAG {
		resolved, name, err := resolveContext(ctx, s.sources, question, s.logger)
		if err != nil {
			return nil, err
		}
		passages = resolved
		sourceName = name
	}

	request := s.promptBuilder.Build(question, passages)
	embedded := s.promptBuilder.Embedded(passages)

	answer, err := s.completion.Complete(ctx, request)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("context_source", sourceName).
			Msg("Completion failed for ask request")
		return nil, err
	}

	contextSources := make([]string, 0, len(embedded))
	for _, p := range embedded {
		contextSources = append(contextSources, p.SourceID)
	}

	result := &models.AnswerResult{
		Question:       question,
		Answer:         answer,
		RAGUsed:        len(embedded) > 0,
		ContextSources: contextSources,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}

	s.logger.Info().
		Str("rag_used", fmt.Sprintf("%v", result.RAGUsed)).
		Str("context_source", sourceName).
		Int("passages_embedded", len(embedded)).
		Dur("duration", time.Since(startTime)).
		Msg("Ask request completed")

	return result, nil
}

// Topics returns the predefined sample questions grouped by category.
func (s *Service) Topics() map[string][]string {
	return s.topics
}

// HealthCheck verifies the completion provider can serve queries.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.completion.HealthCheck(ctx); err != nil {
		return fmt.Errorf("assistant health check failed: %w", err)
	}
	return nil
}
