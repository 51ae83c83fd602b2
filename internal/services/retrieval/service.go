// -----------------------------------------------------------------------
// Retrieval service: queries the external search index and applies the
// confidence floor before passages reach the answering pipeline.
// -----------------------------------------------------------------------

package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/custos/internal/common"
	"github.com/ternarybob/custos/internal/interfaces"
	"github.com/ternarybob/custos/internal/models"
)

// indexQuerier is the slice of Client the service depends on.
type indexQuerier interface {
	Query(ctx context.Context, question string) ([]queryResult, error)
}

// Service implements interfaces.RetrievalService against a search index
// client. Results below the configured confidence floor are discarded, and
// survivors are ordered by confidence descending.
type Service struct {
	client        indexQuerier
	minConfidence float64
	logger        arbor.ILogger
}

// NewService builds a retrieval service from config. The API key should
// already be resolved via common.ResolveAPIKey.
func NewService(cfg *common.Config, apiKey string, logger arbor.ILogger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = common.GetLogger()
	}
	if cfg.Retrieval.Endpoint == "" {
		return nil, fmt.Errorf("retrieval endpoint is not configured")
	}

	timeout := DefaultTimeout
	if cfg.Retrieval.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Retrieval.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid retrieval timeout %q: %w", cfg.Retrieval.Timeout, err)
		}
		timeout = parsed
	}

	opts := []ClientOption{
		WithLogger(logger),
		WithTimeout(timeout),
		WithPageSize(cfg.Retrieval.PageSize),
	}
	if cfg.Retrieval.RateLimit > 0 {
		opts = append(opts, WithRateLimit(cfg.Retrieval.RateLimit))
	}

	client := NewClient(strings.TrimSuffix(cfg.Retrieval.Endpoint, "/"), apiKey, cfg.Retrieval.IndexID, opts...)

	return &Service{
		client:        client,
		minConfidence: cfg.Retrieval.MinConfidence,
		logger:        logger,
	}, nil
}

// newServiceWithQuerier is the test seam.
func newServiceWithQuerier(client indexQuerier, minConfidence float64, logger arbor.ILogger) *Service {
	return &Service{
		client:        client,
		minConfidence: minConfidence,
		logger:        logger,
	}
}

// Retrieve queries the index and returns passages at or above the confidence
// floor, ordered by confidence descending. An empty or whitespace question is
// ErrInvalidInput. Index failures are reported as ErrRetrievalUnavailable so
// the caller can fall back, and a query where every result lands below the
// floor is treated the same way.
func (s *Service) Retrieve(ctx context.Context, question string) ([]models.Passage, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", interfaces.ErrInvalidInput)
	}

	results, err := s.client.Query(ctx, question)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Search index query failed")
		return nil, fmt.Errorf("%w: %v", interfaces.ErrRetrievalUnavailable, err)
	}

	passages := make([]models.Passage, 0, len(results))
	for _, r := range results {
		if r.Confidence < s.minConfidence {
			continue
		}
		passages = append(passages, models.Passage{
			SourceID:   r.ID,
			Title:      r.Title,
			Text:       r.Excerpt,
			Confidence: r.Confidence,
		})
	}

	if len(results) > 0 && len(passages) == 0 {
		s.logger.Debug().
			Int("results", len(results)).
			Float64("min_confidence", s.minConfidence).
			Msg("All index results below confidence floor")
		return nil, fmt.Errorf("%w: no results above confidence %.2f", interfaces.ErrRetrievalUnavailable, s.minConfidence)
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Confidence > passages[j].Confidence
	})

	s.logger.Debug().
		Int("results", len(results)).
		Int("passages", len(passages)).
		Msg("Index retrieval complete")

	return passages, nil
}

// HealthCheck verifies the index responds to a probe query.
func (s *Service) HealthCheck(ctx context.Context) error {
	_, err := s.client.Query(ctx, "health check probe")
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrRetrievalUnavailable, err)
	}
	return nil
}
