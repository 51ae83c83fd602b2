package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/custos/internal/common"
	"github.com/ternarybob/custos/internal/interfaces"
)

// NewCompletionService creates the completion service for the configured
// provider, wrapped with audit logging when enabled. The store may be nil
// when auditing is disabled.
func NewCompletionService(
	cfg *common.Config,
	storageManager interfaces.StorageManager,
	store *badgerhold.Store,
	logger arbor.ILogger,
) (interfaces.CompletionService, AuditLogger, error) {
	provider := DetectProvider("", ProviderType(cfg.LLM.DefaultProvider))
	if provider != ProviderClaude && provider != ProviderGemini {
		return nil, nil, fmt.Errorf("invalid LLM provider '%s': must be 'claude' or 'gemini'", cfg.LLM.DefaultProvider)
	}

	logger.Info().Str("provider", string(provider)).Msg("Initializing completion service")

	var auditLogger AuditLogger
	if cfg.LLM.AuditEnabled {
		if store == nil {
			return nil, nil, fmt.Errorf("audit logging enabled but no store available")
		}
		auditLogger = NewBadgerAuditLogger(store, cfg.LLM.AuditQueries, logger)
	} else {
		auditLogger = NewNullAuditLogger()
	}

	var (
		service interfaces.CompletionService
		model   string
		err     error
	)
	switch provider {
	case ProviderClaude:
		claude, cerr := NewClaudeService(&cfg.Claude, storageManager, logger)
		if cerr != nil {
			err = cerr
		} else {
			service, model = claude, claude.Model()
		}
	case ProviderGemini:
		gemini, gerr := NewGeminiService(&cfg.Gemini, storageManager, logger)
		if gerr != nil {
			err = gerr
		} else {
			service, model = gemini, gemini.Model()
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s completion service: %w", provider, err)
	}

	audited := &auditedCompletionService{
		inner:    service,
		provider: string(provider),
		model:    NormalizeModel(model),
		audit:    auditLogger,
		logger:   logger,
	}

	return audited, auditLogger, nil
}

// auditedCompletionService decorates a CompletionService with audit logging.
// Audit failures are logged but never surface to the caller.
type auditedCompletionService struct {
	inner    interfaces.CompletionService
	provider string
	model    string
	audit    AuditLogger
	logger   arbor.ILogger
}

func (s *auditedCompletionService) Complete(ctx context.Context, request *interfaces.CompletionRequest) (string, error) {
	start := time.Now()
	response, err := s.inner.Complete(ctx, request)
	duration := time.Since(start)

	queryText := lastUserMessage(request)
	if auditErr := s.audit.LogCompletion(s.inner.GetMode(), s.provider, s.model, err == nil, duration, err, queryText); auditErr != nil {
		s.logger.Warn().Err(auditErr).Msg("Failed to record completion audit entry")
	}

	return response, err
}

func (s *auditedCompletionService) HealthCheck(ctx context.Context) error {
	return s.inner.HealthCheck(ctx)
}

func (s *auditedCompletionService) GetMode() interfaces.LLMMode {
	return s.inner.GetMode()
}

func (s *auditedCompletionService) Close() error {
	return s.inner.Close()
}

func lastUserMessage(request *interfaces.CompletionRequest) string {
	if request == nil {
		return ""
	}
	for i := len(request.Messages) - 1; i >= 0; i-- {
		if request.Messages[i].Role == "user" {
			return request.Messages[i].Content
		}
	}
	return ""
}
