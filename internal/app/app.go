// -----------------------------------------------------------------------
// Application wiring: config, storage, services, and HTTP handlers.
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/custos/internal/common"
	"github.com/ternarybob/custos/internal/handlers"
	"github.com/ternarybob/custos/internal/interfaces"
	"github.com/ternarybob/custos/internal/services/assistant"
	"github.com/ternarybob/custos/internal/services/knowledge"
	"github.com/ternarybob/custos/internal/services/llm"
	"github.com/ternarybob/custos/internal/services/retrieval"
	"github.com/ternarybob/custos/internal/services/status"
	badgerstore "github.com/ternarybob/custos/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Core pipeline services
	CompletionService interfaces.CompletionService
	RetrievalService  interfaces.RetrievalService
	KnowledgeService  *knowledge.Service
	AssistantService  interfaces.AssistantService

	// Supporting services
	AuditLogger   llm.AuditLogger
	StatusService *status.Service

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	AskHandler    *handlers.AskHandler
	TopicsHandler *handlers.TopicsHandler
	AuditHandler  *handlers.AuditHandler
	StatusHandler *handlers.StatusHandler

	storageManager *badgerstore.Manager
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.storageManager.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()
	app.initStatusProbes()

	logger.Info().Msg("Application initialized")

	return app, nil
}

func (a *App) initStorage() error {
	manager, err := badgerstore.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.storageManager = manager
	a.StorageManager = manager

	// Seed the KV store with operator-provided keys before services
	// resolve them. Both sources are optional.
	ctx := context.Background()
	if err := manager.LoadEnvFile(ctx, ".env"); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load .env file")
	}
	if err := manager.LoadKeyFiles(ctx, a.Config.Keys.Dir); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load key files")
	}

	// Resolve {key-name} references in config values against the KV store
	if kvMap, err := manager.KeyValueStorage().GetAll(ctx); err == nil && len(kvMap) > 0 {
		if err := common.ReplaceInStruct(a.Config, kvMap, a.Logger); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to resolve key references in config")
		}
	}

	return nil
}

func (a *App) initServices() error {
	// Completion service with audit logging
	completion, auditLogger, err := llm.NewCompletionService(
		a.Config,
		a.StorageManager,
		a.storageManager.DB().Store(),
		a.Logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create completion service: %w", err)
	}
	a.CompletionService = completion
	a.AuditLogger = auditLogger

	// Knowledge base (always present, terminal fallback)
	kb, err := knowledge.NewService(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create knowledge service: %w", err)
	}
	a.KnowledgeService = kb

	// Index retrieval is optional: when disabled or unconfigured the
	// assistant grounds answers on the knowledge base alone.
	if a.Config.Retrieval.Enabled && a.Config.Retrieval.Endpoint != "" {
		apiKey, err := common.ResolveAPIKey(
			context.Background(),
			a.StorageManager.KeyValueStorage(),
			"retrieval_api_key",
			a.Config.Retrieval.APIKey,
		)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("No retrieval API key resolved, querying index unauthenticated")
			apiKey = ""
		}

		retriever, err := retrieval.NewService(a.Config, apiKey, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create retrieval service: %w", err)
		}
		a.RetrievalService = retriever
	} else {
		a.Logger.Info().Msg("Index retrieval disabled, knowledge base is the only context source")
	}

	// Assistant pipeline
	assistantService, err := assistant.NewService(a.Config, a.CompletionService, a.RetrievalService, kb, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create assistant service: %w", err)
	}
	a.AssistantService = assistantService

	// Status probes
	a.StatusService = status.NewService(a.Config, a.Logger)

	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.AskHandler = handlers.NewAskHandler(a.AssistantService, a.Logger)
	a.TopicsHandler = handlers.NewTopicsHandler(a.AssistantService, a.Logger)
	a.AuditHandler = handlers.NewAuditHandler(a.AuditLogger, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(a.StatusService, a.Logger)
}

func (a *App) initStatusProbes() {
	a.StatusService.Register("completion", func(ctx context.Context) error {
		return a.CompletionService.HealthCheck(ctx)
	})
	if a.RetrievalService != nil {
		a.StatusService.Register("index", func(ctx context.Context) error {
			return a.RetrievalService.HealthCheck(ctx)
		})
	}
}

// StartBackground launches the scheduled status probes.
func (a *App) StartBackground() error {
	return a.StatusService.Start()
}

// Close shuts down all application components
func (a *App) Close() error {
	a.Logger.Info().Msg("Shutting down application")

	if a.StatusService != nil {
		a.StatusService.Stop()
	}

	if a.CompletionService != nil {
		if err := a.CompletionService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close completion service")
		}
	}

	if a.AuditLogger != nil {
		if err := a.AuditLogger.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close audit logger")
		}
	}

	if a.storageManager != nil {
		if err := a.storageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage manager")
			return err
		}
	}

	a.Logger.Info().Msg("Application shutdown complete")
	return nil
}
