package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/custos/internal/common"
	"github.com/ternarybob/custos/internal/services/assistant"
	"github.com/ternarybob/custos/internal/services/knowledge"
	"github.com/ternarybob/custos/internal/services/llm"
	"github.com/ternarybob/custos/internal/services/retrieval"
	badgerstore "github.com/ternarybob/custos/internal/storage/badger"
)

func main() {
	// Last line of defense: a panic that escapes main produces a crash file
	defer common.RecoverWithCrashFile()

	// Load configuration
	configPath := os.Getenv("CUSTOS_CONFIG")
	if configPath == "" {
		configPath = "custos.toml"
	}

	config, err := common.LoadFromFiles(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal logging to avoid cluttering MCP stdio
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	// Initialize storage
	storageManager, err := badgerstore.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	// Completion service with audit logging
	completion, auditLogger, err := llm.NewCompletionService(config, storageManager, storageManager.DB().Store(), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize completion service")
	}
	defer completion.Close()

	// Knowledge base
	kb, err := knowledge.NewService(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize knowledge service")
	}

	// Optional index retrieval
	var retriever *retrieval.Service
	if config.Retrieval.Enabled && config.Retrieval.Endpoint != "" {
		apiKey, keyErr := common.ResolveAPIKey(context.Background(), storageManager.KeyValueStorage(), "retrieval_api_key", config.Retrieval.APIKey)
		if keyErr != nil {
			apiKey = ""
		}
		retriever, err = retrieval.NewService(config, apiKey, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize retrieval service")
		}
	}

	// Assistant pipeline
	var assistantService *assistant.Service
	if retriever != nil {
		assistantService, err = assistant.NewService(config, completion, retriever, kb, logger)
	} else {
		assistantService, err = assistant.NewService(config, completion, nil, kb, logger)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize assistant service")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"custos",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	// Register compliance tools
	mcpServer.AddTool(createAskComplianceTool(), handleAskCompliance(assistantService, logger))
	mcpServer.AddTool(createListTopicsTool(), handleListTopics(assistantService, logger))
	mcpServer.AddTool(createGetAuditLogTool(), handleGetAuditLog(auditLogger, logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
