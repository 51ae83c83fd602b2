package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/custos/internal/interfaces"
	"github.com/ternarybob/custos/internal/services/llm"
)

// handleAskCompliance implements the ask_compliance tool
func handleAskCompliance(assistantService interfaces.AssistantService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse question parameter (required)
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent("Error: question parameter is required"),
				},
			}, nil
		}

		useRAG := request.GetBool("use_rag", true)

		result, err := assistantService.Ask(ctx, &interfaces.AskRequest{
			Question: question,
			UseRAG:   useRAG,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Ask failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Answer error: %v", err)),
				},
			}, nil
		}

		// Format answer as markdown
		markdown := formatAnswer(result)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleListTopics implements the list_topics tool
func handleListTopics(assistantService interfaces.AssistantService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		topics := assistantService.Topics()

		markdown := formatTopics(topics)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}

// handleGetAuditLog implements the get_audit_log tool
func handleGetAuditLog(auditLogger llm.AuditLogger, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Parse limit (default: 20, max: 100)
		limit := request.GetInt("limit", 20)
		if limit > 100 {
			limit = 100
		}

		logs, err := auditLogger.GetLogs(limit)
		if err != nil {
			logger.Error().Err(err).Msg("GetLogs failed")
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.NewTextContent(fmt.Sprintf("Audit log error: %v", err)),
				},
			}, nil
		}

		markdown := formatAuditLogs(logs, limit)
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(markdown),
			},
		}, nil
	}
}
