package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAskComplianceTool returns the ask_compliance tool definition
func createAskComplianceTool() mcp.Tool {
	return mcp.NewTool("ask_compliance",
		mcp.WithDescription("Ask a compliance question and get a cited answer grounded in retrieved policy documents"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The compliance question to answer"),
		),
		mcp.WithBoolean("use_rag",
			mcp.Description("Ground the answer in retrieved context (default: true)"),
		),
	)
}

// createListTopicsTool returns the list_topics tool definition
func createListTopicsTool() mcp.Tool {
	return mcp.NewTool("list_topics",
		mcp.WithDescription("List compliance topic categories with sample questions"),
	)
}

// createGetAuditLogTool returns the get_audit_log tool definition
func createGetAuditLogTool() mcp.Tool {
	return mcp.NewTool("get_audit_log",
		mcp.WithDescription("Retrieve recent completion audit log entries, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum entries to return (default: 20, max: 100)"),
		),
	)
}
