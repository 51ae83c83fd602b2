package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/custos/internal/models"
	"github.com/ternarybob/custos/internal/services/llm"
)

// formatAnswer formats an answer result as markdown
func formatAnswer(result *models.AnswerResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", result.Question))
	sb.WriteString(result.Answer)
	sb.WriteString("\n\n---\n\n")

	if result.RAGUsed {
		sb.WriteString(fmt.Sprintf("**Grounded:** yes (%d sources)\n", len(result.ContextSources)))
		for _, source := range result.ContextSources {
			sb.WriteString(fmt.Sprintf("- %s\n", source))
		}
	} else {
		sb.WriteString("**Grounded:** no (answered without retrieved context)\n")
	}
	sb.WriteString(fmt.Sprintf("\n**Answered:** %s\n", result.Timestamp))

	return sb.String()
}

// formatTopics formats sample questions grouped by category as markdown
func formatTopics(topics map[string][]string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Compliance Topics (%d categories)\n\n", len(topics)))

	if len(topics) == 0 {
		sb.WriteString("No topics configured.\n")
		return sb.String()
	}

	// Stable ordering for deterministic output
	categories := make([]string, 0, len(topics))
	for category := range topics {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		sb.WriteString(fmt.Sprintf("### %s\n", category))
		for _, question := range topics[category] {
			sb.WriteString(fmt.Sprintf("- %s\n", question))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatAuditLogs formats audit log entries as markdown
func formatAuditLogs(logs []llm.AuditLog, limit int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Audit Log (%d of %d)\n\n", len(logs), limit))

	if len(logs) == 0 {
		sb.WriteString("No audit entries found.\n")
		return sb.String()
	}

	for i, entry := range logs {
		status := "ok"
		if !entry.Success {
			status = "failed"
		}
		sb.WriteString(fmt.Sprintf("%d. **%s/%s** %s (%dms)\n", i+1, entry.Provider, entry.Model, status, entry.Duration))
		sb.WriteString(fmt.Sprintf("   At: %s\n", entry.Timestamp.Format(time.RFC3339)))
		if entry.Error != "" {
			sb.WriteString(fmt.Sprintf("   Error: %s\n", entry.Error))
		}
		if entry.QueryText != "" {
			query := entry.QueryText
			if len(query) > 120 {
				query = query[:120] + "..."
			}
			sb.WriteString(fmt.Sprintf("   Query: %s\n", query))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
