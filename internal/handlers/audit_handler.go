package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/custos/internal/services/llm"
)

// AuditHandler serves the completion audit log
type AuditHandler struct {
	auditLogger llm.AuditLogger
	logger      arbor.ILogger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditLogger llm.AuditLogger, logger arbor.ILogger) *AuditHandler {
	return &AuditHandler{
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// GetLogsHandler handles GET /api/audit requests. The optional limit query
// parameter caps the number of returned entries (default 50, max 500).
func (h *AuditHandler) GetLogsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	logs, err := h.auditLogger.GetLogs(limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to retrieve audit logs")
		WriteError(w, http.StatusInternalServerError, "Failed to retrieve audit logs")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(logs),
		"logs":  logs,
	})
}

// ExportHandler handles GET /api/audit/export requests, streaming the whole
// audit log as a JSON attachment.
func (h *AuditHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=audit-log.json")

	if err := h.auditLogger.ExportToJSON(w); err != nil {
		h.logger.Error().Err(err).Msg("Failed to export audit logs")
		// Headers are already sent, nothing left to do for the client
	}
}

// RouteAuditRequests dispatches the /api/audit/ subtree. Only exact paths
// are served; anything else under the prefix is a 404.
func (h *AuditHandler) RouteAuditRequests(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/api/audit":
		h.GetLogsHandler(w, r)
	case "/api/audit/export":
		h.ExportHandler(w, r)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}
