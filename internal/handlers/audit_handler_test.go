package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/custos/internal/interfaces"
	"github.com/ternarybob/custos/internal/services/llm"
)

type fakeAuditLogger struct {
	logs []llm.AuditLog
}

func (f *fakeAuditLogger) LogCompletion(mode interfaces.LLMMode, provider, model string, success bool, duration time.Duration, err error, queryText string) error {
	return nil
}

func (f *fakeAuditLogger) GetLogs(limit int) ([]llm.AuditLog, error) {
	if limit > len(f.logs) {
		limit = len(f.logs)
	}
	return f.logs[:limit], nil
}

func (f *fakeAuditLogger) ExportToJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(f.logs)
}

func (f *fakeAuditLogger) Close() error { return nil }

func newTestAuditHandler(logs []llm.AuditLog) *AuditHandler {
	return NewAuditHandler(&fakeAuditLogger{logs: logs}, arbor.NewLogger())
}

func sampleAuditLogs(n int) []llm.AuditLog {
	logs := make([]llm.AuditLog, n)
	for i := range logs {
		logs[i] = llm.AuditLog{
			ID:        string(rune('a' + i)),
			Timestamp: time.Now().UTC(),
			Mode:      "answer",
			Provider:  "claude",
			Model:     "claude-sonnet-4-20250514",
			Success:   true,
			Duration:  120,
		}
	}
	return logs
}

func TestGetLogsHandler(t *testing.T) {
	h := newTestAuditHandler(sampleAuditLogs(3))

	req := httptest.NewRequest(http.MethodGet, "/api/audit", nil)
	rec := httptest.NewRecorder()

	h.GetLogsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, float64(3), response["count"])
}

func TestGetLogsHandler_LimitParameter(t *testing.T) {
	h := newTestAuditHandler(sampleAuditLogs(5))

	req := httptest.NewRequest(http.MethodGet, "/api/audit?limit=2", nil)
	rec := httptest.NewRecorder()

	h.GetLogsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, float64(2), response["count"])
}

func TestRouteAuditRequests(t *testing.T) {
	h := newTestAuditHandler(sampleAuditLogs(2))

	t.Run("logs route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/audit/", nil)
		rec := httptest.NewRecorder()

		h.RouteAuditRequests(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"count"`)
	})

	t.Run("export route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/audit/export", nil)
		rec := httptest.NewRecorder()

		h.RouteAuditRequests(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "attachment; filename=audit-log.json", rec.Header().Get("Content-Disposition"))

		var exported []llm.AuditLog
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exported))
		assert.Len(t, exported, 2)
	})

	t.Run("unknown path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/audit/bogus", nil)
		rec := httptest.NewRecorder()

		h.RouteAuditRequests(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
