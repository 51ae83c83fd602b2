package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/custos/internal/common"
	"github.com/ternarybob/custos/internal/interfaces"
	"github.com/ternarybob/custos/internal/models"
)

// fakeAssistant implements interfaces.AssistantService with canned behavior.
type fakeAssistant struct {
	result    *models.AnswerResult
	err       error
	healthErr error
	asks      int
}

func (f *fakeAssistant) Ask(ctx context.Context, req *interfaces.AskRequest) (*models.AnswerResult, error) {
	f.asks++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAssistant) Topics() map[string][]string {
	return map[string][]string{"aml": {"What are STR reporting requirements?"}}
}

func (f *fakeAssistant) HealthCheck(ctx context.Context) error {
	return f.healthErr
}

func postAsk(t *testing.T, handler *AskHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/ask", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.AskHandler(rec, req)
	return rec
}

func TestAskHandler_ReturnsAnswerResult(t *testing.T) {
	assistant := &fakeAssistant{result: &models.AnswerResult{
		Question:       "What are STR reporting requirements?",
		Answer:         "STRs must be filed within 7 days. [kb-aml-str]",
		RAGUsed:        true,
		ContextSources: []string{"kb-aml-str"},
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}}
	handler := NewAskHandler(assistant, common.GetLogger())

	rec := postAsk(t, handler, `{"question":"What are STR reporting requirements?","use_rag":true}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var result models.AnswerResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.RAGUsed)
	assert.Equal(t, []string{"kb-aml-str"}, result.ContextSources)
	assert.Equal(t, 1, assistant.asks)
}

func TestAskHandler_RejectsMalformedBody(t *testing.T) {
	assistant := &fakeAssistant{}
	handler := NewAskHandler(assistant, common.GetLogger())

	rec := postAsk(t, handler, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, assistant.asks)
}

func TestAskHandler_RejectsMissingQuestion(t *testing.T) {
	assistant := &fakeAssistant{}
	handler := NewAskHandler(assistant, common.GetLogger())

	rec := postAsk(t, handler, `{"use_rag":true}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, assistant.asks, "pipeline must not run without a question")
}

func TestAskHandler_MapsPipelineErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid input", fmt.Errorf("%w: question is empty", interfaces.ErrInvalidInput), http.StatusBadRequest},
		{"completion failed", fmt.Errorf("%w: provider returned 500", interfaces.ErrCompletionFailed), http.StatusBadGateway},
		{"completion timeout", fmt.Errorf("%w: exceeded 2m0s", interfaces.ErrCompletionTimeout), http.StatusGatewayTimeout},
		{"unexpected error", fmt.Errorf("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAskHandler(&fakeAssistant{err: tt.err}, common.GetLogger())
			rec := postAsk(t, handler, `{"question":"anything"}`)
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestAskHandler_MethodNotAllowed(t *testing.T) {
	handler := NewAskHandler(&fakeAssistant{}, common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/ask", nil)
	rec := httptest.NewRecorder()
	handler.AskHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAskHandler_HealthEndpoint(t *testing.T) {
	handler := NewAskHandler(&fakeAssistant{}, common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/ask/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAskHandler_HealthEndpointUnhealthy(t *testing.T) {
	handler := NewAskHandler(&fakeAssistant{healthErr: fmt.Errorf("provider unreachable")}, common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/ask/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTopicsHandler_ReturnsCategories(t *testing.T) {
	handler := NewTopicsHandler(&fakeAssistant{}, common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/topics", nil)
	rec := httptest.NewRecorder()
	handler.GetTopicsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Topics map[string][]string `json:"topics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Topics["aml"])
}
