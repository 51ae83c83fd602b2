package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/custos/internal/common"
	"github.com/ternarybob/custos/internal/interfaces"
)

func openTestStore(t *testing.T) *badgerhold.Store {
	t.Helper()
	options := badgerhold.DefaultOptions
	options.Dir = t.TempDir()
	options.ValueDir = options.Dir
	options.Logger = nil
	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBadgerAuditLogger_RecordsCompletion(t *testing.T) {
	store := openTestStore(t)
	auditLogger := NewBadgerAuditLogger(store, true, common.GetLogger())

	err := auditLogger.LogCompletion(interfaces.LLMModeCloud, "claude", "claude-sonnet-4-20250514",
		true, 1500*time.Millisecond, nil, "What are STR reporting requirements?")
	require.NoError(t, err)

	logs, err := auditLogger.GetLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "cloud", logs[0].Mode)
	assert.Equal(t, "claude", logs[0].Provider)
	assert.True(t, logs[0].Success)
	assert.Equal(t, int64(1500), logs[0].Duration)
	assert.Equal(t, "What are STR reporting requirements?", logs[0].QueryText)
}

func TestBadgerAuditLogger_OmitsQueryTextWhenDisabled(t *testing.T) {
	store := openTestStore(t)
	auditLogger := NewBadgerAuditLogger(store, false, common.GetLogger())

	err := auditLogger.LogCompletion(interfaces.LLMModeCloud, "claude", "claude-sonnet-4-20250514",
		false, time.Second, fmt.Errorf("rate limited"), "sensitive question")
	require.NoError(t, err)

	logs, err := auditLogger.GetLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].QueryText)
	assert.Equal(t, "rate limited", logs[0].Error)
	assert.False(t, logs[0].Success)
}

func TestBadgerAuditLogger_GetLogsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	auditLogger := NewBadgerAuditLogger(store, false, common.GetLogger())

	for i := 0; i < 3; i++ {
		require.NoError(t, auditLogger.LogCompletion(interfaces.LLMModeCloud, "claude", "m",
			true, time.Duration(i)*time.Millisecond, nil, ""))
		time.Sleep(5 * time.Millisecond)
	}

	logs, err := auditLogger.GetLogs(2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.True(t, logs[0].Timestamp.After(logs[1].Timestamp) || logs[0].Timestamp.Equal(logs[1].Timestamp))
}

func TestBadgerAuditLogger_ExportToJSON(t *testing.T) {
	store := openTestStore(t)
	auditLogger := NewBadgerAuditLogger(store, false, common.GetLogger())

	require.NoError(t, auditLogger.LogCompletion(interfaces.LLMModeCloud, "gemini", "gemini-3-flash",
		true, time.Second, nil, ""))

	var buf bytes.Buffer
	require.NoError(t, auditLogger.ExportToJSON(&buf))

	var exported []AuditLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "gemini", exported[0].Provider)
}

func TestNullAuditLogger_IsNoOp(t *testing.T) {
	auditLogger := NewNullAuditLogger()

	require.NoError(t, auditLogger.LogCompletion(interfaces.LLMModeCloud, "claude", "m", true, time.Second, nil, "q"))

	logs, err := auditLogger.GetLogs(10)
	require.NoError(t, err)
	assert.Empty(t, logs)

	var buf bytes.Buffer
	require.NoError(t, auditLogger.ExportToJSON(&buf))
	assert.JSONEq(t, "[]", buf.String())
}

// recordingCompletionService is a fake inner service for decorator tests.
type recordingCompletionService struct {
	response string
	err      error
	calls    int
}

func (s *recordingCompletionService) Complete(ctx context.Context, request *interfaces.CompletionRequest) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *recordingCompletionService) HealthCheck(ctx context.Context) error { return nil }
func (s *recordingCompletionService) GetMode() interfaces.LLMMode           { return interfaces.LLMModeMock }
func (s *recordingCompletionService) Close() error                          { return nil }

func TestAuditedCompletionService_RecordsSuccessAndFailure(t *testing.T) {
	store := openTestStore(t)
	auditLogger := NewBadgerAuditLogger(store, true, common.GetLogger())

	inner := &recordingCompletionService{response: "an answer"}
	audited := &auditedCompletionService{
		inner:    inner,
		provider: "claude",
		model:    "claude-sonnet-4-20250514",
		audit:    auditLogger,
		logger:   common.GetLogger(),
	}

	request := &interfaces.CompletionRequest{
		Messages: []interfaces.Message{{Role: "user", Content: "What is circular trading?"}},
	}

	response, err := audited.Complete(context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t, "an answer", response)

	inner.err = fmt.Errorf("%w: provider exploded", interfaces.ErrCompletionFailed)
	_, err = audited.Complete(context.Background(), request)
	assert.ErrorIs(t, err, interfaces.ErrCompletionFailed)

	logs, err := auditLogger.GetLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, 2, inner.calls)

	var successes, failures int
	for _, entry := range logs {
		assert.Equal(t, "What is circular trading?", entry.QueryText)
		if entry.Success {
			successes++
		} else {
			failures++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)
}
