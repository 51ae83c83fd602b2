package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/custos/internal/common"
	"github.com/ternarybob/custos/internal/interfaces"
)

// fakeQuerier returns canned results or a canned error.
type fakeQuerier struct {
	results []queryResult
	err     error
	calls   int
}

func (f *fakeQuerier) Query(ctx context.Context, question string) ([]queryResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestRetrieve_EmptyQuestionIsInvalidInput(t *testing.T) {
	querier := &fakeQuerier{}
	svc := newServiceWithQuerier(querier, 0.3, common.GetLogger())

	_, err := svc.Retrieve(context.Background(), "   ")

	assert.ErrorIs(t, err, interfaces.ErrInvalidInput)
	assert.Equal(t, 0, querier.calls, "index must not be queried for an empty question")
}

func TestRetrieve_FiltersBelowConfidenceFloor(t *testing.T) {
	querier := &fakeQuerier{results: []queryResult{
		{ID: "doc-1", Title: "AML Policy", Excerpt: "high", Confidence: 0.9},
		{ID: "doc-2", Title: "Old Memo", Excerpt: "low", Confidence: 0.1},
		{ID: "doc-3", Title: "KYC Guide", Excerpt: "mid", Confidence: 0.5},
	}}
	svc := newServiceWithQuerier(querier, 0.3, common.GetLogger())

	passages, err := svc.Retrieve(context.Background(), "what are the KYC requirements?")

	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "doc-1", passages[0].SourceID)
	assert.Equal(t, "doc-3", passages[1].SourceID)
}

func TestRetrieve_OrdersByConfidenceDescending(t *testing.T) {
	querier := &fakeQuerier{results: []queryResult{
		{ID: "doc-a", Confidence: 0.4},
		{ID: "doc-b", Confidence: 0.8},
		{ID: "doc-c", Confidence: 0.6},
	}}
	svc := newServiceWithQuerier(querier, 0.3, common.GetLogger())

	passages, err := svc.Retrieve(context.Background(), "ordering")

	require.NoError(t, err)
	require.Len(t, passages, 3)
	assert.Equal(t, "doc-b", passages[0].SourceID)
	assert.Equal(t, "doc-c", passages[1].SourceID)
	assert.Equal(t, "doc-a", passages[2].SourceID)
}

func TestRetrieve_StableOrderForEqualConfidence(t *testing.T) {
	querier := &fakeQuerier{results: []queryResult{
		{ID: "doc-first", Confidence: 0.5},
		{ID: "doc-second", Confidence: 0.5},
	}}
	svc := newServiceWithQuerier(querier, 0.3, common.GetLogger())

	passages, err := svc.Retrieve(context.Background(), "ties")

	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "doc-first", passages[0].SourceID)
	assert.Equal(t, "doc-second", passages[1].SourceID)
}

func TestRetrieve_IndexFailureIsUnavailable(t *testing.T) {
	querier := &fakeQuerier{err: fmt.Errorf("connection refused")}
	svc := newServiceWithQuerier(querier, 0.3, common.GetLogger())

	_, err := svc.Retrieve(context.Background(), "anything")

	assert.ErrorIs(t, err, interfaces.ErrRetrievalUnavailable)
}

func TestRetrieve_AllBelowFloorIsUnavailable(t *testing.T) {
	querier := &fakeQuerier{results: []queryResult{
		{ID: "doc-1", Confidence: 0.1},
		{ID: "doc-2", Confidence: 0.2},
	}}
	svc := newServiceWithQuerier(querier, 0.3, common.GetLogger())

	_, err := svc.Retrieve(context.Background(), "weak matches only")

	assert.ErrorIs(t, err, interfaces.ErrRetrievalUnavailable)
}

func TestRetrieve_EmptyIndexResultIsNotAnError(t *testing.T) {
	querier := &fakeQuerier{results: nil}
	svc := newServiceWithQuerier(querier, 0.3, common.GetLogger())

	passages, err := svc.Retrieve(context.Background(), "no documents match this")

	require.NoError(t, err)
	assert.Empty(t, passages)
}

func TestClient_QuerySendsAuthAndDecodesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/indexes/compliance-docs/query", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What is circular trading?", req.Query)
		assert.Equal(t, 5, req.PageSize)

		json.NewEncoder(w).Encode(queryResponse{Results: []queryResult{
			{ID: "doc-1", Title: "Market Conduct", Excerpt: "circular trading is...", Confidence: 0.85},
		}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "compliance-docs")

	results, err := client.Query(context.Background(), "What is circular trading?")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1", results[0].ID)
	assert.InDelta(t, 0.85, results[0].Confidence, 0.001)
}

func TestClient_QueryReturnsIndexErrorOnNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index not ready", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "compliance-docs")

	_, err := client.Query(context.Background(), "anything")

	require.Error(t, err)
	var indexErr *IndexError
	require.ErrorAs(t, err, &indexErr)
	assert.Equal(t, http.StatusServiceUnavailable, indexErr.StatusCode)
}

func TestNewService_RequiresEndpoint(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Retrieval.Endpoint = ""

	_, err := NewService(cfg, "key", common.GetLogger())

	assert.Error(t, err)
}
