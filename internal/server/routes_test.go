package server

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/custos/internal/app"
)

func newTestServer(shutdownChan chan struct{}) *Server {
	return &Server{
		app:          &app.App{Logger: arbor.NewLogger()},
		shutdownChan: shutdownChan,
	}
}

func TestShutdownHandler_MethodNotAllowed(t *testing.T) {
	s := newTestServer(make(chan struct{}))

	req := httptest.NewRequest(http.MethodGet, "/api/shutdown", nil)
	rec := httptest.NewRecorder()

	s.ShutdownHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestShutdownHandler_NotEnabled(t *testing.T) {
	s := newTestServer(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/shutdown", nil)
	rec := httptest.NewRecorder()

	s.ShutdownHandler(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestShutdownHandler_SignalsChannel(t *testing.T) {
	ch := make(chan struct{})
	s := newTestServer(ch)

	req := httptest.NewRequest(http.MethodPost, "/api/shutdown", nil)
	rec := httptest.NewRecorder()

	s.ShutdownHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"shutting down"}`, rec.Body.String())

	select {
	case <-ch:
	default:
		t.Fatal("shutdown channel was not closed")
	}
}

func TestShutdownHandler_ConcurrentRequests(t *testing.T) {
	ch := make(chan struct{})
	s := newTestServer(ch)

	const requests = 10
	recorders := make([]*httptest.ResponseRecorder, requests)

	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		recorders[i] = httptest.NewRecorder()
		wg.Add(1)
		go func(rec *httptest.ResponseRecorder) {
			defer wg.Done()
			s.ShutdownHandler(rec, httptest.NewRequest(http.MethodPost, "/api/shutdown", nil))
		}(recorders[i])
	}
	wg.Wait()

	accepted := 0
	for _, rec := range recorders {
		switch rec.Code {
		case http.StatusOK:
			accepted++
		case http.StatusServiceUnavailable:
		default:
			t.Fatalf("unexpected status %d", rec.Code)
		}
	}
	require.Equal(t, 1, accepted, "exactly one request should trigger shutdown")

	select {
	case <-ch:
	default:
		t.Fatal("shutdown channel was not closed")
	}
}
