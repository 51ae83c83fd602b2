package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Question answering
	mux.HandleFunc("/api/ask", s.app.AskHandler.AskHandler)           // POST - answer a compliance question
	mux.HandleFunc("/api/ask/health", s.app.AskHandler.HealthHandler) // GET - answering pipeline health

	// API routes - Topics
	mux.HandleFunc("/api/topics", s.app.TopicsHandler.GetTopicsHandler) // GET - sample questions by category

	// API routes - Audit log
	mux.HandleFunc("/api/audit", s.app.AuditHandler.GetLogsHandler)      // GET - recent completion audit entries
	mux.HandleFunc("/api/audit/", s.app.AuditHandler.RouteAuditRequests) // GET /export - full JSON export

	// API routes - Dependency status
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler) // GET - latest dependency probe results

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/shutdown", s.ShutdownHandler) // Graceful shutdown endpoint (dev mode)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// ShutdownHandler handles POST /api/shutdown requests by signalling the main
// goroutine to begin graceful shutdown.
func (s *Server) ShutdownHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Only the first request may close the channel; concurrent requests
	// race here, so the check and close happen under the same lock.
	s.shutdownMu.Lock()
	ch := s.shutdownChan
	s.shutdownChan = nil
	s.shutdownMu.Unlock()

	if ch == nil {
		http.Error(w, "Shutdown endpoint not enabled", http.StatusServiceUnavailable)
		return
	}

	s.app.Logger.Info().Str("remote", r.RemoteAddr).Msg("Shutdown requested via HTTP")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"shutting down"}`))

	close(ch)
}
