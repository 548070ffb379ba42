package api

import "net/http"

// setupRoutes configures all HTTP routes for the API server.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", s.handleHealth)

	// API v1 endpoints
	mux.HandleFunc("/api/v1/scan", s.handleScan)
	mux.HandleFunc("/api/v1/channel/search", s.handleChannelSearch)
	mux.HandleFunc("/api/v1/alerts", s.handleAlerts)

	return mux
}
