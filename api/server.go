// Package api exposes the monitor's HTTP surface: health, the scan trigger,
// interactive channel search and alert management.
package api

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Server provides HTTP endpoints over the scanner and alert store.
type Server struct {
	logger  zerolog.Logger
	scanner Scanner
	alerts  AlertService
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(scanner Scanner, alerts AlertService, port int, logger zerolog.Logger) *Server {
	s := &Server{
		logger:  logger.With().Str("component", "api_server").Logger(),
		scanner: scanner,
		alerts:  alerts,
	}

	mux := s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	return s
}

// Start starts the HTTP server, verifying the port binds before returning.
func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("query server is nil")
	}

	startupChan := make(chan error, 1)

	go func() {
		// Probe the port before handing it to ListenAndServe
		ln, err := net.Listen("tcp", s.server.Addr)
		if err != nil {
			startupChan <- fmt.Errorf("failed to bind to address %s: %w", s.server.Addr, err)
			return
		}
		ln.Close()

		startupChan <- nil

		err = s.server.ListenAndServe()
		switch err {
		case nil:
			s.logger.Info().Msg("query server stopped normally")
		case http.ErrServerClosed:
			s.logger.Info().Msg("query server closed gracefully")
		default:
			s.logger.Error().Err(err).Msg("query server error")
		}
	}()

	select {
	case err := <-startupChan:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("server startup timeout")
	}
}

// Stop shuts down the HTTP server.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
