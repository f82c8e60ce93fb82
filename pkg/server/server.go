// Package server exposes the arena over HTTP: one endpoint accepting
// a goal request and returning the formatted report or a structured
// failure description.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/harun/arena/internal/observability"
	"github.com/harun/arena/pkg/arena"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds inbound request size.
const maxBodyBytes = 1 << 20

// Options holds server configuration
type Options struct {
	Host               string
	Port               int
	RateLimitPerMinute int
	RunTimeout         time.Duration
}

// ArenaRunner runs one complete arena and never errors past its boundary.
type ArenaRunner interface {
	Run(ctx context.Context, req arena.GoalRequest) arena.RunOutcome
}

// Server is the arena HTTP server
type Server struct {
	options        Options
	server         *http.Server
	rateLimiter    *RateLimiter
	orchestrator   ArenaRunner
	logger         zerolog.Logger
	startTime      time.Time
	isShuttingDown bool
	shutdownMu     sync.RWMutex
	inFlightReqs   sync.WaitGroup
}

// NewServer creates a new arena server
func NewServer(options Options, orchestrator ArenaRunner, logger zerolog.Logger) (*Server, error) {
	if orchestrator == nil {
		return nil, fmt.Errorf("orchestrator is required")
	}

	if options.Port == 0 {
		options.Port = 3001
	}
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}
	if options.RateLimitPerMinute == 0 {
		options.RateLimitPerMinute = 100
	}
	if options.RunTimeout == 0 {
		options.RunTimeout = 3 * time.Minute
	}

	return &Server{
		options:      options,
		rateLimiter:  NewRateLimiter(options.RateLimitPerMinute),
		orchestrator: orchestrator,
		logger:       logger,
		startTime:    time.Now(),
	}, nil
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/arena", s.handleArena)
	mux.Handle("/metrics", observability.Handler())

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.options.Host, s.options.Port),
		Handler: mux,
	}

	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Msg("Starting arena server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start arena server: %w", err)
	}

	return nil
}

// Stop gracefully stops the server, draining in-flight requests
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info().Msg("Shutting down arena server")

	done := make(chan struct{})
	go func() {
		s.inFlightReqs.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("All in-flight requests completed")
	case <-time.After(30 * time.Second):
		s.logger.Warn().Msg("Shutdown timeout reached, forcing close")
	}

	s.rateLimiter.Stop()

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown arena server: %w", err)
	}

	s.logger.Info().Msg("Arena server stopped")
	return nil
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":    "ok",
		"uptime":    time.Since(s.startTime).Seconds(),
		"timestamp": time.Now().UnixMilli(),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleArena handles one arena run request
func (s *Server) handleArena(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.shutdownMu.RLock()
	if s.isShuttingDown {
		s.shutdownMu.RUnlock()
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}
	s.shutdownMu.RUnlock()

	s.inFlightReqs.Add(1)
	defer s.inFlightReqs.Done()

	ip := s.getClientIP(r)

	if !s.rateLimiter.CheckLimit(ip) {
		retryAfter := s.rateLimiter.GetRetryAfter(ip)
		s.logger.Warn().
			Str("ip", ip).
			Int("retryAfter", retryAfter).
			Msg("Rate limit exceeded")

		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	rawBody, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read request body")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if fieldErrors, err := validateArenaRequest(rawBody); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "invalid request",
			"fields": fieldErrors,
		})
		return
	}

	var req arena.GoalRequest
	if err := json.Unmarshal(rawBody, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "malformed JSON body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.options.RunTimeout)
	defer cancel()

	outcome := s.orchestrator.Run(ctx, req)

	// A failed run is a domain outcome, not a transport error
	writeJSON(w, http.StatusOK, outcome)
}

// getClientIP extracts the client IP, honoring proxy headers
func (s *Server) getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
