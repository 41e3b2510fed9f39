// Package server exposes the portfolio's HTTP API: the contact form and the
// mock analytics report.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/starfield/internal/analytics"
	"github.com/san-kum/starfield/internal/config"
	"go.uber.org/zap"
)

const (
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 5 * time.Second
)

type Option func(*Server)

// WithRand sets the source for analytics reports. It must be safe for
// concurrent use.
func WithRand(r analytics.Rand) Option { return func(s *Server) { s.rng = r } }

// WithIDs replaces the generator for contact submission ids.
func WithIDs(fn func() string) Option { return func(s *Server) { s.newID = fn } }

type Server struct {
	cfg   config.ServerConfig
	log   *zap.Logger
	rng   analytics.Rand
	newID func() string
	mux   *http.ServeMux
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

func New(cfg config.ServerConfig, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:   cfg,
		log:   log,
		rng:   globalRand{},
		newID: uuid.NewString,
		mux:   http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mux.HandleFunc("POST /api/contact", s.handleContact)
	s.mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	return s
}

// Handler returns the API with request logging applied.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully. It
// returns nil after a clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.log.Info("server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// ContactRequest is a contact form submission.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.log.Debug("contact: bad body", zap.Error(err))
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	if req.Name == "" || req.Email == "" || req.Message == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "All fields are required"})
		return
	}

	id := s.newID()
	// submissions are logged, never stored
	s.log.Info("contact form submission",
		zap.String("id", id),
		zap.String("name", req.Name),
		zap.String("email", req.Email),
		zap.Int("message_len", len(req.Message)))

	s.writeJSON(w, http.StatusOK, ContactResponse{
		Success: true,
		Message: "Message sent successfully!",
		ID:      id,
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("range")
	if period == "" {
		period = analytics.DefaultRange
	}
	s.writeJSON(w, http.StatusOK, analytics.Generate(s.rng, period))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// headers are out; the client has most likely gone away
		s.log.Debug("write response", zap.Int("status", status), zap.Error(err))
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("took", time.Since(start)))
	})
}
