package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/nao1215/sitescope/internal/assistant"
	"github.com/nao1215/sitescope/internal/model"
)

const (
	// maxRequestBody bounds inbound JSON and form bodies. analysis_data
	// carries the full page HTML, so this is generous.
	maxRequestBody = 16 << 20

	limiterIdle        = 5 * time.Minute
	limiterSweep       = time.Minute
	defaultReadTimeout = 15 * time.Second
	// Analysis plus the assistant bound is well under this.
	defaultWriteTimeout = 2 * time.Minute
)

var errRateLimited = errors.New("rate limit exceeded")

// Analyzer runs one page analysis. pipeline.Orchestrator implements it.
type Analyzer interface {
	Analyze(ctx context.Context, target string) (*model.AnalysisReport, error)
}

// Assistant answers questions about a report. assistant.Client implements it.
type Assistant interface {
	Ask(ctx context.Context, req assistant.Request) *assistant.Reply
}

// Config holds the server's collaborators and limits.
type Config struct {
	Analyzer  Analyzer
	Assistant Assistant

	// Metrics serves /metrics. Nil disables the route.
	Metrics http.Handler

	Logger *slog.Logger

	// RateLimit is requests per second per client IP on the costly
	// endpoints; 0 disables limiting.
	RateLimit float64
	RateBurst int
}

// Server routes requests to the analyzer and the assistant.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	mux      *http.ServeMux
	handler  http.Handler
	limiters *rateLimiterMap
	view     *view
}

// NewServer creates a Server. It panics only if the embedded templates are
// malformed.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		mux:      http.NewServeMux(),
		limiters: newRateLimiterMap(limiterIdle),
		view:     mustLoadView(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	app := http.NewServeMux()
	app.HandleFunc("GET /{$}", s.handleIndex)
	app.Handle("POST /{$}", s.withRateLimit(http.HandlerFunc(s.handleIndex)))
	app.Handle("POST /ask_ai", s.withRateLimit(http.HandlerFunc(s.handleAskAI)))
	app.Handle("POST /api/analyze", s.withRateLimit(http.HandlerFunc(s.handleAnalyze)))
	app.HandleFunc("GET /healthz", s.handleHealth)

	// promhttp negotiates its own compression.
	if s.cfg.Metrics != nil {
		s.mux.Handle("GET /metrics", s.cfg.Metrics)
	}
	s.mux.Handle("/", gzhttp.GzipHandler(app))

	// RequestID -> Logging -> routes
	s.handler = withRequestID(s.withLogging(s.mux))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.limiters.cleanupLoop(sweepCtx, limiterSweep)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		serverErrors <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		if closeErr := httpServer.Close(); closeErr != nil {
			return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
		}
		return fmt.Errorf("failed to gracefully shutdown server: %w", err)
	}
	s.logger.Info("server shutdown complete")
	return nil
}
