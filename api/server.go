package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"contractchunk/pipeline"
	"contractchunk/pkg/chunking"
	"contractchunk/summary"

	"go.uber.org/zap"
)

// Options configures the API server.
type Options struct {
	Port           int
	MaxUploadBytes int64
	Strategy       string
	Settings       chunking.Settings
}

// Server represents the API server
type Server struct {
	pipeline   *pipeline.Pipeline
	summarizer summary.Summarizer
	opts       Options
	logger     *zap.Logger
}

// NewServer creates a new API server
func NewServer(p *pipeline.Pipeline, s summary.Summarizer, opts Options, logger *zap.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		pipeline:   p,
		summarizer: s,
		opts:       opts,
		logger:     logger,
	}
}

// Handler returns the routes served by the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/chunk", s.ChunkHandler)
	mux.HandleFunc("/api/summarize", s.SummarizeHandler)

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.opts.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", zap.Int("port", s.opts.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down API server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
