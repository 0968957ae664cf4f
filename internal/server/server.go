// Package server exposes the extraction pipeline over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/swatch/internal/extract"
)

const (
	// DefaultMaxUploadBytes caps a /process-image request body.
	DefaultMaxUploadBytes int64 = 10 << 20

	// DefaultReadTimeout bounds reading a whole request.
	DefaultReadTimeout = 30 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Extractor turns an encoded image into a Record.
type Extractor interface {
	ExtractBytes(ctx context.Context, data []byte) (*extract.Record, error)
}

// Options configures a Server.
type Options struct {
	MaxUploadBytes int64
	// RateLimit is the sustained requests per second across all clients.
	// Zero disables limiting.
	RateLimit   float64
	RateBurst   int
	ReadTimeout time.Duration
	Logger      hclog.Logger
}

// Server routes HTTP requests to an Extractor.
type Server struct {
	engine    *gin.Engine
	extractor Extractor
	opts      Options
	logger    hclog.Logger
}

// New builds a Server and registers its routes.
func New(extractor Extractor, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	s := &Server{
		engine:    gin.New(),
		extractor: extractor,
		opts:      opts,
		logger:    opts.Logger,
	}
	s.engine.MaxMultipartMemory = opts.MaxUploadBytes
	s.engine.Use(gin.Recovery(), requestID(), requestLogger(s.logger), cors())
	if opts.RateLimit > 0 {
		s.engine.Use(rateLimit(opts.RateLimit, opts.RateBurst))
	}

	s.engine.GET("/", s.welcome)
	s.engine.GET("/health", s.health)
	s.engine.POST("/process-image", s.processImage)
	return s
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
