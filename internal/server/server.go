// Package server exposes trimming over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/menta2k/quickcrop/internal/config"
	"github.com/menta2k/quickcrop/pkg/batch"
	"github.com/menta2k/quickcrop/pkg/detection"
	"github.com/menta2k/quickcrop/pkg/processing"
)

// Server serves the trim, box and batch endpoints
type Server struct {
	cfg       *config.Config
	detector  *detection.Detector
	runner    *batch.Runner
	processor *processing.Processor
	logger    *zap.Logger
	version   string
	engine    *gin.Engine
}

// New creates a server and registers its routes. The gin mode must be set
// by the caller before New.
func New(cfg *config.Config, detector *detection.Detector, runner *batch.Runner, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	processor := processing.NewProcessor()
	if level, err := processing.ParseCompression(cfg.Output.Compression); err == nil {
		processor = processing.NewProcessorWithCompression(level)
	}

	s := &Server{
		cfg:       cfg,
		detector:  detector,
		runner:    runner,
		processor: processor,
		logger:    logger,
		version:   version,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Logger(logger))
	r.MaxMultipartMemory = cfg.Server.MaxUpload

	r.GET("/health", s.Health)
	r.GET("/version", s.Version)

	api := r.Group("/api/v1")
	{
		api.POST("/trim", s.Trim)
		api.POST("/box", s.Box)
		api.POST("/batch", s.Batch)
	}

	s.engine = r
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Port,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("port", s.cfg.Server.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
