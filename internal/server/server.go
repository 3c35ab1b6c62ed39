// Package server exposes the extraction orchestrator over a small REST
// API. Route handlers only validate parameters and shape responses;
// extraction semantics live in the extract package.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"minnow/internal/config"
	"minnow/internal/extract"
)

// Server is the HTTP server for minnow.
type Server struct {
	cfg      *config.Config
	log      *logrus.Logger
	registry *extract.Registry
	orch     *extract.Orchestrator
	engine   *gin.Engine
	httpSrv  *http.Server
}

// New creates a server over the given extractor registry.
func New(cfg *config.Config, log *logrus.Logger, registry *extract.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		registry: registry,
		orch:     extract.NewOrchestrator(registry),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.CustomRecovery(s.recoveryHandler))
	engine.Use(s.requestLogger())
	engine.Use(corsMiddleware())

	engine.GET("/", s.handleDocs)
	engine.GET("/health", s.handleHealth)
	engine.GET("/movie/:id", s.handleMovie)
	engine.GET("/tv/:id", s.handleTV)
	engine.NoRoute(s.handleNotFound)

	s.engine = engine
	return s
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	s.log.WithFields(logrus.Fields{
		"port":    s.cfg.Port,
		"servers": s.registry.Names(),
	}).Info("extractor server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

// recoveryHandler turns an unhandled panic into a structured 500. The
// response carries a generic message plus the panic text, never a
// stack trace or partial internal state.
func (s *Server) recoveryHandler(c *gin.Context, err interface{}) {
	s.log.WithFields(logrus.Fields{
		"path":  c.Request.URL.Path,
		"panic": err,
	}).Error("unhandled panic in request")

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"details": fmt.Sprint(err),
	})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("request")
	}
}

// corsMiddleware allows browser frontends to call the API directly.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
