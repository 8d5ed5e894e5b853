// Package httpapi serves the document service over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"smartdoc/internal/domain"
	"smartdoc/internal/logger"
	"smartdoc/internal/metrics"
	"smartdoc/internal/service"
)

// DocumentService is the subset of the service the HTTP layer calls.
type DocumentService interface {
	Upload(ctx context.Context, filename string, data []byte) (int, error)
	List() []domain.DocumentInfo
	Info(id int) (domain.DocumentInfo, error)
	Summary(ctx context.Context, id int) (string, error)
	Ask(ctx context.Context, id int, question string) (service.Answer, error)
	Chunks(id int) ([]string, error)
}

// Config configures the HTTP server.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	CORSOrigins    []string
	Development    bool
}

// Server is the SmartDoc HTTP server.
type Server struct {
	config  Config
	router  *gin.Engine
	server  *http.Server
	svc     DocumentService
	metrics *metrics.Manager
	log     *zap.Logger
}

// New builds the router with middleware and routes. m may be nil.
func New(cfg Config, svc DocumentService, m *metrics.Manager, log *zap.Logger) *Server {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	s := &Server{
		config:  cfg,
		router:  gin.New(),
		svc:     svc,
		metrics: m,
		log:     logger.OrNop(log),
	}
	s.router.MaxMultipartMemory = cfg.MaxUploadBytes
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(loggingMiddleware(s.log))
	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(corsMiddleware(s.config.CORSOrigins))
	}
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware())
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.healthCheck)
	if s.metrics != nil {
		s.router.GET("/metrics", s.metrics.Handler())
	}

	h := &documentHandler{svc: s.svc, maxUpload: s.config.MaxUploadBytes}
	s.router.POST("/upload", h.Upload)
	s.router.GET("/documents", h.List)
	doc := s.router.Group("/document/:id")
	{
		doc.GET("", h.Info)
		doc.GET("/summary", h.Summary)
		doc.POST("/query", h.Query)
		doc.GET("/chunks", h.Chunks)
	}
}

// Router returns the underlying Gin router.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start listens on the configured address until Stop is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("http server starting", zap.String("addr", s.config.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.log.Info("http server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"documents": len(s.svc.List()),
	})
}
