// Package ui serves the upload dashboard: two file inputs, one rendered
// impact report.
package ui

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"adimpact/app"
	"adimpact/internal/config"
	"adimpact/internal/logging"
	"adimpact/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Server is the dashboard web server
type Server struct {
	router    *gin.Engine
	service   *app.ReportService
	templates *template.Template
	cfg       config.ServerConfig
}

// NewServer creates the dashboard server and registers its routes
func NewServer(cfg config.ServerConfig, service *app.ReportService) (*Server, error) {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		service:   service,
		templates: templates,
		cfg:       cfg,
	}
	s.router.MaxMultipartMemory = s.maxUploadBytes()

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) maxUploadBytes() int64 {
	return int64(s.cfg.MaxUploadMB) << 20
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger())
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.POST("/report", middleware.LimitBody(s.maxUploadBytes()), s.handleReport)
	s.router.GET("/healthz", s.handleHealth)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("dashboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Info().Msg("dashboard shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
