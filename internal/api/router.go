package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wifiwatch/internal/api/middleware"
	"wifiwatch/internal/api/response"
	"wifiwatch/internal/config"
	"wifiwatch/internal/monitor"
	"wifiwatch/internal/version"
)

// NotifyStatus reports the state of the notification channels
type NotifyStatus interface {
	IsEnabled() bool
	Channels() []string
	Health(ctx context.Context) error
}

// Router serves the read-only status API
type Router struct {
	engine   *gin.Engine
	recorder *monitor.Recorder
	notifier NotifyStatus
	logger   *zap.Logger
}

// NewRouter creates and configures a new router. notifier may be nil.
func NewRouter(recorder *monitor.Recorder, notifier NotifyStatus, debug bool, logger *zap.Logger) *Router {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		recorder: recorder,
		notifier: notifier,
		logger:   logger.Named("api"),
	}

	m := middleware.New(r.logger)
	r.engine.Use(m.RequestID())
	r.engine.Use(m.Logger())
	r.engine.Use(m.Recovery())

	r.engine.GET("/healthz", r.healthz)

	v1 := r.engine.Group("/api/v1")
	v1.GET("/status", r.status)
	v1.GET("/version", r.version)
	v1.GET("/notify/health", r.notifyHealth)

	return r
}

// Handler returns the HTTP handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

func (r *Router) healthz(c *gin.Context) {
	snap := r.recorder.Snapshot()
	response.New(c, r.logger).Success(gin.H{
		"status": "ok",
		"uptime": time.Since(snap.StartedAt).Round(time.Second).String(),
		"cycles": snap.TotalCycles,
	})
}

func (r *Router) status(c *gin.Context) {
	response.New(c, r.logger).Success(r.recorder.Snapshot())
}

func (r *Router) version(c *gin.Context) {
	response.New(c, r.logger).Success(version.GetInfo())
}

func (r *Router) notifyHealth(c *gin.Context) {
	resp := response.New(c, r.logger)
	if r.notifier == nil || !r.notifier.IsEnabled() {
		resp.NotFound(errors.New("notifications are disabled"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()
	if err := r.notifier.Health(ctx); err != nil {
		resp.Unavailable(err)
		return
	}
	resp.Success(gin.H{"status": "ok", "channels": r.notifier.Channels()})
}

// Server wraps the HTTP server of the status API
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewServer creates a new status API server
func NewServer(cfg config.APIConfig, router *Router, logger *zap.Logger) *Server {
	return &Server{
		server: &http.Server{
			Addr:              cfg.Address,
			Handler:           router.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger.Named("api"),
	}
}

// Start serves in the background; listen errors are logged
func (s *Server) Start() {
	go func() {
		s.logger.Info("Starting status API", zap.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Status API failed", zap.Error(err))
		}
	}()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown status API: %w", err)
	}
	return nil
}
