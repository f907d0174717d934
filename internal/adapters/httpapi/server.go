// Package httpapi serves the observer API: status snapshots, logs, trade
// history, Prometheus metrics and a websocket snapshot stream. With basic auth
// configured it also exposes the run controls.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"argusBot/internal/app"
	"argusBot/internal/ports"
)

// SnapshotSource provides the current bot state.
type SnapshotSource interface {
	Snapshot() app.Snapshot
}

// Config holds HTTP server configuration.
type Config struct {
	Addr           string
	ProductionMode bool
	AllowOrigins   []string      // empty allows all origins
	PushInterval   time.Duration // websocket snapshot period
	Username       string        // basic auth; empty leaves the API open
	Password       string
}

// Server is the observer API.
type Server struct {
	cfg      Config
	router   *gin.Engine
	source   SnapshotSource
	gatherer prometheus.Gatherer
	trades   ports.TradeRepository
	control  Controller
	logger   ports.Logger
}

// NewServer builds the router. A nil gatherer uses the default registry.
func NewServer(cfg Config, source SnapshotSource, gatherer prometheus.Gatherer, logger ports.Logger) *Server {
	if cfg.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.PushInterval <= 0 {
		cfg.PushInterval = 2 * time.Second
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AddAllowHeaders("Authorization")
	router.Use(cors.New(corsConfig))

	s := &Server{cfg: cfg, router: router, source: source, gatherer: gatherer, logger: logger}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	secured := s.router.Group("")
	if s.authEnabled() {
		secured.Use(gin.BasicAuth(gin.Accounts{s.cfg.Username: s.cfg.Password}))
	}
	secured.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	secured.GET("/ws", s.handleWebSocket)

	api := secured.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/symbols/:symbol", s.handleSymbol)
	api.GET("/logs", s.handleLogs)
	api.GET("/trades", s.handleTrades)
	api.GET("/trades/summary", s.handleTradeSummary)

	control := api.Group("", s.requireAuth)
	control.POST("/control/pause", s.handlePause)
	control.POST("/control/resume", s.handleResume)
	control.POST("/risk", s.handleRisk)
}

func (s *Server) authEnabled() bool {
	return s.cfg.Username != "" && s.cfg.Password != ""
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "HTTP API listening", map[string]interface{}{"addr": s.cfg.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.source.Snapshot()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "running": snap.Running, "time": time.Now().UTC()})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.source.Snapshot())
}

func (s *Server) handleSymbol(c *gin.Context) {
	symbol := c.Param("symbol")
	for _, v := range s.source.Snapshot().Symbols {
		if v.Symbol == symbol {
			c.JSON(http.StatusOK, v)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol " + symbol})
}

func (s *Server) handleLogs(c *gin.Context) {
	logs := s.source.Snapshot().Logs
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		if limit < len(logs) {
			logs = logs[len(logs)-limit:]
		}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
