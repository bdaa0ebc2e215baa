package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vertextoedge/node-disk-monitor/internal/port"
	"github.com/vertextoedge/node-disk-monitor/internal/service/monitor"
)

// Config contains HTTP server configuration
type Config struct {
	BindAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		BindAddr:     "0.0.0.0:8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server exposes the directory health state over HTTP
type Server struct {
	config         *Config
	logger         *zap.Logger
	server         *http.Server
	dirsHandler    *DirsHandler
	historyHandler *HistoryHandler
}

// New creates a new HTTP server. history may be nil, in which case the
// history endpoint reports that persistence is disabled.
func New(cfg *Config, dirs monitor.Collection, history port.HistoryRepository, registry *prometheus.Registry, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		config: cfg,
		logger: logger,
	}

	s.dirsHandler = NewDirsHandler(dirs, logger)
	s.historyHandler = NewHistoryHandler(history, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.dirsHandler.HandleHealth)
	mux.HandleFunc("/v1/dirs", s.dirsHandler.HandleDirs)
	mux.HandleFunc("/v1/history", s.historyHandler.HandleHistory)
	if registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	s.server = &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      LoggingMiddleware(logger)(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
