package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ytget/yt-server/internal/cache"
	"github.com/ytget/yt-server/internal/config"
	"github.com/ytget/yt-server/internal/download"
	"github.com/ytget/yt-server/internal/extract"
	"github.com/ytget/yt-server/internal/metrics"
	"github.com/ytget/yt-server/internal/model"
	"github.com/ytget/yt-server/internal/ui"
)

// PlaylistParser resolves playlist URLs
type PlaylistParser interface {
	ParsePlaylist(ctx context.Context, url string) (*model.Playlist, error)
}

// Metrics receives HTTP level metrics
type Metrics interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordInfoLookup(backend, result string)
	RecordCacheLookup(hit bool)
}

type nopMetrics struct{}

func (nopMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}
func (nopMetrics) RecordInfoLookup(string, string)                      {}
func (nopMetrics) RecordCacheLookup(bool)                               {}

// Server represents the HTTP API server
type Server struct {
	router *gin.Engine
	server *http.Server

	variant        string
	defaultQuality config.QualityPreset
	infoTimeout    time.Duration

	downloads     download.Downloader
	inspector     extract.Inspector
	inspectorName string
	cache         cache.Cache
	playlists     PlaylistParser
	taskStream    gin.HandlerFunc
	localization  *ui.Localization
	limiter       *rate.Limiter
	metrics       Metrics
	gatherer      prometheus.Gatherer
	logger        *zap.Logger
}

// Config holds HTTP server configuration
type Config struct {
	Addr           string
	Variant        string
	DefaultQuality config.QualityPreset
	InfoTimeout    time.Duration
	RateLimit      config.RateLimitConfig

	Downloads     download.Downloader
	Inspector     extract.Inspector
	InspectorName string
	Cache         cache.Cache
	Playlists     PlaylistParser
	// TaskStream serves GET /api/v1/tasks/:id/ws when set
	TaskStream gin.HandlerFunc
	Metrics    Metrics
	Gatherer   prometheus.Gatherer
	Logger     *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		variant:        cfg.Variant,
		defaultQuality: cfg.DefaultQuality,
		infoTimeout:    cfg.InfoTimeout,
		downloads:      cfg.Downloads,
		inspector:      cfg.Inspector,
		inspectorName:  cfg.InspectorName,
		cache:          cfg.Cache,
		playlists:      cfg.Playlists,
		taskStream:     cfg.TaskStream,
		localization:   ui.NewLocalization(),
		metrics:        cfg.Metrics,
		gatherer:       cfg.Gatherer,
		logger:         cfg.Logger,
	}
	if s.variant == "" {
		s.variant = config.VariantFull
	}
	if s.defaultQuality == "" {
		s.defaultQuality = config.DefaultQualityPreset
	}
	if s.cache == nil {
		s.cache = cache.None{}
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if cfg.RateLimit.RPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.logger, s.metrics))
	router.Use(corsMiddleware())
	s.router = router

	if s.variant == config.VariantFull {
		tmpl, err := ui.Templates()
		if err != nil {
			return nil, err
		}
		router.SetHTMLTemplate(tmpl)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// Metrics
	s.router.GET("/metrics", gin.WrapH(metrics.Handler(s.gatherer)))

	limited := s.rateLimit()

	switch s.variant {
	case config.VariantMinimal:
		s.router.GET("/download", limited, s.handleDownload)
	default:
		s.router.GET("/", s.handleIndex)
		s.router.StaticFS("/static", ui.StaticFS())
		s.router.GET("/get_video_info", limited, s.handleVideoInfo)
		s.router.GET("/download", limited, s.handleDownload)
		s.router.GET("/get_playlist_info", limited, s.handlePlaylistInfo)
	}

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/tasks", limited, s.handleCreateTask)
		v1.GET("/tasks", s.handleListTasks)
		v1.GET("/tasks/:id", s.handleGetTask)
		v1.POST("/tasks/:id/stop", s.handleStopTask)
		v1.DELETE("/tasks/:id", s.handleRemoveTask)
		v1.GET("/tasks/:id/file", s.handleTaskFile)
		if s.taskStream != nil {
			v1.GET("/tasks/:id/ws", s.taskStream)
		}
	}
}

// Handler returns the root handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.String("addr", s.server.Addr),
		zap.String("variant", s.variant))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}
