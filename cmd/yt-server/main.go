package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/ytget/ytdlp/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ytget/yt-server/internal/api/grpc"
	"github.com/ytget/yt-server/internal/api/http"
	"github.com/ytget/yt-server/internal/api/websocket"
	"github.com/ytget/yt-server/internal/cache"
	"github.com/ytget/yt-server/internal/compress"
	"github.com/ytget/yt-server/internal/config"
	"github.com/ytget/yt-server/internal/download"
	"github.com/ytget/yt-server/internal/extract"
	"github.com/ytget/yt-server/internal/metrics"
	"github.com/ytget/yt-server/internal/platform"
)

var (
	// Version is set by build flags
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("starting yt-server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("variant", cfg.Variant))

	downloadsDir, err := platform.ResolveDownloadsDir(cfg.Download.Dir)
	if err != nil {
		logger.Fatal("invalid download directory", zap.Error(err))
	}
	if err := platform.CreateDirectoryIfNotExists(downloadsDir); err != nil {
		logger.Fatal("failed to create download directory", zap.Error(err))
	}
	logger.Info("download directory ready", zap.String("dir", downloadsDir))

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsCollector := metrics.NewCollector(registry)

	// Extraction backends
	backends, err := extract.New(cfg.Extract)
	if err != nil {
		logger.Fatal("failed to create extraction backends", zap.Error(err))
	}
	logger.Info("extraction backends ready",
		zap.String("info", backends.InspectorName),
		zap.String("download", backends.FetcherName))

	// Redis is only needed by the redis cache
	var redisClient *goredis.Client
	if cfg.Cache.Backend == config.CacheRedis {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.Error(err))
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	infoCache, err := cache.New(cfg.Cache, redisClient, logger)
	if err != nil {
		logger.Fatal("failed to create info cache", zap.Error(err))
	}

	// Download service
	downloadSvc := download.NewService(backends.Fetcher, download.Options{
		Dir:            downloadsDir,
		MaxParallel:    cfg.Download.MaxParallel,
		DefaultQuality: cfg.GetQualityPreset(),
		KeepFiles:      cfg.Download.KeepFiles,
		Timeout:        cfg.Timeouts.Download,
		Backend:        backends.FetcherName,
	}, logger)
	downloadSvc.SetCompressor(compress.NewService(cfg.Download.FFmpegPath, logger))
	downloadSvc.SetMetrics(metricsCollector)

	// Playlist lookups go through the ytget library and are only served by the full variant
	var playlists http.PlaylistParser
	if cfg.IsFull() {
		httpClient, err := extract.NewHTTPClient(cfg.Extract)
		if err != nil {
			logger.Fatal("failed to create HTTP client", zap.Error(err))
		}
		parser := platform.NewPlaylistParser(ytdlp.New().WithHTTPClient(httpClient))
		parser.SetTimeout(cfg.Timeouts.Info)
		parser.SetLimit(cfg.Extract.PlaylistLimit)
		playlists = parser
	}

	// Initialize API servers
	wsHandler := websocket.NewHandler(downloadSvc, logger)

	httpServer, err := http.NewServer(&http.Config{
		Addr:           cfg.GetHTTPAddr(),
		Variant:        cfg.Variant,
		DefaultQuality: cfg.GetQualityPreset(),
		InfoTimeout:    cfg.Timeouts.Info,
		RateLimit:      cfg.RateLimit,
		Downloads:      downloadSvc,
		Inspector:      backends.Inspector,
		InspectorName:  backends.InspectorName,
		Cache:          infoCache,
		Playlists:      playlists,
		TaskStream:     wsHandler.HandleTaskStream,
		Metrics:        metricsCollector,
		Gatherer:       registry,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal("failed to create HTTP server", zap.Error(err))
	}

	var grpcServer *grpc.Server
	if cfg.GRPCPort != 0 {
		grpcServer, err = grpc.NewServer(&grpc.Config{
			Addr:   cfg.GetGRPCAddr(),
			Logger: logger,
		})
		if err != nil {
			logger.Fatal("failed to create gRPC server", zap.Error(err))
		}
	}

	// Start servers
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Start(); err != nil {
				logger.Fatal("gRPC server failed", zap.Error(err))
			}
		}()
	}

	logger.Info("yt-server started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.Int("max_parallel", cfg.Download.MaxParallel))

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if grpcServer != nil {
		if err := grpcServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("gRPC server shutdown error", zap.Error(err))
		}
	}

	if err := downloadSvc.Close(shutdownCtx); err != nil {
		logger.Error("download service shutdown error", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}

	logger.Info("yt-server shut down complete")
}

// initLogger initializes the logger based on log level
func initLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	return logger
}
