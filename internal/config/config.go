package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Server variants
const (
	VariantMinimal = "minimal"
	VariantFull    = "full"
)

// Extraction backends
const (
	BackendYTGet = "ytget"
	BackendKKDai = "kkdai"
	BackendYTDLP = "ytdlp"
)

// Info cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Limits for parallel asynchronous downloads
const (
	MinParallel = 1
	MaxParallel = 10
)

// Config holds all configuration for yt-server
type Config struct {
	// Server configuration
	Variant  string `env:"YTS_VARIANT" envDefault:"full"`
	HTTPPort int    `env:"YTS_HTTP_PORT" envDefault:"8000"`
	GRPCPort int    `env:"YTS_GRPC_PORT" envDefault:"0"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Download  DownloadConfig
	Extract   ExtractConfig
	Cache     CacheConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Timeouts  TimeoutConfig
}

// DownloadConfig controls where and how files are stored
type DownloadConfig struct {
	Dir           string `env:"YTS_DOWNLOAD_DIR" envDefault:"downloads"`
	MaxParallel   int    `env:"YTS_MAX_PARALLEL" envDefault:"2"`
	QualityPreset string `env:"YTS_QUALITY" envDefault:"best"`
	// KeepFiles leaves served files on disk, matching a plain download folder
	KeepFiles  bool   `env:"YTS_KEEP_FILES" envDefault:"true"`
	FFmpegPath string `env:"YTS_FFMPEG_PATH" envDefault:"ffmpeg"`
}

// ExtractConfig selects and tunes the media library backends
type ExtractConfig struct {
	InfoBackend     string        `env:"YTS_INFO_BACKEND" envDefault:"kkdai"`
	DownloadBackend string        `env:"YTS_DOWNLOAD_BACKEND" envDefault:"ytget"`
	YTDLPBinary     string        `env:"YTS_YTDLP_BINARY" envDefault:"yt-dlp"`
	HTTPTimeout     time.Duration `env:"YTS_EXTRACT_HTTP_TIMEOUT" envDefault:"30s"`
	RateLimitBps    int64         `env:"YTS_EXTRACT_RATE_LIMIT_BPS" envDefault:"0"`
	ProxyURL        string        `env:"YTS_EXTRACT_PROXY"`
	// PlaylistLimit caps playlist lookups, 0 means no cap
	PlaylistLimit   int           `env:"YTS_PLAYLIST_LIMIT" envDefault:"500"`
}

// CacheConfig controls the video info cache
type CacheConfig struct {
	Backend string        `env:"YTS_CACHE" envDefault:"memory"`
	TTL     time.Duration `env:"YTS_CACHE_TTL" envDefault:"10m"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// RateLimitConfig holds the token bucket applied to extraction routes.
// A zero RPS disables limiting.
type RateLimitConfig struct {
	RPS   float64 `env:"YTS_RATE_LIMIT_RPS" envDefault:"5"`
	Burst int     `env:"YTS_RATE_LIMIT_BURST" envDefault:"10"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	Download time.Duration `env:"TIMEOUT_DOWNLOAD" envDefault:"600s"`
	Info     time.Duration `env:"TIMEOUT_INFO" envDefault:"60s"`
	Shutdown time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Variant != VariantMinimal && c.Variant != VariantFull {
		return fmt.Errorf("invalid variant: %s (must be minimal or full)", c.Variant)
	}

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	// gRPC is optional, 0 disables it
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}
	if c.GRPCPort != 0 && c.GRPCPort == c.HTTPPort {
		return fmt.Errorf("gRPC port must differ from HTTP port: %d", c.GRPCPort)
	}

	if c.Download.Dir == "" {
		return fmt.Errorf("download directory is required")
	}
	if c.Download.MaxParallel < MinParallel || c.Download.MaxParallel > MaxParallel {
		return fmt.Errorf("max parallel downloads must be between %d and %d, got %d",
			MinParallel, MaxParallel, c.Download.MaxParallel)
	}
	if _, ok := ParseQualityPreset(c.Download.QualityPreset, DefaultQualityPreset); !ok {
		return fmt.Errorf("invalid quality preset: %s", c.Download.QualityPreset)
	}

	switch c.Extract.InfoBackend {
	case BackendYTGet, BackendKKDai:
	default:
		return fmt.Errorf("unsupported info backend: %s (must be ytget or kkdai)", c.Extract.InfoBackend)
	}
	switch c.Extract.DownloadBackend {
	case BackendYTGet, BackendKKDai, BackendYTDLP:
	default:
		return fmt.Errorf("unsupported download backend: %s (must be ytget, kkdai or ytdlp)", c.Extract.DownloadBackend)
	}
	if c.Extract.RateLimitBps < 0 {
		return fmt.Errorf("extract rate limit must not be negative")
	}
	if c.Extract.PlaylistLimit < 0 {
		return fmt.Errorf("playlist limit must not be negative")
	}

	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for redis cache")
		}
	default:
		return fmt.Errorf("unsupported cache backend: %s", c.Cache.Backend)
	}

	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}

// GetQualityPreset returns the configured default preset
func (c *Config) GetQualityPreset() QualityPreset {
	preset, _ := ParseQualityPreset(c.Download.QualityPreset, DefaultQualityPreset)
	return preset
}

// IsFull reports whether the metadata endpoint and the HTML page are served
func (c *Config) IsFull() bool {
	return c.Variant == VariantFull
}
