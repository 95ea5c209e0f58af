package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Variant:  VariantFull,
		HTTPPort: 8000,
		LogLevel: "info",
		Download: DownloadConfig{
			Dir:           "downloads",
			MaxParallel:   2,
			QualityPreset: "best",
		},
		Extract: ExtractConfig{
			InfoBackend:     BackendKKDai,
			DownloadBackend: BackendYTGet,
		},
		Cache:     CacheConfig{Backend: CacheMemory, TTL: time.Minute},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 10},
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Variant != VariantFull {
		t.Errorf("Expected variant %s, got %s", VariantFull, cfg.Variant)
	}
	if cfg.HTTPPort != 8000 {
		t.Errorf("Expected HTTP port 8000, got %d", cfg.HTTPPort)
	}
	if cfg.Download.Dir != "downloads" {
		t.Errorf("Expected download dir 'downloads', got '%s'", cfg.Download.Dir)
	}
	if cfg.Download.MaxParallel != 2 {
		t.Errorf("Expected max parallel 2, got %d", cfg.Download.MaxParallel)
	}
	if !cfg.Download.KeepFiles {
		t.Error("Expected files to be kept by default")
	}
	if cfg.Extract.InfoBackend != BackendKKDai {
		t.Errorf("Expected info backend %s, got %s", BackendKKDai, cfg.Extract.InfoBackend)
	}
	if cfg.Extract.DownloadBackend != BackendYTGet {
		t.Errorf("Expected download backend %s, got %s", BackendYTGet, cfg.Extract.DownloadBackend)
	}
	if cfg.Extract.PlaylistLimit != 500 {
		t.Errorf("Expected playlist limit 500, got %d", cfg.Extract.PlaylistLimit)
	}
	if !cfg.IsFull() {
		t.Error("Expected full variant by default")
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Expected cache TTL 10m, got %s", cfg.Cache.TTL)
	}
	if cfg.GetQualityPreset() != QualityBest {
		t.Errorf("Expected preset best, got %s", cfg.GetQualityPreset())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("YTS_VARIANT", "minimal")
	t.Setenv("YTS_HTTP_PORT", "9001")
	t.Setenv("YTS_DOWNLOAD_DIR", "/srv/media")
	t.Setenv("YTS_DOWNLOAD_BACKEND", "ytdlp")
	t.Setenv("YTS_QUALITY", "audio")
	t.Setenv("YTS_CACHE", "none")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.IsFull() {
		t.Error("Expected minimal variant")
	}
	if cfg.GetHTTPAddr() != ":9001" {
		t.Errorf("Expected addr :9001, got %s", cfg.GetHTTPAddr())
	}
	if cfg.Download.Dir != "/srv/media" {
		t.Errorf("Expected download dir /srv/media, got %s", cfg.Download.Dir)
	}
	if cfg.Extract.DownloadBackend != BackendYTDLP {
		t.Errorf("Expected download backend ytdlp, got %s", cfg.Extract.DownloadBackend)
	}
	if cfg.GetQualityPreset() != QualityAudio {
		t.Errorf("Expected preset audio, got %s", cfg.GetQualityPreset())
	}
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	t.Setenv("YTS_MAX_PARALLEL", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for max parallel 0, got nil")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("Expected 'invalid config' in error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad variant", func(c *Config) { c.Variant = "fancy" }, "invalid variant"},
		{"bad http port", func(c *Config) { c.HTTPPort = 0 }, "invalid HTTP port"},
		{"bad grpc port", func(c *Config) { c.GRPCPort = 70000 }, "invalid gRPC port"},
		{"same ports", func(c *Config) { c.GRPCPort = 8000 }, "must differ"},
		{"empty dir", func(c *Config) { c.Download.Dir = "" }, "download directory"},
		{"too many parallel", func(c *Config) { c.Download.MaxParallel = 11 }, "max parallel"},
		{"bad preset", func(c *Config) { c.Download.QualityPreset = "8k" }, "quality preset"},
		{"ytdlp cannot inspect", func(c *Config) { c.Extract.InfoBackend = BackendYTDLP }, "info backend"},
		{"bad download backend", func(c *Config) { c.Extract.DownloadBackend = "curl" }, "download backend"},
		{"negative bps", func(c *Config) { c.Extract.RateLimitBps = -1 }, "extract rate limit"},
		{"negative playlist limit", func(c *Config) { c.Extract.PlaylistLimit = -1 }, "playlist limit"},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheRedis }, "redis address"},
		{"bad cache", func(c *Config) { c.Cache.Backend = "memcached" }, "cache backend"},
		{"negative rps", func(c *Config) { c.RateLimit.RPS = -1 }, "rate limit"},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, "burst"},
		{"rate limit disabled", func(c *Config) { c.RateLimit = RateLimitConfig{} }, ""},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := validConfig()
			test.mutate(cfg)
			err := cfg.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing '%s', got nil", test.wantErr)
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Expected error containing '%s', got '%v'", test.wantErr, err)
			}
		})
	}
}

func TestParseQualityPreset(t *testing.T) {
	tests := []struct {
		input    string
		expected QualityPreset
		ok       bool
	}{
		{"", QualityMedium, true},
		{"best", QualityBest, true},
		{" Audio ", QualityAudio, true},
		{"medium", QualityMedium, true},
		{"ultra", QualityMedium, false},
	}

	for _, test := range tests {
		preset, ok := ParseQualityPreset(test.input, QualityMedium)
		if preset != test.expected || ok != test.ok {
			t.Errorf("ParseQualityPreset(%q) = (%s, %v), expected (%s, %v)",
				test.input, preset, ok, test.expected, test.ok)
		}
	}
}

func TestQualityPresetHelpers(t *testing.T) {
	if QualityMedium.MaxHeight() != MediumMaxHeight {
		t.Errorf("Expected medium max height %d, got %d", MediumMaxHeight, QualityMedium.MaxHeight())
	}
	if QualityBest.MaxHeight() != 0 {
		t.Errorf("Expected best to be unlimited, got %d", QualityBest.MaxHeight())
	}
	if !QualityAudio.IsAudio() || QualityBest.IsAudio() {
		t.Error("Expected only the audio preset to be audio")
	}
}
