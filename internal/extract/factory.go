package extract

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/ytget/yt-server/internal/config"
)

// Backends holds the inspector and fetcher selected by configuration
type Backends struct {
	Inspector     Inspector
	Fetcher       Fetcher
	InspectorName string
	FetcherName   string
}

// New builds the backends named in cfg
func New(cfg config.ExtractConfig) (*Backends, error) {
	client, err := NewHTTPClient(cfg)
	if err != nil {
		return nil, err
	}

	b := &Backends{}

	switch cfg.InfoBackend {
	case config.BackendYTGet:
		y := NewYTGet(client, cfg.RateLimitBps)
		b.Inspector, b.InspectorName = y, y.Name()
	case config.BackendKKDai:
		k := NewKKDai(client)
		b.Inspector, b.InspectorName = k, k.Name()
	default:
		return nil, fmt.Errorf("unsupported info backend: %s", cfg.InfoBackend)
	}

	switch cfg.DownloadBackend {
	case config.BackendYTGet:
		y := NewYTGet(client, cfg.RateLimitBps)
		b.Fetcher, b.FetcherName = y, y.Name()
	case config.BackendKKDai:
		k := NewKKDai(client)
		b.Fetcher, b.FetcherName = k, k.Name()
	case config.BackendYTDLP:
		y := NewYTDLP(cfg.YTDLPBinary, cfg.ProxyURL)
		b.Fetcher, b.FetcherName = y, y.Name()
	default:
		return nil, fmt.Errorf("unsupported download backend: %s", cfg.DownloadBackend)
	}

	return b, nil
}

// NewHTTPClient returns the client shared by the library backends.
// HTTPTimeout bounds the wait for response headers; transfers are bounded by
// the caller's context.
func NewHTTPClient(cfg config.ExtractConfig) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}
	transport.ResponseHeaderTimeout = cfg.HTTPTimeout
	return &http.Client{Transport: transport}, nil
}
