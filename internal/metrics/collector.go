// Package metrics exposes yt-server counters and histograms to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Results used as label values
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)

// Collector records yt-server metrics on a Prometheus registerer
type Collector struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	downloads        *prometheus.CounterVec
	downloadDuration *prometheus.HistogramVec
	infoLookups      *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	activeTasks      prometheus.Gauge
}

// NewCollector creates a collector registered on reg. A nil reg uses the
// default Prometheus registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ytserver_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ytserver_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"route"},
		),
		downloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ytserver_downloads_total",
				Help: "Total number of downloads by backend and result",
			},
			[]string{"backend", "result"},
		),
		downloadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ytserver_download_duration_seconds",
				Help:    "Download duration in seconds",
				Buckets: []float64{1, 2, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"backend"},
		),
		infoLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ytserver_info_lookups_total",
				Help: "Total number of video info lookups by backend and result",
			},
			[]string{"backend", "result"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ytserver_cache_lookups_total",
				Help: "Total number of info cache lookups",
			},
			[]string{"result"},
		),
		activeTasks: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ytserver_active_tasks",
				Help: "Number of asynchronous downloads holding a worker slot",
			},
		),
	}
}

// RecordHTTPRequest records a served HTTP request
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordDownload records a finished download. result is ResultSuccess or an
// error class.
func (c *Collector) RecordDownload(backend, result string, duration time.Duration) {
	c.downloads.WithLabelValues(backend, result).Inc()
	c.downloadDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// RecordInfoLookup records a metadata lookup
func (c *Collector) RecordInfoLookup(backend, result string) {
	c.infoLookups.WithLabelValues(backend, result).Inc()
}

// RecordCacheLookup records an info cache hit or miss
func (c *Collector) RecordCacheLookup(hit bool) {
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// SetActiveTasks sets the number of running asynchronous downloads
func (c *Collector) SetActiveTasks(n int) {
	c.activeTasks.Set(float64(n))
}

// Handler returns the scrape handler for gatherer. A nil gatherer uses the
// default Prometheus gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
