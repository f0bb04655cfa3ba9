package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks implements every hook interface on top of Prometheus
// collectors registered with a single registerer.
type PrometheusHooks struct {
	StageDuration *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec
	TreeNodes     *prometheus.GaugeVec
	TreeDepth     *prometheus.GaugeVec
	SkippedRefs   *prometheus.CounterVec

	CacheRequests *prometheus.CounterVec
	CacheBytes    *prometheus.CounterVec

	HTTPRequestsInFlight prometheus.Gauge
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

var (
	_ BuildHooks = (*PrometheusHooks)(nil)
	_ CacheHooks = (*PrometheusHooks)(nil)
	_ HTTPHooks  = (*PrometheusHooks)(nil)
)

// NewPrometheusHooks creates and registers the collectors with reg.
// Registering twice with the same registerer panics.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "godswood_build_stage_seconds",
			Help:    "Time spent in each build stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		StageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "godswood_build_stage_errors_total",
			Help: "Build stages that returned an error.",
		}, []string{"stage"}),
		TreeNodes: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "godswood_tree_nodes",
			Help: "Nodes grouped by depth in the last build of each tree.",
		}, []string{"tree"}),
		TreeDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "godswood_tree_depth",
			Help: "Deepest level of each tree.",
		}, []string{"tree"}),
		SkippedRefs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "godswood_skipped_references_total",
			Help: "Dangling references skipped while assigning depths.",
		}, []string{"tree"}),

		CacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "godswood_cache_requests_total",
			Help: "Cache lookups by key type and result.",
		}, []string{"key_type", "result"}),
		CacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "godswood_cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}, []string{"key_type"}),

		HTTPRequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "godswood_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed.",
		}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "godswood_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "godswood_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (h *PrometheusHooks) stage(name string, d time.Duration, err error) {
	h.StageDuration.WithLabelValues(name).Observe(d.Seconds())
	if err != nil {
		h.StageErrors.WithLabelValues(name).Inc()
	}
}

func (h *PrometheusHooks) OnParseComplete(_ context.Context, _ string, d time.Duration, err error) {
	h.stage("parse", d, err)
}

func (h *PrometheusHooks) OnIndexComplete(_ context.Context, tree string, nodeCount, depth, skipped int, d time.Duration, err error) {
	h.stage("index", d, err)
	if err != nil {
		return
	}
	h.TreeNodes.WithLabelValues(tree).Set(float64(nodeCount))
	h.TreeDepth.WithLabelValues(tree).Set(float64(depth))
	if skipped > 0 {
		h.SkippedRefs.WithLabelValues(tree).Add(float64(skipped))
	}
}

func (h *PrometheusHooks) OnScaleComplete(_ context.Context, _ string, _ int, d time.Duration, err error) {
	h.stage("scale", d, err)
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheRequests.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheRequests.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string) {
	h.HTTPRequestsInFlight.Inc()
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.HTTPRequestsInFlight.Dec()
	code := strconv.Itoa(status)
	h.HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
	h.HTTPRequestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}
