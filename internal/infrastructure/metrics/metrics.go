package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the service's Prometheus collectors
type Registry struct {
	reg *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	DetailsSkipped   prometheus.Counter
	ProductsRendered prometheus.Counter
}

// NewRegistry creates a registry with all collectors registered
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cjfeed_http_requests_total",
		Help: "HTTP requests served, by route and status code.",
	}, []string{"method", "route", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cjfeed_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	upstreamRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cjfeed_upstream_requests_total",
		Help: "Calls made to the CJ API, by endpoint and status code.",
	}, []string{"endpoint", "status"})
	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cjfeed_upstream_request_duration_seconds",
		Help:    "CJ API call latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	detailsSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cjfeed_detail_skipped_total",
		Help: "Product detail lookups dropped from the feed after a non-success response.",
	})
	productsRendered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cjfeed_products_rendered_total",
		Help: "Products written into served feeds.",
	})

	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests, httpDuration, upstreamRequests, upstreamDuration, detailsSkipped, productsRendered,
	)

	return &Registry{
		reg:              r,
		HTTPRequests:     httpRequests,
		HTTPDuration:     httpDuration,
		UpstreamRequests: upstreamRequests,
		UpstreamDuration: upstreamDuration,
		DetailsSkipped:   detailsSkipped,
		ProductsRendered: productsRendered,
	}
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry, mainly for tests
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveUpstream records one CJ API call. status is 0 when no response arrived.
func (r *Registry) ObserveUpstream(endpoint string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	r.UpstreamRequests.WithLabelValues(endpoint, label).Inc()
	r.UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// Middleware records request count and latency for every route
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
