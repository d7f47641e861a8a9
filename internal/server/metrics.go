package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the Prometheus instruments for one router. Each router
// gets its own registry so tests can build routers independently.
type metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	genRuns   prometheus.Counter
	genBlocks prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planverk_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planverk_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		genRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planverk_schedule_generations_total",
			Help: "Completed schedule generation runs.",
		}),
		genBlocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "planverk_schedule_blocks",
			Help: "Production blocks in the current schedule.",
		}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.genRuns, m.genBlocks)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// recordGeneration updates the schedule gauges after a generation run.
func (m *metrics) recordGeneration(blocks int) {
	m.genRuns.Inc()
	m.genBlocks.Set(float64(blocks))
}
