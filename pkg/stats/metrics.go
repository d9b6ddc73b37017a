// Package stats exposes prometheus instrumentation for the poller, the query
// cache and the upstream clients.
package stats

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	PollCycles      prometheus.Counter
	PollFailures    prometheus.Counter
	RecordsDropped  prometheus.Counter
	TrackedVehicles prometheus.Gauge

	CacheHits   *prometheus.CounterVec // class label
	CacheMisses *prometheus.CounterVec // class label

	UpstreamRequests *prometheus.CounterVec // target label: digitransit|siri
	UpstreamFailures *prometheus.CounterVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		PollCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nysselive_poll_cycles_total",
			Help: "Total realtime poll cycles attempted.",
		}),
		PollFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nysselive_poll_failures_total",
			Help: "Total realtime poll cycles that failed and retained the previous snapshot set.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nysselive_records_dropped_total",
			Help: "Total malformed vehicle records dropped from poll batches.",
		}),
		TrackedVehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nysselive_tracked_vehicles",
			Help: "Number of vehicles in the latest committed snapshot set.",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nysselive_cache_hits_total",
			Help: "Query cache hits.",
		}, []string{"class"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nysselive_cache_misses_total",
			Help: "Query cache misses that reached the upstream.",
		}, []string{"class"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nysselive_upstream_requests_total",
			Help: "Requests issued to upstream services.",
		}, []string{"target"}),
		UpstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nysselive_upstream_failures_total",
			Help: "Upstream requests that failed or timed out.",
		}, []string{"target"}),
	}

	reg.MustRegister(
		c.PollCycles, c.PollFailures, c.RecordsDropped, c.TrackedVehicles,
		c.CacheHits, c.CacheMisses,
		c.UpstreamRequests, c.UpstreamFailures,
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
