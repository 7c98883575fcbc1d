package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/vfscompress/pkg/chunkcache"
	"github.com/marmos91/vfscompress/pkg/metrics"
)

// cacheMetrics is the Prometheus implementation of chunkcache.Metrics.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
}

func init() {
	metrics.RegisterCacheMetricsConstructor(newCacheMetrics)
}

func newCacheMetrics() chunkcache.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()

	return &cacheMetrics{
		hits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "vfscompress_chunk_cache_hits_total",
			Help: "Total number of chunk cache hits.",
		}),
		misses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "vfscompress_chunk_cache_misses_total",
			Help: "Total number of chunk cache misses.",
		}),
		evictions: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "vfscompress_chunk_cache_evictions_total",
			Help: "Total number of non-empty chunk cache slots evicted to make room for a miss (dirty ones are flushed first).",
		}),
	}
}

func (m *cacheMetrics) RecordHit() {
	if m == nil {
		return
	}
	m.hits.Inc()
}

func (m *cacheMetrics) RecordMiss() {
	if m == nil {
		return
	}
	m.misses.Inc()
}

func (m *cacheMetrics) RecordEviction() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}
