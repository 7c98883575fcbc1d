package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/vfscompress/pkg/metrics"
)

// codecMetrics is the Prometheus implementation of metrics.CodecMetrics.
type codecMetrics struct {
	compressOps      prometheus.Counter
	decompressOps    prometheus.Counter
	compressedBytes  prometheus.Histogram
	origBytes        prometheus.Histogram
	compressionRatio prometheus.Histogram
}

func init() {
	metrics.RegisterCodecMetricsConstructor(newCodecMetrics)
}

func newCodecMetrics() metrics.CodecMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()

	sizeBuckets := []float64{4096, 16384, 65536, 262144, 1048576, 4194304}

	return &codecMetrics{
		compressOps: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "vfscompress_codec_compress_total",
			Help: "Total number of chunk compress operations.",
		}),
		decompressOps: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "vfscompress_codec_decompress_total",
			Help: "Total number of chunk decompress operations.",
		}),
		compressedBytes: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "vfscompress_codec_compressed_bytes",
			Help:    "Distribution of compressed chunk sizes in bytes (on decompress: bytes read for the whole chunk region).",
			Buckets: sizeBuckets,
		}),
		origBytes: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "vfscompress_codec_plaintext_bytes",
			Help:    "Distribution of plaintext chunk sizes in bytes.",
			Buckets: sizeBuckets,
		}),
		compressionRatio: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "vfscompress_codec_compression_ratio",
			Help:    "Distribution of compressed/plaintext byte ratio per chunk.",
			Buckets: []float64{0.1, 0.25, 0.5, 0.75, 0.9, 1.0},
		}),
	}
}

func (m *codecMetrics) ObserveCompress(origBytes, compBytes int) {
	if m == nil {
		return
	}
	m.compressOps.Inc()
	m.origBytes.Observe(float64(origBytes))
	m.compressedBytes.Observe(float64(compBytes))
	if origBytes > 0 {
		m.compressionRatio.Observe(float64(compBytes) / float64(origBytes))
	}
}

func (m *codecMetrics) ObserveDecompress(origBytes, compBytes int) {
	if m == nil {
		return
	}
	m.decompressOps.Inc()
	m.origBytes.Observe(float64(origBytes))
	m.compressedBytes.Observe(float64(compBytes))
}
