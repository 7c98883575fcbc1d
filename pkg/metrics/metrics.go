package metrics

import "github.com/marmos91/vfscompress/pkg/chunkcache"

// NewCacheMetrics returns a chunkcache.Metrics backed by Prometheus, or
// nil if InitRegistry has not been called. chunkcache treats a nil
// Metrics as a no-op, so callers can unconditionally pass the result of
// this function through.
func NewCacheMetrics() chunkcache.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusCacheMetrics()
}

// newPrometheusCacheMetrics is supplied by pkg/metrics/prometheus's
// init(), via RegisterCacheMetricsConstructor. The indirection avoids
// this package importing prometheus's concrete implementation package
// directly, which would create an import cycle back through chunkcache.
var newPrometheusCacheMetrics func() chunkcache.Metrics

// RegisterCacheMetricsConstructor is called by
// pkg/metrics/prometheus/cache.go's init() to install the concrete
// constructor.
func RegisterCacheMetricsConstructor(constructor func() chunkcache.Metrics) {
	newPrometheusCacheMetrics = constructor
}

// CodecMetrics observes compress/decompress call counts and byte sizes.
// A nil CodecMetrics is valid and costs nothing to call.
type CodecMetrics interface {
	ObserveCompress(origBytes, compBytes int)
	ObserveDecompress(origBytes, compBytes int)
}

// NewCodecMetrics returns a CodecMetrics backed by Prometheus, or nil if
// InitRegistry has not been called.
func NewCodecMetrics() CodecMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusCodecMetrics()
}

var newPrometheusCodecMetrics func() CodecMetrics

// RegisterCodecMetricsConstructor is called by
// pkg/metrics/prometheus/codec.go's init().
func RegisterCodecMetricsConstructor(constructor func() CodecMetrics) {
	newPrometheusCodecMetrics = constructor
}
