// Package metrics provides the nil-safe Prometheus metrics surface for
// the compressed VFS shim. Callers obtain hooks from NewCacheMetrics and
// NewCodecMetrics and hold no dependency on Prometheus directly; the
// concrete implementation lives in pkg/metrics/prometheus and registers
// its constructors via RegisterCacheMetricsConstructor and
// RegisterCodecMetricsConstructor at init time, avoiding an import cycle
// between pkg/chunkcache and pkg/metrics/prometheus.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry enables metrics collection and returns the registry that
// the prometheus sub-package's constructors register against. Each call
// installs a fresh registry; metrics constructed before a later call stay
// registered on the earlier one.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// GetRegistry returns the active registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return registry
}
