package prometheus

import (
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/vfscompress/internal/logger"
	"github.com/marmos91/vfscompress/pkg/chunkcache"
	"github.com/marmos91/vfscompress/pkg/metrics"
)

const testChunkSize = 64 * 1024

type memFile struct {
	data []byte
}

func (m *memFile) ensure(n int) {
	if len(m.data) < n {
		grown := make([]byte, n)
		copy(grown, m.data)
		m.data = grown
	}
}

func (m *memFile) ReadAt(p []byte, off int64) (int, error) {
	if int(off) >= len(m.data) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memFile) WriteAt(p []byte, off int64) (int, error) {
	m.ensure(int(off) + len(p))
	return copy(m.data[off:], p), nil
}

func (m *memFile) Fd() uintptr { return 0 }

func (m *memFile) Truncate(size int64) error {
	if int64(len(m.data)) > size {
		m.data = m.data[:size]
	} else {
		m.ensure(int(size))
	}
	return nil
}

func (m *memFile) Sync() error { return nil }

func (m *memFile) Size() (int64, error) { return int64(len(m.data)), nil }

func (m *memFile) Close() error { return nil }

type noopSink struct{}

func (noopSink) Discard(fd uintptr, offset, length int64) error { return nil }

// TestCacheHitIncrementsPrometheusCounter wires metrics.InitRegistry and
// metrics.NewCacheMetrics into a real chunkcache.Cache, the same way
// pkg/vfs.Register does for a live shim, and asserts that a cache hit is
// observable via the concrete Prometheus counter, not just via
// chunkcache's own in-process Stats.
func TestCacheHitIncrementsPrometheusCounter(t *testing.T) {
	metrics.InitRegistry()

	cm := metrics.NewCacheMetrics()
	require.NotNil(t, cm)
	pm, ok := cm.(*cacheMetrics)
	require.True(t, ok, "NewCacheMetrics should return the Prometheus implementation once InitRegistry has run")

	cache, err := chunkcache.New(2, testChunkSize, 6, noopSink{}, logger.TraceNone, cm, nil)
	require.NoError(t, err)

	f := &memFile{}

	c, err := cache.Get(0, f)
	require.NoError(t, err, "first access is a miss that loads the chunk")
	require.NoError(t, c.Write([]byte("payload"), 0))
	require.Equal(t, float64(1), testutil.ToFloat64(pm.misses))

	_, err = cache.Get(0, f)
	require.NoError(t, err, "second access to the same dirty offset is a hit")
	require.Equal(t, float64(1), testutil.ToFloat64(pm.hits))

	_, err = cache.Get(int64(testChunkSize), f)
	require.NoError(t, err)
	require.Equal(t, float64(2), testutil.ToFloat64(pm.misses))
}
