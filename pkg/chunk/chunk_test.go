package chunk

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/vfscompress/internal/logger"
	"github.com/marmos91/vfscompress/pkg/sparse"
	"github.com/marmos91/vfscompress/pkg/vfserr"
)

const testChunkSize = 64 * 1024

// memFile is a minimal in-memory PhysicalFile, standing in for the root
// VFS's file handle in tests that don't need a real file descriptor.
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

// ReadAt mirrors os.File.ReadAt: a request reaching past the current
// data length returns a short count plus io.EOF, rather than silently
// growing (growth is only implicit in WriteAt, matching a real file).
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
	n := copy(m.data[off:], p)
	return n, nil
}

func (m *memFile) Fd() uintptr { return 0 }

func newNoopSinkFile() (*memFile, sparse.Sink) {
	return &memFile{}, noopSink{}
}

type noopSink struct{}

func (noopSink) Discard(fd uintptr, offset, length int64) error { return nil }

func TestChunkWriteWithinBoundsUpdatesPlainLen(t *testing.T) {
	c := New(testChunkSize)
	require.NoError(t, c.Write([]byte("hello"), 0))
	assert.Equal(t, 5, c.PlainLen)
	assert.Equal(t, Uncompressed, c.State)
	assert.Equal(t, "hello", string(c.Plain[:5]))
}

func TestChunkWriteOverrunIsMisuse(t *testing.T) {
	c := New(testChunkSize)
	err := c.Write(make([]byte, testChunkSize+1), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, vfserr.ErrMisuse)
}

func TestChunkReadPastPlainLenIsZero(t *testing.T) {
	c := New(testChunkSize)
	require.NoError(t, c.Write([]byte("hi"), 0))

	dst := make([]byte, 10)
	c.Read(dst, 0)
	assert.Equal(t, []byte{'h', 'i', 0, 0, 0, 0, 0, 0, 0, 0}, dst)
}

func TestChunkResetReturnsToEmptyWithoutReallocating(t *testing.T) {
	c := New(testChunkSize)
	require.NoError(t, c.Write([]byte("data"), 0))
	plainBuf := c.Plain

	c.Reset()
	assert.Equal(t, Empty, c.State)
	assert.Equal(t, 0, c.PlainLen)
	assert.Equal(t, 0, c.CompLen)
	assert.Equal(t, int64(0), c.LogicalOffset)
	assert.Same(t, &plainBuf[0], &c.Plain[0])
}

func TestFlushOneEmptyIsNoop(t *testing.T) {
	c := New(testChunkSize)
	f, sink := newNoopSinkFile()
	require.NoError(t, FlushOne(c, f, sink, 6, logger.TraceNone, nil))
	assert.Equal(t, Empty, c.State)
	assert.Empty(t, f.data)
}

func TestFlushOneCompressesWritesAndPunchesHole(t *testing.T) {
	c := New(testChunkSize)
	f, sink := newNoopSinkFile()

	plain := []byte("hello, hello, hello, hello, hello, hello, hello, hello")
	require.NoError(t, c.Write(plain, 0))
	require.NoError(t, FlushOne(c, f, sink, 6, logger.TraceNone, nil))

	assert.Equal(t, Cached, c.State)
	require.GreaterOrEqual(t, c.CompLen, 1)
	assert.Less(t, c.CompLen, len(plain))
	assert.NotZero(t, f.data[0])
}

func TestFlushOneCachedIsNoop(t *testing.T) {
	c := New(testChunkSize)
	f, sink := newNoopSinkFile()

	require.NoError(t, c.Write([]byte("x"), 0))
	require.NoError(t, FlushOne(c, f, sink, 6, logger.TraceNone, nil))
	firstWrite := append([]byte(nil), f.data...)

	require.NoError(t, FlushOne(c, f, sink, 6, logger.TraceNone, nil))
	assert.Equal(t, firstWrite, f.data)
}

func TestLoadOneNeverWrittenRegionIsEmpty(t *testing.T) {
	c := New(testChunkSize)
	f := &memFile{data: make([]byte, testChunkSize)}

	require.NoError(t, LoadOne(c, 0, f, logger.TraceNone, nil))
	assert.Equal(t, Empty, c.State)
	assert.Equal(t, 0, c.PlainLen)
	assert.Equal(t, 0, c.CompLen)
}

func TestLoadOneDecompressesWrittenRegion(t *testing.T) {
	src := New(testChunkSize)
	f, sink := newNoopSinkFile()

	plain := []byte("round trip through flush and load")
	require.NoError(t, src.Write(plain, 0))
	require.NoError(t, FlushOne(src, f, sink, 6, logger.TraceNone, nil))

	dst := New(testChunkSize)
	require.NoError(t, LoadOne(dst, 0, f, logger.TraceNone, nil))

	assert.Equal(t, Cached, dst.State)
	assert.Equal(t, len(plain), dst.PlainLen)
	assert.Equal(t, plain, dst.Plain[:len(plain)])
	for i := len(plain); i < testChunkSize; i++ {
		if dst.Plain[i] != 0 {
			t.Fatalf("tail byte %d not zeroed: %#x", i, dst.Plain[i])
		}
	}
}

func TestLoadOneShortReadPastEOFTreatedAsHole(t *testing.T) {
	c := New(testChunkSize)
	f := &memFile{data: make([]byte, 10)} // far shorter than chunk size

	require.NoError(t, LoadOne(c, 0, f, logger.TraceNone, nil))
	assert.Equal(t, Empty, c.State)
}
