// Package compressedfile implements the pager-facing file operations for
// a main database file whose backing storage is chunked and compressed.
// It owns one physical file handle plus a chunk cache, and dispatches
// reads and writes across chunk boundaries.
package compressedfile

import (
	"fmt"
	"sync"

	"github.com/marmos91/vfscompress/internal/logger"
	"github.com/marmos91/vfscompress/pkg/chunk"
	"github.com/marmos91/vfscompress/pkg/chunkcache"
	"github.com/marmos91/vfscompress/pkg/sparse"
	"github.com/marmos91/vfscompress/pkg/vfserr"
)

// PhysicalFile is the subset of the root VFS's file interface this
// package needs: random-access read/write, truncate, sync, size, and
// raw descriptor access for sparse-hole punching.
type PhysicalFile interface {
	chunkcache.PhysicalFile
	Truncate(size int64) error
	Sync() error
	Size() (int64, error)
	Close() error
}

// File wraps a PhysicalFile with the chunked compression pipeline. The
// design assumes the pager above it serialises its own access per
// connection. Mutex here serialises every public method, so concurrent
// callers cannot corrupt the cache; such concurrent use is not reported
// as an error.
type File struct {
	mu sync.Mutex

	phys      PhysicalFile
	cache     *chunkcache.Cache
	chunkSize int
	trace     logger.TraceLevel
	path      string
}

// New wraps phys with a chunk cache of the given geometry. sink and
// metrics may be nil-equivalent (sink must still implement Sink, even if
// it is the no-op one; cache/codec metrics may be nil).
func New(path string, phys PhysicalFile, chunkSize, compressLevel, cacheSlots int, sink sparse.Sink,
	trace logger.TraceLevel, cacheMetrics chunkcache.Metrics, codecMetrics chunk.CodecMetrics) (*File, error) {

	cache, err := chunkcache.New(cacheSlots, chunkSize, compressLevel, sink, trace, cacheMetrics, codecMetrics)
	if err != nil {
		return nil, err
	}
	return &File{
		phys:      phys,
		cache:     cache,
		chunkSize: chunkSize,
		trace:     trace,
		path:      path,
	}, nil
}

// chunkBounds returns, for a request [offset, offset+length), the
// logical offset of the chunk covering offset, the byte offset within
// that chunk, and how many bytes of the request fall within it.
func (f *File) chunkBounds(offset int64, length int) (chunkOffset int64, offsetInChunk int, segment int) {
	cs := int64(f.chunkSize)
	chunkOffset = offset - (offset % cs)
	offsetInChunk = int(offset - chunkOffset)
	segment = f.chunkSize - offsetInChunk
	if segment > length {
		segment = length
	}
	return
}

// ReadAt fills p with the bytes at logical offset off, looping across as
// many chunks as the request spans. This loop is the one place this
// implementation deliberately diverges from the original single-chunk
// source: reads crossing a chunk boundary are handled correctly here
// rather than reproducing that limitation.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for total < len(p) {
		chunkOffset, offsetInChunk, segment := f.chunkBounds(off+int64(total), len(p)-total)
		c, err := f.cache.Get(chunkOffset, f.phys)
		if err != nil {
			return total, err
		}
		c.Read(p[total:total+segment], offsetInChunk)
		total += segment
	}
	logger.Tracef(f.trace, logger.TraceIoOps, "read",
		logger.Path(f.path), logger.RequestOffset(off), logger.RequestLength(len(p)))
	return total, nil
}

// WriteAt copies p into the chunk cache at logical offset off, looping
// across chunk boundaries. Data is not compressed or written to the
// physical file here; flush is deferred to Sync or an eviction.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	total := 0
	for total < len(p) {
		chunkOffset, offsetInChunk, segment := f.chunkBounds(off+int64(total), len(p)-total)
		c, err := f.cache.Get(chunkOffset, f.phys)
		if err != nil {
			return total, err
		}
		if err := c.Write(p[total:total+segment], offsetInChunk); err != nil {
			return total, err
		}
		total += segment
	}
	logger.Tracef(f.trace, logger.TraceIoOps, "write",
		logger.Path(f.path), logger.RequestOffset(off), logger.RequestLength(len(p)))
	return total, nil
}

// Truncate forwards to the physical file unchanged. In-memory chunk
// metadata for regions beyond the new size is not invalidated, matching
// the source's documented undefined behaviour for a shrink followed by a
// read above the new size (see SPEC_FULL.md §9 open questions).
func (f *File) Truncate(size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.phys.Truncate(size); err != nil {
		return fmt.Errorf("%w: truncate: %v", vfserr.ErrIO, err)
	}
	return nil
}

// Sync flushes every dirty chunk, then forwards to the physical file.
// This is the only point at which the pager's writes are guaranteed
// visible on disk, and only as durable as the underlying file's own Sync.
func (f *File) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.cache.FlushAll(f.phys); err != nil {
		return err
	}
	if err := f.phys.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %v", vfserr.ErrIO, err)
	}
	return nil
}

// Size forwards to the physical file. The result is the physical size of
// the wrapper file, not the logical decompressed size; the pager
// interprets it through its own header.
func (f *File) Size() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.phys.Size()
	if err != nil {
		return 0, fmt.Errorf("%w: size: %v", vfserr.ErrIO, err)
	}
	return n, nil
}

// FileControlSyncOmitted is the fileControl opcode this implementation
// recognizes as a hint to flush without a full Sync (the host's
// "sync-omitted" signal, per SPEC_FULL.md §4.5).
const FileControlSyncOmitted = "sync_omitted"

// FileControl handles shim-specific opcodes and otherwise reports
// unhandled, letting the caller forward to the underlying file.
func (f *File) FileControl(op string, arg any) (handled bool, err error) {
	if op == FileControlSyncOmitted {
		f.mu.Lock()
		defer f.mu.Unlock()
		return true, f.cache.FlushAll(f.phys)
	}
	return false, nil
}

// Close flushes every dirty chunk, releases the cache, and closes the
// physical file. The cache's lifetime counters are logged at
// TraceOpenClose for operational visibility.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	flushErr := f.cache.FlushAll(f.phys)
	stats := f.cache.Stats()
	logger.Tracef(f.trace, logger.TraceOpenClose, "closing compressed file",
		logger.Path(f.path), logger.CacheHits(stats.Hits), logger.CacheMisses(stats.Misses),
		logger.CompressCount(stats.CompressCount), logger.DecompressCount(stats.DecompressCount))
	f.cache.Reset()

	if err := f.phys.Close(); err != nil {
		if flushErr != nil {
			return flushErr
		}
		return fmt.Errorf("%w: close: %v", vfserr.ErrIO, err)
	}
	return flushErr
}
