// Package chunkcache implements the fixed-capacity, move-to-front chunk
// cache for one open compressed file. It is deliberately not a
// size-based LRU: the cache is a small array of N >= 2 slots, and a hit
// or a miss each perform at most one adjacent swap toward the head.
//
// This approximates LRU for small N with O(1) bookkeeping per access,
// and sequential pager scans do not pathologically evict the working
// set the way a strict single-slot cache would.
package chunkcache

import (
	"fmt"

	"github.com/marmos91/vfscompress/internal/logger"
	"github.com/marmos91/vfscompress/pkg/chunk"
	"github.com/marmos91/vfscompress/pkg/sparse"
	"github.com/marmos91/vfscompress/pkg/vfserr"
)

// PhysicalFile is re-exported for callers that only import chunkcache.
type PhysicalFile = chunk.PhysicalFile

// Stats accumulates the shim's lifetime cache/compress counters. They are
// read through Cache.Stats and logged when the compressed file closes;
// the Metrics hook receives hit/miss/eviction events separately.
type Stats struct {
	Hits             int64
	Misses           int64
	CompressCount    int64
	DecompressCount  int64
}

// Metrics is the observability hook for cache hits/misses and flush
// activity. A nil Metrics is valid and costs nothing to call.
type Metrics interface {
	RecordHit()
	RecordMiss()
	RecordEviction()
}

// Cache holds exactly N chunk slots for one open file. The head (index 0)
// is most-recently-used; the tail (index N-1) is the eviction victim.
type Cache struct {
	slots         []*chunk.Chunk
	chunkSize     int
	compressLevel int
	trace         logger.TraceLevel
	sink          sparse.Sink
	metrics       Metrics
	codecMetrics  chunk.CodecMetrics
	stats         Stats
}

// New allocates a Cache with slots empty chunk buffers pre-allocated.
// slots must be >= 2. Either metrics argument may be nil.
func New(slots, chunkSize, compressLevel int, sink sparse.Sink, trace logger.TraceLevel, metrics Metrics, codecMetrics chunk.CodecMetrics) (*Cache, error) {
	if slots < 2 {
		return nil, fmt.Errorf("%w: cache requires at least 2 slots, got %d", vfserr.ErrMisuse, slots)
	}
	c := &Cache{
		slots:         make([]*chunk.Chunk, slots),
		chunkSize:     chunkSize,
		compressLevel: compressLevel,
		trace:         trace,
		sink:          sink,
		metrics:       metrics,
		codecMetrics:  codecMetrics,
	}
	for i := range c.slots {
		c.slots[i] = chunk.New(chunkSize)
	}
	return c, nil
}

// Stats returns a snapshot of lifetime counters.
func (c *Cache) Stats() Stats {
	return c.stats
}

// mtfStep swaps slots[idx-1] and slots[idx] if idx > 0, moving the chunk
// at idx one position toward the head, and returns its new index.
func (c *Cache) mtfStep(idx int) int {
	if idx == 0 {
		return 0
	}
	c.slots[idx-1], c.slots[idx] = c.slots[idx], c.slots[idx-1]
	return idx - 1
}

// Get returns the chunk covering logicalOffset, which must already be
// chunk-size aligned. On a cache hit, the slot is moved one position
// toward the head. On a miss, the eviction target (first Empty slot from
// the head, else the tail) is flushed if dirty, moved toward the head,
// and reloaded from the physical file.
func (c *Cache) Get(logicalOffset int64, f PhysicalFile) (*chunk.Chunk, error) {
	for i, slot := range c.slots {
		if slot.State != chunk.Empty && slot.LogicalOffset == logicalOffset {
			newIdx := c.mtfStep(i)
			c.stats.Hits++
			if c.metrics != nil {
				c.metrics.RecordHit()
			}
			logger.Tracef(c.trace, logger.TraceIoOps, "chunk cache hit",
				logger.ChunkOffset(logicalOffset), logger.CacheSlot(newIdx))
			return c.slots[newIdx], nil
		}
	}

	c.stats.Misses++
	if c.metrics != nil {
		c.metrics.RecordMiss()
	}

	targetIdx := -1
	for i, slot := range c.slots {
		if slot.State == chunk.Empty {
			targetIdx = i
			break
		}
	}
	if targetIdx == -1 {
		targetIdx = len(c.slots) - 1
	}

	victim := c.slots[targetIdx]
	if victim.State != chunk.Empty {
		if c.metrics != nil {
			c.metrics.RecordEviction()
		}
		logger.Tracef(c.trace, logger.TraceIoOps, "evicting chunk cache slot",
			logger.EvictedIndex(victim.LogicalOffset), logger.CacheSlot(targetIdx))
		dirty := victim.State == chunk.Uncompressed
		if err := chunk.FlushOne(victim, f, c.sink, c.compressLevel, c.trace, c.codecMetrics); err != nil {
			return nil, err
		}
		if dirty {
			c.stats.CompressCount++
		}
	}

	targetIdx = c.mtfStep(targetIdx)
	target := c.slots[targetIdx]
	if err := chunk.LoadOne(target, logicalOffset, f, c.trace, c.codecMetrics); err != nil {
		return nil, err
	}
	if target.State == chunk.Cached {
		c.stats.DecompressCount++
	}
	logger.Tracef(c.trace, logger.TraceIoOps, "chunk cache miss loaded",
		logger.ChunkOffset(logicalOffset), logger.CacheSlot(targetIdx), logger.CacheHit(false))
	return target, nil
}

// FlushAll flushes every dirty slot, stopping at the first error. Slot
// order does not matter for correctness: chunks address disjoint regions.
func (c *Cache) FlushAll(f PhysicalFile) error {
	for _, slot := range c.slots {
		dirty := slot.State == chunk.Uncompressed
		if err := chunk.FlushOne(slot, f, c.sink, c.compressLevel, c.trace, c.codecMetrics); err != nil {
			return err
		}
		if dirty {
			c.stats.CompressCount++
		}
	}
	return nil
}

// Reset returns every slot to Empty without flushing, used after a
// successful FlushAll at close to release logical ownership of the
// buffers (the buffers themselves are retained until GC, matching the
// teacher's reuse-don't-reallocate style).
func (c *Cache) Reset() {
	for _, slot := range c.slots {
		slot.Reset()
	}
}
