// Package chunk implements the in-memory record for one fixed-size
// logical region of a compressed database file, and the two operations
// that move it to and from the physical file: flushOne and loadOne.
package chunk

import (
	"fmt"
	"io"

	"github.com/marmos91/vfscompress/internal/logger"
	"github.com/marmos91/vfscompress/pkg/codec"
	"github.com/marmos91/vfscompress/pkg/sparse"
	"github.com/marmos91/vfscompress/pkg/vfserr"
)

// State is the lifecycle stage of a Chunk, mirroring §3 of the design:
// Empty (never observed), Uncompressed (plaintext dirty), Unwritten
// (recompressed but not on disk), Cached (disk matches memory).
type State int

const (
	Empty State = iota
	Uncompressed
	Unwritten
	Cached
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Uncompressed:
		return "uncompressed"
	case Unwritten:
		return "unwritten"
	case Cached:
		return "cached"
	default:
		return "unknown"
	}
}

// CodecMetrics observes compress/decompress activity. Defined locally
// (rather than importing pkg/metrics) so this package has no dependency
// on the metrics stack; pkg/metrics implementations satisfy this
// interface structurally.
type CodecMetrics interface {
	ObserveCompress(origBytes, compBytes int)
	ObserveDecompress(origBytes, compBytes int)
}

// PhysicalFile is the subset of file operations flushOne/loadOne need
// from the underlying (root VFS) file. A chunk never holds a file
// handle itself; the cache and compressed-file layers own that.
type PhysicalFile interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Fd() uintptr
}

// Chunk is the in-memory record for one region of the logical file.
// LogicalOffset is always a multiple of the configured chunk size.
type Chunk struct {
	LogicalOffset int64
	ChunkSize     int

	Plain      []byte // len(Plain) == ChunkSize always; valid prefix is [:PlainLen]
	Compressed []byte // valid prefix is [:CompLen]
	PlainLen   int
	CompLen    int

	State State
}

// New allocates a chunk's buffers. Buffers are sized once and reused for
// the life of the cache slot that owns this chunk.
func New(chunkSize int) *Chunk {
	return &Chunk{
		ChunkSize:  chunkSize,
		Plain:      make([]byte, chunkSize),
		Compressed: make([]byte, chunkSize),
		State:      Empty,
	}
}

// Reset returns the chunk to Empty without reallocating its buffers, so
// a cache slot can be reused for a different logical offset.
func (c *Chunk) Reset() {
	c.LogicalOffset = 0
	c.PlainLen = 0
	c.CompLen = 0
	c.State = Empty
}

// Write copies src into the chunk's plaintext buffer starting at
// offsetInChunk, extending PlainLen as needed, and marks the chunk dirty.
// offsetInChunk+len(src) must not exceed ChunkSize; violating that is a
// caller-contract bug (ErrMisuse), not a recoverable condition.
func (c *Chunk) Write(src []byte, offsetInChunk int) error {
	end := offsetInChunk + len(src)
	if end > c.ChunkSize {
		return fmt.Errorf("%w: write of %d bytes at chunk offset %d overruns chunk size %d",
			vfserr.ErrMisuse, len(src), offsetInChunk, c.ChunkSize)
	}
	copy(c.Plain[offsetInChunk:end], src)
	if end > c.PlainLen {
		c.PlainLen = end
	}
	c.State = Uncompressed
	return nil
}

// Read copies the chunk's plaintext into dst starting at offsetInChunk.
// Bytes beyond PlainLen (but within ChunkSize) are zero, matching a
// never-written tail of a partially filled chunk.
func (c *Chunk) Read(dst []byte, offsetInChunk int) {
	end := offsetInChunk + len(dst)
	if end > c.ChunkSize {
		end = c.ChunkSize
	}
	n := copy(dst, c.Plain[offsetInChunk:end])
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// FlushOne persists a dirty chunk to the physical file and punches a
// hole for the unused tail of the region. No-op for Empty or Cached
// chunks.
func FlushOne(c *Chunk, f PhysicalFile, sink sparse.Sink, compressLevel int, trace logger.TraceLevel, m CodecMetrics) error {
	switch c.State {
	case Empty, Cached:
		return nil
	}

	if c.State == Uncompressed {
		compressed, err := codec.Compress(c.Compressed, c.Plain[:c.PlainLen], compressLevel)
		if err != nil {
			return fmt.Errorf("%w: compressing chunk at offset %d: %w", vfserr.ErrIO, c.LogicalOffset, err)
		}
		c.Compressed = compressed[:cap(compressed)][:len(compressed)]
		c.CompLen = len(compressed)
		c.State = Unwritten
		if m != nil {
			m.ObserveCompress(c.PlainLen, c.CompLen)
		}
		logger.Tracef(trace, logger.TraceCompression, "compressed chunk",
			logger.ChunkOffset(c.LogicalOffset), logger.OrigSize(c.PlainLen), logger.CompSize(c.CompLen))
	}

	if _, err := f.WriteAt(c.Compressed[:c.CompLen], c.LogicalOffset); err != nil {
		return fmt.Errorf("%w: writing chunk at offset %d: %v", vfserr.ErrIO, c.LogicalOffset, err)
	}

	holeLen := int64(c.ChunkSize - c.CompLen)
	if holeLen > 0 {
		if err := sink.Discard(f.Fd(), c.LogicalOffset+int64(c.CompLen), holeLen); err != nil {
			return err
		}
		logger.Tracef(trace, logger.TraceIoOps, "punched hole",
			logger.DiscardOffset(c.LogicalOffset+int64(c.CompLen)), logger.DiscardLength(int(holeLen)))
	}

	c.State = Cached
	return nil
}

// LoadOne reads chunkSize bytes at logicalOffset from the physical file
// into c, decompressing into the plaintext buffer unless the region has
// never been written (detected via the first-byte-zero sentinel, which is
// safe because sparse holes read back as zero and codec.Compress never
// returns a frame that begins with 0x00).
func LoadOne(c *Chunk, logicalOffset int64, f PhysicalFile, trace logger.TraceLevel, m CodecMetrics) error {
	c.LogicalOffset = logicalOffset

	n, err := f.ReadAt(c.Compressed[:c.ChunkSize], logicalOffset)
	if err != nil && err != io.EOF {
		return fmt.Errorf("%w: reading chunk at offset %d: %v", vfserr.ErrIO, logicalOffset, err)
	}
	if n < c.ChunkSize {
		// Short reads past current EOF are normal (the chunk has never
		// been written this far); treat unread bytes as a hole.
		for i := n; i < c.ChunkSize; i++ {
			c.Compressed[i] = 0
		}
	}

	if c.Compressed[0] == 0 {
		c.PlainLen = 0
		c.CompLen = 0
		c.State = Empty
		logger.Tracef(trace, logger.TraceIoOps, "loaded empty chunk", logger.ChunkOffset(logicalOffset))
		return nil
	}

	plain, err := codec.Decompress(c.Plain, c.Compressed[:c.ChunkSize], c.ChunkSize)
	if err != nil {
		return fmt.Errorf("%w: decompressing chunk at offset %d: %w", vfserr.ErrIO, logicalOffset, err)
	}
	c.PlainLen = len(plain)
	c.CompLen = 0 // unknown exactly until the chunk is next flushed
	for i := c.PlainLen; i < c.ChunkSize; i++ {
		c.Plain[i] = 0
	}
	c.State = Cached
	if m != nil {
		m.ObserveDecompress(c.PlainLen, n)
	}
	logger.Tracef(trace, logger.TraceCompression, "decompressed chunk",
		logger.ChunkOffset(logicalOffset), logger.OrigSize(c.PlainLen))
	return nil
}
