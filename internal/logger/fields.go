package logger

import (
	"log/slog"
)

// Structured log field keys and constructors for the compressed VFS shim.
//
// Grouped by the area of the shim they describe: VFS operation metadata,
// chunk addressing, codec/compression, cache behavior, sparse-hole
// management, and configuration. Each key has a typed constructor so
// call sites never hand-build slog.Attr with the wrong type.

// ----------------------------------------------------------------------
// VFS operation metadata
// ----------------------------------------------------------------------

const (
	KeyOperation = "operation" // VFS method name: Read, Write, Sync, Truncate, Close, Open
	KeyPath      = "path"      // file path as passed to the root VFS
	KeyFlags     = "flags"     // sqlite3 open flags
	KeyErr       = "error"
	KeyDuration  = "duration_ms"
)

func Operation(op string) slog.Attr   { return slog.String(KeyOperation, op) }
func Path(path string) slog.Attr      { return slog.String(KeyPath, path) }
func Flags(flags int) slog.Attr       { return slog.Int(KeyFlags, flags) }
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDuration, ms) }

// Err returns an empty attr for a nil error, which handlers skip.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(KeyErr, err)
}

// ----------------------------------------------------------------------
// Chunk addressing
// ----------------------------------------------------------------------

const (
	KeyChunkIndex  = "chunk_index"
	KeyChunkOffset = "chunk_offset" // byte offset of the chunk within the logical file
	KeyChunkSize   = "chunk_size"   // configured chunk size in bytes
	KeyReqOffset   = "request_offset"
	KeyReqLength   = "request_length"
	KeyChunkState  = "chunk_state" // Empty, Uncompressed, Unwritten, Cached
)

func ChunkIndex(idx int64) slog.Attr    { return slog.Int64(KeyChunkIndex, idx) }
func ChunkOffset(off int64) slog.Attr   { return slog.Int64(KeyChunkOffset, off) }
func ChunkSize(size int) slog.Attr      { return slog.Int(KeyChunkSize, size) }
func RequestOffset(off int64) slog.Attr { return slog.Int64(KeyReqOffset, off) }
func RequestLength(n int) slog.Attr     { return slog.Int(KeyReqLength, n) }
func ChunkState(state string) slog.Attr { return slog.String(KeyChunkState, state) }

// ----------------------------------------------------------------------
// Codec / compression
// ----------------------------------------------------------------------

const (
	KeyOrigSize        = "orig_size" // plaintext length before compression
	KeyCompSize        = "comp_size" // compressed length on disk
	KeyCompressLevel   = "compress_level"
	KeyCompressCount   = "compress_count"
	KeyDecompressCount = "decompress_count"
)

func OrigSize(n int) slog.Attr      { return slog.Int(KeyOrigSize, n) }
func CompSize(n int) slog.Attr      { return slog.Int(KeyCompSize, n) }
func CompressLevel(n int) slog.Attr { return slog.Int(KeyCompressLevel, n) }
func CompressCount(n int64) slog.Attr {
	return slog.Int64(KeyCompressCount, n)
}
func DecompressCount(n int64) slog.Attr {
	return slog.Int64(KeyDecompressCount, n)
}

// ----------------------------------------------------------------------
// Cache behavior
// ----------------------------------------------------------------------

const (
	KeyCacheHit    = "cache_hit"
	KeyCacheSlot   = "cache_slot"
	KeyCacheSlots  = "cache_slots" // configured number of cache slots
	KeyEvictedIdx  = "evicted_chunk_index"
	KeyCacheHits   = "cache_hits"
	KeyCacheMisses = "cache_misses"
)

func CacheHit(hit bool) slog.Attr  { return slog.Bool(KeyCacheHit, hit) }
func CacheSlot(slot int) slog.Attr { return slog.Int(KeyCacheSlot, slot) }
func CacheSlots(n int) slog.Attr   { return slog.Int(KeyCacheSlots, n) }
func EvictedIndex(idx int64) slog.Attr {
	return slog.Int64(KeyEvictedIdx, idx)
}
func CacheHits(n int64) slog.Attr   { return slog.Int64(KeyCacheHits, n) }
func CacheMisses(n int64) slog.Attr { return slog.Int64(KeyCacheMisses, n) }

// ----------------------------------------------------------------------
// Sparse-hole management
// ----------------------------------------------------------------------

const (
	KeyDiscardOffset = "discard_offset"
	KeyDiscardLength = "discard_length"
)

func DiscardOffset(off int64) slog.Attr { return slog.Int64(KeyDiscardOffset, off) }
func DiscardLength(n int) slog.Attr     { return slog.Int(KeyDiscardLength, n) }

// ----------------------------------------------------------------------
// Configuration / file classification
// ----------------------------------------------------------------------

const (
	KeyTraceLevel = "trace_level"
	KeyLegacyFile = "legacy_file" // true if the main DB was detected as an uncompressed plaintext file
	KeyVFSName    = "vfs_name"
)

func TraceLevelAttr(level int) slog.Attr { return slog.Int(KeyTraceLevel, level) }
func LegacyFile(legacy bool) slog.Attr   { return slog.Bool(KeyLegacyFile, legacy) }
func VFSName(name string) slog.Attr      { return slog.String(KeyVFSName, name) }
