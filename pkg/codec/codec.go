// Package codec adapts a DEFLATE-family compressor to the fixed-size
// chunk buffers used by the rest of the shim. Each chunk is stored as a
// zlib-framed DEFLATE stream, whose first (header) byte is never zero.
// Both operations are
// stateless: no compressor state survives a call, matching the
// requirement that chunk compression never depends on previously
// compressed chunks.
package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"

	"github.com/marmos91/vfscompress/pkg/vfserr"
)

// MinLevel and MaxLevel bound the compression levels accepted by
// Compress, matching the configuration surface's 1-9 range.
const (
	MinLevel     = flate.BestSpeed
	MaxLevel     = flate.BestCompression
	DefaultLevel = flate.DefaultCompression
)

// Compress deflates plain at the given level into dst, reusing dst's
// backing array when it has enough capacity, and returns the compressed
// slice. level must be DefaultLevel or in [MinLevel, MaxLevel].
func Compress(dst, plain []byte, level int) ([]byte, error) {
	buf := bytes.NewBuffer(dst[:0])

	w, err := zlib.NewWriterLevel(buf, level)
	if err != nil {
		return nil, fmt.Errorf("%w: new writer: %v", vfserr.ErrCodecFailure, err)
	}
	if _, err := w.Write(plain); err != nil {
		return nil, fmt.Errorf("%w: write: %v", vfserr.ErrCodecFailure, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: close: %v", vfserr.ErrCodecFailure, err)
	}

	out := buf.Bytes()
	if len(out) > 0 && out[0] == 0 {
		// The on-disk format reserves a leading zero byte to mean "never
		// written" (see pkg/chunk). A zlib frame starts with its nonzero
		// header byte, but refuse to persist one if it ever did not.
		return nil, fmt.Errorf("%w: compressed frame begins with reserved sentinel byte", vfserr.ErrCodecFailure)
	}
	return out, nil
}

// Decompress inflates compressed into dst, reusing dst's backing array
// when it has capacity for maxPlain bytes and allocating a new buffer
// otherwise, and returns the slice actually filled.
// compressed may be followed by unrelated trailing bytes (the sparse
// hole padding out to the chunk size) — the zlib frame is
// self-terminating, so the reader stops at the real frame end
// regardless of what follows it in the slice.
func Decompress(dst, compressed []byte, maxPlain int) ([]byte, error) {
	if cap(dst) < maxPlain {
		dst = make([]byte, maxPlain)
	}
	dst = dst[:maxPlain]

	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vfserr.ErrCodecFailure, err)
	}
	defer r.Close()

	n, err := io.ReadFull(r, dst)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", vfserr.ErrCodecFailure, err)
	}
	return dst[:n], nil
}
