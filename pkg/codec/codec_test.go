package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		plain []byte
		level int
	}{
		{"empty", []byte{}, DefaultLevel},
		{"short", []byte("hello"), DefaultLevel},
		{"fastest level", []byte("hello world, a few repeated words repeated words"), MinLevel},
		{"best level", []byte("hello world, a few repeated words repeated words"), MaxLevel},
		{"binary pattern", make64KPattern(0xA5), DefaultLevel},
		{"random-ish", randomish(65536), DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compressed, err := Compress(nil, tt.plain, tt.level)
			require.NoError(t, err)

			plain, err := Decompress(nil, compressed, len(tt.plain))
			require.NoError(t, err)
			assert.Equal(t, tt.plain, plain)
		})
	}
}

func TestCompressDeterministicForFixedLevelAndInput(t *testing.T) {
	plain := []byte("deterministic input, deterministic input, deterministic input")
	a, err := Compress(nil, plain, DefaultLevel)
	require.NoError(t, err)
	b, err := Compress(nil, plain, DefaultLevel)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCompressReusesDestinationCapacity(t *testing.T) {
	dst := make([]byte, 0, 4096)
	plain := []byte("some plaintext to compress")
	out, err := Compress(dst, plain, DefaultLevel)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestCompressNeverProducesLeadingZeroSentinel(t *testing.T) {
	// Exercise a spread of inputs; none should trip the reserved-sentinel
	// guard, since a zlib frame's first (header) byte is never zero.
	for i := 0; i < 50; i++ {
		plain := randomish(1024 + i*37)
		out, err := Compress(nil, plain, DefaultLevel)
		require.NoError(t, err)
		require.NotEmpty(t, out)
		assert.NotZero(t, out[0])
	}
}

func TestDecompressStopsAtFrameEndIgnoringTrailingPadding(t *testing.T) {
	plain := []byte("a compressed frame followed by sparse hole padding")
	compressed, err := Compress(nil, plain, DefaultLevel)
	require.NoError(t, err)

	padded := make([]byte, 4096)
	copy(padded, compressed)

	out, err := Decompress(nil, padded, len(plain))
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func TestDecompressDestinationAtLeastMaxPlain(t *testing.T) {
	plain := []byte("short plaintext")
	compressed, err := Compress(nil, plain, DefaultLevel)
	require.NoError(t, err)

	dst := make([]byte, 2, 2)
	out, err := Decompress(dst, compressed, len(plain))
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func make64KPattern(b byte) []byte {
	buf := make([]byte, 64*1024)
	for i := range buf {
		buf[i] = b
	}
	return buf
}

func randomish(n int) []byte {
	buf := make([]byte, n)
	state := uint32(0x2545F491)
	for i := range buf {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		buf[i] = byte(state)
	}
	return buf
}
