//go:build linux

package sparse

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/marmos91/vfscompress/pkg/vfserr"
)

// LinuxSink punches holes with fallocate(FALLOC_FL_PUNCH_HOLE), keeping
// the file's apparent size unchanged (FALLOC_FL_KEEP_SIZE) so the chunk
// region stays chunkSize bytes wide from the pager's point of view.
type LinuxSink struct{}

// NewDefault returns the platform sink for the current build target.
func NewDefault() Sink { return LinuxSink{} }

func (LinuxSink) Discard(fd uintptr, offset, length int64) error {
	if length <= 0 {
		return nil
	}
	mode := unix.FALLOC_FL_PUNCH_HOLE | unix.FALLOC_FL_KEEP_SIZE
	if err := unix.Fallocate(int(fd), uint32(mode), offset, length); err != nil {
		if err == unix.EOPNOTSUPP || err == unix.ENOSYS {
			return zeroFill(fd, offset, length)
		}
		return fmt.Errorf("%w: fallocate punch-hole: %v", vfserr.ErrIO, err)
	}
	return nil
}

// zeroFill is the best-effort fallback for filesystems without
// hole-punching support: it writes explicit zero bytes instead of
// reclaiming space. Correctness of the pager-facing contract is
// unaffected; only the on-disk footprint grows.
func zeroFill(fd uintptr, offset, length int64) error {
	const bufSize = 64 * 1024
	zeros := make([]byte, bufSize)
	remaining := length
	at := offset
	for remaining > 0 {
		n := int64(bufSize)
		if remaining < n {
			n = remaining
		}
		written, err := unix.Pwrite(int(fd), zeros[:n], at)
		if err != nil {
			return fmt.Errorf("%w: zero-fill fallback: %v", vfserr.ErrIO, err)
		}
		at += int64(written)
		remaining -= int64(written)
	}
	return nil
}
