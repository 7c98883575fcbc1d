// Package vfserr defines the error taxonomy shared by every layer of the
// compressed VFS shim. Call sites wrap one of these sentinels with
// fmt.Errorf("%w: ...") so callers can classify failures with errors.Is
// without string matching.
package vfserr

import "errors"

var (
	// ErrIO covers any failure of the underlying (root) VFS: read, write,
	// lock, or sync. Propagated verbatim to the caller.
	ErrIO = errors.New("vfscompress: underlying i/o error")

	// ErrShortRead names a physical read of a chunk region that returned
	// fewer bytes than the chunk size. The chunk layer does not return
	// it: chunk.LoadOne treats the unread bytes as a sparse hole, so a
	// region past the physical end of file loads as an Empty chunk.
	ErrShortRead = errors.New("vfscompress: short read of chunk region")

	// ErrOutOfMemory names a failed cache buffer allocation. No function
	// in this module returns it: buffers are allocated with make, which
	// does not report failure as an error.
	ErrOutOfMemory = errors.New("vfscompress: cache buffer allocation failed")

	// ErrNotFound is returned at registration when the named root VFS
	// does not exist.
	ErrNotFound = errors.New("vfscompress: root vfs not found")

	// ErrCodecFailure is returned when compress or decompress fails.
	// The chunk layer wraps it together with ErrIO, so the caller of the
	// failed operation observes ErrIO (and can still match this one).
	ErrCodecFailure = errors.New("vfscompress: codec failure")

	// ErrMisuse indicates a broken caller contract: reconfiguration
	// after registration, or a write that would overrun a chunk's
	// plaintext buffer. Not a recoverable runtime condition.
	ErrMisuse = errors.New("vfscompress: misuse")
)
