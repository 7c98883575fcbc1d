// Package vfs defines the file and filesystem interfaces the compressed
// shim sits between: a root VFS it wraps, and the File/VFS contract it
// exposes upward to the host database's pager. The "wraps another VFS"
// relationship is composition (Shim holds a Root field), never
// inheritance.
package vfs

// OpenFlags mirrors the subset of the host database's open flags this
// shim inspects. Flags not named here are forwarded opaquely.
type OpenFlags uint32

const (
	// OpenMainDB marks the file being opened as the primary database
	// file, as opposed to a journal, WAL, or temp file. Only main
	// database files are routed through the compression pipeline.
	OpenMainDB OpenFlags = 1 << iota
	OpenReadOnly
	OpenCreate
)

func (f OpenFlags) Has(bit OpenFlags) bool { return f&bit != 0 }

// File is the pager-facing contract for one open file, whether it is
// routed through compression or passed straight through to the root VFS.
//
// Thread safety: a File is not safe for concurrent use. The pager above
// serialises its own access per connection; this contract assumes that
// precondition holds.
type File interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Truncate(size int64) error
	Sync() error
	Size() (int64, error)

	Lock(level int) error
	Unlock(level int) error
	CheckReservedLock() (bool, error)
	SectorSize() int
	DeviceCharacteristics() int

	FileControl(op string, arg any) (handled bool, err error)
	Close() error
}

// VFS is the filesystem-level contract: opening, deleting, and querying
// files by name. A Shim implements this by wrapping a Root VFS.
type VFS interface {
	Open(name string, flags OpenFlags) (File, error)
	Delete(name string, syncDir bool) error
	Access(name string, flags int) (bool, error)
	FullPathname(name string) (string, error)
	Name() string
}
