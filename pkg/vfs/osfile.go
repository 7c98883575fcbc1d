package vfs

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/marmos91/vfscompress/pkg/vfserr"
)

// osFile adapts *os.File to the chunk/compressedfile PhysicalFile
// contracts and to the public File interface, for files passed straight
// through without compression: journals, WAL files, temp files, and
// legacy plaintext main databases.
type osFile struct {
	f *os.File
}

func newOSFile(f *os.File) *osFile { return &osFile{f: f} }

func (o *osFile) ReadAt(p []byte, off int64) (int, error) {
	n, err := o.f.ReadAt(p, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	return n, nil
}

func (o *osFile) WriteAt(p []byte, off int64) (int, error) {
	return o.f.WriteAt(p, off)
}

func (o *osFile) Fd() uintptr { return o.f.Fd() }

func (o *osFile) Truncate(size int64) error {
	if err := o.f.Truncate(size); err != nil {
		return fmt.Errorf("%w: %v", vfserr.ErrIO, err)
	}
	return nil
}

func (o *osFile) Sync() error {
	if err := o.f.Sync(); err != nil {
		return fmt.Errorf("%w: %v", vfserr.ErrIO, err)
	}
	return nil
}

func (o *osFile) Size() (int64, error) {
	info, err := o.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", vfserr.ErrIO, err)
	}
	return info.Size(), nil
}

func (o *osFile) Close() error {
	return o.f.Close()
}

// File interface passthrough methods. Locking advice and device
// characteristics are forwarded to constants rather than to real
// advisory locks: the shim itself never arbitrates locking, it only
// reports what the root VFS would have reported, so a single-process
// embedding that never needed OS-level locks gets a correct no-op here.
func (o *osFile) Lock(level int) error               { return nil }
func (o *osFile) Unlock(level int) error              { return nil }
func (o *osFile) CheckReservedLock() (bool, error)    { return false, nil }
func (o *osFile) SectorSize() int                     { return 4096 }
func (o *osFile) DeviceCharacteristics() int           { return 0 }
func (o *osFile) FileControl(op string, arg any) (bool, error) { return false, nil }
