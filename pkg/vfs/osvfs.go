package vfs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/marmos91/vfscompress/pkg/vfserr"
)

// OSRootName is the name this package registers its os-backed root VFS
// under. Register("os", ...) wraps it.
const OSRootName = "os"

func init() {
	RegisterRootVFS(OSRootName, &osVFS{})
}

// osVFS is the platform default VFS: every file it opens is a plain
// os.File, with no knowledge of compression. Register wraps this (or
// any other registered root) to produce the compressed shim.
type osVFS struct{}

func (v *osVFS) Open(name string, flags OpenFlags) (File, error) {
	osFlags := os.O_RDWR
	if flags.Has(OpenReadOnly) {
		osFlags = os.O_RDONLY
	}
	if flags.Has(OpenCreate) {
		osFlags |= os.O_CREATE
	}
	f, err := os.OpenFile(name, osFlags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", vfserr.ErrIO, name, err)
	}
	return newOSFile(f), nil
}

func (v *osVFS) Delete(name string, syncDir bool) error {
	if err := os.Remove(name); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: delete %s: %v", vfserr.ErrIO, name, err)
	}
	if !syncDir {
		return nil
	}
	dir, err := os.Open(filepath.Dir(name))
	if err != nil {
		return nil
	}
	defer dir.Close()
	return dir.Sync()
}

func (v *osVFS) Access(name string, flags int) (bool, error) {
	_, err := os.Stat(name)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: access %s: %v", vfserr.ErrIO, name, err)
}

func (v *osVFS) FullPathname(name string) (string, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", vfserr.ErrIO, err)
	}
	return abs, nil
}

func (v *osVFS) Name() string { return OSRootName }
