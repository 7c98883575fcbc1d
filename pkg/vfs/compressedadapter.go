package vfs

import "github.com/marmos91/vfscompress/pkg/compressedfile"

// compressedAdapter satisfies File by delegating to a *compressedfile.File
// for the data-path methods and supplying the lock/device-characteristics
// stubs a compressed main-DB file still needs to answer, matching
// osFile's no-op locking stance (see osfile.go).
type compressedAdapter struct {
	*compressedfile.File
}

func (c *compressedAdapter) Lock(level int) error            { return nil }
func (c *compressedAdapter) Unlock(level int) error           { return nil }
func (c *compressedAdapter) CheckReservedLock() (bool, error) { return false, nil }
func (c *compressedAdapter) SectorSize() int                  { return 4096 }
func (c *compressedAdapter) DeviceCharacteristics() int       { return 0 }
