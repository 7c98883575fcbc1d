package vfs

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/marmos91/vfscompress/internal/logger"
	"github.com/marmos91/vfscompress/pkg/chunk"
	"github.com/marmos91/vfscompress/pkg/chunkcache"
	"github.com/marmos91/vfscompress/pkg/compressedfile"
	"github.com/marmos91/vfscompress/pkg/config"
	"github.com/marmos91/vfscompress/pkg/sparse"
	"github.com/marmos91/vfscompress/pkg/vfserr"
)

// legacySignature is the first 14 bytes of the host database's standard
// plaintext file header. A main-DB file whose header matches this is
// handled as plain and never compressed, guaranteeing round-trip
// compatibility with files that predate this shim.
var legacySignature = []byte("SQLite format ")

// Shim is the registered VFS. It wraps a Root VFS, intercepting only
// Open; every other VFS-level method delegates straight through.
type Shim struct {
	Root VFS
	Cfg  config.Config

	cacheMetrics chunkcache.Metrics
	codecMetrics chunk.CodecMetrics
}

var (
	registerMu sync.Mutex
	registered *Shim
)

// registry looks up a root VFS by name. Production wiring supplies the
// platform default VFS; tests supply a fake. Kept as a package variable
// (rather than a hardcoded single implementation) so Register has
// something to search without this package importing a concrete
// platform VFS implementation.
var registry = map[string]VFS{}

// RegisterRootVFS makes name available to Register as a wrappable root.
// Called once per root implementation before Register.
func RegisterRootVFS(name string, v VFS) {
	registry[name] = v
}

// Register finds rootName in the registry, builds a Shim wrapping it
// under cfg, and installs it as the process's single compressed VFS.
// Single initialisation only: calling Register a second time returns
// ErrMisuse without altering the already-registered Shim.
func Register(rootName string, cfg config.Config, cacheMetrics chunkcache.Metrics, codecMetrics chunk.CodecMetrics) (*Shim, error) {
	registerMu.Lock()
	defer registerMu.Unlock()

	if registered != nil {
		return nil, fmt.Errorf("%w: vfs already registered", vfserr.ErrMisuse)
	}

	root, ok := registry[rootName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", vfserr.ErrNotFound, rootName)
	}

	registered = &Shim{
		Root:         root,
		Cfg:          cfg,
		cacheMetrics: cacheMetrics,
		codecMetrics: codecMetrics,
	}
	logger.Tracef(logger.TraceLevel(cfg.TraceLevel), logger.TraceRegistration, "registered compressed vfs",
		logger.VFSName(cfg.VFSName), logger.ChunkSize(cfg.ResolvedChunkSize()), logger.CompressLevel(cfg.ResolvedCompressionLevel()))
	return registered, nil
}

func (s *Shim) Name() string { return s.Cfg.VFSName }

func (s *Shim) Delete(name string, syncDir bool) error { return s.Root.Delete(name, syncDir) }

func (s *Shim) Access(name string, flags int) (bool, error) { return s.Root.Access(name, flags) }

func (s *Shim) FullPathname(name string) (string, error) { return s.Root.FullPathname(name) }

// Open implements the registration contract's three-way dispatch:
// delegate to the root VFS, then for a main-DB open, sniff the file's
// header to decide compressed vs. legacy-passthrough; everything else
// (journal, WAL, temp) bypasses the pipeline untouched.
func (s *Shim) Open(name string, flags OpenFlags) (File, error) {
	underlying, err := s.Root.Open(name, flags)
	if err != nil {
		return nil, err
	}

	if !flags.Has(OpenMainDB) {
		return underlying, nil
	}

	legacy, err := sniffLegacy(name)
	if err != nil {
		_ = underlying.Close()
		return nil, err
	}
	if legacy {
		logger.Tracef(logger.TraceLevel(s.Cfg.TraceLevel), logger.TraceOpenClose, "opened legacy plain database",
			logger.Path(name), logger.LegacyFile(true))
		return underlying, nil
	}

	phys, ok := underlying.(compressedPhysical)
	if !ok {
		_ = underlying.Close()
		return nil, fmt.Errorf("%w: root vfs file does not support raw descriptor access required for compression", vfserr.ErrMisuse)
	}

	cf, err := buildCompressedFile(name, phys, s.Cfg, s.cacheMetrics, s.codecMetrics)
	if err != nil {
		_ = underlying.Close()
		return nil, err
	}
	logger.Tracef(logger.TraceLevel(s.Cfg.TraceLevel), logger.TraceOpenClose, "opened compressed database",
		logger.Path(name), logger.LegacyFile(false), logger.ChunkSize(s.Cfg.ResolvedChunkSize()))
	return &compressedAdapter{File: cf}, nil
}

// compressedPhysical is the subset of File a compressed open needs from
// the underlying handle: it must be usable as the chunk layer's
// PhysicalFile plus support Truncate/Sync/Size/Close.
type compressedPhysical interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Fd() uintptr
	Truncate(size int64) error
	Sync() error
	Size() (int64, error)
	Close() error
}

func buildCompressedFile(path string, phys compressedPhysical, cfg config.Config, cacheMetrics chunkcache.Metrics, codecMetrics chunk.CodecMetrics) (*compressedfile.File, error) {
	return compressedfile.New(path, phys, cfg.ResolvedChunkSize(), cfg.ResolvedCompressionLevel(), config.CacheSlots,
		sparse.NewDefault(), logger.TraceLevel(cfg.TraceLevel), cacheMetrics, codecMetrics)
}

// sniffLegacy opens name directly (independent of the root VFS's open,
// matching the registration contract's "additionally open a sparse-
// capable handle on the same path") and compares its first 14 bytes
// against the plaintext signature. A file shorter than 14 bytes, or one
// that does not yet exist, is never legacy: both cases mean the
// compressed pipeline is free to treat it as a fresh database.
func sniffLegacy(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: sniffing %s: %v", vfserr.ErrIO, path, err)
	}
	defer f.Close()

	header := make([]byte, len(legacySignature))
	n, err := f.Read(header)
	if err != nil && n == 0 {
		return false, nil
	}
	return n == len(legacySignature) && bytes.Equal(header, legacySignature), nil
}
