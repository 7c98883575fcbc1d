// Package config holds the process-wide configuration for the compressed
// VFS shim: trace verbosity, compression level, and chunk size.
//
// Configuration is read once, at shim registration time, and is immutable
// afterward — every open file served by the shim shares the same
// Config. There is no per-connection or per-file override, matching the
// shim's single, process-global method table.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/marmos91/vfscompress/internal/bytesize"
	"github.com/marmos91/vfscompress/internal/logger"
)

// CompressionUnitBytes is the smallest unit a chunk size must be a
// multiple of.
const CompressionUnitBytes = 64 * 1024

// DefaultChunkSizeBytes is used when ChunkSizeBytes is left at its
// sentinel default of -1.
const DefaultChunkSizeBytes = 4 * CompressionUnitBytes

// DefaultCompressionLevel is used when CompressionLevel is left at its
// sentinel default of -1.
const DefaultCompressionLevel = 6

// CacheSlots is the fixed number of chunk-cache slots used per open file.
// The shim's cache is a small fixed-size array, not a size-based LRU, so
// this is a constant rather than a tunable.
const CacheSlots = 2

// Config is the full set of knobs the shim accepts. Precedence, highest
// first: environment variables prefixed VFSCOMPRESS_, then the config
// file passed to Load, then these defaults.
type Config struct {
	// TraceLevel is one of logger.TraceError (-1) through
	// logger.TraceMaximum (7). Defaults to logger.DefaultTraceLevel.
	TraceLevel int `mapstructure:"trace_level" validate:"min=-1,max=7"`

	// CompressionLevel is -1 (library default) or 1-9 inclusive,
	// matching the underlying DEFLATE-family codec's level range.
	CompressionLevel int `mapstructure:"compression_level" validate:"min=-1,max=9"`

	// ChunkSizeBytes is -1 (use DefaultChunkSizeBytes) or a positive
	// multiple of CompressionUnitBytes.
	ChunkSizeBytes int64 `mapstructure:"chunk_size_bytes"`

	// VFSName is the name the registered Shim reports from Name(). An
	// empty value is reported as is; it is not derived from the root VFS.
	VFSName string `mapstructure:"vfs_name"`

	// LogFormat/LogOutput configure the ambient logger, independent of
	// TraceLevel (which governs the shim's own verbosity knob).
	LogFormat string `mapstructure:"log_format" validate:"oneof=text json"`
	LogOutput string `mapstructure:"log_output"`
}

// Default returns the zero-config defaults: registration-level tracing,
// the codec's own default compression level, and the 4-unit chunk size.
func Default() Config {
	return Config{
		TraceLevel:       int(logger.DefaultTraceLevel),
		CompressionLevel: -1,
		ChunkSizeBytes:   -1,
		VFSName:          "compress",
		LogFormat:        "text",
		LogOutput:        "stderr",
	}
}

// Load reads configuration from an optional file path plus VFSCOMPRESS_*
// environment variables, falling back to Default() for anything unset.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("VFSCOMPRESS")
	v.AutomaticEnv()
	v.SetDefault("trace_level", cfg.TraceLevel)
	v.SetDefault("compression_level", cfg.CompressionLevel)
	v.SetDefault("chunk_size_bytes", cfg.ChunkSizeBytes)
	v.SetDefault("vfs_name", cfg.VFSName)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("log_output", cfg.LogOutput)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	out := Config{
		TraceLevel:       v.GetInt("trace_level"),
		CompressionLevel: v.GetInt("compression_level"),
		VFSName:          v.GetString("vfs_name"),
		LogFormat:        v.GetString("log_format"),
		LogOutput:        v.GetString("log_output"),
	}

	chunkSize, err := resolveChunkSizeBytes(v)
	if err != nil {
		return Config{}, err
	}
	out.ChunkSizeBytes = chunkSize

	if err := out.Validate(); err != nil {
		return Config{}, err
	}
	return out, nil
}

// resolveChunkSizeBytes accepts either a bare integer (including -1) or a
// human-readable size string ("256Ki", "1Mi") for chunk_size_bytes.
func resolveChunkSizeBytes(v *viper.Viper) (int64, error) {
	raw := v.Get("chunk_size_bytes")
	switch val := raw.(type) {
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	case string:
		if val == "-1" {
			return -1, nil
		}
		size, err := bytesize.ParseByteSize(val)
		if err != nil {
			return 0, fmt.Errorf("config: parsing chunk_size_bytes %q: %w", val, err)
		}
		return int64(size), nil
	default:
		return v.GetInt64("chunk_size_bytes"), nil
	}
}

var validate = validator.New()

// Validate checks struct-tag constraints plus the chunk-size multiple-of
// rule the tags can't express.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.ChunkSizeBytes != -1 {
		if c.ChunkSizeBytes <= 0 || c.ChunkSizeBytes%CompressionUnitBytes != 0 {
			return fmt.Errorf("config: chunk_size_bytes must be -1 or a positive multiple of %d", CompressionUnitBytes)
		}
	}
	return nil
}

// ResolvedChunkSize returns the effective chunk size in bytes, applying
// the -1-means-default sentinel.
func (c Config) ResolvedChunkSize() int {
	if c.ChunkSizeBytes == -1 {
		return DefaultChunkSizeBytes
	}
	return int(c.ChunkSizeBytes)
}

// ResolvedCompressionLevel applies the -1-means-default sentinel.
func (c Config) ResolvedCompressionLevel() int {
	if c.CompressionLevel == -1 {
		return DefaultCompressionLevel
	}
	return c.CompressionLevel
}
