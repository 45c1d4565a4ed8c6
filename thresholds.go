package securezip

import (
	"log/slog"
	"math"
	"sync/atomic"
)

// Default threshold values. MaxEntrySize defaults to the 32-bit ZIP format
// ceiling; the others follow the conventional limits for office-document
// containers.
const (
	DefaultMinInflateRatio = 0.01
	DefaultMaxEntrySize    = int64(0xFFFFFFFF)
	DefaultMaxFileCount    = int64(1000)
	DefaultGraceEntrySize  = int64(100 * 1024)
	DefaultMaxTextSize     = int64(10 * 1024 * 1024)
)

// Registry holds the active protection limits. Values may be changed at any
// time; they take effect for archives and streams created afterwards.
// Streams capture a Snapshot at creation and are not affected by later
// changes.
//
// Each value is read and written atomically. During a concurrent update a
// reader may observe either the old or the new value, which is acceptable
// for advisory configuration.
type Registry struct {
	minInflateRatio atomic.Uint64 // float64 bits
	maxEntrySize    atomic.Int64
	maxFileCount    atomic.Int64
	graceEntrySize  atomic.Int64
	maxTextSize     atomic.Int64
}

// defaultRegistry backs the package-level configuration functions.
var defaultRegistry = NewRegistry()

// NewRegistry returns a Registry preloaded with the default limits.
func NewRegistry() *Registry {
	r := &Registry{}
	r.minInflateRatio.Store(math.Float64bits(DefaultMinInflateRatio))
	r.maxEntrySize.Store(DefaultMaxEntrySize)
	r.maxFileCount.Store(DefaultMaxFileCount)
	r.graceEntrySize.Store(DefaultGraceEntrySize)
	r.maxTextSize.Store(DefaultMaxTextSize)
	return r
}

// Thresholds is an immutable snapshot of a Registry's values, captured once
// per stream at creation time.
type Thresholds struct {
	MinInflateRatio float64
	MaxEntrySize    int64
	MaxFileCount    int64
	GraceEntrySize  int64
	MaxTextSize     int64
}

// Snapshot returns the current values as an immutable Thresholds value.
func (r *Registry) Snapshot() Thresholds {
	return Thresholds{
		MinInflateRatio: r.MinInflateRatio(),
		MaxEntrySize:    r.MaxEntrySize(),
		MaxFileCount:    r.MaxFileCount(),
		GraceEntrySize:  r.GraceEntrySize(),
		MaxTextSize:     r.MaxTextSize(),
	}
}

// SetMinInflateRatio sets the minimum ratio between compressed bytes
// consumed and decompressed bytes produced before a read fails as a zip
// bomb. It defaults to 1% (0.01): when any entry past the grace size
// compresses better than 1%, reading fails with a *ZipBombError.
func (r *Registry) SetMinInflateRatio(ratio float64) error {
	if ratio < 0 {
		return ErrNegativeValue
	}
	r.minInflateRatio.Store(math.Float64bits(ratio))
	return nil
}

// MinInflateRatio returns the current minimum inflate ratio.
func (r *Registry) MinInflateRatio() float64 {
	return math.Float64frombits(r.minInflateRatio.Load())
}

// SetMaxEntrySize sets the maximum decompressed size of a single entry.
// It defaults to 4 GiB, the 32-bit ZIP format maximum. A warning is logged
// when the value exceeds that ceiling, since raising it weakens protection.
func (r *Registry) SetMaxEntrySize(size int64) error {
	if size < 0 {
		return ErrNegativeValue
	}
	if size > DefaultMaxEntrySize {
		slog.Warn("securezip: setting max entry size greater than 4 GiB can be risky", "bytes", size)
	}
	r.maxEntrySize.Store(size)
	return nil
}

// MaxEntrySize returns the current maximum decompressed entry size.
func (r *Registry) MaxEntrySize() int64 {
	return r.maxEntrySize.Load()
}

// SetMaxFileCount sets the maximum number of entries a single SecureFile
// may stream over its lifetime. It defaults to 1000.
func (r *Registry) SetMaxFileCount(count int64) error {
	if count < 0 {
		return ErrNegativeValue
	}
	r.maxFileCount.Store(count)
	return nil
}

// MaxFileCount returns the current maximum file count.
func (r *Registry) MaxFileCount() int64 {
	return r.maxFileCount.Load()
}

// SetGraceEntrySize sets the decompressed-byte threshold below which the
// inflate ratio check is suppressed. It defaults to 100 KiB. Small entries
// are exempt so that legitimately tiny, highly compressible data is not
// flagged; setting this very small may flag more files as zip bombs, and a
// warning is logged when the value exceeds the default since raising it
// delays detection.
func (r *Registry) SetGraceEntrySize(size int64) error {
	if size < 0 {
		return ErrNegativeValue
	}
	if size > DefaultGraceEntrySize {
		slog.Warn("securezip: setting grace entry size greater than 100 KiB can be risky", "bytes", size)
	}
	r.graceEntrySize.Store(size)
	return nil
}

// GraceEntrySize returns the current grace entry size.
func (r *Registry) GraceEntrySize() int64 {
	return r.graceEntrySize.Load()
}

// SetMaxTextSize sets the maximum number of text bytes extracted from a
// single entry by ExtractText. It defaults to 10 MiB. The limit is
// advisory: it binds text-extracting callers, not ThresholdReader itself.
// A warning is logged when the value exceeds the default.
func (r *Registry) SetMaxTextSize(size int64) error {
	if size < 0 {
		return ErrNegativeValue
	}
	if size > DefaultMaxTextSize {
		slog.Warn("securezip: setting max text size greater than 10 MiB can be risky", "bytes", size)
	}
	r.maxTextSize.Store(size)
	return nil
}

// MaxTextSize returns the current maximum extracted text size.
func (r *Registry) MaxTextSize() int64 {
	return r.maxTextSize.Load()
}

// Package-level configuration, backed by a process-wide default Registry.
// Open and NewReader use these values; OpenWith and NewReaderWith take an
// explicit Registry instead.

// SetMinInflateRatio sets the process-wide minimum inflate ratio.
func SetMinInflateRatio(ratio float64) error { return defaultRegistry.SetMinInflateRatio(ratio) }

// MinInflateRatio returns the process-wide minimum inflate ratio.
func MinInflateRatio() float64 { return defaultRegistry.MinInflateRatio() }

// SetMaxEntrySize sets the process-wide maximum decompressed entry size.
func SetMaxEntrySize(size int64) error { return defaultRegistry.SetMaxEntrySize(size) }

// MaxEntrySize returns the process-wide maximum decompressed entry size.
func MaxEntrySize() int64 { return defaultRegistry.MaxEntrySize() }

// SetMaxFileCount sets the process-wide maximum file count.
func SetMaxFileCount(count int64) error { return defaultRegistry.SetMaxFileCount(count) }

// MaxFileCount returns the process-wide maximum file count.
func MaxFileCount() int64 { return defaultRegistry.MaxFileCount() }

// SetGraceEntrySize sets the process-wide grace entry size.
func SetGraceEntrySize(size int64) error { return defaultRegistry.SetGraceEntrySize(size) }

// GraceEntrySize returns the process-wide grace entry size.
func GraceEntrySize() int64 { return defaultRegistry.GraceEntrySize() }

// SetMaxTextSize sets the process-wide maximum extracted text size.
func SetMaxTextSize(size int64) error { return defaultRegistry.SetMaxTextSize(size) }

// MaxTextSize returns the process-wide maximum extracted text size.
func MaxTextSize() int64 { return defaultRegistry.MaxTextSize() }
