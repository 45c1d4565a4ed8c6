package securezip

import (
	"archive/zip"
	"compress/flate"
	"fmt"
	"io"
	"sync/atomic"
)

// countReader counts the bytes read through it. It sits between the entry's
// raw compressed stream and the decompressor, so its count is the number of
// compressed bytes consumed so far.
type countReader struct {
	r io.Reader
	n int64
}

func (c *countReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// ThresholdReader wraps one entry's decompression stream and enforces the
// per-entry size and inflate-ratio limits on every read. Detection is
// incremental so that a zip bomb is rejected while decompressing, not after
// the decompressed data has already been materialized.
//
// A ThresholdReader is not safe for concurrent use, but distinct readers
// issued by the same SecureFile may be read from different goroutines.
type ThresholdReader struct {
	rc     io.ReadCloser // decompressed stream
	raw    *countReader  // nil when compressed counting is unavailable
	closed *atomic.Bool  // the issuing handle's closed flag

	name         string // entry name, for diagnostics
	compSize     int64  // declared compressed size
	decompressed int64  // cumulative bytes delivered to the caller
	limits       Thresholds
}

// newThresholdReader builds the stream for a single entry. For stored and
// deflated entries the raw compressed stream is read through a countReader,
// so the consumed-compressed count is exact up to the decompressor's
// read-ahead. Any other method falls back to the zip package's own
// decompression with the declared compressed size charged as consumed,
// which can only overstate the ratio.
func newThresholdReader(f *zip.File, limits Thresholds, closed *atomic.Bool) (*ThresholdReader, error) {
	tr := &ThresholdReader{
		limits: limits,
		closed: closed,
	}

	switch f.Method {
	case zip.Store, zip.Deflate:
		raw, err := f.OpenRaw()
		if err != nil {
			return nil, fmt.Errorf("securezip: open zip entry %q: %w", f.Name, err)
		}
		tr.raw = &countReader{r: raw}
		if f.Method == zip.Deflate {
			tr.rc = flate.NewReader(tr.raw)
		} else {
			tr.rc = io.NopCloser(tr.raw)
		}
	default:
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("securezip: open zip entry %q: %w", f.Name, err)
		}
		tr.rc = rc
	}

	return tr, nil
}

// bindEntry attaches the entry metadata used in diagnostics and in the
// ratio computation. It never resets the accumulated counters.
func (t *ThresholdReader) bindEntry(name string, compressedSize int64) {
	t.name = name
	t.compSize = compressedSize
}

// consumed returns the cumulative compressed bytes consumed so far,
// sampled after the delegate read returned. The decompressor may have read
// ahead by one buffer, so the count can lead what was strictly needed;
// that bias raises the observed ratio and never produces a false positive.
func (t *ThresholdReader) consumed() int64 {
	if t.raw != nil {
		return t.raw.n
	}
	return t.compSize
}

// Read delivers up to len(p) decompressed bytes and enforces the captured
// thresholds on what has been produced so far. When a limit is breached the
// violating bytes are withheld and the error is returned instead, so the
// caller never observes output past the point of detection. After the
// issuing SecureFile is closed, Read fails with ErrClosed.
func (t *ThresholdReader) Read(p []byte) (int, error) {
	if t.closed != nil && t.closed.Load() {
		return 0, ErrClosed
	}

	n, err := t.rc.Read(p)
	if n > 0 {
		t.decompressed += int64(n)
		if cerr := t.check(); cerr != nil {
			return 0, cerr
		}
	}
	return n, err
}

// check runs the size and ratio checks against the current counters.
// The ratio check is suppressed until the decompressed count passes the
// grace size; an entry of exactly the grace size stays exempt.
func (t *ThresholdReader) check() error {
	if t.decompressed > t.limits.MaxEntrySize {
		return &EntryTooBigError{Name: t.name, Size: t.decompressed, Limit: t.limits.MaxEntrySize}
	}

	if t.decompressed <= t.limits.GraceEntrySize {
		return nil
	}

	consumed := t.consumed()
	if consumed == 0 {
		// With no declared compressed size and nothing consumed yet the
		// ratio is undefined; skip until at least one compressed byte has
		// been read. Producing output from zero input when a compressed
		// size is declared is the degenerate worst case.
		if t.compSize == 0 {
			return nil
		}
		return &ZipBombError{Name: t.name, Ratio: 0, MinRatio: t.limits.MinInflateRatio}
	}

	ratio := float64(consumed) / float64(t.decompressed)
	if ratio < t.limits.MinInflateRatio {
		return &ZipBombError{Name: t.name, Ratio: ratio, MinRatio: t.limits.MinInflateRatio}
	}
	return nil
}

// Close releases the wrapped stream. No validation runs on close;
// detection is purely read-driven.
func (t *ThresholdReader) Close() error {
	return t.rc.Close()
}
