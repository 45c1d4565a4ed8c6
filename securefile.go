package securezip

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
)

// SecureFile is an archive handle that validates the archive's structure at
// open time and issues threshold-enforcing streams for its entries.
// Use Open or NewReader to create a SecureFile instance.
//
// A SecureFile may issue streams to multiple goroutines concurrently; each
// stream's counters are private to that stream.
type SecureFile struct {
	zip    *zip.Reader
	closer io.Closer // non-nil only when created via Open
	reg    *Registry
	path   string
	index  map[string]*zip.File // exact-match entry index
	issued atomic.Int64         // streams issued over the handle's lifetime
	closed atomic.Bool          // shared with issued streams
}

// Open opens the archive at the given path and validates that no two
// entries share a name, failing with a *DuplicateEntryError otherwise.
// The path may include traversal; it is up to the caller to validate that
// it is safe to open. The caller must call Close when done.
func Open(name string) (*SecureFile, error) {
	return OpenWith(name, defaultRegistry)
}

// OpenWith is Open with an explicit Registry instead of the process-wide
// configuration.
func OpenWith(name string, reg *Registry) (*SecureFile, error) {
	zrc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("securezip: open %s: %w", name, err)
	}

	// Absolute path is stored for diagnostics only.
	abs, err := filepath.Abs(name)
	if err != nil {
		abs = name
	}

	sf, err := initSecureFile(&zrc.Reader, zrc, abs, reg)
	if err != nil {
		zrc.Close()
		return nil, err
	}
	return sf, nil
}

// NewReader creates a SecureFile from an io.ReaderAt with the given size.
// The caller is responsible for the lifetime of r; Close only invalidates
// issued streams.
func NewReader(r io.ReaderAt, size int64) (*SecureFile, error) {
	return NewReaderWith(r, size, defaultRegistry)
}

// NewReaderWith is NewReader with an explicit Registry instead of the
// process-wide configuration.
func NewReaderWith(r io.ReaderAt, size int64, reg *Registry) (*SecureFile, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("securezip: open zip: %w", err)
	}
	return initSecureFile(zr, nil, "", reg)
}

// initSecureFile performs common initialisation: entry-name validation and
// index construction. Validation failures abort construction.
func initSecureFile(zr *zip.Reader, closer io.Closer, path string, reg *Registry) (*SecureFile, error) {
	if reg == nil {
		reg = defaultRegistry
	}
	sf := &SecureFile{
		zip:    zr,
		closer: closer,
		reg:    reg,
		path:   path,
	}
	if err := sf.validateEntryNames(); err != nil {
		return nil, err
	}
	return sf, nil
}

// validateEntryNames iterates all entries once, building the exact-match
// index and rejecting the archive as soon as a name repeats.
func (sf *SecureFile) validateEntryNames() error {
	sf.index = make(map[string]*zip.File, len(sf.zip.File))
	for _, f := range sf.zip.File {
		if _, dup := sf.index[f.Name]; dup {
			return &DuplicateEntryError{Name: f.Name}
		}
		sf.index[f.Name] = f
	}
	return nil
}

// Entries returns the archive's entries in central directory order.
func (sf *SecureFile) Entries() []*zip.File {
	return sf.zip.File
}

// Entry looks up an entry by its exact name.
// Returns nil if no entry with that name exists.
func (sf *SecureFile) Entry(name string) *zip.File {
	return sf.index[name]
}

// OpenEntry returns a threshold-enforcing stream over the contents of the
// given entry. It counts against the registry's maximum file count: once
// the handle has issued that many streams, further calls fail with a
// *TooManyEntriesError. A failed call does not affect the handle's other
// entries.
//
// Closing the SecureFile invalidates all streams returned by this method.
func (sf *SecureFile) OpenEntry(f *zip.File) (*ThresholdReader, error) {
	if sf.closed.Load() {
		return nil, ErrClosed
	}

	// The counter is monotonic over the handle's lifetime; a rejected
	// issuance does not refund its slot.
	limit := sf.reg.MaxFileCount()
	if sf.issued.Add(1) > limit {
		return nil, &TooManyEntriesError{Limit: limit}
	}

	tr, err := newThresholdReader(f, sf.reg.Snapshot(), &sf.closed)
	if err != nil {
		return nil, err
	}
	tr.bindEntry(f.Name, int64(f.CompressedSize64))
	return tr, nil
}

// ReadEntry reads the full contents of the named entry through a
// threshold-enforcing stream. Returns ErrEntryNotFound if no entry with
// that name exists; threshold violations surface as *EntryTooBigError,
// *ZipBombError, or *TooManyEntriesError.
func (sf *SecureFile) ReadEntry(name string) ([]byte, error) {
	f := sf.Entry(name)
	if f == nil {
		return nil, ErrEntryNotFound
	}

	tr, err := sf.OpenEntry(f)
	if err != nil {
		return nil, err
	}
	defer tr.Close()

	data, err := io.ReadAll(tr)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Close releases the underlying archive. All streams previously issued by
// this handle become invalid for further reads. Close is idempotent.
func (sf *SecureFile) Close() error {
	if sf.closed.Swap(true) {
		return nil
	}
	if sf.closer != nil {
		return sf.closer.Close()
	}
	return nil
}

// Path returns the resolved absolute path of the archive, or the empty
// string when the SecureFile was created via NewReader.
//
// Deprecated: Path exists for diagnostics parity only and will be removed
// in a future version.
func (sf *SecureFile) Path() string {
	return sf.path
}
