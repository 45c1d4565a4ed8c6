package securezip

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the securezip package.
var (
	// ErrNegativeValue indicates a negative value was passed to a
	// threshold setter. The previous value stays in effect.
	ErrNegativeValue = errors.New("securezip: value must be greater than or equal to zero")

	// ErrEntryNotFound indicates the requested entry does not exist
	// in the archive.
	ErrEntryNotFound = errors.New("securezip: entry not found in archive")

	// ErrClosed indicates the SecureFile has been closed; streams it
	// issued are no longer readable.
	ErrClosed = errors.New("securezip: archive already closed")
)

// DuplicateEntryError is returned by Open and NewReader when the archive
// contains two entries with an identical name. A conforming ZIP reader
// resolves duplicate names unpredictably, which lets an attacker smuggle
// content past validation done on the other copy, so such archives are
// rejected outright.
type DuplicateEntryError struct {
	Name string // the duplicated entry name
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("securezip: archive contains more than one entry named %q", e.Name)
}

// TooManyEntriesError is returned by OpenEntry when the archive has
// required more streams than the configured maximum file count allows.
type TooManyEntriesError struct {
	Limit int64 // the configured maximum file count
}

func (e *TooManyEntriesError) Error() string {
	return fmt.Sprintf("securezip: archive embeds more entries than the allowed maximum (%d); "+
		"if the file is trusted, raise the limit with SetMaxFileCount", e.Limit)
}

// EntryTooBigError is returned mid-read when a single entry's decompressed
// size exceeds the configured maximum entry size.
type EntryTooBigError struct {
	Name  string // entry name
	Size  int64  // decompressed bytes observed so far
	Limit int64  // the configured maximum entry size
}

func (e *EntryTooBigError) Error() string {
	return fmt.Sprintf("securezip: zip entry %q too large: %d bytes decompressed (max %d); "+
		"if the file is trusted, raise the limit with SetMaxEntrySize", e.Name, e.Size, e.Limit)
}

// ZipBombError is returned mid-read when a single entry's inflate ratio
// (compressed bytes consumed / decompressed bytes produced) falls below
// the configured minimum after the grace size has been passed.
type ZipBombError struct {
	Name     string  // entry name
	Ratio    float64 // observed inflate ratio
	MinRatio float64 // the configured minimum inflate ratio
}

func (e *ZipBombError) Error() string {
	return fmt.Sprintf("securezip: zip bomb detected in entry %q: inflate ratio %.5f is below the minimum %.5f; "+
		"if the file is trusted, lower the limit with SetMinInflateRatio", e.Name, e.Ratio, e.MinRatio)
}

// TextTooBigError is returned by ExtractText when the extracted text
// exceeds the configured maximum text size.
type TextTooBigError struct {
	Name  string // entry name
	Limit int64  // the configured maximum text size
}

func (e *TextTooBigError) Error() string {
	return fmt.Sprintf("securezip: text extracted from entry %q exceeds the allowed maximum (%d bytes); "+
		"if the file is trusted, raise the limit with SetMaxTextSize", e.Name, e.Limit)
}
