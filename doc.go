// Package securezip provides a guard layer for reading ZIP archives from
// untrusted sources, such as office-document containers. It detects and
// rejects zip bombs and structurally malicious archives before or while
// their contents are decompressed.
//
// # Opening an archive
//
// Use [Open] to open a file by path, or [NewReader] to read from an
// [io.ReaderAt]. Both validate at open time that no two entries share a
// name, rejecting ambiguous archives with a [DuplicateEntryError]:
//
//	sf, err := securezip.Open("document.docx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sf.Close()
//
// # Reading entries
//
// [SecureFile.OpenEntry] returns a [ThresholdReader], an [io.ReadCloser]
// that enforces the configured limits on every read:
//
//	for _, f := range sf.Entries() {
//	    rc, err := sf.OpenEntry(f)
//	    if err != nil {
//	        log.Fatal(err) // e.g. *TooManyEntriesError
//	    }
//	    _, err = io.Copy(io.Discard, rc)
//	    rc.Close()
//	    if err != nil {
//	        log.Fatal(err) // e.g. *ZipBombError, *EntryTooBigError
//	    }
//	}
//
// [SecureFile.ReadEntry] reads a single entry fully through the same
// guarded path, and [SecureFile.ExtractText] additionally extracts plain
// text from XHTML entries under the configured text budget.
//
// # Limits
//
// Limits are process-wide and adjustable at any time via [SetMinInflateRatio],
// [SetMaxEntrySize], [SetMaxFileCount], [SetGraceEntrySize], and
// [SetMaxTextSize]; changes apply to archives and streams created
// afterwards. Open streams keep the values captured at their creation.
// Alternatively, pass an explicit [Registry] to [OpenWith] or
// [NewReaderWith] to avoid global state.
//
// Two kinds of per-entry enforcement run on every read: the decompressed
// size of an entry may not exceed the maximum entry size, and once an entry
// has produced more than the grace size, the ratio of compressed bytes
// consumed to decompressed bytes produced may not fall below the minimum
// inflate ratio. An entry compressing better than 1% (the default minimum)
// is treated as a zip bomb.
//
// # Error handling
//
// Violations surface as typed errors carrying the entry name and the limit
// that was exceeded:
//   - [DuplicateEntryError] – two entries share a name (raised at open)
//   - [TooManyEntriesError] – too many streams issued (raised at issuance)
//   - [EntryTooBigError] – decompressed size over the ceiling (raised mid-read)
//   - [ZipBombError] – inflate ratio under the minimum (raised mid-read)
//   - [TextTooBigError] – extracted text over the budget
//
// I/O errors from the underlying archive and decompression layers propagate
// unchanged. This package is not a malware scanner; it only bounds resource
// consumption from size and ratio amplification and duplicate-entry
// ambiguity. Validating that the archive path itself is safe to open is the
// caller's responsibility.
package securezip
