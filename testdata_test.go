package securezip

import (
	"archive/zip"
	"bytes"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildZipBytes creates an in-memory ZIP archive from the provided files
// map (path → content) and returns the raw archive bytes.
// It calls t.Fatal on any error.
func buildZipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range files {
		writeZipEntry(t, zw, name, content, zip.Deflate)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("buildZipBytes: close writer: %v", err)
	}
	return buf.Bytes()
}

// writeZipEntry adds one entry with the given compression method.
func writeZipEntry(t *testing.T, zw *zip.Writer, name, content string, method uint16) {
	t.Helper()
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
	if err != nil {
		t.Fatalf("writeZipEntry: create %s: %v", name, err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatalf("writeZipEntry: write %s: %v", name, err)
	}
}

// openTestZip opens archive bytes as a SecureFile bound to reg.
// The handle is closed automatically when the test finishes.
func openTestZip(t *testing.T, data []byte, reg *Registry) *SecureFile {
	t.Helper()
	sf, err := NewReaderWith(bytes.NewReader(data), int64(len(data)), reg)
	if err != nil {
		t.Fatalf("openTestZip: %v", err)
	}
	t.Cleanup(func() { sf.Close() })
	return sf
}

// buildTestZipFile writes a ZIP archive to a temporary file and returns the
// file path. This variant is for testing Open, which requires a path.
func buildTestZipFile(t *testing.T, files map[string]string) string {
	t.Helper()
	fp := filepath.Join(t.TempDir(), "test.zip")
	if err := os.WriteFile(fp, buildZipBytes(t, files), 0644); err != nil {
		t.Fatalf("buildTestZipFile: write file: %v", err)
	}
	return fp
}

// buildDuplicateEntryZip returns archive bytes containing two entries that
// share a name. zip.Writer emits them without complaint, which is exactly
// the shape a hostile archive would have.
func buildDuplicateEntryZip(t *testing.T, name string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	writeZipEntry(t, zw, name, "first", zip.Deflate)
	writeZipEntry(t, zw, "other.txt", "other", zip.Deflate)
	writeZipEntry(t, zw, name, "second", zip.Deflate)
	if err := zw.Close(); err != nil {
		t.Fatalf("buildDuplicateEntryZip: close writer: %v", err)
	}
	return buf.Bytes()
}

// compressible returns n bytes of a single repeated character, which
// deflate shrinks to a tiny fraction of n.
func compressible(n int) string {
	return strings.Repeat("A", n)
}

// incompressible returns n deterministic pseudo-random bytes, which deflate
// cannot meaningfully shrink (inflate ratio stays close to 1).
func incompressible(n int) string {
	rng := rand.New(rand.NewSource(42))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(rng.Intn(256))
	}
	return string(b)
}
