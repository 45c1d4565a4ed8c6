package securezip

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractText(t *testing.T) {
	sf := openTestZip(t, buildZipBytes(t, map[string]string{
		"doc.xhtml": `<html><head><style>p{margin:0}</style></head>` +
			`<body><h1>Title</h1><p>Hello <b>world</b>.</p>` +
			`<script>var x = 1;</script><p>Bye.</p></body></html>`,
	}), NewRegistry())

	got, err := sf.ExtractText("doc.xhtml")
	if err != nil {
		t.Fatalf("ExtractText = %v", err)
	}
	want := "Title\nHello world.\nBye."
	if got != want {
		t.Errorf("ExtractText = %q; want %q", got, want)
	}
}

func TestExtractTextMissingEntry(t *testing.T) {
	sf := openTestZip(t, buildZipBytes(t, map[string]string{"a.txt": "a"}), NewRegistry())
	if _, err := sf.ExtractText("missing.xhtml"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("ExtractText of a missing entry = %v; want ErrEntryNotFound", err)
	}
}

func TestExtractTextBudget(t *testing.T) {
	reg := NewRegistry()
	if err := reg.SetMaxTextSize(16); err != nil {
		t.Fatal(err)
	}

	sf := openTestZip(t, buildZipBytes(t, map[string]string{
		"short.xhtml": `<p>tiny</p>`,
		"long.xhtml":  `<p>` + strings.Repeat("lorem ipsum ", 10) + `</p>`,
	}), reg)

	if _, err := sf.ExtractText("short.xhtml"); err != nil {
		t.Errorf("ExtractText under budget = %v; want success", err)
	}

	_, err := sf.ExtractText("long.xhtml")
	var big *TextTooBigError
	if !errors.As(err, &big) {
		t.Fatalf("ExtractText over budget = %v; want *TextTooBigError", err)
	}
	if big.Name != "long.xhtml" {
		t.Errorf("TextTooBigError.Name = %q; want %q", big.Name, "long.xhtml")
	}
	if big.Limit != 16 {
		t.Errorf("TextTooBigError.Limit = %d; want 16", big.Limit)
	}
}

func TestExtractTextGuardedRead(t *testing.T) {
	// The raw entry bytes go through the usual threshold path before any
	// tokenizing happens.
	reg := NewRegistry()
	if err := reg.SetMaxEntrySize(64); err != nil {
		t.Fatal(err)
	}

	sf := openTestZip(t, buildZipBytes(t, map[string]string{
		"big.xhtml": `<p>` + incompressible(1024) + `</p>`,
	}), reg)

	_, err := sf.ExtractText("big.xhtml")
	var big *EntryTooBigError
	if !errors.As(err, &big) {
		t.Errorf("ExtractText of an oversized entry = %v; want *EntryTooBigError", err)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"internal run", "a  \t b", "a b"},
		{"all whitespace", " \n\t ", ""},
		{"leading kept as one space", "  x", " x"},
		{"trailing kept as one space", "x\n", "x "},
		{"both sides", " a b ", " a b "},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := collapseWhitespace(tt.input); got != tt.want {
				t.Errorf("collapseWhitespace(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}
