package securezip

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// textBlockTags is the set of tags that insert a newline during text
// extraction.
var textBlockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.Hr:         true,
	atom.Table:      true,
}

// textSkipTags is the set of tags whose content is skipped during text
// extraction.
var textSkipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

// ExtractText reads the named XML/XHTML entry through a threshold-enforcing
// stream and returns its plain text: text nodes concatenated with newlines
// at block-level tags, script and style content skipped, and whitespace
// runs collapsed.
//
// The registry's maximum text size bounds the result; exceeding it fails
// with a *TextTooBigError. The entry's raw bytes are additionally subject
// to the usual size and ratio limits, like any other guarded read.
func (sf *SecureFile) ExtractText(name string) (string, error) {
	data, err := sf.ReadEntry(name)
	if err != nil {
		return "", err
	}
	return extractTextBudget(name, data, sf.reg.MaxTextSize())
}

// extractTextBudget tokenizes XHTML content and accumulates its text,
// failing as soon as the accumulated text exceeds budget bytes.
func extractTextBudget(name string, data []byte, budget int64) (string, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader(data))

	var buf strings.Builder
	skipDepth := 0 // depth inside a skip tag
	lastWasNewline := true

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			err := tokenizer.Err()
			if errors.Is(err, io.EOF) {
				return strings.TrimSpace(buf.String()), nil
			}
			return "", fmt.Errorf("securezip: extract text from entry %q: %w", name, err)

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if textSkipTags[a] {
				if tt == html.StartTagToken {
					skipDepth++
				}
				continue
			}
			if skipDepth > 0 {
				continue
			}
			if textBlockTags[a] && buf.Len() > 0 && !lastWasNewline {
				buf.WriteByte('\n')
				lastWasNewline = true
			}

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			if textSkipTags[a] && skipDepth > 0 {
				skipDepth--
			}

		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			text := collapseWhitespace(string(tokenizer.Text()))
			if text == "" {
				continue
			}
			buf.WriteString(text)
			lastWasNewline = strings.HasSuffix(text, "\n")
			if int64(buf.Len()) > budget {
				return "", &TextTooBigError{Name: name, Limit: budget}
			}
		}
	}
}

// collapseWhitespace replaces runs of whitespace with a single space.
// Returns the empty string if the input is all whitespace; otherwise a
// single leading/trailing space survives so inter-element spacing is kept.
func collapseWhitespace(s string) string {
	var buf strings.Builder
	inSpace := false
	hasNonSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inSpace = true
			continue
		}
		if inSpace && buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteRune(r)
		inSpace = false
		hasNonSpace = true
	}
	if !hasNonSpace {
		return ""
	}
	result := buf.String()
	if s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == '\r' {
		result = " " + result
	}
	if inSpace {
		result += " "
	}
	return result
}
