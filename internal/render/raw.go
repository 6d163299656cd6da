package render

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// RawRenderer shows the unparsed wire markup, syntax-highlighted as
// XML. Used by the raw-mode toggle when debugging what the server
// actually sent versus what the parser made of it.
type RawRenderer struct {
	syntaxTheme string
}

// NewRawRenderer creates a raw markup renderer.
func NewRawRenderer() *RawRenderer {
	return &RawRenderer{syntaxTheme: "monokai"}
}

// Render highlights one raw line. On any lexer error the line is
// returned as-is.
func (r *RawRenderer) Render(raw string) string {
	if raw == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, raw, "xml", "terminal16m", r.syntaxTheme); err != nil {
		return raw
	}

	// quick.Highlight appends newlines; the viewport owns line breaks.
	highlighted := buf.String()
	highlighted = strings.ReplaceAll(highlighted, "\n", "")
	highlighted = strings.ReplaceAll(highlighted, "\r", "")
	return highlighted
}
