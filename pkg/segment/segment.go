package segment

import "strings"

// Color is an opaque color value understood by the rendering layer.
// It is typically a lipgloss-compatible string: a 256-palette index
// like "214" or a hex value like "#ff8700". The empty string means
// "not set" (inherit whatever the renderer would use otherwise).
type Color string

// IsSet reports whether the color carries a value.
func (c Color) IsSet() bool {
	return c != ""
}

// Span classifies a run of text semantically, independent of color.
// The game protocol assigns these; the highlight engine uses them to
// protect certain text (links, monster emphasis) from whole-line
// overrides and to exempt system lines from matching entirely.
type Span int

const (
	SpanNormal Span = iota
	SpanLink
	SpanMonster
	SpanSpell
	SpanSpeech
	SpanSystem
)

// String returns the protocol name of the span classification.
func (s Span) String() string {
	switch s {
	case SpanLink:
		return "link"
	case SpanMonster:
		return "monster"
	case SpanSpell:
		return "spell"
	case SpanSpeech:
		return "speech"
	case SpanSystem:
		return "system"
	default:
		return "normal"
	}
}

// Link is the opaque payload attached to clickable game text: the
// server-side object identifier plus the noun used to act on it.
type Link struct {
	ID   string
	Noun string
}

// Segment is a contiguous run of characters sharing one style.
// The concatenation of all segment texts in a line equals the line's
// full text.
type Segment struct {
	Text string
	Fg   Color
	Bg   Color
	Bold bool
	Span Span
	Link *Link
}

// SameStyle reports whether two segments could be merged into one run.
// Link payloads compare by value; a link/no-link difference always
// splits a run so the payload never bleeds across characters that do
// not own it.
func (s Segment) SameStyle(o Segment) bool {
	return s.Fg == o.Fg && s.Bg == o.Bg && s.Bold == o.Bold &&
		s.Span == o.Span && LinkEqual(s.Link, o.Link)
}

// LinkEqual compares two link payloads by value, treating nil as "no link".
func LinkEqual(a, b *Link) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Text returns the flattened plain text of a segment list.
func Text(segs []Segment) string {
	if len(segs) == 1 {
		return segs[0].Text
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}
