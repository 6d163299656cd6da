package source

// Line is a single raw line of game wire markup with its position in
// the transcript. Parsing and highlighting happen downstream; the
// source layer deals only in bytes.
type Line struct {
	Raw           []byte
	OriginalIndex int // line number in the full transcript
}

// LineProvider is the core abstraction for accessing transcript lines.
// The viewport only interacts with this interface.
type LineProvider interface {
	// LineCount returns total number of lines.
	LineCount() int

	// GetLine returns line at index (0-based).
	GetLine(index int) (*Line, error)

	// GetLines returns a range of lines efficiently.
	GetLines(start, count int) ([]*Line, error)
}
