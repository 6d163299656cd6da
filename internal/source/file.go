package source

import (
	"github.com/mudlark/mudlark/internal/index"
	mudio "github.com/mudlark/mudlark/internal/io"
)

// TranscriptSource provides lines from a single session transcript.
type TranscriptSource struct {
	file      *mudio.MappedFile
	lineIndex *index.LineIndex
	path      string
}

// NewTranscriptSource opens a transcript and indexes its lines.
func NewTranscriptSource(path string) (*TranscriptSource, error) {
	file, err := mudio.OpenMapped(path)
	if err != nil {
		return nil, err
	}

	lineIndex, err := index.BuildLineIndex(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	return &TranscriptSource{
		file:      file,
		lineIndex: lineIndex,
		path:      path,
	}, nil
}

// LineCount returns total number of lines.
func (s *TranscriptSource) LineCount() int {
	return s.lineIndex.LineCount()
}

// GetLine returns line at index.
func (s *TranscriptSource) GetLine(idx int) (*Line, error) {
	raw, err := s.lineIndex.GetLine(idx)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return &Line{Raw: raw, OriginalIndex: idx}, nil
}

// GetLines returns a range of lines.
func (s *TranscriptSource) GetLines(start, count int) ([]*Line, error) {
	rawLines, err := s.lineIndex.GetLines(start, count)
	if err != nil {
		return nil, err
	}

	lines := make([]*Line, len(rawLines))
	for i, raw := range rawLines {
		lines[i] = &Line{Raw: raw, OriginalIndex: start + i}
	}
	return lines, nil
}

// Refresh reopens the transcript if the capture process has appended
// to it and indexes the new lines. Returns the number of lines added.
func (s *TranscriptSource) Refresh() (int, error) {
	oldSize := s.file.Size()
	oldCount := s.lineIndex.LineCount()

	changed, err := s.file.Refresh()
	if err != nil {
		return 0, err
	}
	if !changed {
		return 0, nil
	}

	if err := s.lineIndex.AppendNewLines(oldSize); err != nil {
		return 0, err
	}
	return s.lineIndex.LineCount() - oldCount, nil
}

// Path returns the transcript path.
func (s *TranscriptSource) Path() string {
	return s.path
}

// Close closes the transcript.
func (s *TranscriptSource) Close() error {
	return s.file.Close()
}
