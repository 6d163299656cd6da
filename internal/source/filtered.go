package source

import "bytes"

// Predicate decides whether a raw line belongs in a filtered view.
// The UI uses one to build per-stream views without the source layer
// knowing anything about the wire markup.
type Predicate func(raw []byte) bool

// FilteredProvider wraps a LineProvider and exposes only the lines a
// predicate accepts, plus an optional substring filter. Filtered
// indexes are cached and rebuilt lazily.
type FilteredProvider struct {
	source     LineProvider
	predicate  Predicate
	textFilter []byte

	filteredIndices []int
	dirty           bool
}

// NewFilteredProvider creates a filtered provider. A nil predicate
// accepts every line.
func NewFilteredProvider(src LineProvider) *FilteredProvider {
	return &FilteredProvider{source: src, dirty: true}
}

// SetPredicate installs the line predicate (nil clears it).
func (f *FilteredProvider) SetPredicate(p Predicate) {
	f.predicate = p
	f.dirty = true
}

// SetTextFilter sets the plain substring filter ("" clears it).
func (f *FilteredProvider) SetTextFilter(text string) {
	if text == "" {
		f.textFilter = nil
	} else {
		f.textFilter = []byte(text)
	}
	f.dirty = true
}

// IsFiltered reports whether any filter is active.
func (f *FilteredProvider) IsFiltered() bool {
	return f.predicate != nil || len(f.textFilter) > 0
}

// MarkDirty forces an index rebuild on next access, e.g. after the
// underlying transcript grows.
func (f *FilteredProvider) MarkDirty() {
	f.dirty = true
}

func (f *FilteredProvider) rebuildIndex() {
	if !f.dirty {
		return
	}
	f.filteredIndices = nil
	f.dirty = false

	if !f.IsFiltered() {
		return
	}

	total := f.source.LineCount()
	for i := 0; i < total; i++ {
		line, err := f.source.GetLine(i)
		if err != nil || line == nil {
			continue
		}
		if len(f.textFilter) > 0 && !bytes.Contains(line.Raw, f.textFilter) {
			continue
		}
		if f.predicate != nil && !f.predicate(line.Raw) {
			continue
		}
		f.filteredIndices = append(f.filteredIndices, i)
	}
}

// LineCount returns the number of lines passing the filters.
func (f *FilteredProvider) LineCount() int {
	f.rebuildIndex()
	if !f.IsFiltered() {
		return f.source.LineCount()
	}
	return len(f.filteredIndices)
}

// GetLine returns the line at the filtered index. The returned line
// keeps its original transcript index for display.
func (f *FilteredProvider) GetLine(idx int) (*Line, error) {
	f.rebuildIndex()
	if !f.IsFiltered() {
		return f.source.GetLine(idx)
	}

	if idx < 0 || idx >= len(f.filteredIndices) {
		return nil, nil
	}
	return f.source.GetLine(f.filteredIndices[idx])
}

// GetLines returns a range of filtered lines.
func (f *FilteredProvider) GetLines(start, count int) ([]*Line, error) {
	f.rebuildIndex()
	if !f.IsFiltered() {
		return f.source.GetLines(start, count)
	}

	var lines []*Line
	for i := start; i < start+count && i < len(f.filteredIndices); i++ {
		line, err := f.GetLine(i)
		if err != nil {
			return lines, err
		}
		if line != nil {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
