package highlight

import (
	"sync/atomic"

	"github.com/mudlark/mudlark/pkg/segment"
)

// Apply runs the full pipeline over one line of styled text: match,
// resolve overlaps, rewrite, overlay styling, coalesce. The input is
// never mutated. Lines consisting entirely of system-classified
// segments are exempt from all matching, so client-generated status
// text can never be restyled by user patterns.
func (s *Set) Apply(segs []segment.Segment, stream string) ([]segment.Segment, []Sound) {
	if s.Empty() || len(segs) == 0 {
		return segs, nil
	}
	if systemOnly(segs) {
		return segs, nil
	}

	chars, text, byteToChar := flatten(segs)
	if text == "" {
		return segs, nil
	}

	spans, sounds := s.match(text, stream)
	if len(spans) == 0 {
		return segs, sounds
	}

	out, overlays := resolve(chars, byteToChar, spans)
	applyOverlays(out, overlays)
	return coalesce(out), sounds
}

func systemOnly(segs []segment.Segment) bool {
	for _, sg := range segs {
		if sg.Span != segment.SpanSystem {
			return false
		}
	}
	return true
}

// Engine owns the current compiled rule set and swaps it atomically on
// reload, so concurrent readers never observe a partially-built set.
// The zero value is not usable; call NewEngine.
type Engine struct {
	set atomic.Pointer[Set]
}

// NewEngine returns an engine with an empty rule set; every call is a
// pass-through until Reload installs real rules.
func NewEngine() *Engine {
	e := &Engine{}
	empty, _ := Compile(nil)
	e.set.Store(empty)
	return e
}

// Reload compiles the rule list and publishes it as the new current
// set. The returned errors identify rules that were disabled; callers
// should surface them as warnings. Reloading with an empty list
// disables highlighting entirely.
func (e *Engine) Reload(rules []Rule) []RuleError {
	s, errs := Compile(rules)
	e.set.Store(s)
	return errs
}

// Apply processes one line against the current rule set.
func (e *Engine) Apply(segs []segment.Segment, stream string) ([]segment.Segment, []Sound) {
	return e.set.Load().Apply(segs, stream)
}

// FirstMatchColor queries the current rule set; see Set.FirstMatchColor.
func (e *Engine) FirstMatchColor(text string) (segment.Color, bool) {
	return e.set.Load().FirstMatchColor(text)
}
