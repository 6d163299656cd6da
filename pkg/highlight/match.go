package highlight

import "github.com/mudlark/mudlark/pkg/segment"

// matchSpan is one raw match over the flattened line, in byte offsets,
// carrying the owning rule's payload. replace, when non-nil, is the
// already-expanded substitution text.
type matchSpan struct {
	start, end int
	fg, bg     segment.Color
	bold       bool
	wholeLine  bool
	replace    *string
}

// isWordByte reports whether b continues a word: ASCII alphanumeric or
// underscore. Fast-rule matches must not butt against word bytes.
func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

// wordBounded checks the whole-word condition for [start,end) in text.
func wordBounded(text string, start, end int) bool {
	if start > 0 && isWordByte(text[start-1]) {
		return false
	}
	if end < len(text) && isWordByte(text[end]) {
		return false
	}
	return true
}

// match runs both matching passes over the flattened line and returns
// the raw spans in discovery order (fast pass first) plus any sound
// triggers. Sounds fire per accepted match, before overlap resolution,
// so a discarded or overlaid match still rings its cue.
func (s *Set) match(text, stream string) ([]matchSpan, []Sound) {
	var spans []matchSpan
	var sounds []Sound

	if s.trie != nil {
		for _, m := range s.trie.MatchString(text) {
			start := int(m.Pos())
			end := start + len(m.Match())
			if !wordBounded(text, start, end) {
				continue
			}
			for _, ri := range s.fragRules[m.Pattern()] {
				rule := s.rules[ri].rule
				if !streamApplies(rule, stream) {
					continue
				}
				spans = append(spans, matchSpan{
					start: start, end: end,
					fg: rule.Fg, bg: rule.Bg, bold: rule.Bold,
					wholeLine: rule.WholeLine,
				})
				if rule.SoundFile != "" {
					sounds = append(sounds, Sound{File: rule.SoundFile, Volume: rule.SoundVolume})
				}
			}
		}
	}

	for _, cr := range s.rules {
		if cr.re == nil || !streamApplies(cr.rule, stream) {
			continue
		}
		if cr.rule.Replace != nil {
			// Submatch indexes are needed for capture expansion.
			for _, idx := range cr.re.FindAllStringSubmatchIndex(text, -1) {
				expanded := string(cr.re.ExpandString(nil, *cr.rule.Replace, text, idx))
				spans = append(spans, matchSpan{
					start: idx[0], end: idx[1],
					fg: cr.rule.Fg, bg: cr.rule.Bg, bold: cr.rule.Bold,
					wholeLine: cr.rule.WholeLine,
					replace:   &expanded,
				})
				if cr.rule.SoundFile != "" {
					sounds = append(sounds, Sound{File: cr.rule.SoundFile, Volume: cr.rule.SoundVolume})
				}
			}
			continue
		}
		for _, idx := range cr.re.FindAllStringIndex(text, -1) {
			spans = append(spans, matchSpan{
				start: idx[0], end: idx[1],
				fg: cr.rule.Fg, bg: cr.rule.Bg, bold: cr.rule.Bold,
				wholeLine: cr.rule.WholeLine,
			})
			if cr.rule.SoundFile != "" {
				sounds = append(sounds, Sound{File: cr.rule.SoundFile, Volume: cr.rule.SoundVolume})
			}
		}
	}

	return spans, sounds
}

// FirstMatchColor answers "what foreground color would the first
// matching rule give this plain string?" without rewriting anything.
// Single-color list widgets use it. Plain strings carry no stream
// identity, so rules with a stream filter are skipped.
func (s *Set) FirstMatchColor(text string) (segment.Color, bool) {
	if s.Empty() || text == "" {
		return "", false
	}

	var fastHit map[int]bool
	if s.trie != nil {
		for _, m := range s.trie.MatchString(text) {
			start := int(m.Pos())
			if !wordBounded(text, start, start+len(m.Match())) {
				continue
			}
			if fastHit == nil {
				fastHit = make(map[int]bool)
			}
			for _, ri := range s.fragRules[m.Pattern()] {
				fastHit[ri] = true
			}
		}
	}

	for i, cr := range s.rules {
		if cr.rule.Stream != "" {
			continue
		}
		if cr.rule.Fast {
			if fastHit[i] {
				return cr.rule.Fg, true
			}
			continue
		}
		if cr.re != nil && cr.re.MatchString(text) {
			return cr.rule.Fg, true
		}
	}
	return "", false
}
