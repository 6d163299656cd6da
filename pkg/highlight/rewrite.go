package highlight

import (
	"sort"
	"unicode/utf8"

	"github.com/mudlark/mudlark/pkg/segment"
)

// styledChar is the per-character intermediate representation: one
// entry per character of the flattened line. Working per character
// lets substitutions of arbitrary length coexist with per-character
// styling without any offset bookkeeping surviving the rewrite.
type styledChar struct {
	r    rune
	fg   segment.Color
	bg   segment.Color
	bold bool
	span segment.Span
	link *segment.Link
}

// overlay records the output-index range a resolved span produced,
// with the styling to apply over it after rewriting settles all
// character positions.
type overlay struct {
	start, end int
	fg, bg     segment.Color
	bold       bool
	wholeLine  bool
}

// flatten explodes a segment list into characters plus a byte-offset-to-
// character-index table for translating matcher offsets.
func flatten(segs []segment.Segment) ([]styledChar, string, []int) {
	text := segment.Text(segs)
	chars := make([]styledChar, 0, len(text))
	byteToChar := make([]int, len(text)+1)

	pos := 0
	for _, sg := range segs {
		for _, r := range sg.Text {
			idx := len(chars)
			chars = append(chars, styledChar{
				r: r, fg: sg.Fg, bg: sg.Bg, bold: sg.Bold,
				span: sg.Span, link: sg.Link,
			})
			for n := utf8.RuneLen(r); n > 0; n-- {
				byteToChar[pos] = idx
				pos++
			}
		}
	}
	byteToChar[len(text)] = len(chars)
	return chars, text, byteToChar
}

// charAt translates a byte offset to a character index. Offsets the
// matchers hand back are always in range for well-formed input; a bad
// one degrades to fallback rather than panicking, since a rendering
// glitch beats crashing the client.
func charAt(byteToChar []int, off, fallback int) int {
	if off < 0 || off >= len(byteToChar) {
		return fallback
	}
	return byteToChar[off]
}

// resolve walks spans earliest-start-first, discarding any span that
// overlaps already-consumed text, and produces the rewritten character
// array plus the overlays to style it with. Replacement text inherits
// the style of the first original character it covers, minus any link
// payload (the replacement invalidated whatever the link pointed at).
func resolve(chars []styledChar, byteToChar []int, spans []matchSpan) ([]styledChar, []overlay) {
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	out := make([]styledChar, 0, len(chars))
	overlays := make([]overlay, 0, len(spans))
	cursor := 0     // consumed byte offset in the original text
	cursorChar := 0 // the same position as a character index

	for _, sp := range spans {
		if sp.start < cursor {
			continue // earliest match wins, no partial merging
		}
		ss := charAt(byteToChar, sp.start, cursorChar)
		if ss < cursorChar {
			ss = cursorChar
		}
		se := charAt(byteToChar, sp.end, ss)
		if se < ss {
			se = ss
		}

		out = append(out, chars[cursorChar:ss]...)

		ovStart := len(out)
		if sp.replace != nil {
			base := styledChar{}
			if ss < len(chars) {
				base = chars[ss]
			} else if len(chars) > 0 {
				base = chars[len(chars)-1]
			}
			for _, r := range *sp.replace {
				out = append(out, styledChar{
					r: r, fg: base.fg, bg: base.bg, bold: base.bold,
					span: base.span,
				})
			}
		} else {
			out = append(out, chars[ss:se]...)
		}
		overlays = append(overlays, overlay{
			start: ovStart, end: len(out),
			fg: sp.fg, bg: sp.bg, bold: sp.bold, wholeLine: sp.wholeLine,
		})
		cursor = sp.end
		cursorChar = se
	}

	out = append(out, chars[cursorChar:]...)
	return out, overlays
}

// applyOverlays styles the rewritten characters. Localized overlays
// apply in span order; then the first whole-line overlay, if any,
// covers the entire line and supersedes them. Link and monster
// characters keep their foreground and weight under a whole-line
// override (only the background changes) so their semantic
// distinctiveness survives.
func applyOverlays(out []styledChar, overlays []overlay) {
	for _, ov := range overlays {
		if ov.wholeLine {
			continue
		}
		for i := ov.start; i < ov.end && i < len(out); i++ {
			styleChar(&out[i], ov)
		}
	}
	for _, ov := range overlays {
		if !ov.wholeLine {
			continue
		}
		for i := range out {
			if out[i].span == segment.SpanLink || out[i].span == segment.SpanMonster {
				if ov.bg.IsSet() {
					out[i].bg = ov.bg
				}
				continue
			}
			styleChar(&out[i], ov)
		}
		break // first whole-line match wins
	}
}

func styleChar(c *styledChar, ov overlay) {
	if ov.fg.IsSet() {
		c.fg = ov.fg
	}
	if ov.bg.IsSet() {
		c.bg = ov.bg
	}
	if ov.bold {
		c.bold = true
	}
}
