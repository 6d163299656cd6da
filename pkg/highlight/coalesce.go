package highlight

import (
	"strings"

	"github.com/mudlark/mudlark/pkg/segment"
)

// coalesce converts the final character array back into the minimal
// run-length segment list. A run extends while foreground, background,
// weight, span classification, and link payload all compare equal;
// differing link payloads always split, even when everything else
// matches. Single linear pass.
func coalesce(chars []styledChar) []segment.Segment {
	if len(chars) == 0 {
		return nil
	}

	var segs []segment.Segment
	var text strings.Builder
	cur := chars[0]
	text.WriteRune(cur.r)

	flush := func() {
		segs = append(segs, segment.Segment{
			Text: text.String(),
			Fg:   cur.fg, Bg: cur.bg, Bold: cur.bold,
			Span: cur.span, Link: cur.link,
		})
	}

	for _, c := range chars[1:] {
		if c.fg == cur.fg && c.bg == cur.bg && c.bold == cur.bold &&
			c.span == cur.span && segment.LinkEqual(c.link, cur.link) {
			text.WriteRune(c.r)
			continue
		}
		flush()
		text.Reset()
		cur = c
		text.WriteRune(c.r)
	}
	flush()
	return segs
}
