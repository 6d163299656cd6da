// Package protocol parses the game server's line markup into styled
// segments. The wire format is a small XML-like tag language applied
// per line; anything malformed degrades to literal text, never to an
// error, since a garbled line from the server must still be shown.
package protocol

import (
	"strings"

	"github.com/mudlark/mudlark/pkg/segment"
)

// Line is one parsed line of game output: its styled segments plus the
// stream it belongs to ("" is the main story window).
type Line struct {
	Stream   string
	Segments []segment.Segment
}

// Text returns the line's flattened plain text.
func (l Line) Text() string {
	return segment.Text(l.Segments)
}

// style is the parser's current styling state, saved on tag open and
// restored on tag close.
type style struct {
	fg, bg segment.Color
	bold   bool
	span   segment.Span
	link   *segment.Link
}

// ParseLine parses one raw line of wire markup. A leading
// <stream id="..."> tag names the line's stream and is consumed; the
// recognized body tags are <a exist= noun=>, <b>, <spell>, <speech>,
// <system> and <color fg= bg=>. Unrecognized tags are emitted as
// literal text.
func ParseLine(raw string) Line {
	var line Line
	raw, line.Stream = stripStream(raw)

	var segs []segment.Segment
	var text strings.Builder
	cur := style{}
	stack := []style{}

	flush := func() {
		if text.Len() == 0 {
			return
		}
		seg := segment.Segment{
			Text: unescape(text.String()),
			Fg:   cur.fg, Bg: cur.bg, Bold: cur.bold,
			Span: cur.span, Link: cur.link,
		}
		if n := len(segs); n > 0 && segs[n-1].SameStyle(seg) {
			segs[n-1].Text += seg.Text
		} else {
			segs = append(segs, seg)
		}
		text.Reset()
	}

	for i := 0; i < len(raw); {
		if raw[i] != '<' {
			j := strings.IndexByte(raw[i:], '<')
			if j < 0 {
				text.WriteString(raw[i:])
				break
			}
			text.WriteString(raw[i : i+j])
			i += j
			continue
		}

		end := strings.IndexByte(raw[i:], '>')
		if end < 0 {
			// Unterminated tag: show it literally.
			text.WriteString(raw[i:])
			break
		}
		tag := raw[i+1 : i+end]
		i += end + 1

		if strings.HasPrefix(tag, "/") {
			// Close tag: restore the saved style. Stray closers are
			// literal noise the server sometimes emits; drop them.
			if len(stack) > 0 {
				flush()
				cur = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			}
			continue
		}

		next, ok := openTag(cur, tag)
		if !ok {
			text.WriteString("<" + tag + ">")
			continue
		}
		flush()
		stack = append(stack, cur)
		cur = next
	}
	flush()

	line.Segments = segs
	return line
}

// StreamOf returns just the stream identifier of a raw line, without
// parsing the body. The filtered transcript view uses it as a cheap
// predicate.
func StreamOf(raw string) string {
	_, stream := stripStream(raw)
	return stream
}

func stripStream(raw string) (rest, stream string) {
	const open = "<stream"
	if !strings.HasPrefix(raw, open) {
		return raw, ""
	}
	end := strings.IndexByte(raw, '>')
	if end < 0 {
		return raw, ""
	}
	attrs := parseAttrs(raw[len(open):end])
	return raw[end+1:], attrs["id"]
}

// openTag derives the style inside the given open tag, or reports the
// tag as unrecognized.
func openTag(cur style, tag string) (style, bool) {
	name := tag
	var attrs map[string]string
	if sp := strings.IndexByte(tag, ' '); sp >= 0 {
		name = tag[:sp]
		attrs = parseAttrs(tag[sp:])
	}

	next := cur
	switch name {
	case "a":
		next.span = segment.SpanLink
		next.link = &segment.Link{ID: attrs["exist"], Noun: attrs["noun"]}
	case "b":
		next.span = segment.SpanMonster
		next.bold = true
	case "spell":
		next.span = segment.SpanSpell
	case "speech":
		next.span = segment.SpanSpeech
	case "system":
		next.span = segment.SpanSystem
	case "color":
		if fg := attrs["fg"]; fg != "" {
			next.fg = segment.Color(fg)
		}
		if bg := attrs["bg"]; bg != "" {
			next.bg = segment.Color(bg)
		}
	default:
		return cur, false
	}
	return next, true
}

// parseAttrs pulls key="value" pairs out of a tag body. Unquoted or
// truncated values are tolerated and taken up to the next space.
func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for len(s) > 0 {
		s = strings.TrimLeft(s, " \t")
		eq := strings.IndexByte(s, '=')
		if eq <= 0 {
			break
		}
		key := strings.TrimSpace(s[:eq])
		s = s[eq+1:]
		var val string
		if len(s) > 0 && s[0] == '"' {
			if q := strings.IndexByte(s[1:], '"'); q >= 0 {
				val = s[1 : 1+q]
				s = s[q+2:]
			} else {
				val = s[1:]
				s = ""
			}
		} else if sp := strings.IndexByte(s, ' '); sp >= 0 {
			val = s[:sp]
			s = s[sp:]
		} else {
			val = s
			s = ""
		}
		if key != "" {
			attrs[key] = val
		}
	}
	return attrs
}

var unescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")

func unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return unescaper.Replace(s)
}
