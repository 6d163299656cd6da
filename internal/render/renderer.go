package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mudlark/mudlark/internal/config"
	"github.com/mudlark/mudlark/pkg/segment"
)

// SegmentRenderer turns highlighted segments into a terminal string.
// Each span classification gets a base style from the theme; a
// segment's own colors (set by the protocol or the highlight engine)
// override it. This is the only place the UI toolkit's style type
// appears; everything upstream deals in plain segments.
type SegmentRenderer struct {
	spanStyles map[segment.Span]lipgloss.Style
}

// NewSegmentRenderer creates a renderer from the theme config.
func NewSegmentRenderer(cfg *config.Config) *SegmentRenderer {
	spans := cfg.Theme.Spans
	return &SegmentRenderer{
		spanStyles: map[segment.Span]lipgloss.Style{
			segment.SpanNormal:  lipgloss.NewStyle(),
			segment.SpanLink:    lipgloss.NewStyle().Foreground(lipgloss.Color(spans.Link)).Underline(true),
			segment.SpanMonster: lipgloss.NewStyle().Foreground(lipgloss.Color(spans.Monster)).Bold(true),
			segment.SpanSpell:   lipgloss.NewStyle().Foreground(lipgloss.Color(spans.Spell)),
			segment.SpanSpeech:  lipgloss.NewStyle().Foreground(lipgloss.Color(spans.Speech)),
			segment.SpanSystem:  lipgloss.NewStyle().Foreground(lipgloss.Color(spans.System)),
		},
	}
}

// Render styles one line's segments.
func (r *SegmentRenderer) Render(segs []segment.Segment) string {
	var b strings.Builder
	for _, sg := range segs {
		b.WriteString(r.styleFor(sg).Render(sg.Text))
	}
	return b.String()
}

func (r *SegmentRenderer) styleFor(sg segment.Segment) lipgloss.Style {
	style := r.spanStyles[sg.Span]
	if sg.Fg.IsSet() {
		style = style.Foreground(lipgloss.Color(string(sg.Fg)))
	}
	if sg.Bg.IsSet() {
		style = style.Background(lipgloss.Color(string(sg.Bg)))
	}
	if sg.Bold {
		style = style.Bold(true)
	}
	return style
}
