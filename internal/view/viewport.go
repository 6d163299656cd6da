package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mudlark/mudlark/internal/source"
)

// RenderFunc turns one raw transcript line into a styled terminal
// string. The app wires in the parse/highlight/render pipeline; the
// viewport itself knows nothing about markup or rules.
type RenderFunc func(line *source.Line) string

// Viewport manages the visible portion of the session. It only knows
// how to display lines from a LineProvider.
type Viewport struct {
	provider source.LineProvider
	render   RenderFunc

	width  int
	height int

	scrollOffset int

	lineNumberStyle lipgloss.Style

	showLineNumbers bool
}

// NewViewport creates a new viewport.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:           width,
		height:          height,
		lineNumberStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		render:          func(line *source.Line) string { return string(line.Raw) },
	}
}

// SetRenderFunc sets the line renderer.
func (v *Viewport) SetRenderFunc(r RenderFunc) {
	v.render = r
}

// SetProvider sets the line provider and resets scroll.
func (v *Viewport) SetProvider(provider source.LineProvider) {
	v.provider = provider
	v.scrollOffset = 0
}

// SetSize updates viewport dimensions.
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.clampScroll()
}

// SetShowLineNumbers toggles line numbers.
func (v *Viewport) SetShowLineNumbers(show bool) {
	v.showLineNumbers = show
}

// ScrollDown scrolls down by n lines.
func (v *Viewport) ScrollDown(n int) {
	v.scrollOffset += n
	v.clampScroll()
}

// ScrollUp scrolls up by n lines.
func (v *Viewport) ScrollUp(n int) {
	v.scrollOffset -= n
	v.clampScroll()
}

// PageDown scrolls down by one page.
func (v *Viewport) PageDown() {
	v.ScrollDown(v.height - 1)
}

// PageUp scrolls up by one page.
func (v *Viewport) PageUp() {
	v.ScrollUp(v.height - 1)
}

// GotoTop scrolls to the beginning.
func (v *Viewport) GotoTop() {
	v.scrollOffset = 0
}

// GotoBottom scrolls to the end.
func (v *Viewport) GotoBottom() {
	if v.provider == nil {
		return
	}
	v.scrollOffset = v.provider.LineCount() - v.height
	v.clampScroll()
}

// GotoLine scrolls to a specific line.
func (v *Viewport) GotoLine(line int) {
	v.scrollOffset = line
	v.clampScroll()
}

// CurrentLine returns the current top line number.
func (v *Viewport) CurrentLine() int {
	return v.scrollOffset
}

func (v *Viewport) clampScroll() {
	if v.provider == nil {
		v.scrollOffset = 0
		return
	}

	maxScroll := v.provider.LineCount() - v.height
	if maxScroll < 0 {
		maxScroll = 0
	}

	if v.scrollOffset > maxScroll {
		v.scrollOffset = maxScroll
	}
	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
}

// Render returns the viewport content as a string.
func (v *Viewport) Render() string {
	if v.provider == nil {
		return ""
	}

	lines, err := v.provider.GetLines(v.scrollOffset, v.height)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	var builder strings.Builder
	lineNumWidth := len(fmt.Sprintf("%d", v.provider.LineCount()))

	for i, line := range lines {
		if i > 0 {
			builder.WriteString("\n")
		}

		if v.showLineNumbers {
			// Filtered views keep their original transcript numbers.
			builder.WriteString(v.lineNumberStyle.Render(
				fmt.Sprintf("%*d ", lineNumWidth, line.OriginalIndex+1)))
		}

		builder.WriteString(v.render(line))
	}

	for i := len(lines); i < v.height; i++ {
		if i > 0 || len(lines) > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("~")
	}

	return builder.String()
}

// PercentScrolled returns how far through the session we are.
func (v *Viewport) PercentScrolled() float64 {
	if v.provider == nil || v.provider.LineCount() == 0 {
		return 0
	}

	total := v.provider.LineCount()
	if total <= v.height {
		return 100
	}

	return float64(v.scrollOffset) / float64(total-v.height) * 100
}
