package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer wraps a glamour renderer sized to the chat panel.
// A nil inner renderer means glamour could not initialize and content
// is passed through as plain text.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// newMarkdownRenderer creates a renderer wrapping at the given width
func newMarkdownRenderer(width int) *markdownRenderer {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r = nil
	}
	return &markdownRenderer{renderer: r, width: width}
}

// Render converts markdown to styled terminal text, falling back to the
// raw string when rendering is unavailable or fails
func (m *markdownRenderer) Render(content string) string {
	if m == nil || m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
