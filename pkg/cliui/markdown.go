package cliui

import (
	"io"
	"sync"

	"github.com/charmbracelet/glamour"
)

const (
	defaultWrap = 80
	maxWrap     = 120
)

var (
	renderersMu sync.Mutex
	renderers   = map[int]*glamour.TermRenderer{}
)

// renderer returns a glamour renderer wrapping at width, built once per
// width.
func renderer(width int) (*glamour.TermRenderer, error) {
	renderersMu.Lock()
	defer renderersMu.Unlock()

	if r, ok := renderers[width]; ok {
		return r, nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	renderers[width] = r
	return r, nil
}

// RenderMarkdown renders content for a terminal of the given width. On
// failure the unrendered content is returned alongside the error.
func RenderMarkdown(content string, width int) (string, error) {
	r, err := renderer(min(width, maxWrap))
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}
	return rendered, nil
}

// RenderMarkdownTo writes content to w, rendered with glamour when w is a
// terminal and verbatim otherwise.
func RenderMarkdownTo(w io.Writer, content string) error {
	if !IsTerminal(w) {
		_, err := io.WriteString(w, content)
		return err
	}

	rendered, err := RenderMarkdown(content, TerminalWidth(w, defaultWrap))
	if err != nil {
		rendered = content
	}

	_, err = io.WriteString(w, rendered)
	return err
}
