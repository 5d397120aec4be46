// Package transcript renders a session's history for export.
package transcript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/papercomputeco/ragchat/pkg/backend"
)

// Format names an export format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatHTML     Format = "html"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatMarkdown, FormatJSON, FormatHTML}

// ErrUnknownFormat is returned for a format outside Formats.
var ErrUnknownFormat = errors.New("unknown transcript format")

const timeLayout = "2006-01-02 15:04:05"

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of text, markdown, json, html)", ErrUnknownFormat, s)
}

// Render writes entries to w in the given format, oldest first.
func Render(w io.Writer, entries []backend.HistoryEntry, format Format) error {
	switch format {
	case FormatText:
		return renderText(w, entries)
	case FormatMarkdown:
		_, err := io.WriteString(w, markdown(entries))
		return err
	case FormatJSON:
		return renderJSON(w, entries)
	case FormatHTML:
		return renderHTML(w, entries)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func renderText(w io.Writer, entries []backend.HistoryEntry) error {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s]\n", stamp(e.Timestamp))
		fmt.Fprintf(&b, "you: %s\n", e.Message)
		fmt.Fprintf(&b, "assistant: %s\n", e.Response)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func markdown(entries []backend.HistoryEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "#### You _(%s)_\n\n%s\n\n", stamp(e.Timestamp), e.Message)
		fmt.Fprintf(&b, "#### Assistant\n\n%s\n", e.Response)
	}
	return b.String()
}

type jsonEntry struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

func renderJSON(w io.Writer, entries []backend.HistoryEntry) error {
	out := make([]jsonEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, jsonEntry{
			ID:        e.ID,
			Message:   e.Message,
			Response:  e.Response,
			Timestamp: e.Timestamp,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// renderHTML converts the markdown rendering to a standalone page. Raw HTML
// in messages is not passed through.
func renderHTML(w io.Writer, entries []backend.HistoryEntry) error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown(entries)), &body); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString("ragchat transcript"))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return t.Format(timeLayout)
}
