// Package sse provides a minimal, purpose-built reader for the event stream a
// ragchat backend returns from its streaming chat endpoint. It decodes raw
// body chunks as UTF-8, cuts the decoded text into blank-line delimited
// frames, and hands each frame's payload to a caller supplied callback as an
// answer fragment.
//
// The framing follows the backend's wire format rather than the full SSE
// specification: multiple "data: " lines in a frame are concatenated directly
// (no "\n" separator), payloads are never trimmed, and a "done" event or a
// "[DONE]" payload ends the stream.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
package sse

import "strings"

const (
	// EventPrefix starts a line that sets the frame's event type.
	EventPrefix = "event: "

	// DataPrefix starts a line that carries payload text.
	DataPrefix = "data: "

	// FrameDelimiter separates frames in the stream.
	FrameDelimiter = "\n\n"

	// DefaultEventType is the event type of a frame with no "event: " line.
	DefaultEventType = "token"

	// DoneEventType is the terminal event type sent by the backend once
	// generation has finished.
	DoneEventType = "done"

	// DoneSentinel is the literal payload that also marks the end of generation.
	DoneSentinel = "[DONE]"
)

// Frame represents a single parsed frame, delimited by a blank line in the
// decoded text stream.
type Frame struct {
	// Type is the frame's event type from the "event: " line, trimmed.
	// Defaults to DefaultEventType.
	Type string

	// Data is the direct concatenation of every "data: " line in the frame,
	// byte for byte as received.
	Data string

	// HasData is true when the frame carried at least one "data: " line,
	// which distinguishes an empty payload from no payload at all.
	HasData bool
}

// IsTerminal reports whether the frame signals the end of generation.
func (f Frame) IsTerminal() bool {
	return f.Type == DoneEventType || f.Data == DoneSentinel
}

// ParseFrame parses the raw text of one frame (without its trailing
// delimiter). Lines that match neither prefix are ignored.
func ParseFrame(raw string) Frame {
	frame := Frame{Type: DefaultEventType}

	var data strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		switch {
		case strings.HasPrefix(line, EventPrefix):
			frame.Type = strings.TrimSpace(line[len(EventPrefix):])
		case strings.HasPrefix(line, DataPrefix):
			// Everything after the prefix is payload, embedded and
			// trailing spaces included.
			data.WriteString(line[len(DataPrefix):])
			frame.HasData = true
		}
	}

	frame.Data = data.String()
	return frame
}
