package sse

import "strings"

// State is the framer state carried between chunks: decoded text that has not
// yet been cut into frames, and whether the stream has signalled completion.
//
// State is a plain value. Consume and Drain never mutate their input, so a
// caller may keep, copy, or replay states freely.
type State struct {
	// Buffer holds decoded text received after the last complete frame.
	Buffer string

	// Done is set once a terminal frame has been seen. A Done state ignores
	// any further input.
	Done bool
}

// Consume appends newly decoded text to the state's buffer and extracts every
// complete frame from it. It returns the payload fragments in stream order and
// the next state.
//
// Frames that are empty or whitespace-only are skipped, as are frames with no
// data line. A data line with an empty payload yields an empty fragment.
// When a terminal frame is reached the returned state is Done and nothing
// after that frame is parsed, even if more complete frames are already
// buffered.
func Consume(state State, text string) ([]string, State) {
	if state.Done {
		return nil, state
	}

	buf := state.Buffer + text

	var fragments []string
	for {
		idx := strings.Index(buf, FrameDelimiter)
		if idx == -1 {
			break
		}

		raw := buf[:idx]
		buf = buf[idx+len(FrameDelimiter):]

		if strings.TrimSpace(raw) == "" {
			continue
		}

		frame := ParseFrame(raw)
		if frame.IsTerminal() {
			return fragments, State{Buffer: buf, Done: true}
		}

		// A frame with only an event line delivers nothing.
		if !frame.HasData {
			continue
		}

		fragments = append(fragments, frame.Data)
	}

	return fragments, State{Buffer: buf}
}

// Drain treats whatever is left in the buffer at end of stream as one final
// chunk. Each line carrying the data prefix yields one fragment, and a
// DoneSentinel payload ends the stream exactly as it would mid-stream.
// The returned state always has an empty buffer.
func Drain(state State) ([]string, State) {
	if state.Done || state.Buffer == "" {
		return nil, State{Done: state.Done}
	}

	var fragments []string
	for _, line := range strings.Split(state.Buffer, "\n") {
		if !strings.HasPrefix(line, DataPrefix) {
			continue
		}

		data := line[len(DataPrefix):]
		if data == DoneSentinel {
			return fragments, State{Done: true}
		}

		fragments = append(fragments, data)
	}

	return fragments, State{}
}

// Framer is a convenience wrapper that owns a State across calls. It is not
// safe for concurrent use; a stream has exactly one consumer.
type Framer struct {
	state State
}

// NewFramer returns a Framer with an empty buffer.
func NewFramer() *Framer {
	return &Framer{}
}

// Push feeds decoded text to the framer and returns the fragments it
// completes, along with whether the stream is now done.
func (f *Framer) Push(text string) ([]string, bool) {
	fragments, next := Consume(f.state, text)
	f.state = next
	return fragments, next.Done
}

// Flush drains the residual buffer at end of stream.
func (f *Framer) Flush() ([]string, bool) {
	fragments, next := Drain(f.state)
	f.state = next
	return fragments, next.Done
}

// Done reports whether a terminal frame has been seen.
func (f *Framer) Done() bool {
	return f.state.Done
}

// State returns a copy of the current framer state.
func (f *Framer) State() State {
	return f.state
}
