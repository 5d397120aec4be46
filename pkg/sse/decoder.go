package sse

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decoder turns raw body chunks into text. It is stateful: an incomplete
// multi-byte sequence at the end of one chunk is held back and completed by
// the next, so characters split across chunk boundaries survive intact.
// Ill-formed bytes are replaced with U+FFFD rather than reported.
type Decoder struct {
	t       transform.Transformer
	pending []byte
	dst     []byte
}

// NewDecoder returns a UTF-8 Decoder.
func NewDecoder() *Decoder {
	return &Decoder{
		t: unicode.UTF8.NewDecoder(),
	}
}

// Decode decodes chunk, prefixed by any bytes held back from the previous
// call, and returns the text that is complete so far.
func (d *Decoder) Decode(chunk []byte) string {
	return d.decode(chunk, false)
}

// Flush ends the stream. Any bytes still held back can no longer form a
// character and are emitted as replacement characters.
func (d *Decoder) Flush() string {
	text := d.decode(nil, true)
	d.Reset()
	return text
}

// Reset discards held-back bytes so the Decoder can be reused for a new stream.
func (d *Decoder) Reset() {
	d.pending = nil
	d.t.Reset()
}

func (d *Decoder) decode(chunk []byte, atEOF bool) string {
	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
		d.pending = nil
	}

	if len(src) == 0 {
		return ""
	}

	// Every ill-formed byte may expand to a 3-byte replacement character.
	if need := 3*len(src) + utf8.UTFMax; cap(d.dst) < need {
		d.dst = make([]byte, need)
	}
	dst := d.dst[:cap(d.dst)]

	var out strings.Builder
	for len(src) > 0 {
		nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]

		switch {
		case err == nil:
			return out.String()

		case errors.Is(err, transform.ErrShortSrc):
			// Incomplete trailing sequence: keep it for the next chunk.
			d.pending = append([]byte(nil), src...)
			return out.String()

		case errors.Is(err, transform.ErrShortDst):
			if nDst == 0 && nSrc == 0 {
				dst = make([]byte, 2*len(dst))
				d.dst = dst
			}

		default:
			// The UTF-8 decoder does not fail on content, but never let a
			// decoding problem end the stream.
			out.WriteRune(utf8.RuneError)
			if len(src) > 0 {
				src = src[1:]
			}
		}
	}

	return out.String()
}
