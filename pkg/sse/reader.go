package sse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

const defaultChunkSize = 4 * 1024

// ErrIdleTimeout is the cancellation cause when no bytes arrive within the
// configured idle timeout.
var ErrIdleTimeout = errors.New("stream idle timeout")

// Result summarizes one consumed stream.
type Result struct {
	// Fragments is the number of fragments delivered to the callback.
	Fragments int

	// Completed is true when the stream carried an explicit completion
	// signal. A stream that simply ends is not Completed but is still a
	// normal, error-free end.
	Completed bool
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithChunkSize sets the size of each read from the source.
func WithChunkSize(n int) ReaderOption {
	return func(r *Reader) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

// WithIdleTimeout aborts the stream with ErrIdleTimeout when the source
// produces no bytes for d. Zero disables the timeout.
func WithIdleTimeout(d time.Duration) ReaderOption {
	return func(r *Reader) {
		r.idleTimeout = d
	}
}

// WithTee copies every raw byte read from the source to w, before decoding.
func WithTee(w io.Writer) ReaderOption {
	return func(r *Reader) {
		r.tee = w
	}
}

// WithLogger sets the logger used for stream diagnostics.
func WithLogger(l *slog.Logger) ReaderOption {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// Reader consumes a streamed response body. It pulls raw chunks from the
// source, decodes them with a stateful Decoder, frames the text with a Framer
// and delivers each payload fragment, in order, to a callback.
//
// ┌──────────────────┐   ┌─────────┐   ┌────────┐   ┌────────────┐
// │ source io.Reader │──▶│ Decoder │──▶│ Framer │──▶│ onFragment │
// └──────────────────┘   └─────────┘   └────────┘   └────────────┘
//
// A Reader consumes exactly one stream and is not safe for concurrent use.
type Reader struct {
	src         io.Reader
	decoder     *Decoder
	framer      *Framer
	chunkSize   int
	idleTimeout time.Duration
	tee         io.Writer
	logger      *slog.Logger
}

// NewReader returns a Reader over src.
func NewReader(src io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{
		src:       src,
		decoder:   NewDecoder(),
		framer:    NewFramer(),
		chunkSize: defaultChunkSize,
		logger:    slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Stream runs the read loop until the stream signals completion, the source
// is exhausted, a read fails, or ctx is cancelled. onFragment is called once
// per fragment on the calling goroutine and is never called after Stream
// returns.
//
// On cancellation (or idle timeout) the source is closed when it implements
// io.Closer, which unblocks any pending read. The returned error is then
// context.Cause of the cancelled context.
func (r *Reader) Stream(ctx context.Context, onFragment func(string)) (Result, error) {
	var result Result

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if closer, ok := r.src.(io.Closer); ok {
		var once sync.Once
		stop := context.AfterFunc(ctx, func() {
			once.Do(func() { _ = closer.Close() })
		})
		defer stop()
	}

	var idle *time.Timer
	if r.idleTimeout > 0 {
		idle = time.AfterFunc(r.idleTimeout, func() { cancel(ErrIdleTimeout) })
		defer idle.Stop()
	}

	deliver := func(fragments []string) bool {
		for _, fragment := range fragments {
			if ctx.Err() != nil {
				return false
			}
			onFragment(fragment)
			result.Fragments++
		}
		return true
	}

	buf := make([]byte, r.chunkSize)
	for {
		n, readErr := r.src.Read(buf)

		if ctx.Err() != nil {
			return result, context.Cause(ctx)
		}

		if n > 0 {
			if idle != nil {
				idle.Reset(r.idleTimeout)
			}

			if r.tee != nil {
				if _, err := r.tee.Write(buf[:n]); err != nil {
					r.logger.Debug("stream tee write failed", "error", err)
				}
			}

			fragments, done := r.framer.Push(r.decoder.Decode(buf[:n]))
			if !deliver(fragments) {
				return result, context.Cause(ctx)
			}
			if done {
				result.Completed = true
				r.logger.Debug("stream completed", "fragments", result.Fragments)
				return result, nil
			}
		}

		if readErr == nil {
			continue
		}

		if !errors.Is(readErr, io.EOF) {
			r.logger.Debug("stream read failed",
				"fragments", result.Fragments,
				"error", readErr,
			)
			return result, readErr
		}

		// End of stream: whatever is buffered becomes one final chunk.
		fragments, _ := r.framer.Push(r.decoder.Flush())
		if !deliver(fragments) {
			return result, context.Cause(ctx)
		}
		if r.framer.Done() {
			result.Completed = true
			return result, nil
		}

		fragments, done := r.framer.Flush()
		if !deliver(fragments) {
			return result, context.Cause(ctx)
		}
		result.Completed = done

		r.logger.Debug("stream ended",
			"fragments", result.Fragments,
			"completed", result.Completed,
		)
		return result, nil
	}
}
