package sse

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// chunkReader returns one predefined chunk per Read call, then err (io.EOF
// when err is nil).
type chunkReader struct {
	chunks [][]byte
	err    error
}

func newChunkReader(err error, chunks ...string) *chunkReader {
	r := &chunkReader{err: err}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	return r
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}

	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// collect runs a Reader over src and returns every delivered fragment.
func collect(ctx context.Context, src io.Reader, opts ...ReaderOption) ([]string, Result, error) {
	var fragments []string
	result, err := NewReader(src, opts...).Stream(ctx, func(fragment string) {
		fragments = append(fragments, fragment)
	})
	return fragments, result, err
}

var _ = Describe("Reader", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Stream", func() {
		It("delivers the chunked scenario and stops at completion", func() {
			src := newChunkReader(nil, "event: tok", "en\ndata: Hello\n\n", "data: world\n\nevent: done\n\n", "data: late\n\n")

			fragments, result, err := collect(ctx, src)
			Expect(err).NotTo(HaveOccurred())
			Expect(fragments).To(Equal([]string{"Hello", "world"}))
			Expect(result).To(Equal(Result{Fragments: 2, Completed: true}))
		})

		It("reassembles multi-byte characters split across chunks", func() {
			src := newChunkReader(nil, "data: caf", "\xc3", "\xa9 \xe2\x82", "\xac\n\n")

			fragments, _, err := collect(ctx, src)
			Expect(err).NotTo(HaveOccurred())
			Expect(fragments).To(Equal([]string{"café €"}))
		})

		It("gives the same fragments for any read size", func() {
			stream := "event: token\ndata: Zürich \ndata: 北京\n\ndata: \n\ndata: [DONE]\n\n"

			want, wantResult, err := collect(ctx, bytes.NewReader([]byte(stream)))
			Expect(err).NotTo(HaveOccurred())
			Expect(want).To(Equal([]string{"Zürich 北京", ""}))
			Expect(wantResult.Completed).To(BeTrue())

			for size := 1; size <= len(stream); size++ {
				got, result, err := collect(ctx, bytes.NewReader([]byte(stream)), WithChunkSize(size))
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(Equal(want), "chunk size %d", size)
				Expect(result).To(Equal(wantResult), "chunk size %d", size)
			}
		})

		It("flushes the residual buffer at end of stream", func() {
			src := newChunkReader(nil, "data: a\n\n", "data: tail")

			fragments, result, err := collect(ctx, src)
			Expect(err).NotTo(HaveOccurred())
			Expect(fragments).To(Equal([]string{"a", "tail"}))
			Expect(result.Completed).To(BeFalse())
		})

		It("completes on a residual [DONE] line", func() {
			src := newChunkReader(nil, "data: a\n\n", "data: [DONE]")

			fragments, result, err := collect(ctx, src)
			Expect(err).NotTo(HaveOccurred())
			Expect(fragments).To(Equal([]string{"a"}))
			Expect(result.Completed).To(BeTrue())
		})

		It("returns nothing for an empty body", func() {
			fragments, result, err := collect(ctx, newChunkReader(nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(fragments).To(BeEmpty())
			Expect(result).To(Equal(Result{}))
		})

		It("returns the read error with the fragments delivered so far", func() {
			boom := errors.New("connection reset")
			src := newChunkReader(boom, "data: partial\n\n")

			fragments, result, err := collect(ctx, src)
			Expect(err).To(MatchError(boom))
			Expect(fragments).To(Equal([]string{"partial"}))
			Expect(result).To(Equal(Result{Fragments: 1}))
		})

		It("copies raw bytes to the tee writer", func() {
			input := "event: token\ndata: hi\n\nevent: done\ndata: [DONE]\n\n"
			var tee bytes.Buffer

			_, _, err := collect(ctx, bytes.NewReader([]byte(input)), WithTee(&tee))
			Expect(err).NotTo(HaveOccurred())
			Expect(tee.String()).To(Equal(input))
		})
	})

	Describe("cancellation", func() {
		It("stops pulling and closes the source when the context is cancelled", func() {
			pr, pw := io.Pipe()
			go func() {
				_, _ = pw.Write([]byte("data: one\n\n"))
			}()

			cctx, cancel := context.WithCancel(ctx)
			defer cancel()

			var fragments []string
			result, err := NewReader(pr).Stream(cctx, func(fragment string) {
				fragments = append(fragments, fragment)
				cancel()
			})

			Expect(err).To(MatchError(context.Canceled))
			Expect(fragments).To(Equal([]string{"one"}))
			Expect(result.Fragments).To(Equal(1))

			_, werr := pw.Write([]byte("data: two\n\n"))
			Expect(werr).To(MatchError(io.ErrClosedPipe))
		})

		It("aborts an idle stream with ErrIdleTimeout", func() {
			pr, pw := io.Pipe()
			defer pw.Close()

			_, result, err := collect(ctx, pr, WithIdleTimeout(50*time.Millisecond))
			Expect(err).To(MatchError(ErrIdleTimeout))
			Expect(result).To(Equal(Result{}))
		})

		It("returns immediately for an already cancelled context", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			fragments, _, err := collect(cctx, newChunkReader(nil, "data: never\n\n"))
			Expect(err).To(MatchError(context.Canceled))
			Expect(fragments).To(BeEmpty())
		})
	})
})
