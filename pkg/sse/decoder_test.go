package sse

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// decodeChunks decodes chunks with a single Decoder, flushing at the end.
func decodeChunks(chunks ...[]byte) string {
	d := NewDecoder()

	var out strings.Builder
	for _, chunk := range chunks {
		out.WriteString(d.Decode(chunk))
	}
	out.WriteString(d.Flush())

	return out.String()
}

var _ = Describe("Decoder", func() {
	const text = "data: héllo, 世界 🎉 naïve café\n\n"

	It("decodes ASCII untouched", func() {
		Expect(decodeChunks([]byte("data: plain\n\n"))).To(Equal("data: plain\n\n"))
	})

	It("decodes a whole stream at once", func() {
		Expect(decodeChunks([]byte(text))).To(Equal(text))
	})

	It("matches whole-stream decoding for every two-way split", func() {
		raw := []byte(text)
		for i := 0; i <= len(raw); i++ {
			Expect(decodeChunks(raw[:i], raw[i:])).To(Equal(text), "split at %d", i)
		}
	})

	It("matches whole-stream decoding one byte at a time", func() {
		raw := []byte(text)
		chunks := make([][]byte, len(raw))
		for i := range raw {
			chunks[i] = raw[i : i+1]
		}
		Expect(decodeChunks(chunks...)).To(Equal(text))
	})

	It("holds back an incomplete sequence until the next chunk", func() {
		d := NewDecoder()
		euro := []byte("€")

		Expect(d.Decode(euro[:1])).To(BeEmpty())
		Expect(d.Decode(euro[1:2])).To(BeEmpty())
		Expect(d.Decode(euro[2:])).To(Equal("€"))
	})

	It("replaces ill-formed bytes instead of failing", func() {
		out := decodeChunks([]byte("ok \xff ok"))
		Expect(out).To(HavePrefix("ok "))
		Expect(out).To(HaveSuffix(" ok"))
		Expect(out).To(ContainSubstring(string(utf8.RuneError)))
		Expect(utf8.ValidString(out)).To(BeTrue())
	})

	It("replaces a sequence truncated by the end of stream", func() {
		d := NewDecoder()
		Expect(d.Decode([]byte{'a', 0xe4, 0xb8})).To(Equal("a"))

		tail := d.Flush()
		Expect(tail).To(ContainSubstring(string(utf8.RuneError)))
		Expect(utf8.ValidString(tail)).To(BeTrue())
	})

	It("can be reused after Reset", func() {
		d := NewDecoder()
		_ = d.Decode([]byte{0xe4})
		d.Reset()
		Expect(d.Decode([]byte("fresh"))).To(Equal("fresh"))
	})
})
