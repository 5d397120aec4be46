package cliui_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragchat/pkg/cliui"
)

var _ = Describe("cliui", func() {
	Describe("Step", func() {
		It("prints a success line and returns nil", func() {
			var buf bytes.Buffer
			err := cliui.Step(&buf, "Uploading report.pdf", func() error { return nil })
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("Uploading report.pdf"))
			Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
		})

		It("passes through the error and prints a failure mark", func() {
			var buf bytes.Buffer
			boom := errors.New("boom")
			err := cliui.Step(&buf, "Creating session", func() error { return boom })
			Expect(err).To(MatchError(boom))
			Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
		})
	})

	Describe("Spinner", func() {
		It("draws nothing on a non-terminal until stopped", func() {
			var buf bytes.Buffer
			s := cliui.StartSpinner(&buf, "Thinking")
			Expect(buf.Len()).To(BeZero())

			s.Stop(nil)
			Expect(buf.String()).To(HavePrefix("\r  " + cliui.SuccessMark + " Thinking ("))
			Expect(buf.String()).To(HaveSuffix(")\n"))
		})
	})

	Describe("FormatDuration", func() {
		It("uses milliseconds below a second", func() {
			Expect(cliui.FormatDuration(42 * time.Millisecond)).To(Equal("42ms"))
		})

		It("uses seconds with one decimal above a second", func() {
			Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
		})
	})

	Describe("RenderMarkdownTo", func() {
		It("writes plain text to a non-terminal writer", func() {
			var buf bytes.Buffer
			Expect(cliui.RenderMarkdownTo(&buf, "# Title\n\n**bold**")).To(Succeed())
			Expect(buf.String()).To(Equal("# Title\n\n**bold**"))
		})
	})

	Describe("RenderMarkdown", func() {
		It("wraps paragraphs at the given width", func() {
			out, err := cliui.RenderMarkdown(strings.Repeat("retrieval ", 20), 40)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Count(strings.TrimSpace(out), "\n")).To(BeNumerically(">=", 4))
		})
	})

	Describe("TerminalWidth", func() {
		It("returns the fallback for a non-terminal", func() {
			Expect(cliui.TerminalWidth(&bytes.Buffer{}, 72)).To(Equal(72))
		})
	})

	Describe("IsTerminal", func() {
		It("is false for an in-memory buffer", func() {
			Expect(cliui.IsTerminal(&bytes.Buffer{})).To(BeFalse())
		})
	})
})
