package upload_test

import (
	"errors"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragchat/pkg/upload"
)

var _ = Describe("Validate", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("accepts a PDF", func() {
		path := writeFile(dir, "report.pdf", minimalPDF)

		f, err := upload.Validate(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Name).To(Equal("report.pdf"))
		Expect(f.Size).To(Equal(int64(len(minimalPDF))))
		Expect(f.ContentType).To(Equal(upload.PDFContentType))
	})

	It("sniffs content rather than trusting the extension", func() {
		path := writeFile(dir, "notes.pdf", "just some text, not a pdf")

		_, err := upload.Validate(path)
		Expect(err).To(MatchError(upload.ErrNotPDF))
	})

	It("accepts a PDF with an unexpected extension", func() {
		path := writeFile(dir, "scan.bin", minimalPDF)

		_, err := upload.Validate(path)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects an empty path", func() {
		_, err := upload.Validate("  ")
		Expect(err).To(MatchError(upload.ErrNoFile))
	})

	It("rejects a missing file", func() {
		_, err := upload.Validate(dir + "/missing.pdf")
		Expect(err).To(MatchError(upload.ErrNotFound))
	})

	It("rejects an empty file", func() {
		path := writeFile(dir, "empty.pdf", "")

		_, err := upload.Validate(path)
		Expect(err).To(MatchError(upload.ErrEmptyFile))
	})

	It("rejects a directory", func() {
		Expect(os.Mkdir(dir+"/folder.pdf", 0o755)).To(Succeed())

		_, err := upload.Validate(dir + "/folder.pdf")
		Expect(err).To(MatchError(upload.ErrNotPDF))
	})
})

var _ = Describe("IsPDF", func() {
	It("recognises the PDF header", func() {
		Expect(upload.IsPDF([]byte(minimalPDF))).To(BeTrue())
		Expect(upload.IsPDF([]byte("<html></html>"))).To(BeFalse())
	})
})

var _ = Describe("UserMessage", func() {
	DescribeTable("maps errors to notices",
		func(err error, want string) {
			Expect(upload.UserMessage(err)).To(Equal(want))
		},
		Entry("nil", nil, ""),
		Entry("no file", upload.ErrNoFile, "Please select a file first"),
		Entry("wrapped not pdf", errors.Join(errors.New("ctx"), upload.ErrNotPDF), "Please select a PDF file"),
		Entry("empty", upload.ErrEmptyFile, "File is empty"),
		Entry("other", errors.New("disk on fire"), "disk on fire"),
	)
})
