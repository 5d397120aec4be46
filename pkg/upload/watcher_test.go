package upload_test

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragchat/pkg/upload"
)

var _ = Describe("Watcher", func() {
	var (
		dir    string
		w      *upload.Watcher
		ctx    context.Context
		cancel context.CancelFunc
		events <-chan upload.Event
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()

		var err error
		w, err = upload.NewWatcher(upload.WithSettle(50 * time.Millisecond))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(w.Close)

		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)

		events, err = w.Watch(ctx, dir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports a new PDF once it settles", func() {
		path := writeFile(dir, "new.pdf", minimalPDF)

		var ev upload.Event
		Eventually(events, 2*time.Second).Should(Receive(&ev))
		Expect(ev.Path).To(Equal(path))
		Expect(ev.Op).To(Equal(upload.OpCreated))
	})

	It("coalesces a create and its writes into one event", func() {
		writeFile(dir, "burst.pdf", "%PDF-1.4\n")
		writeFile(dir, "burst.pdf", minimalPDF)

		Eventually(events, 2*time.Second).Should(Receive())
		Consistently(events, 200*time.Millisecond).ShouldNot(Receive())
	})

	It("ignores files that are not PDFs", func() {
		writeFile(dir, "notes.txt", "hello")

		Consistently(events, 300*time.Millisecond).ShouldNot(Receive())
	})

	It("matches the extension case-insensitively", func() {
		writeFile(dir, "UPPER.PDF", minimalPDF)

		var ev upload.Event
		Eventually(events, 2*time.Second).Should(Receive(&ev))
		Expect(filepath.Base(ev.Path)).To(Equal("UPPER.PDF"))
	})

	It("closes the channel when the context is cancelled", func() {
		cancel()
		Eventually(events).Should(BeClosed())
	})
})

var _ = Describe("Op", func() {
	It("has readable names", func() {
		Expect(upload.OpCreated.String()).To(Equal("created"))
		Expect(upload.OpModified.String()).To(Equal("modified"))
		Expect(upload.Op(0).String()).To(Equal("unknown"))
	})
})
