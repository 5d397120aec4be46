package stub

import (
	"context"
	"log/slog"
	"net"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragchat/pkg/backend"
	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/storage/sqlite"
)

var _ = Describe("client against the stub", func() {
	var (
		ctx    context.Context
		server *Server
		client *backend.Client
	)

	BeforeEach(func() {
		ctx = context.Background()

		store, err := sqlite.NewDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		server = NewServer(Config{}, store, slog.New(slog.DiscardHandler))
		go func() {
			_ = server.Serve(ln)
		}()
		DeferCleanup(server.Shutdown)

		client = backend.NewClient("http://" + ln.Addr().String() + APIPrefix)
	})

	It("uploads, streams an answer and reads it back from history", func() {
		pdf := filepath.Join(GinkgoT().TempDir(), "handbook.pdf")
		Expect(os.WriteFile(pdf, []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n"), 0o600)).To(Succeed())

		uploaded, err := client.UploadPDF(ctx, pdf)
		Expect(err).NotTo(HaveOccurred())
		Expect(uploaded.Message).To(Equal("PDF processed successfully"))

		sessionID, err := client.CreateSession(ctx)
		Expect(err).NotTo(HaveOccurred())

		var fragments []string
		conv := chat.New(client, chat.WithObserver(chat.Observer{
			OnFragment: func(_ string, fragment string) {
				fragments = append(fragments, fragment)
			},
		}))
		defer conv.Close()
		conv.SetSession(sessionID)

		msg, err := conv.Send(ctx, "What does the handbook say?")
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.Completed).To(BeTrue())
		Expect(msg.Failed).To(BeFalse())
		Expect(msg.Response).To(ContainSubstring("handbook.pdf"))
		Expect(len(fragments)).To(BeNumerically(">", 1))

		history, err := client.History(ctx, sessionID)
		Expect(err).NotTo(HaveOccurred())
		Expect(history).To(HaveLen(1))
		Expect(history[0].ID).To(Equal("1"))
		Expect(history[0].Message).To(Equal("What does the handbook say?"))
		Expect(history[0].Response).To(Equal(msg.Response))
		Expect(history[0].Timestamp.IsZero()).To(BeFalse())
	})

	It("surfaces the server's validation error", func() {
		_, err := client.SendMessage(ctx, "", "hello")
		Expect(err).To(HaveOccurred())
		Expect(backend.IsStatus(err, 400)).To(BeTrue())
	})
})
