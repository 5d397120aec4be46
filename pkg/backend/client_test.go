package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragchat/pkg/backend"
	"github.com/papercomputeco/ragchat/pkg/upload"
)

const minimalPDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

var _ = Describe("Client", func() {
	var (
		ctx    context.Context
		mux    *http.ServeMux
		server *httptest.Server
		client *backend.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)
		DeferCleanup(server.Close)
		client = backend.NewClient(server.URL + "/api/")
	})

	Describe("NewClient", func() {
		It("trims the trailing slash", func() {
			Expect(client.BaseURL()).To(Equal(server.URL + "/api"))
		})

		It("defaults the base URL", func() {
			Expect(backend.NewClient("").BaseURL()).To(Equal(backend.DefaultBaseURL))
		})
	})

	Describe("CreateSession", func() {
		It("returns the issued session id", func() {
			mux.HandleFunc("POST /api/chat/session", func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.Header.Get("User-Agent")).To(HavePrefix("ragchat/"))
				_, _ = w.Write([]byte(`{"sessionId":"5f0c"}`))
			})

			id, err := client.CreateSession(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("5f0c"))
		})

		It("rejects a reply without a session id", func() {
			mux.HandleFunc("POST /api/chat/session", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			})

			_, err := client.CreateSession(ctx)
			Expect(err).To(MatchError(backend.ErrInvalidResponse))
		})

		It("returns an APIError for a failed request", func() {
			mux.HandleFunc("POST /api/chat/session", func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
			})

			_, err := client.CreateSession(ctx)
			var apiErr *backend.APIError
			Expect(err).To(MatchError(ContainSubstring("down for maintenance")))
			Expect(backend.IsStatus(err, http.StatusServiceUnavailable)).To(BeTrue())
			Expect(errorsAs(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Endpoint).To(Equal(backend.PathSession))
		})

		It("truncates a long plain-text error body", func() {
			mux.HandleFunc("POST /api/chat/session", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
			})

			_, err := client.CreateSession(ctx)
			var apiErr *backend.APIError
			Expect(errorsAs(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Message).To(HaveSuffix("..."))
			Expect(len(apiErr.Message)).To(BeNumerically("<", 400))
		})
	})

	Describe("History", func() {
		It("parses entries in order with numeric ids and zone-less timestamps", func() {
			mux.HandleFunc("GET /api/chat/history/{id}", func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.PathValue("id")).To(Equal("abc"))
				_, _ = w.Write([]byte(`[
					{"id": 1, "message": "What is this?", "response": "A report.", "timestamp": "2026-03-04T10:11:12.345"},
					{"id": "two", "message": "Thanks", "response": "", "timestamp": "2026-03-04T10:12:00Z"}
				]`))
			})

			entries, err := client.History(ctx, "abc")
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(2))

			Expect(entries[0].ID).To(Equal("1"))
			Expect(entries[0].Message).To(Equal("What is this?"))
			Expect(entries[0].Response).To(Equal("A report."))
			Expect(entries[0].Timestamp).To(BeTemporally("==", time.Date(2026, 3, 4, 10, 11, 12, 345000000, time.Local)))

			Expect(entries[1].ID).To(Equal("two"))
			Expect(entries[1].Timestamp).To(BeTemporally("==", time.Date(2026, 3, 4, 10, 12, 0, 0, time.UTC)))
		})

		It("returns an empty slice for a new session", func() {
			mux.HandleFunc("GET /api/chat/history/{id}", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`[]`))
			})

			entries, err := client.History(ctx, "new")
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("leaves unparseable timestamps zero", func() {
			mux.HandleFunc("GET /api/chat/history/{id}", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`[{"id":3,"message":"m","response":"r","timestamp":"yesterday"}]`))
			})

			entries, err := client.History(ctx, "x")
			Expect(err).NotTo(HaveOccurred())
			Expect(entries[0].Timestamp.IsZero()).To(BeTrue())
		})

		It("rejects a body that is not an array", func() {
			mux.HandleFunc("GET /api/chat/history/{id}", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			})

			_, err := client.History(ctx, "x")
			Expect(err).To(MatchError(backend.ErrInvalidResponse))
		})
	})

	Describe("SendMessage", func() {
		It("posts the message and decodes the reply", func() {
			mux.HandleFunc("POST /api/chat/message", func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				var req map[string]string
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req).To(Equal(map[string]string{"message": "hi", "sessionId": "s1"}))
				_, _ = w.Write([]byte(`{"response":"hello","sessionId":"s1"}`))
			})

			reply, err := client.SendMessage(ctx, "s1", "hi")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal(&backend.Reply{Response: "hello", SessionID: "s1"}))
		})
	})

	Describe("StreamMessage", func() {
		It("returns the raw event stream body", func() {
			mux.HandleFunc("POST /api/chat/message/stream", func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.Header.Get("Accept")).To(Equal("text/event-stream"))
				Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = w.Write([]byte("data: Hi\n\nevent: done\ndata: [DONE]\n\n"))
			})

			body, err := client.StreamMessage(ctx, "s1", "hello")
			Expect(err).NotTo(HaveOccurred())
			defer body.Close()

			data, err := io.ReadAll(body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("data: Hi\n\nevent: done\ndata: [DONE]\n\n"))
		})

		It("turns a non-2xx status into an APIError with the error field", func() {
			mux.HandleFunc("POST /api/chat/message/stream", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"Session not found"}`))
			})

			_, err := client.StreamMessage(ctx, "s1", "hello")
			var apiErr *backend.APIError
			Expect(errorsAs(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(apiErr.Message).To(Equal("Session not found"))
		})

		It("is not bound by the request timeout", func() {
			mux.HandleFunc("POST /api/chat/message/stream", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.(http.Flusher).Flush()
				time.Sleep(150 * time.Millisecond)
				_, _ = w.Write([]byte("data: late\n\n"))
			})

			slow := backend.NewClient(server.URL+"/api", backend.WithTimeout(50*time.Millisecond))
			body, err := slow.StreamMessage(ctx, "s1", "hello")
			Expect(err).NotTo(HaveOccurred())
			defer body.Close()

			data, err := io.ReadAll(body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("data: late\n\n"))
		})

		It("aborts the transfer when the context is cancelled", func() {
			release := make(chan struct{})
			DeferCleanup(func() { close(release) })
			mux.HandleFunc("POST /api/chat/message/stream", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.(http.Flusher).Flush()
				select {
				case <-r.Context().Done():
				case <-release:
				}
			})

			cctx, cancel := context.WithCancel(ctx)
			body, err := client.StreamMessage(cctx, "s1", "hello")
			Expect(err).NotTo(HaveOccurred())
			defer body.Close()

			cancel()
			_, err = io.ReadAll(body)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("UploadPDF", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		It("sends the file as a multipart PDF part", func() {
			path := filepath.Join(dir, "report.pdf")
			Expect(os.WriteFile(path, []byte(minimalPDF), 0o600)).To(Succeed())

			mux.HandleFunc("POST /api/upload/pdf", func(w http.ResponseWriter, r *http.Request) {
				defer GinkgoRecover()
				Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())
				files := r.MultipartForm.File["file"]
				Expect(files).To(HaveLen(1))
				Expect(files[0].Filename).To(Equal("report.pdf"))
				Expect(files[0].Header.Get("Content-Type")).To(Equal("application/pdf"))
				Expect(files[0].Size).To(Equal(int64(len(minimalPDF))))
				_, _ = w.Write([]byte(`{"message":"PDF processed successfully"}`))
			})

			result, err := client.UploadPDF(ctx, path)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Message).To(Equal("PDF processed successfully"))
			Expect(result.FileName).To(Equal("report.pdf"))
		})

		It("does not call the backend when validation fails", func() {
			var calls atomic.Int32
			mux.HandleFunc("POST /api/upload/pdf", func(http.ResponseWriter, *http.Request) {
				calls.Add(1)
			})

			path := filepath.Join(dir, "notes.pdf")
			Expect(os.WriteFile(path, []byte("plain text"), 0o600)).To(Succeed())

			_, err := client.UploadPDF(ctx, path)
			Expect(err).To(MatchError(upload.ErrNotPDF))

			_, err = client.UploadPDF(ctx, "")
			Expect(err).To(MatchError(upload.ErrNoFile))

			Expect(calls.Load()).To(BeZero())
		})

		It("surfaces the server's error message", func() {
			path := filepath.Join(dir, "report.pdf")
			Expect(os.WriteFile(path, []byte(minimalPDF), 0o600)).To(Succeed())

			mux.HandleFunc("POST /api/upload/pdf", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"Failed to process PDF: disk full"}`))
			})

			_, err := client.UploadPDF(ctx, path)
			var apiErr *backend.APIError
			Expect(errorsAs(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Message).To(Equal("Failed to process PDF: disk full"))
			Expect(apiErr.Endpoint).To(Equal(backend.PathUploadPDF))
		})
	})
})
