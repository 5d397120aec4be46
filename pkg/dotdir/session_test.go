package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragchat/pkg/dotdir"
)

var _ = Describe("dotdir.Manager session", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		m = dotdir.NewManager()
	})

	Describe("LoadSession", func() {
		It("returns nil when no session file exists", func() {
			state, err := m.LoadSession(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("loads a saved session", func() {
			data := `{"session_id":"abc-123","api_target":"http://localhost:8080/api","created_at":"2026-01-02T03:04:05Z"}`
			Expect(os.WriteFile(filepath.Join(tmpDir, "session.json"), []byte(data), 0o600)).To(Succeed())

			state, err := m.LoadSession(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state.SessionID).To(Equal("abc-123"))
			Expect(state.APITarget).To(Equal("http://localhost:8080/api"))
			Expect(state.CreatedAt).To(Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
		})

		It("returns an error for malformed JSON", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "session.json"), []byte("{nope"), 0o600)).To(Succeed())

			_, err := m.LoadSession(tmpDir)
			Expect(err).To(MatchError(ContainSubstring("parsing session state")))
		})
	})

	Describe("SaveSession", func() {
		It("round-trips through LoadSession", func() {
			saved := &dotdir.SessionState{
				SessionID: "s-1",
				APITarget: "http://example.test/api",
				CreatedAt: time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
			}
			Expect(m.SaveSession(saved, tmpDir)).To(Succeed())

			loaded, err := m.LoadSession(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(saved))
		})

		It("rejects a nil state", func() {
			Expect(m.SaveSession(nil, tmpDir)).To(HaveOccurred())
		})

		It("rejects a state without a session id", func() {
			Expect(m.SaveSession(&dotdir.SessionState{}, tmpDir)).To(HaveOccurred())
		})
	})

	Describe("ClearSession", func() {
		It("removes the saved session", func() {
			Expect(m.SaveSession(&dotdir.SessionState{SessionID: "gone"}, tmpDir)).To(Succeed())
			Expect(m.ClearSession(tmpDir)).To(Succeed())

			state, err := m.LoadSession(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("is a no-op when nothing is saved", func() {
			Expect(m.ClearSession(tmpDir)).To(Succeed())
		})
	})
})
