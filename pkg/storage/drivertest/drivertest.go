// Package drivertest holds the behavior shared by every storage.Driver.
package drivertest

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragchat/pkg/storage"
)

// DescribeDriver registers the common driver specs. newDriver is called once
// per spec and the driver is closed afterwards.
func DescribeDriver(newDriver func() storage.Driver) {
	Context("as a storage.Driver", func() {
		var (
			driver storage.Driver
			ctx    context.Context
			ts     time.Time
		)

		BeforeEach(func() {
			ctx = context.Background()
			ts = time.Date(2026, 3, 1, 12, 0, 0, 123000000, time.UTC)
			driver = newDriver()
		})

		AfterEach(func() {
			Expect(driver.Close()).To(Succeed())
		})

		Describe("turns", func() {
			It("assigns increasing ids", func() {
				first := &storage.Turn{SessionID: "a", Message: "q1", Response: "r1", Timestamp: ts}
				second := &storage.Turn{SessionID: "b", Message: "q2", Response: "r2", Timestamp: ts}

				Expect(driver.AddTurn(ctx, first)).To(Succeed())
				Expect(driver.AddTurn(ctx, second)).To(Succeed())
				Expect(first.ID).To(BeNumerically(">", 0))
				Expect(second.ID).To(BeNumerically(">", first.ID))
			})

			It("returns a session's turns in insertion order", func() {
				for i, msg := range []string{"one", "two", "three"} {
					Expect(driver.AddTurn(ctx, &storage.Turn{
						SessionID: "s",
						Message:   msg,
						Response:  "re: " + msg,
						Timestamp: ts.Add(time.Duration(i) * time.Second),
					})).To(Succeed())
				}
				Expect(driver.AddTurn(ctx, &storage.Turn{SessionID: "other", Message: "x", Timestamp: ts})).To(Succeed())

				turns, err := driver.Turns(ctx, "s")
				Expect(err).NotTo(HaveOccurred())
				Expect(turns).To(HaveLen(3))
				Expect(turns[0].Message).To(Equal("one"))
				Expect(turns[2].Response).To(Equal("re: three"))
				Expect(turns[0].Timestamp.Equal(ts)).To(BeTrue())
			})

			It("returns no turns for an unknown session", func() {
				turns, err := driver.Turns(ctx, "missing")
				Expect(err).NotTo(HaveOccurred())
				Expect(turns).To(BeEmpty())
			})

			It("rejects a nil turn", func() {
				Expect(driver.AddTurn(ctx, nil)).To(MatchError(storage.ErrNilRecord))
			})
		})

		Describe("documents", func() {
			It("lists documents in upload order", func() {
				Expect(driver.AddDocument(ctx, &storage.Document{Name: "a.pdf", Size: 10, ContentType: "application/pdf", UploadedAt: ts})).To(Succeed())
				Expect(driver.AddDocument(ctx, &storage.Document{Name: "b.pdf", Size: 20, ContentType: "application/pdf", UploadedAt: ts})).To(Succeed())

				docs, err := driver.Documents(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(docs).To(HaveLen(2))
				Expect(docs[0].Name).To(Equal("a.pdf"))
				Expect(docs[1].Size).To(Equal(int64(20)))
				Expect(docs[1].ID).To(BeNumerically(">", docs[0].ID))
			})

			It("rejects a nil document", func() {
				Expect(driver.AddDocument(ctx, nil)).To(MatchError(storage.ErrNilRecord))
			})
		})
	})
}
