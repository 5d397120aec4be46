package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragchat/pkg/storage"
	"github.com/papercomputeco/ragchat/pkg/storage/drivertest"
	"github.com/papercomputeco/ragchat/pkg/storage/sqlite"
)

var _ = Describe("Driver", func() {
	drivertest.DescribeDriver(func() storage.Driver {
		d, err := sqlite.NewDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
		return d
	})

	Describe("NewDriver", func() {
		It("creates a driver with file database", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "test.db")

			d, err := sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps turns across reopen", func() {
			ctx := context.Background()
			dbPath := filepath.Join(GinkgoT().TempDir(), "test.db")

			d, err := sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.AddTurn(ctx, &storage.Turn{SessionID: "s", Message: "q", Response: "a", Timestamp: time.Now()})).To(Succeed())
			Expect(d.Close()).To(Succeed())

			d, err = sqlite.NewDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			turns, err := d.Turns(ctx, "s")
			Expect(err).NotTo(HaveOccurred())
			Expect(turns).To(HaveLen(1))
			Expect(turns[0].Response).To(Equal("a"))
		})
	})
})
