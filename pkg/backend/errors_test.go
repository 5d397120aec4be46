package backend_test

import (
	"errors"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ragchat/pkg/backend"
)

func errorsAs(err error, target any) bool {
	return errors.As(err, target)
}

var _ = Describe("APIError", func() {
	It("formats status, endpoint and message", func() {
		err := &backend.APIError{StatusCode: 400, Endpoint: "/upload/pdf", Message: "File is empty"}
		Expect(err.Error()).To(Equal("backend error [400] at /upload/pdf: File is empty"))
	})

	It("is found through wrapping by IsStatus", func() {
		err := fmt.Errorf("uploading: %w", &backend.APIError{StatusCode: http.StatusBadRequest})
		Expect(backend.IsStatus(err, http.StatusBadRequest)).To(BeTrue())
		Expect(backend.IsStatus(err, http.StatusNotFound)).To(BeFalse())
		Expect(backend.IsStatus(errors.New("plain"), http.StatusBadRequest)).To(BeFalse())
	})
})
