package cmdutil

import (
	"errors"

	"github.com/papercomputeco/ragchat/pkg/backend"
	"github.com/papercomputeco/ragchat/pkg/upload"
)

// GenericUploadFailure is shown when an upload fails without a message from
// the server.
const GenericUploadFailure = "Upload failed. Please try again."

// UploadErrorMessage turns an upload failure into the line shown to the user:
// the validation notice, the server's error message, or a generic failure.
func UploadErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, upload.ErrNoFile),
		errors.Is(err, upload.ErrNotFound),
		errors.Is(err, upload.ErrEmptyFile),
		errors.Is(err, upload.ErrNotPDF):
		return upload.UserMessage(err)
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return GenericUploadFailure
}
