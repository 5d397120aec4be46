package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/papercomputeco/ragchat/pkg/utils"
)

// maxErrorBody caps how much of a non-JSON error body ends up in Message.
const maxErrorBody = 300

// ErrInvalidResponse is returned when a 2xx body does not have the expected shape.
var ErrInvalidResponse = errors.New("invalid backend response")

// APIError is a non-2xx reply from the backend.
type APIError struct {
	StatusCode int
	Endpoint   string

	// Message is the body's "error" field when present, else the body text.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
}

// newAPIError builds an APIError from a failed response body.
func newAPIError(statusCode int, endpoint string, body []byte) *APIError {
	msg := ""
	if gjson.ValidBytes(body) {
		msg = gjson.GetBytes(body, "error").String()
	}
	if msg == "" {
		msg = utils.Truncate(strings.TrimSpace(string(body)), maxErrorBody)
	}
	if msg == "" {
		msg = http.StatusText(statusCode)
	}

	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    msg,
	}
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == statusCode
}
