// Package backend is the HTTP client for the chat backend: sessions, history,
// plain and streamed messages, and PDF upload.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/papercomputeco/ragchat/pkg/logger"
	"github.com/papercomputeco/ragchat/pkg/upload"
	"github.com/papercomputeco/ragchat/pkg/utils"
)

const (
	// DefaultBaseURL is where a locally running backend serves its API.
	DefaultBaseURL = "http://localhost:8080/api"

	PathSession       = "/chat/session"
	PathHistory       = "/chat/history/"
	PathMessage       = "/chat/message"
	PathMessageStream = "/chat/message/stream"
	PathUploadPDF     = "/upload/pdf"

	defaultTimeout = 30 * time.Second

	// maxBodySize caps how much of a non-streaming body is read.
	maxBodySize = 8 << 20
)

// Client talks to the backend over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL   string
	transport http.RoundTripper
	timeout   time.Duration
	logger    *slog.Logger
	userAgent string

	// httpClient carries the request timeout; streamClient never times out
	// since a streamed answer can legitimately take minutes.
	httpClient   *http.Client
	streamClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses hc's transport for all requests. hc's Timeout is
// applied to non-streaming requests only.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.transport = hc.Transport
		if hc.Timeout > 0 {
			c.timeout = hc.Timeout
		}
	}
}

// WithTimeout bounds non-streaming requests. Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client for the backend at baseURL, which includes the
// /api prefix. An empty baseURL means DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		timeout:   defaultTimeout,
		logger:    logger.Nop(),
		userAgent: utils.UserAgent("ragchat"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.transport == nil {
		c.transport = http.DefaultTransport
	}

	c.httpClient = &http.Client{Transport: c.transport, Timeout: c.timeout}
	c.streamClient = &http.Client{Transport: c.transport}

	return c
}

// BaseURL returns the backend base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateSession asks the backend for a new conversation id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodPost, PathSession, nil, "")
	if err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}

	id := gjson.GetBytes(body, "sessionId").String()
	if id == "" {
		return "", fmt.Errorf("creating session: %w: missing sessionId", ErrInvalidResponse)
	}

	c.logger.Debug("session created", "session_id", id)
	return id, nil
}

// History returns the stored turns of a session in backend order.
func (c *Client) History(ctx context.Context, sessionID string) ([]HistoryEntry, error) {
	body, err := c.do(ctx, http.MethodGet, PathHistory+url.PathEscape(sessionID), nil, "")
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("loading history: %w: body is not JSON", ErrInvalidResponse)
	}

	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return nil, fmt.Errorf("loading history: %w: expected an array", ErrInvalidResponse)
	}

	entries := make([]HistoryEntry, 0, len(result.Array()))
	result.ForEach(func(_, v gjson.Result) bool {
		entries = append(entries, HistoryEntry{
			// Ids may be numeric or strings depending on the backend.
			ID:        v.Get("id").String(),
			Message:   v.Get("message").String(),
			Response:  v.Get("response").String(),
			Timestamp: parseTimestamp(v.Get("timestamp").String()),
		})
		return true
	})

	c.logger.Debug("history loaded", "session_id", sessionID, "entries", len(entries))
	return entries, nil
}

// SendMessage sends a message and waits for the complete answer.
func (c *Client) SendMessage(ctx context.Context, sessionID, message string) (*Reply, error) {
	payload, err := json.Marshal(messageRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, PathMessage, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}

	reply := &Reply{}
	if err := json.Unmarshal(body, reply); err != nil {
		return nil, fmt.Errorf("sending message: %w: %w", ErrInvalidResponse, err)
	}

	return reply, nil
}

// StreamMessage sends a message and returns the raw event stream body.
// The caller must close it. Cancelling ctx aborts the transfer.
func (c *Client) StreamMessage(ctx context.Context, sessionID, message string) (io.ReadCloser, error) {
	payload, err := json.Marshal(messageRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("encoding message: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, PathMessageStream, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("streaming message: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("streaming message: %w", newAPIError(resp.StatusCode, PathMessageStream, body))
	}

	c.logger.Debug("stream opened",
		"session_id", sessionID,
		"content_type", resp.Header.Get("Content-Type"),
	)
	return resp.Body, nil
}

// UploadPDF validates the file at path and uploads it as the multipart form
// field "file". Nothing is sent when validation fails.
func (c *Client) UploadPDF(ctx context.Context, path string) (*UploadResult, error) {
	f, err := upload.Validate(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Path, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	header.Set("Content-Type", upload.PDFContentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("writing file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finishing form: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, PathUploadPDF, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", f.Name, err)
	}

	c.logger.Debug("pdf uploaded", "file", f.Name, "size", f.Size)
	return &UploadResult{
		Message:  gjson.GetBytes(body, "message").String(),
		FileName: f.Name,
		Size:     f.Size,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", c.userAgent)

	return req, nil
}

// do performs a non-streaming request and returns the body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, path, data)
	}

	return data, nil
}
