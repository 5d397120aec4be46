package stub

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/papercomputeco/ragchat/pkg/storage"
	"github.com/papercomputeco/ragchat/pkg/upload"
)

// localTimestampLayout matches the zone-less timestamps of the real backend.
const localTimestampLayout = "2006-01-02T15:04:05.999999"

// sniffLen is how much of an upload is read to detect its content type.
const sniffLen = 3072

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionResponse is returned by the session route.
type SessionResponse struct {
	SessionID string `json:"sessionId"`
}

// MessageRequest is the body of both message routes.
type MessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// MessageResponse is the non-streaming answer.
type MessageResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

// HistoryEntry is one stored turn as the history route returns it.
type HistoryEntry struct {
	ID        int64  `json:"id"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// UploadResponse is returned for an accepted upload.
type UploadResponse struct {
	Message string `json:"message"`
}

var (
	errMissingSession = errors.New("sessionId is required")
	errEmptyMessage   = errors.New("message is required")
)

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleCreateSession hands out a fresh id. Sessions exist implicitly once a
// turn is stored under them.
func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	id := uuid.NewString()
	s.logger.Debug("session created", "session_id", id)
	return c.JSON(SessionResponse{SessionID: id})
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")

	turns, err := s.store.Turns(c.Context(), sessionID)
	if err != nil {
		s.logger.Error("failed to load history", "session_id", sessionID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load history"})
	}

	entries := make([]HistoryEntry, 0, len(turns))
	for _, t := range turns {
		entries = append(entries, HistoryEntry{
			ID:        t.ID,
			SessionID: t.SessionID,
			Message:   t.Message,
			Response:  t.Response,
			Timestamp: t.Timestamp.Local().Format(localTimestampLayout),
		})
	}

	return c.JSON(entries)
}

func (s *Server) handleMessage(c *fiber.Ctx) error {
	req, err := parseMessageRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	answer, err := s.answer(c, req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to generate response"})
	}

	if err := s.saveTurn(c.Context(), req, answer); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to save message"})
	}

	return c.JSON(MessageResponse{Response: answer, SessionID: req.SessionID})
}

func (s *Server) handleUploadPDF(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "No file uploaded"})
	}

	if fh.Size == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "File is empty"})
	}

	contentType := fh.Header.Get(fiber.HeaderContentType)
	if contentType != pdfContentType {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Only PDF files are allowed"})
	}

	ok, err := sniffPDF(fh)
	if err != nil {
		s.logger.Error("failed to read upload", "name", fh.Filename, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to process PDF: " + err.Error()})
	}
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Only PDF files are allowed"})
	}

	doc := &storage.Document{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: contentType,
		UploadedAt:  time.Now(),
	}
	if err := s.store.AddDocument(c.Context(), doc); err != nil {
		s.logger.Error("failed to record document", "name", fh.Filename, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to process PDF: " + err.Error()})
	}

	s.logger.Info("document uploaded", "name", doc.Name, "size", doc.Size)
	return c.JSON(UploadResponse{Message: "PDF processed successfully"})
}

// sniffPDF checks the leading bytes of an uploaded file. The declared
// content type alone is not trusted.
func sniffPDF(fh *multipart.FileHeader) (bool, error) {
	f, err := fh.Open()
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return upload.IsPDF(head[:n]), nil
}

func parseMessageRequest(c *fiber.Ctx) (*MessageRequest, error) {
	req := &MessageRequest{}
	if err := c.BodyParser(req); err != nil {
		return nil, err
	}

	if req.SessionID == "" {
		return nil, errMissingSession
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, errEmptyMessage
	}
	return req, nil
}

func (s *Server) answer(c *fiber.Ctx, req *MessageRequest) (string, error) {
	docs, err := s.store.Documents(c.Context())
	if err != nil {
		s.logger.Error("failed to list documents", "error", err)
		return "", err
	}
	return composeAnswer(req.Message, docs), nil
}

func (s *Server) saveTurn(ctx context.Context, req *MessageRequest, answer string) error {
	turn := &storage.Turn{
		SessionID: req.SessionID,
		Message:   req.Message,
		Response:  answer,
		Timestamp: time.Now(),
	}
	if err := s.store.AddTurn(ctx, turn); err != nil {
		s.logger.Error("failed to save turn", "session_id", req.SessionID, "error", err)
		return err
	}
	return nil
}
