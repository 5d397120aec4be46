package stub

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	gosse "github.com/tmaxmax/go-sse"

	"github.com/papercomputeco/ragchat/pkg/sse"
)

var (
	tokenEventType = gosse.Type(sse.DefaultEventType)
	doneEventType  = gosse.Type(sse.DoneEventType)
)

// handleStream answers with one token frame per word followed by the
// done frame. The turn is stored before the done frame is written, so a
// client that saw completion can load it from history.
func (s *Server) handleStream(c *fiber.Ctx) error {
	req, err := parseMessageRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	answer, err := s.answer(c, req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to generate response"})
	}

	c.Set(fiber.HeaderContentType, eventStreamType)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	// pw.Write blocks until fasthttp reads the pipe and flushes the chunk,
	// so each token reaches the client as it is written.
	pr, pw := io.Pipe()
	go s.writeStream(pw, req, answer)

	// Unknown size (-1) triggers chunked transfer encoding.
	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

func (s *Server) writeStream(pw *io.PipeWriter, req *MessageRequest, answer string) {
	defer pw.Close()

	for i, token := range tokenize(answer) {
		if i > 0 && s.config.TokenDelay > 0 {
			time.Sleep(s.config.TokenDelay)
		}

		msg := &gosse.Message{Type: tokenEventType}
		msg.AppendData(token)
		if _, err := msg.WriteTo(pw); err != nil {
			s.logger.Warn("client went away mid-stream", "session_id", req.SessionID, "error", err)
			return
		}
	}

	if err := s.saveTurn(context.Background(), req, answer); err != nil {
		_ = pw.CloseWithError(err)
		return
	}

	done := &gosse.Message{Type: doneEventType}
	done.AppendData(sse.DoneSentinel)
	if _, err := done.WriteTo(pw); err != nil {
		s.logger.Warn("failed to write done frame", "session_id", req.SessionID, "error", err)
	}
}
