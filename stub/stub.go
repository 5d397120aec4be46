package stub

import (
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/papercomputeco/ragchat/pkg/storage"
)

// Route paths, relative to the /api prefix.
const (
	APIPrefix       = "/api"
	RouteSession    = "/chat/session"
	RouteHistory    = "/chat/history/:sessionId"
	RouteMessage    = "/chat/message"
	RouteStream     = "/chat/message/stream"
	RouteUploadPDF  = "/upload/pdf"
	maxUploadBytes  = 50 * 1024 * 1024
	pdfContentType  = "application/pdf"
	eventStreamType = "text/event-stream"
)

// Server is the stub backend.
type Server struct {
	config Config
	store  storage.Driver
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a stub server. The store is injected so callers choose
// between the in-memory and SQLite drivers.
func NewServer(config Config, store storage.Driver, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             maxUploadBytes,
	})

	s := &Server{
		config: config,
		store:  store,
		logger: logger,
		app:    app,
	}

	app.Use(cors.New())
	app.Get("/ping", s.handlePing)

	api := app.Group(APIPrefix)
	api.Post(RouteSession, s.handleCreateSession)
	api.Get(RouteHistory, s.handleHistory)
	api.Post(RouteMessage, s.handleMessage)
	api.Post(RouteStream, s.handleStream)
	api.Post(RouteUploadPDF, s.handleUploadPDF)

	return s
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting stub backend",
		"listen", s.config.ListenAddr,
		"token_delay", s.config.TokenDelay,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Serve runs the server on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting stub backend", "listen", ln.Addr().String())
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
