// Package server exposes the ranking engine over HTTP: demo-account
// login, a bearer-protected ask endpoint, and a health probe. Responses
// carrying highlight markers are serialized without HTML escaping so the
// markers survive to the client verbatim.
package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/qanoonhq/qanoon/internal/config"
	"github.com/qanoonhq/qanoon/internal/qerrors"
	"github.com/qanoonhq/qanoon/internal/search"
)

// Server is the HTTP surface over one search engine.
type Server struct {
	app    *fiber.App
	cfg    *config.Config
	engine *search.Engine
	auth   *Authenticator
	logger *slog.Logger
}

// New wires the routes and middleware over the given engine.
func New(cfg *config.Config, engine *search.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		engine: engine,
		auth:   NewAuthenticator(cfg.Server.JWTSecret, cfg.Server.TokenTTL),
		logger: logger,
	}

	app := fiber.New(fiber.Config{
		AppName:               "qanoon",
		DisableStartupMessage: true,
	})
	app.Use(s.requestLog)

	app.Get("/healthz", s.handleHealth)
	app.Post("/login", s.handleLogin)
	app.Post("/ask", s.requireAuth, s.handleAsk)

	s.app = app
	return s
}

// App returns the underlying fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen() error {
	s.logger.Info("server_listening", slog.String("addr", s.cfg.Server.Addr))
	return s.app.Listen(s.cfg.Server.Addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// requestLog tags every request with an id and logs its outcome.
func (s *Server) requestLog(c *fiber.Ctx) error {
	requestID := uuid.NewString()
	c.Locals("request_id", requestID)
	c.Set("X-Request-ID", requestID)

	start := time.Now()
	err := c.Next()

	s.logger.Info("http_request",
		slog.String("request_id", requestID),
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Int("status", c.Response().StatusCode()),
		slog.Duration("duration", time.Since(start)))
	return err
}

// requireAuth validates the bearer token and stores the subject's roles
// for the handler.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
	}

	sub, roles, err := s.auth.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}

	c.Locals("username", sub)
	c.Locals("roles", roles)
	return c.Next()
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	FullName    string   `json:"full_name"`
	Roles       []string `json:"roles"`
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	token, user, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "incorrect username or password"})
	}
	return c.JSON(loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		FullName:    user.FullName,
		Roles:       user.Roles,
	})
}

// askRequest is the ask body. Roles never come from the body; the token
// is the only role source.
type askRequest struct {
	Query    string   `json:"query"`
	TopK     *int     `json:"topk"`
	LexicalK *int     `json:"lexical_k"`
	VectorK  *int     `json:"vector_k"`
	Alpha    *float64 `json:"alpha"`
}

func (s *Server) handleAsk(c *fiber.Ctx) error {
	var body askRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed body"})
	}

	roles, _ := c.Locals("roles").([]string)
	req := search.Request{
		Query:    body.Query,
		Roles:    roles,
		TopK:     s.cfg.Search.TopK,
		LexicalK: s.cfg.Search.LexicalK,
		VectorK:  s.cfg.Search.VectorK,
		Alpha:    s.cfg.Search.Alpha,
	}
	if body.TopK != nil {
		req.TopK = *body.TopK
	}
	if body.LexicalK != nil {
		req.LexicalK = *body.LexicalK
	}
	if body.VectorK != nil {
		req.VectorK = *body.VectorK
	}
	if body.Alpha != nil {
		req.Alpha = *body.Alpha
	}

	resp, err := s.engine.Search(c.Context(), req)
	if err != nil {
		status := fiber.StatusInternalServerError
		if qerrors.IsCode(err, qerrors.CodeInvalidParam) {
			status = fiber.StatusBadRequest
		}
		s.logger.Error("ask_failed",
			slog.Any("request_id", c.Locals("request_id")),
			slog.String("error", err.Error()))
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return sendJSONRaw(c, fiber.Map{
		"answer":        resp.Answer,
		"citations":     resp.Results,
		"related_terms": resp.RelatedTerms,
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	snap := s.engine.Snapshot()
	return c.JSON(fiber.Map{
		"status": "ok",
		"chunks": snap.Corpus.Len(),
	})
}

// sendJSONRaw serializes without HTML escaping. The default encoder
// rewrites angle brackets to \u003c escapes, which breaks the mark
// annotations for clients that render the excerpt as HTML.
func sendJSONRaw(c *fiber.Ctx, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "encode response"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(buf.Bytes())
}
