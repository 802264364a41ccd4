package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"legal-lab/auth"
	liberrors "legal-lab/errors"
)

const shutdownTimeout = 10 * time.Second

// Config holds the HTTP surface configuration. Tokens and APIKeyHash are
// optional; leaving them empty runs the server open, which is the mode the
// console chatbot uses on localhost.
type Config struct {
	Port       int
	Tokens     *auth.TokenService
	APIKeyHash string
}

type Server struct {
	echo    *echo.Echo
	log     *slog.Logger
	service IAnalysisService
	config  Config
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewServer(log *slog.Logger, service IAnalysisService, config Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))

	s := &Server{
		echo:    e,
		log:     log,
		service: service,
		config:  config,
	}
	s.registerRoutes()
	return s
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			log.Info("HTTP request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return err
		}
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	protected := s.echo.Group("")
	if s.config.APIKeyHash != "" {
		protected.Use(s.apiKeyMiddleware)
	}

	protected.POST("/init_session", s.handleInitSession)

	// Session endpoints additionally require the token issued at
	// /init_session when the token service is configured.
	session := protected.Group("")
	if s.config.Tokens != nil {
		session.Use(s.tokenMiddleware)
	}
	session.POST("/qa", s.handleQA)
	session.POST("/simplify", s.handleSimplify)
	session.POST("/analyze_complications", s.handleAnalyzeComplications)
	session.POST("/validate_document", s.handleValidateDocument)
	session.POST("/extract_key_dates", s.handleExtractKeyDates)
	session.POST("/reset_session/:session_id", s.handleResetSession)
	session.GET("/search", s.handleSearch)
}

// apiKeyMiddleware compares the X-API-Key header against the configured
// Argon2id hash.
func (s *Server) apiKeyMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get("X-API-Key")
		match, err := auth.CompareAPIKey(key, s.config.APIKeyHash)
		if err != nil || !match {
			return echo.NewHTTPError(http.StatusUnauthorized, liberrors.ErrInvalidAPIKey.Error())
		}
		return next(c)
	}
}

// tokenMiddleware validates the Bearer token and stores its session claim so
// handlers can check it against the session they operate on.
func (s *Server) tokenMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == "" || tokenString == header {
			return echo.NewHTTPError(http.StatusUnauthorized, "authorization token is missing")
		}

		claims, err := s.config.Tokens.Validate(tokenString)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set(sessionClaimKey, claims.SessionID)
		return next(c)
	}
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	address := fmt.Sprintf(":%d", s.config.Port)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- s.echo.Start(address)
	}()
	s.log.Info("Tool server listening", "address", address)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// Handler exposes the routing tree, used by the HTTP tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
