package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	liberrors "legal-lab/errors"
	"legal-lab/search"
)

// sessionClaimKey is where the token middleware stores the authenticated
// session ID on the request context.
const sessionClaimKey = "session_id_claim"

const defaultSearchLimit = 5

type InitSessionRequest struct {
	Document  string `json:"document" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
}

type InitSessionResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

type QARequest struct {
	Question  string `json:"question" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
}

type SessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type QAResponse struct {
	Answer string `json:"answer"`
}

type SimplifyResponse struct {
	SimplifiedDocument string `json:"simplified_document"`
}

type AnalyzeResponse struct {
	Analysis string `json:"analysis"`
}

type ValidateResponse struct {
	Validation string `json:"validation"`
}

type KeyDatesResponse struct {
	KeyDates string `json:"key_dates"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ClauseResult struct {
	Ordinal int     `json:"ordinal"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

type SearchResponse struct {
	Clauses []ClauseResult `json:"clauses"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Service: "legal-lab-toolserver"})
}

func (s *Server) handleInitSession(c echo.Context) error {
	var req InitSessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := s.service.InitSession(c.Request().Context(), req.SessionID, req.Document); err != nil {
		return mapServiceError(err)
	}

	response := InitSessionResponse{
		Message: fmt.Sprintf("Session %s initialized with document.", req.SessionID),
	}
	if s.config.Tokens != nil {
		token, err := s.config.Tokens.Issue(req.SessionID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue session token")
		}
		response.Token = token
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) handleQA(c echo.Context) error {
	var req QARequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.checkSessionClaim(c, req.SessionID); err != nil {
		return err
	}

	answer, err := s.service.Answer(c.Request().Context(), req.SessionID, req.Question)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, QAResponse{Answer: answer})
}

func (s *Server) handleSimplify(c echo.Context) error {
	var req SessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.checkSessionClaim(c, req.SessionID); err != nil {
		return err
	}

	simplified, err := s.service.Simplify(c.Request().Context(), req.SessionID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, SimplifyResponse{SimplifiedDocument: simplified})
}

func (s *Server) handleAnalyzeComplications(c echo.Context) error {
	var req SessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.checkSessionClaim(c, req.SessionID); err != nil {
		return err
	}

	analysis, err := s.service.AnalyzeComplications(c.Request().Context(), req.SessionID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, AnalyzeResponse{Analysis: analysis})
}

func (s *Server) handleValidateDocument(c echo.Context) error {
	var req SessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.checkSessionClaim(c, req.SessionID); err != nil {
		return err
	}

	validation, err := s.service.ValidateDocument(c.Request().Context(), req.SessionID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, ValidateResponse{Validation: validation})
}

func (s *Server) handleExtractKeyDates(c echo.Context) error {
	var req SessionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.checkSessionClaim(c, req.SessionID); err != nil {
		return err
	}

	keyDates, err := s.service.ExtractKeyDates(c.Request().Context(), req.SessionID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, KeyDatesResponse{KeyDates: keyDates})
}

// handleResetSession clears the session. A missing session is not an error,
// only a different message.
func (s *Server) handleResetSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	if err := s.checkSessionClaim(c, sessionID); err != nil {
		return err
	}

	found, err := s.service.ResetSession(c.Request().Context(), sessionID)
	if err != nil {
		return mapServiceError(err)
	}

	if found {
		return c.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("Session %s cleared.", sessionID)})
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: fmt.Sprintf("Session %s not found.", sessionID)})
}

func (s *Server) handleSearch(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	query := c.QueryParam("q")
	if sessionID == "" || query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id and q are required")
	}
	if err := s.checkSessionClaim(c, sessionID); err != nil {
		return err
	}

	limit := defaultSearchLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = parsed
	}

	clauses, err := s.service.SearchClauses(c.Request().Context(), sessionID, query, limit)
	if err != nil {
		return mapServiceError(err)
	}

	results := lo.Map(clauses, func(clause search.Clause, _ int) ClauseResult {
		return ClauseResult{Ordinal: clause.Ordinal, Text: clause.Text, Score: clause.Score}
	})
	return c.JSON(http.StatusOK, SearchResponse{Clauses: results})
}

func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}

// checkSessionClaim rejects a token-authenticated request that targets a
// session other than the one its token was issued for.
func (s *Server) checkSessionClaim(c echo.Context, sessionID string) error {
	if s.config.Tokens == nil {
		return nil
	}
	claim, ok := c.Get(sessionClaimKey).(string)
	if !ok || claim != sessionID {
		return echo.NewHTTPError(http.StatusForbidden, "token does not match session")
	}
	return nil
}

func mapServiceError(err error) error {
	if errors.Is(err, liberrors.ErrSessionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
