// Package server exposes the legal analysis tools over HTTP on port 9000.
// The service layer owns the conversation with the model; the handlers only
// translate between JSON and the service.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"

	"legal-lab/domain"
	"legal-lab/search"
	"legal-lab/sessions"
)

// LLM is the slice of the model client the service needs.
type LLM interface {
	Converse(ctx context.Context, history []domain.ChatMessage, maxTokens int) (string, error)
}

// ClauseSearcher is the slice of the clause index the service needs.
type ClauseSearcher interface {
	IndexDocument(ctx context.Context, sessionID, document string) (int, error)
	Search(ctx context.Context, sessionID, query string, limit int) ([]search.Clause, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type IAnalysisService interface {
	InitSession(ctx context.Context, sessionID, document string) error
	Answer(ctx context.Context, sessionID, question string) (string, error)
	Simplify(ctx context.Context, sessionID string) (string, error)
	AnalyzeComplications(ctx context.Context, sessionID string) (string, error)
	ValidateDocument(ctx context.Context, sessionID string) (string, error)
	ExtractKeyDates(ctx context.Context, sessionID string) (string, error)
	ResetSession(ctx context.Context, sessionID string) (bool, error)
	SearchClauses(ctx context.Context, sessionID, query string, limit int) ([]search.Clause, error)
}

type AnalysisService struct {
	log        *slog.Logger
	repository sessions.ISessionRepository
	index      ClauseSearcher
	llm        LLM
}

func NewAnalysisService(log *slog.Logger, repository sessions.ISessionRepository,
	index ClauseSearcher, llm LLM) *AnalysisService {
	return &AnalysisService{
		log:        log,
		repository: repository,
		index:      index,
		llm:        llm,
	}
}

// InitSession stores the document once, seeds the conversation with it and
// indexes its clauses. Re-initializing an existing session replaces it.
func (s *AnalysisService) InitSession(ctx context.Context, sessionID, document string) error {
	info := whatlanggo.Detect(document)

	session := domain.Session{
		ID:        sessionID,
		Document:  document,
		Language:  info.Lang.Iso6391(),
		CreatedAt: time.Now().UTC(),
		History:   domain.Seed(document),
	}
	if err := s.repository.Init(session); err != nil {
		return err
	}

	count, err := s.index.IndexDocument(ctx, sessionID, document)
	if err != nil {
		return err
	}

	s.log.Info("Session initialized",
		"session_id", sessionID, "language", session.Language, "clauses", count)
	return nil
}

// Answer replies to a question about the remembered document. The most
// relevant indexed clauses are quoted back into the prompt so long documents
// do not lose the clause the question is about.
func (s *AnalysisService) Answer(ctx context.Context, sessionID, question string) (string, error) {
	prompt := qaPrompt(question)

	clauses, err := s.index.Search(ctx, sessionID, question, 3)
	if err != nil {
		s.log.Warn("Clause lookup failed, answering without context",
			"session_id", sessionID, "error", err)
	} else if len(clauses) > 0 {
		var sb strings.Builder
		sb.WriteString(prompt)
		sb.WriteString("\n\nMost relevant clauses:\n")
		for _, clause := range clauses {
			sb.WriteString(fmt.Sprintf("- %s\n", clause.Text))
		}
		prompt = sb.String()
	}

	return s.ask(ctx, sessionID, prompt, defaultMaxTokens)
}

// Simplify rewrites the remembered document in plain language.
func (s *AnalysisService) Simplify(ctx context.Context, sessionID string) (string, error) {
	return s.ask(ctx, sessionID, simplifyPrompt, defaultMaxTokens)
}

// AnalyzeComplications runs the risk analysis over the original document.
// It is a one-shot call on purpose: the analysis must see the verbatim
// document, not the conversation about it, and its large JSON answer would
// only pollute the session history.
func (s *AnalysisService) AnalyzeComplications(ctx context.Context, sessionID string) (string, error) {
	session, err := s.repository.Get(sessionID)
	if err != nil {
		return "", err
	}

	oneShot := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: complicationsPrompt(session.Document)},
	}
	answer, err := s.llm.Converse(ctx, oneShot, longMaxTokens)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// ValidateDocument asks whether the remembered document is a legal document.
func (s *AnalysisService) ValidateDocument(ctx context.Context, sessionID string) (string, error) {
	session, err := s.repository.Get(sessionID)
	if err != nil {
		return "", err
	}
	return s.askWith(ctx, session, validatePrompt(session.Document), defaultMaxTokens)
}

// ExtractKeyDates lists the contractual dates of the remembered document.
func (s *AnalysisService) ExtractKeyDates(ctx context.Context, sessionID string) (string, error) {
	return s.ask(ctx, sessionID, keyDatesPrompt, longMaxTokens)
}

// ResetSession clears a session and its index entries. The returned bool
// reports whether there was anything to clear.
func (s *AnalysisService) ResetSession(ctx context.Context, sessionID string) (bool, error) {
	found, err := s.repository.Delete(sessionID)
	if err != nil {
		return false, err
	}
	if err := s.index.DeleteSession(ctx, sessionID); err != nil {
		return false, err
	}
	return found, nil
}

// SearchClauses exposes the clause index directly.
func (s *AnalysisService) SearchClauses(ctx context.Context, sessionID, query string, limit int) ([]search.Clause, error) {
	if _, err := s.repository.Get(sessionID); err != nil {
		return nil, err
	}
	return s.index.Search(ctx, sessionID, query, limit)
}

// ask appends the prompt to the session history, queries the model with the
// whole conversation and persists both turns.
func (s *AnalysisService) ask(ctx context.Context, sessionID, prompt string, maxTokens int) (string, error) {
	session, err := s.repository.Get(sessionID)
	if err != nil {
		return "", err
	}
	return s.askWith(ctx, session, prompt, maxTokens)
}

func (s *AnalysisService) askWith(ctx context.Context, session domain.Session, prompt string, maxTokens int) (string, error) {
	history := append(session.History, domain.ChatMessage{Role: domain.RoleUser, Content: prompt})

	answer, err := s.llm.Converse(ctx, history, maxTokens)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)

	if err := s.repository.AppendHistory(session.ID, domain.ChatMessage{Role: domain.RoleUser, Content: prompt}); err != nil {
		return "", err
	}
	if err := s.repository.AppendHistory(session.ID, domain.ChatMessage{Role: domain.RoleAssistant, Content: answer}); err != nil {
		return "", err
	}
	return answer, nil
}
