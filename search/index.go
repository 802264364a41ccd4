// Package search maintains a full-text index of document clauses.
// Each session's document is split into clauses at indexing time; question
// answering uses the index to surface the most relevant clauses, and the
// tool server exposes it directly for clause lookup.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blugelabs/bluge"
)

// Clause is one indexed fragment of a session's document.
type Clause struct {
	Ordinal int
	Text    string
	Score   float64
}

type ClauseIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewClauseIndex(writer *bluge.Writer, log *slog.Logger) *ClauseIndex {
	return &ClauseIndex{writer: writer, log: log}
}

// IndexDocument splits the document into clauses and indexes them under the
// session, replacing whatever the session had indexed before. Returns the
// number of clauses indexed.
func (i *ClauseIndex) IndexDocument(ctx context.Context, sessionID, document string) (int, error) {
	clauses := SplitClauses(document)

	batch := bluge.NewBatch()
	current := make(map[string]bool, len(clauses))
	for ordinal, text := range clauses {
		id := clauseID(sessionID, ordinal)
		current[id] = true
		doc := bluge.NewDocument(id).
			AddField(bluge.NewKeywordField("session", sessionID)).
			AddField(bluge.NewTextField("content", text).StoreValue()).
			AddField(bluge.NewNumericField("ordinal", float64(ordinal)).StoreValue())
		batch.Update(doc.ID(), doc)
	}

	// A shorter replacement document would otherwise leave the previous
	// document's higher-ordinal clauses behind.
	stale, err := i.sessionClauseIDs(ctx, sessionID, current)
	if err != nil {
		return 0, err
	}
	for _, id := range stale {
		batch.Delete(bluge.Identifier(id))
	}

	if err := i.writer.Batch(batch); err != nil {
		return 0, fmt.Errorf("failed to index document for session %s: %w", sessionID, err)
	}

	i.log.Debug("Document indexed", "session_id", sessionID, "clauses", len(clauses))
	return len(clauses), nil
}

// Search returns the top clauses of one session matching the query.
func (i *ClauseIndex) Search(ctx context.Context, sessionID, query string, limit int) ([]Clause, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField("content")).
		AddMust(bluge.NewTermQuery(sessionID).SetField("session"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, err
	}

	var clauses []Clause
	match, err := iterator.Next()
	for err == nil && match != nil {
		clause := Clause{Score: match.Score}
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "content":
				clause.Text = string(value)
			case "ordinal":
				if n, decodeErr := bluge.DecodeNumericFloat64(value); decodeErr == nil {
					clause.Ordinal = int(n)
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		clauses = append(clauses, clause)
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}

	return clauses, nil
}

// DeleteSession drops every clause indexed for the session.
func (i *ClauseIndex) DeleteSession(ctx context.Context, sessionID string) error {
	ids, err := i.sessionClauseIDs(ctx, sessionID, nil)
	if err != nil {
		return err
	}

	batch := bluge.NewBatch()
	for _, id := range ids {
		batch.Delete(bluge.Identifier(id))
	}
	return i.writer.Batch(batch)
}

// sessionClauseIDs lists the clause IDs currently indexed for the session,
// skipping those in keep.
func (i *ClauseIndex) sessionClauseIDs(ctx context.Context, sessionID string, keep map[string]bool) ([]string, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	q := bluge.NewTermQuery(sessionID).SetField("session")
	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(maxClausesPerSession, q))
	if err != nil {
		return nil, err
	}

	var ids []string
	match, err := iterator.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" && !keep[string(value)] {
				ids = append(ids, string(value))
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// maxClausesPerSession bounds the delete scan; a contract with more clauses
// than this would already have failed elsewhere.
const maxClausesPerSession = 10000

func clauseID(sessionID string, ordinal int) string {
	return fmt.Sprintf("%s:%d", sessionID, ordinal)
}

// SplitClauses cuts a document into indexable fragments. Blank lines are
// clause boundaries; documents without blank lines fall back to one clause
// per line so a flat contract still gets useful granularity.
func SplitClauses(document string) []string {
	normalized := strings.ReplaceAll(document, "\r\n", "\n")

	parts := strings.Split(normalized, "\n\n")
	if len(parts) < 2 {
		parts = strings.Split(normalized, "\n")
	}

	var clauses []string
	for _, part := range parts {
		clause := strings.TrimSpace(part)
		if clause != "" {
			clauses = append(clauses, clause)
		}
	}
	return clauses
}
