package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const rentalAgreement = `RENTAL AGREEMENT

The tenant shall pay rent of 1200 euros on the first day of each month.

The landlord may terminate this agreement with a notice period of three months.

The security deposit is refunded within thirty days of the termination date.`

func setupIndex(t *testing.T) *ClauseIndex {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewClauseIndex(writer, slog.Default())
}

func TestClauseIndex_Search_Finds_Relevant_Clause(t *testing.T) {
	req := require.New(t)
	index := setupIndex(t)
	sessionID := uuid.NewString()

	// Given an indexed rental agreement
	count, err := index.IndexDocument(context.Background(), sessionID, rentalAgreement)
	req.NoError(err)
	req.Equal(4, count)

	// When searching for the notice period
	clauses, err := index.Search(context.Background(), sessionID, "termination notice", 3)

	// Then the termination clause ranks first
	req.NoError(err)
	req.NotEmpty(clauses)
	req.Contains(clauses[0].Text, "notice period")
}

func TestClauseIndex_Search_Is_Scoped_To_Session(t *testing.T) {
	req := require.New(t)
	index := setupIndex(t)

	first := uuid.NewString()
	second := uuid.NewString()
	_, err := index.IndexDocument(context.Background(), first, "The contractor delivers the software by March.")
	req.NoError(err)
	_, err = index.IndexDocument(context.Background(), second, "The tenant pays the rent monthly.")
	req.NoError(err)

	clauses, err := index.Search(context.Background(), second, "software contractor", 5)
	req.NoError(err)
	req.Empty(clauses)
}

func TestClauseIndex_ReIndex_Drops_Stale_Clauses(t *testing.T) {
	req := require.New(t)
	index := setupIndex(t)
	sessionID := uuid.NewString()

	// Given a four-clause agreement already indexed for the session
	_, err := index.IndexDocument(context.Background(), sessionID, rentalAgreement)
	req.NoError(err)

	// When the session is re-indexed with a shorter document
	count, err := index.IndexDocument(context.Background(), sessionID, "The supplier ships the goods within ten days.")
	req.NoError(err)
	req.Equal(1, count)

	// Then the old document's clauses no longer match
	clauses, err := index.Search(context.Background(), sessionID, "security deposit refunded", 5)
	req.NoError(err)
	req.Empty(clauses)

	// And only the new document's clause does
	clauses, err = index.Search(context.Background(), sessionID, "supplier goods", 5)
	req.NoError(err)
	req.Len(clauses, 1)
}

func TestClauseIndex_DeleteSession_Removes_All_Clauses(t *testing.T) {
	req := require.New(t)
	index := setupIndex(t)
	sessionID := uuid.NewString()

	_, err := index.IndexDocument(context.Background(), sessionID, rentalAgreement)
	req.NoError(err)

	req.NoError(index.DeleteSession(context.Background(), sessionID))

	clauses, err := index.Search(context.Background(), sessionID, "rent", 5)
	req.NoError(err)
	req.Empty(clauses)
}

func TestSplitClauses(t *testing.T) {
	tests := []struct {
		name     string
		document string
		expected []string
	}{
		{
			name:     "Paragraphs split on blank lines",
			document: "First clause.\n\nSecond clause.\n\n\nThird clause.",
			expected: []string{"First clause.", "Second clause.", "Third clause."},
		},
		{
			name:     "Flat document falls back to lines",
			document: "First line.\nSecond line.",
			expected: []string{"First line.", "Second line."},
		},
		{
			name:     "Windows line endings",
			document: "First.\r\n\r\nSecond.",
			expected: []string{"First.", "Second."},
		},
		{
			name:     "Empty document",
			document: "   \n\n ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, SplitClauses(tt.document))
		})
	}
}
