package intent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"legal-lab/domain"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	data, err := NewKeywordLoader(keywordsFolder).LoadAll("keywords")
	require.NoError(t, err)
	c, err := NewClassifier(data)
	require.NoError(t, err)
	return c
}

func TestClassifier_Routes_Queries_To_Tools(t *testing.T) {
	c := newClassifier(t)

	tests := []struct {
		name     string
		query    string
		expected domain.ToolName
	}{
		{
			name:     "Risk wording goes to complications analysis",
			query:    "Find risky clauses in the contract",
			expected: domain.ToolComplications,
		},
		{
			name:     "Plain english request goes to simplify",
			query:    "Explain this contract in plain English",
			expected: domain.ToolSimplify,
		},
		{
			name:     "Contract check goes to validation",
			query:    "Is this a contract at all?",
			expected: domain.ToolValidate,
		},
		{
			name:     "Deadline question goes to key dates",
			query:    "When does the lease expire?",
			expected: domain.ToolKeyDates,
		},
		{
			name:     "Noise between keyword characters is ignored",
			query:    "what is the DEAD-LINE here",
			expected: domain.ToolKeyDates,
		},
		{
			name:     "Anything else is plain question answering",
			query:    "Who signs on behalf of the landlord?",
			expected: domain.ToolQA,
		},
		{
			name:     "Empty query",
			query:    "",
			expected: domain.ToolQA,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, c.Classify(tt.query))
		})
	}
}

func TestClassifier_Priority_Prefers_Complications(t *testing.T) {
	req := require.New(t)
	c := newClassifier(t)

	// "risk" (complications) and "renewal" (key dates) both match;
	// the complications analysis wins the tie.
	req.Equal(domain.ToolComplications, c.Classify("any risk around the renewal date?"))
}

func TestKeywordLoader_Reads_Every_Dictionary(t *testing.T) {
	req := require.New(t)

	data, err := NewKeywordLoader(keywordsFolder).LoadAll("keywords")
	req.NoError(err)
	req.Len(data.Patterns, 4)
	req.NotEmpty(data.Patterns[domain.ToolKeyDates])
}
