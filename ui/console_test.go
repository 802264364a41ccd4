package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsole_Complications_Table(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	console := NewConsole(&out)

	console.Complications(`{
		"issues": [
			{
				"line_number": 12,
				"clause": "The landlord may change the rent at any time.",
				"type": "risk",
				"risk_percent": 85,
				"affected_parties": ["signer"],
				"reason": "Unilateral modification clause.",
				"suggestion": "Cap increases to once per year."
			}
		],
		"overall_rating": 40
	}`)

	rendered := out.String()
	req.Contains(rendered, "85")
	req.Contains(rendered, "risk")
	req.Contains(rendered, "signer")
	req.Contains(rendered, "40/100")
}

func TestConsole_Complications_Falls_Back_To_Raw_Text(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	console := NewConsole(&out)

	console.Complications("The model refused to answer in JSON.")

	req.Contains(out.String(), "The model refused to answer in JSON.")
}

func TestConsole_KeyDates_Table(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	console := NewConsole(&out)

	console.KeyDates("```json\n" + `{
		"key_dates": [
			{"event_name": "Contract Start", "recurrence": null, "date_or_day": "2026-01-01"},
			{"event_name": "Payment Due", "recurrence": "monthly", "date_or_day": "5th"}
		]
	}` + "\n```")

	rendered := out.String()
	req.Contains(rendered, "Contract Start")
	req.Contains(rendered, "one-time")
	req.Contains(rendered, "monthly")
	req.Contains(rendered, "2026-01-01")
}

func TestConsole_Validation(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	console := NewConsole(&out)

	console.Validation(`{"is_legal_document": false, "reason": "It is a cooking recipe."}`)

	req.Contains(out.String(), "cooking recipe")
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"No fences", `{"a": 1}`, `{"a": 1}`},
		{"Json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Surrounding whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, stripFences(tt.raw))
		})
	}
}
