package domain

// Issue is one problematic clause reported by the complications analysis.
// Field names follow the JSON schema the model is instructed to emit.
type Issue struct {
	LineNumber      int      `json:"line_number"`
	Clause          string   `json:"clause"`
	Type            string   `json:"type"`
	RiskPercent     int      `json:"risk_percent"`
	AffectedParties []string `json:"affected_parties"`
	Reason          string   `json:"reason"`
	Suggestion      string   `json:"suggestion"`
}

// ComplicationReport aggregates every issue found in a document along with
// an overall clarity/safety rating between 0 and 100.
type ComplicationReport struct {
	Issues        []Issue `json:"issues"`
	OverallRating int     `json:"overall_rating"`
}

// KeyDate is one contractual date or recurring obligation.
// Recurrence is nil for one-time events.
type KeyDate struct {
	EventName  string  `json:"event_name"`
	Recurrence *string `json:"recurrence"`
	DateOrDay  string  `json:"date_or_day"`
}

type KeyDateReport struct {
	KeyDates []KeyDate `json:"key_dates"`
}

// Validation is the classifier's verdict on whether the remembered
// document is a legal or contract document.
type Validation struct {
	IsLegalDocument bool   `json:"is_legal_document"`
	Reason          string `json:"reason"`
}
