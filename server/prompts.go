package server

import "fmt"

const (
	defaultMaxTokens = 1024
	longMaxTokens    = 2000
)

func qaPrompt(question string) string {
	return fmt.Sprintf("Answer the user's question based on the remembered document.\n\nQuestion: %s", question)
}

const simplifyPrompt = "Rewrite the remembered legal document in clear, plain language. Keep meaning but remove jargon."

func complicationsPrompt(document string) string {
	return fmt.Sprintf(`
You are a legal contract analyzer.
ONLY analyze the following original document.
Do NOT hallucinate or provide generic advice.
Identify only clauses that could realistically cause legal disputes, lawsuits, or material risks to any party involved.

Document:
%s

Task:
Return JSON with this schema:

{
  "issues": [
    {
      "line_number": int,              # approximate line or section
      "clause": str,                   # verbatim text of problematic clause
      "type": str,                     # one of ["contradiction","complication","ambiguity","misleading","risk"]
      "risk_percent": int,             # 0-100 probability this causes legal dispute or exposure
      "affected_parties": [str],       # parties potentially affected, e.g., ["signer","counterparty","both"]
      "reason": str,                   # concise explanation of the legal problem
      "suggestion": str                # practical counter-offer or mitigation strategy
    }
  ],
  "overall_rating": int               # 0-100 overall contract clarity and safety
}

Rules:
- Consider implications for all parties, not just one side.
- Only report clauses that are legally problematic.
- Quote clauses verbatim; do not paraphrase.
- Provide factual reasoning for risk_percent.
- Respond ONLY in valid JSON. No extra text.
`, document)
}

func validatePrompt(document string) string {
	return fmt.Sprintf(`
You are a legal document classifier.
ONLY analyze the text below. Do NOT hallucinate.

Document:
%s

Task:
Return JSON ONLY with these fields:
{
  "is_legal_document": bool,  # True if this is a legal/contract document, False otherwise
  "reason": str               # if False, explain why it is not a legal/contract document
}
`, document)
}

const keyDatesPrompt = `
You are a legal contract date extractor.
Analyze the following document and identify all important contractual dates:
- Contract start date
- Contract expiration
- Renewal dates
- Completion milestones
- Warning or notice periods
- Recurring obligations (monthly, yearly, weekly)

Return JSON ONLY with this schema:
{
  "key_dates": [
    {
      "event_name": str,         # e.g., "Contract Start", "Renewal", "Payment Due"
      "recurrence": str|null,    # "monthly", "yearly", "weekly", or null if one-time
      "date_or_day": str         # exact date "YYYY-MM-DD" for one-time, or day name if weekly
    }
  ]
}

Rules:
- Include ALL important dates mentioned in the document.
- Do not hallucinate dates.
- Respond ONLY in valid JSON.
`
