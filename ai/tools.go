package ai

import (
	"encoding/json"
	"fmt"

	"legal-lab/domain"
)

// ChooseToolDefinitions returns the single meta-tool presented to the model
// when the chatbot asks it to route a user query: the model must answer with
// one tool name from the catalog plus a short reason.
func ChooseToolDefinitions() []ToolDefinition {
	names := make([]string, 0, len(domain.AllTools()))
	for _, t := range domain.AllTools() {
		names = append(names, string(t))
	}

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"tool":   map[string]any{"type": "string", "enum": names},
			"reason": map[string]any{"type": "string"},
		},
		"required": []string{"tool", "reason"},
	}
	raw, _ := json.Marshal(schema)

	return []ToolDefinition{
		{
			Name:        "choose_tool",
			Description: "Select which analysis tool to call",
			InputSchema: raw,
		},
	}
}

// ChooseToolPrompt builds the routing prompt for a user query, with one
// usage example per tool so the model has something concrete to match on.
func ChooseToolPrompt(userQuery string) string {
	return fmt.Sprintf(`User question: %q

You are a smart legal assistant. Only choose **one tool** for this question.
Available tools with usage examples:

1. "qa": Answer specific questions about the document.
   Example: "Who is responsible for renewal notice?"
2. "simplify": Rewrite the document in plain language.
   Example: "Explain this contract in plain English"
3. "analyze_complications": Identify legal risks, ambiguities, contradictions.
   Example: "Find risky clauses in the contract"
4. "validate_document": Check if the document is a legal contract.
   Example: "Is this document a legal contract?"
5. "extract_key_dates": Extract all important dates and milestones.
   Example: "List all important contract dates"

Respond STRICTLY in JSON: {"tool": "...", "reason": "..."}`, userQuery)
}
