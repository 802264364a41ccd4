package domain

// ToolName identifies one of the analysis tools exposed by the tool server.
type ToolName string

const (
	ToolQA            ToolName = "qa"
	ToolSimplify      ToolName = "simplify"
	ToolComplications ToolName = "analyze_complications"
	ToolValidate      ToolName = "validate_document"
	ToolKeyDates      ToolName = "extract_key_dates"
)

// AllTools lists every tool in a stable order, used for the model's
// tool-choice schema and for validating its answer.
func AllTools() []ToolName {
	return []ToolName{ToolQA, ToolSimplify, ToolComplications, ToolValidate, ToolKeyDates}
}

func (t ToolName) IsValid() bool {
	switch t {
	case ToolQA, ToolSimplify, ToolComplications, ToolValidate, ToolKeyDates:
		return true
	}
	return false
}

// ToolChoice is the model's (or the fallback classifier's) selection for a
// user query.
type ToolChoice struct {
	Tool   ToolName
	Reason string
}
