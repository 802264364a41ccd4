package intent

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"legal-lab/domain"
)

// priority is the tie-break order when a query matches keywords from several
// tools; it mirrors the order of the original fallback rules.
var priority = []domain.ToolName{
	domain.ToolComplications,
	domain.ToolSimplify,
	domain.ToolValidate,
	domain.ToolKeyDates,
}

// Classifier matches a normalized query against per-tool keyword patterns
// with a single Aho-Corasick automaton. Queries matching nothing fall back
// to plain question answering.
type Classifier struct {
	matcher *goahocorasick.Machine
	tools   map[string]domain.ToolName
}

// NewDefaultClassifier builds a classifier from the embedded keyword
// dictionaries.
func NewDefaultClassifier() (*Classifier, error) {
	data, err := NewKeywordLoader(keywordsFolder).LoadAll("keywords")
	if err != nil {
		return nil, err
	}
	return NewClassifier(data)
}

// NewClassifier initializes the automaton with a normalized version of every
// tool's keyword list. When a keyword appears in several dictionaries the
// higher-priority tool keeps it.
func NewClassifier(data *KeywordData) (*Classifier, error) {
	tools := make(map[string]domain.ToolName)
	var patterns [][]rune

	for _, tool := range priority {
		for _, word := range data.Patterns[tool] {
			normalized := normalizeRunes([]rune(word))
			if len(normalized) == 0 {
				continue
			}
			key := string(normalized)
			if _, taken := tools[key]; taken {
				continue
			}
			tools[key] = tool
			patterns = append(patterns, normalized)
		}
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Classifier{matcher: m, tools: tools}, nil
}

// Classify returns the tool whose keywords match the query, resolving
// multi-tool matches by priority. No match means plain QA.
func (c *Classifier) Classify(query string) domain.ToolName {
	normalized := normalizeRunes([]rune(query))
	if len(normalized) == 0 {
		return domain.ToolQA
	}

	spans := c.matcher.MultiPatternSearch(normalized, false)
	if len(spans) == 0 {
		return domain.ToolQA
	}

	matched := make(map[domain.ToolName]bool)
	for _, span := range spans {
		if tool, ok := c.tools[string(span.Word)]; ok {
			matched[tool] = true
		}
	}

	for _, tool := range priority {
		if matched[tool] {
			return tool
		}
	}
	return domain.ToolQA
}

// normalizeRunes lowercases the input and removes punctuation, spacing and
// symbols so "Plain-English?" still matches the "plain english" keyword.
func normalizeRunes(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if isNoise(r) {
			continue
		}
		out = append(out, unicode.ToLower(r))
	}
	return out
}

// isNoise identifies characters that should be ignored during the pattern
// matching phase.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
