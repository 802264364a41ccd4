// Package intent routes a user query to one analysis tool.
// The primary router is the model's tool-choice call; this package is the
// deterministic fallback used when the model is unreachable or answers with
// something that is not a tool.
package intent

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"strings"

	"legal-lab/domain"
	liberrors "legal-lab/errors"
)

//go:embed keywords/*
var keywordsFolder embed.FS

// KeywordData carries the result of the loading process including metadata
// for logging.
type KeywordData struct {
	Patterns map[domain.ToolName][]string
	Tools    []string
}

// KeywordLoader reads per-tool keyword dictionaries from embedded files.
// Each file is named after the tool it routes to ("extract_key_dates.txt").
type KeywordLoader struct {
	fs embed.FS
}

func NewKeywordLoader(f embed.FS) *KeywordLoader {
	return &KeywordLoader{fs: f}
}

// LoadAll scans the given directory path in the embedded FS and parses each
// .txt file into the keyword list of the tool it is named after.
func (l *KeywordLoader) LoadAll(path string) (*KeywordData, error) {
	entries, err := fs.ReadDir(l.fs, path)
	if err != nil {
		return nil, err
	}

	patterns := make(map[domain.ToolName][]string)
	var tools []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		tool := domain.ToolName(strings.TrimSuffix(entry.Name(), ".txt"))
		tools = append(tools, string(tool))

		data, err := l.fs.ReadFile(path + "/" + entry.Name())
		if err != nil {
			return nil, err
		}

		// Use a scanner to handle different line endings (\n vs \r\n) correctly
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				patterns[tool] = append(patterns[tool], line)
			}
		}

		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(patterns) == 0 {
		return nil, liberrors.ErrEmptyKeywords
	}

	return &KeywordData{Patterns: patterns, Tools: tools}, nil
}
