// Package docload reads the legal document the chatbot works on.
package docload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	liberrors "legal-lab/errors"
)

// Document is a loaded legal document ready for analysis.
type Document struct {
	Name string
	Path string
	Text string
}

// Load reads "<name>.txt" from dir. The name comes from configuration
// without extension, matching how the document is referred to in prompts.
// Binary files are refused; the analysis only makes sense on text.
func Load(dir, name string) (Document, error) {
	path := filepath.Join(dir, name+".txt")

	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	detected := mimetype.Detect(raw)
	if !isText(detected) {
		return Document{}, fmt.Errorf("%w: %s detected as %s",
			liberrors.ErrNotTextDocument, path, detected.String())
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return Document{}, fmt.Errorf("%w: %s", liberrors.ErrEmptyDocument, path)
	}

	return Document{Name: name, Path: path, Text: text}, nil
}

func isText(detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}
