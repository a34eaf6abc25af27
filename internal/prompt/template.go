package prompt

import (
	"fmt"
	"os"
	"strings"
)

// Placeholder names recognized in an evaluation template.
const (
	OriginalPromptVar = "{original_prompt}"
	ModelResponseVar  = "{model_response}"
)

// Template is a judge prompt with two named substitution points.
type Template string

// LoadTemplate reads an evaluation template from disk. A missing or
// unreadable template aborts the evaluation pass before any row is
// processed.
func LoadTemplate(path string) (Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("prompt: read template %q: %w", path, err)
	}
	return Template(b), nil
}

// Render substitutes both placeholders. Placeholders the template does not
// contain are simply not substituted.
func (t Template) Render(originalPrompt, modelResponse string) string {
	s := strings.ReplaceAll(string(t), OriginalPromptVar, originalPrompt)
	return strings.ReplaceAll(s, ModelResponseVar, modelResponse)
}
