package llm

import (
	"strings"

	"github.com/rotisserie/eris"
)

// extractJSONArray returns the outermost JSON array in text. Models wrap
// output in prose or code fences often enough that naive unmarshalling of
// the whole reply is not workable.
func extractJSONArray(text string) (string, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return "", eris.New("no JSON array found in model output")
	}
	return text[start : end+1], nil
}

// extractJSONObject returns the outermost JSON object in text.
func extractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", eris.New("no JSON object found in model output")
	}
	return text[start : end+1], nil
}
