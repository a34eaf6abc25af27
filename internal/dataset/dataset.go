package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Item is one raw entry of a prompt dataset. Datasets carry extra fields
// (category, source, per-method variants) that the pipeline ignores.
type Item map[string]any

// PromptRecord is one selected prompt. SequenceID is the 1-based position
// of the item in the source file, stable across method selection: items
// whose selected field is missing produce no record and leave an ID gap.
type PromptRecord struct {
	SequenceID int
	PromptText string
}

// Load reads a whole dataset file into memory.
func Load(path string) ([]Item, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %q: %w", path, err)
	}

	var items []Item
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("dataset: parse %q: %w", path, err)
	}
	return items, nil
}

// FieldForMethod maps a method name to the item field it reads: "prompt"
// for the plain method, "<method>_format" for everything else.
func FieldForMethod(method string) string {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" || method == "none" {
		return "prompt"
	}
	return method + "_format"
}

// Select extracts the prompt records for a method, skipping items whose
// selected field is absent, empty, or not a string.
func Select(items []Item, method string) []PromptRecord {
	field := FieldForMethod(method)

	out := make([]PromptRecord, 0, len(items))
	for i, item := range items {
		text, _ := item[field].(string)
		if text == "" {
			continue
		}
		out = append(out, PromptRecord{
			SequenceID: i + 1,
			PromptText: text,
		})
	}
	return out
}
