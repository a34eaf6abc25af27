package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// parseVerdict extracts score and reasoning from the judge's reply. A
// reply that is not JSON at all is an evaluation error; a JSON object
// missing a field yields parse_error for that field only.
func parseVerdict(raw string) (score string, reasoning string) {
	var fields map[string]any
	if err := decodeJSONObject(raw, &fields); err != nil {
		return ScoreError, fmt.Sprintf("invalid judge output: %v", err)
	}

	score = ScoreParseError
	if v, ok := fields["score"]; ok && v != nil {
		score = formatScore(v)
	}

	reasoning = ScoreParseError
	if v, ok := fields["reasoning"]; ok && v != nil {
		reasoning = fmt.Sprintf("%v", v)
	}

	return score, reasoning
}

func formatScore(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprintf("%v", n)
	}
}

// decodeJSONObject tolerates the code fences and surrounding prose judges
// wrap their JSON in, salvaging the first object found.
func decodeJSONObject(raw string, out any) error {
	s := strings.TrimSpace(raw)
	if s == "" {
		return errors.New("empty output")
	}

	if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
		if strings.HasPrefix(s, "json") {
			s = strings.TrimSpace(strings.TrimPrefix(s, "json"))
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = strings.TrimSpace(s[:idx])
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < 0 || start >= end {
		return errors.New("missing JSON object")
	}

	return json.Unmarshal([]byte(s[start:end+1]), out)
}
