// Package pipeline implements the two batch passes of a benchmark run:
// the response pass, which dispatches prompts to a responder and records
// one CSV row per prompt, and the evaluation pass, which scores recorded
// responses with a judge model. Both passes share the same bounded-retry
// policy and write output row by row, so a killed run leaves a valid
// prefix file.
package pipeline

// ResponseHeader is the column order of the response pass output.
var ResponseHeader = []string{"id", "input_text", "response", "response_length", "status"}

// Columns the evaluation pass appends after the original columns.
const (
	EvalScoreColumn     = "evaluation_score"
	EvalReasoningColumn = "evaluation_reasoning"
)

const (
	StatusSuccess = "success"

	// A failed record carries the error kind in its status and the error
	// message in its response text.
	errorStatusPrefix   = "error: "
	errorResponseMarker = "ERROR:"
)

// Evaluation outcomes that are data rather than scores.
const (
	ScoreSkipped    = "skipped"
	ScoreError      = "error"
	ScoreParseError = "parse_error"
)

// Summary aggregates one pass for progress output and the run history.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}
