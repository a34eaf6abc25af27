package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/calderstone/redbench/internal/prompt"
	"github.com/calderstone/redbench/internal/responder"
	"github.com/calderstone/redbench/internal/retry"
)

const skippedReasoning = "Original response was empty or an error."

// EvalPass scores previously recorded responses with a judge model. Rows
// whose response is empty or an error marker are skipped without a judge
// call; every input row produces exactly one output row with the two
// evaluation columns appended and the original columns preserved.
type EvalPass struct {
	Judge    responder.Responder
	Template prompt.Template
	Policy   retry.Policy
	Timeout  time.Duration // per-attempt deadline

	RecordDelay time.Duration
	Sleep       func(time.Duration)

	Logger zerolog.Logger
}

// Run reads the response-pass CSV from r and streams evaluated rows to w.
func (p *EvalPass) Run(ctx context.Context, r io.Reader, w io.Writer) (*Summary, error) {
	if p == nil {
		return nil, errors.New("pipeline: nil eval pass")
	}
	if ctx == nil {
		return nil, errors.New("pipeline: nil context")
	}
	if p.Judge == nil {
		return nil, errors.New("pipeline: nil judge")
	}
	if r == nil {
		return nil, errors.New("pipeline: nil input reader")
	}
	if w == nil {
		return nil, errors.New("pipeline: nil output writer")
	}

	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("pipeline: read input csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("pipeline: empty input csv")
	}

	header := rows[0]
	promptIdx := columnIndex(header, "input_text")
	responseIdx := columnIndex(header, "response")
	if promptIdx < 0 || responseIdx < 0 {
		return nil, errors.New("pipeline: input csv missing input_text or response column")
	}
	idIdx := columnIndex(header, "id")

	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	cw := csv.NewWriter(w)
	outHeader := append(append(make([]string, 0, len(header)+2), header...), EvalScoreColumn, EvalReasoningColumn)
	if err := writeRow(cw, outHeader); err != nil {
		return nil, err
	}

	sum := &Summary{}
	for _, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		rowID := ""
		if idIdx >= 0 && idIdx < len(row) {
			rowID = row[idIdx]
		}

		score, reasoning := p.evaluateRow(ctx, cell(row, promptIdx), cell(row, responseIdx))

		sum.Total++
		switch score {
		case ScoreSkipped:
			sum.Skipped++
			p.Logger.Debug().Str("id", rowID).Msg("row skipped")
		case ScoreError:
			sum.Failed++
			p.Logger.Warn().Str("id", rowID).Str("reason", reasoning).Msg("row evaluation failed")
		default:
			sum.Succeeded++
			p.Logger.Info().Str("id", rowID).Str("score", score).Msg("row evaluated")
		}

		outRow := append(append(make([]string, 0, len(row)+2), row...), score, reasoning)
		if err := writeRow(cw, outRow); err != nil {
			return sum, err
		}

		if p.RecordDelay > 0 {
			sleep(p.RecordDelay)
		}
	}

	return sum, nil
}

// evaluateRow never returns an error: every failure mode becomes data in
// the evaluation columns.
func (p *EvalPass) evaluateRow(ctx context.Context, originalPrompt, response string) (string, string) {
	if response == "" || strings.HasPrefix(response, errorResponseMarker) {
		return ScoreSkipped, skippedReasoning
	}

	full := p.Template.Render(originalPrompt, response)

	raw, err := retry.Do(ctx, p.Policy, func(ctx context.Context) (string, error) {
		callCtx := ctx
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, p.Timeout)
			defer cancel()
		}
		return p.Judge.Generate(callCtx, &responder.Request{
			Input:       full,
			Temperature: 0,
			JSONOnly:    true,
		})
	})
	if err != nil {
		return ScoreError, err.Error()
	}

	return parseVerdict(raw)
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
