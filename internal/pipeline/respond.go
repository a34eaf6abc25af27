package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/calderstone/redbench/internal/dataset"
	"github.com/calderstone/redbench/internal/responder"
	"github.com/calderstone/redbench/internal/retry"
)

// ResponsePass dispatches prompt records to one responder and writes one
// output row per record, in input order. A record that exhausts its retry
// budget is still emitted, with an error status; it never halts the pass.
type ResponsePass struct {
	Responder responder.Responder
	Custom    string // method prefix injected into the chat template
	MaxTokens int
	Policy    retry.Policy
	Timeout   time.Duration // per-attempt deadline

	// RecordDelay is the fixed pause after every record, a coarse rate
	// limiter independent of the retry backoff. Sleep is replaceable for
	// tests; nil means time.Sleep.
	RecordDelay time.Duration
	Sleep       func(time.Duration)

	Logger zerolog.Logger
}

// ComposeInput builds the fixed chat template sent to every responder.
func ComposeInput(custom, promptText string) string {
	return fmt.Sprintf("User: %s %s\nAssistant:", custom, promptText)
}

// Run processes every record and streams rows to w. The returned summary
// is valid even when an I/O error cuts the pass short.
func (p *ResponsePass) Run(ctx context.Context, records []dataset.PromptRecord, w io.Writer) (*Summary, error) {
	if p == nil {
		return nil, errors.New("pipeline: nil response pass")
	}
	if ctx == nil {
		return nil, errors.New("pipeline: nil context")
	}
	if p.Responder == nil {
		return nil, errors.New("pipeline: nil responder")
	}
	if w == nil {
		return nil, errors.New("pipeline: nil output writer")
	}

	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	cw := csv.NewWriter(w)
	if err := writeRow(cw, ResponseHeader); err != nil {
		return nil, err
	}

	sum := &Summary{}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		input := ComposeInput(p.Custom, rec.PromptText)

		text, err := retry.Do(ctx, p.Policy, func(ctx context.Context) (string, error) {
			return p.generate(ctx, input)
		})

		status := StatusSuccess
		if err != nil {
			status = errorStatusPrefix + responder.Kind(err)
			text = errorResponseMarker + " " + err.Error()
			sum.Failed++
			p.Logger.Warn().
				Int("id", rec.SequenceID).
				Err(err).
				Msg("record failed after all retries")
		} else {
			sum.Succeeded++
			p.Logger.Info().
				Int("id", rec.SequenceID).
				Int("response_length", utf8.RuneCountInString(text)).
				Msg("record complete")
		}
		sum.Total++

		row := []string{
			strconv.Itoa(rec.SequenceID),
			input,
			text,
			strconv.Itoa(utf8.RuneCountInString(text)),
			status,
		}
		if err := writeRow(cw, row); err != nil {
			return sum, err
		}

		if p.RecordDelay > 0 {
			sleep(p.RecordDelay)
		}
	}

	return sum, nil
}

func (p *ResponsePass) generate(ctx context.Context, input string) (string, error) {
	callCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	return p.Responder.Generate(callCtx, &responder.Request{
		Input:       input,
		MaxTokens:   p.MaxTokens,
		Temperature: -1,
	})
}

// writeRow flushes after every row so a terminated run leaves each
// completed record on disk.
func writeRow(cw *csv.Writer, row []string) error {
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("pipeline: write row: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("pipeline: flush row: %w", err)
	}
	return nil
}
