package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/calderstone/redbench/internal/dataset"
	"github.com/calderstone/redbench/internal/history"
	"github.com/calderstone/redbench/internal/pipeline"
	"github.com/calderstone/redbench/internal/responder"
	"github.com/calderstone/redbench/internal/retry"
)

func newRespondCmd(st *cliState) *cobra.Command {
	var (
		modelKey   string
		datasetKey string
		method     string
		output     string
	)

	cmd := &cobra.Command{
		Use:     "respond",
		Short:   "Collect model responses for a dataset into a CSV file",
		PreRunE: loadConfigPreRun(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(st)
			outputPath, sum, err := runResponsePass(cmd, st, logger, modelKey, datasetKey, method, output)
			if err != nil {
				return err
			}
			printSummary(cmd, "responses", outputPath, sum)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelKey, "model", "", "model key from the config")
	cmd.Flags().StringVar(&datasetKey, "dataset", "", "dataset key from the config")
	cmd.Flags().StringVar(&method, "method", "none", "prompt method")
	cmd.Flags().StringVar(&output, "output", "", "output CSV path (default derived from model, dataset and method)")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

// runResponsePass is shared by the respond and run commands.
func runResponsePass(cmd *cobra.Command, st *cliState, logger zerolog.Logger, modelKey, datasetKey, method, output string) (string, *pipeline.Summary, error) {
	cfg := st.cfg

	mcfg, ok := cfg.Models[modelKey]
	if !ok {
		return "", nil, fmt.Errorf("unknown model %q", modelKey)
	}
	dcfg, ok := cfg.Datasets[datasetKey]
	if !ok {
		return "", nil, fmt.Errorf("unknown dataset %q", datasetKey)
	}

	method = strings.TrimSpace(method)
	if method == "" {
		method = "none"
	}
	custom := cfg.Methods[method]

	r, err := responder.New(modelKey, mcfg)
	if err != nil {
		return "", nil, err
	}

	items, err := dataset.Load(dcfg.Path)
	if err != nil {
		return "", nil, err
	}
	records := dataset.Select(items, method)
	if len(records) == 0 {
		logger.Warn().
			Str("dataset", datasetKey).
			Str("method", method).
			Msg("no usable records in dataset")
	}

	outputPath := strings.TrimSpace(output)
	if outputPath == "" {
		outputPath = filepath.Join(cfg.OutputDir,
			fmt.Sprintf("%s_responses_%s_%s.csv", modelKey, dcfg.Name, method))
	}
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return "", nil, fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	pass := &pipeline.ResponsePass{
		Responder: r,
		Custom:    custom,
		MaxTokens: cfg.Limits.MaxNewTokens,
		Policy: retry.Policy{
			MaxAttempts: cfg.Limits.MaxAttempts,
			BackoffUnit: cfg.Limits.Backoff(),
		},
		Timeout:     cfg.Limits.Timeout(),
		RecordDelay: cfg.Limits.RecordDelay(),
		Logger:      logger,
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	logger.Info().
		Str("model", modelKey).
		Str("dataset", datasetKey).
		Str("method", method).
		Int("records", len(records)).
		Str("output", outputPath).
		Msg("starting response pass")

	startedAt := time.Now()
	sum, runErr := pass.Run(ctx, records, f)
	if sum != nil {
		saveRun(cmd, st, &history.Run{
			Kind:       history.KindResponse,
			Model:      modelKey,
			Dataset:    datasetKey,
			Method:     method,
			OutputPath: outputPath,
			Total:      sum.Total,
			Succeeded:  sum.Succeeded,
			Failed:     sum.Failed,
			Skipped:    sum.Skipped,
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
		}, logger)
	}
	if runErr != nil {
		return outputPath, sum, fmt.Errorf("response pass: %w", runErr)
	}
	return outputPath, sum, nil
}

func printSummary(cmd *cobra.Command, what, outputPath string, sum *pipeline.Summary) {
	if sum == nil {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %s to %s\n", what, outputPath)
	fmt.Fprintf(out, "  total: %d  succeeded: %d  failed: %d  skipped: %d\n",
		sum.Total, sum.Succeeded, sum.Failed, sum.Skipped)
}
