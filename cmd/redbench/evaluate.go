package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/calderstone/redbench/internal/config"
	"github.com/calderstone/redbench/internal/history"
	"github.com/calderstone/redbench/internal/pipeline"
	"github.com/calderstone/redbench/internal/prompt"
	"github.com/calderstone/redbench/internal/responder"
	"github.com/calderstone/redbench/internal/retry"
)

func newEvaluateCmd(st *cliState) *cobra.Command {
	var (
		input      string
		output     string
		promptFile string
	)

	cmd := &cobra.Command{
		Use:     "evaluate",
		Short:   "Score a response CSV with the judge model",
		PreRunE: loadConfigPreRun(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(st)
			outputPath, sum, err := runEvalPass(cmd, st, logger, input, output, promptFile)
			if err != nil {
				return err
			}
			printSummary(cmd, "evaluations", outputPath, sum)
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "response CSV to evaluate")
	cmd.Flags().StringVar(&output, "output", "", "output CSV path (default <input>_eval.csv)")
	cmd.Flags().StringVar(&promptFile, "prompt-file", "", "judge prompt template (default from config)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// runEvalPass is shared by the evaluate and run commands.
func runEvalPass(cmd *cobra.Command, st *cliState, logger zerolog.Logger, input, output, promptFile string) (string, *pipeline.Summary, error) {
	cfg := st.cfg

	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil, fmt.Errorf("missing input CSV path")
	}

	outputPath := strings.TrimSpace(output)
	if outputPath == "" {
		outputPath = evalOutputPath(input)
	}

	promptFile = strings.TrimSpace(promptFile)
	if promptFile == "" {
		promptFile = cfg.Judge.PromptFile
	}
	tpl, err := prompt.LoadTemplate(promptFile)
	if err != nil {
		return "", nil, err
	}

	judge, err := responder.New("judge", config.ModelConfig{
		Provider: cfg.Judge.Provider,
		Model:    cfg.Judge.Model,
		APIKey:   cfg.Judge.APIKey,
		BaseURL:  cfg.Judge.BaseURL,
	})
	if err != nil {
		return "", nil, err
	}

	in, err := os.Open(input)
	if err != nil {
		return "", nil, fmt.Errorf("open input file: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(outputPath)
	if err != nil {
		return "", nil, fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	pass := &pipeline.EvalPass{
		Judge:    judge,
		Template: tpl,
		Policy: retry.Policy{
			MaxAttempts: cfg.Limits.MaxAttempts,
			BackoffUnit: cfg.Limits.JudgeBackoff(),
		},
		Timeout:     cfg.Limits.JudgeTimeout(),
		RecordDelay: cfg.Limits.RecordDelay(),
		Logger:      logger,
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	logger.Info().
		Str("input", input).
		Str("output", outputPath).
		Str("judge", cfg.Judge.Model).
		Msg("starting evaluation pass")

	startedAt := time.Now()
	sum, runErr := pass.Run(ctx, in, out)
	if sum != nil {
		saveRun(cmd, st, &history.Run{
			Kind:       history.KindEvaluation,
			Model:      cfg.Judge.Model,
			Dataset:    input,
			Method:     "",
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
		return outputPath, sum, fmt.Errorf("evaluation pass: %w", runErr)
	}
	return outputPath, sum, nil
}

func evalOutputPath(input string) string {
	return strings.TrimSuffix(input, ".csv") + "_eval.csv"
}
