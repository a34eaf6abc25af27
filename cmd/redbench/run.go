package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newRunCmd(st *cliState) *cobra.Command {
	var (
		modelKeys  []string
		datasetKey string
		methods    []string
		evaluate   bool
	)

	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the response pass for every model and method combination",
		PreRunE: loadConfigPreRun(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(st)
			cfg := st.cfg

			if _, ok := cfg.Datasets[datasetKey]; !ok {
				return fmt.Errorf("unknown dataset %q", datasetKey)
			}

			keys := modelKeys
			if len(keys) == 0 {
				for k := range cfg.Models {
					keys = append(keys, k)
				}
				sort.Strings(keys)
			}

			var failures int
			for _, modelKey := range keys {
				if _, ok := cfg.Models[modelKey]; !ok {
					logger.Warn().Str("model", modelKey).Msg("unknown model, skipping")
					failures++
					continue
				}
				for _, method := range methods {
					outputPath, sum, err := runResponsePass(cmd, st, logger, modelKey, datasetKey, method, "")
					if err != nil {
						logger.Warn().
							Str("model", modelKey).
							Str("method", method).
							Err(err).
							Msg("response pass failed")
						failures++
						continue
					}
					printSummary(cmd, "responses", outputPath, sum)

					if !evaluate {
						continue
					}
					evalPath, evalSum, err := runEvalPass(cmd, st, logger, outputPath, "", "")
					if err != nil {
						logger.Warn().
							Str("model", modelKey).
							Str("method", method).
							Err(err).
							Msg("evaluation pass failed")
						failures++
						continue
					}
					printSummary(cmd, "evaluations", evalPath, evalSum)
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d combination(s) failed", failures)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&modelKeys, "models", nil, "model keys to run (default all configured models)")
	cmd.Flags().StringVar(&datasetKey, "dataset", "", "dataset key from the config")
	cmd.Flags().StringSliceVar(&methods, "methods", []string{"none"}, "prompt methods to run")
	cmd.Flags().BoolVar(&evaluate, "evaluate", false, "score each response file after collecting it")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}
