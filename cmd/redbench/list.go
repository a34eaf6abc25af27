package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newListCmd(st *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List the configured models, datasets and methods",
		PreRunE: loadConfigPreRun(st),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := st.cfg
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Models:")
			for _, key := range sortedKeys(cfg.Models) {
				m := cfg.Models[key]
				target := m.Model
				if target == "" {
					target = m.Path
				}
				fmt.Fprintf(out, "  %s (%s) %s\n", key, m.Provider, target)
			}

			fmt.Fprintln(out, "Datasets:")
			for _, key := range sortedKeys(cfg.Datasets) {
				d := cfg.Datasets[key]
				fmt.Fprintf(out, "  %s (%s) %s\n", key, d.Name, d.Path)
			}

			fmt.Fprintln(out, "Methods:")
			for _, key := range sortedKeys(cfg.Methods) {
				fmt.Fprintf(out, "  %s\n", key)
			}

			fmt.Fprintf(out, "Judge: %s (%s)\n", cfg.Judge.Model, cfg.Judge.Provider)
			return nil
		},
	}
	return cmd
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
