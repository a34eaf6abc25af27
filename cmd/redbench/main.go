package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/calderstone/redbench/internal/config"
	"github.com/calderstone/redbench/internal/history"
)

type cliState struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

var (
	osExit                 = os.Exit
	stderrWriter io.Writer = os.Stderr
)

func main() {
	_ = godotenv.Load()

	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderrWriter, err)
		osExit(1)
	}
}

func newRootCmd() *cobra.Command {
	st := &cliState{configPath: config.DefaultPath}

	root := &cobra.Command{
		Use:           "redbench",
		Short:         "Benchmark models against prompt datasets and judge the responses",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", st.configPath, "path to config file")
	root.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(newRespondCmd(st))
	root.AddCommand(newEvaluateCmd(st))
	root.AddCommand(newRunCmd(st))
	root.AddCommand(newListCmd(st))
	return root
}

func loadConfigPreRun(st *cliState) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(st.configPath)
		if err != nil {
			return err
		}
		st.cfg = cfg
		return nil
	}
}

func newLogger(st *cliState) zerolog.Logger {
	level := zerolog.InfoLevel
	if st != nil && st.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// cmdContext tolerates commands invoked outside Execute, whose context
// is nil.
func cmdContext(cmd *cobra.Command) context.Context {
	if cmd != nil {
		if ctx := cmd.Context(); ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

// openHistoryStore returns nil without error when storage is disabled.
func openHistoryStore(cfg *config.Config) (*history.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("history: missing config")
	}

	storageType := strings.ToLower(strings.TrimSpace(cfg.Storage.Type))
	if storageType == "" {
		storageType = "sqlite"
	}

	switch storageType {
	case "none":
		return nil, nil
	case "sqlite":
		path := strings.TrimSpace(cfg.Storage.Path)
		if path == "" {
			path = history.DefaultSQLitePath
		}
		return history.NewStore(path)
	case "memory":
		return history.NewStore(":memory:")
	default:
		return nil, fmt.Errorf("history: unsupported storage type %q", cfg.Storage.Type)
	}
}

// saveRun records a completed pass; history failures must not fail a pass
// whose output is already on disk.
func saveRun(cmd *cobra.Command, st *cliState, run *history.Run, logger zerolog.Logger) {
	store, err := openHistoryStore(st.cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("run history unavailable")
		return
	}
	if store == nil {
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.Save(cmdContext(cmd), run); err != nil {
		logger.Warn().Err(err).Msg("failed to record run history")
	}
}
