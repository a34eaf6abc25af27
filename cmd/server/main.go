package main

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/calderstone/redbench/api"
	"github.com/calderstone/redbench/internal/config"
	"github.com/calderstone/redbench/internal/history"
)

func main() {
	_ = godotenv.Load()

	var (
		addr       = flag.String("addr", ":8080", "listen address")
		configPath = flag.String("config", config.DefaultPath, "path to config file")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open run history store")
	}
	defer func() { _ = store.Close() }()

	srv, err := api.NewServer(store)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	logger.Info().Str("addr", *addr).Msg("serving run history")
	if err := srv.Run(*addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func openStore(cfg *config.Config) (*history.Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Type)) {
	case "memory":
		return history.NewStore(":memory:")
	default:
		path := strings.TrimSpace(cfg.Storage.Path)
		if path == "" {
			path = history.DefaultSQLitePath
		}
		return history.NewStore(path)
	}
}
