package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"horse.fit/ecmgraph/internal/cli"
	"horse.fit/ecmgraph/internal/config"
	"horse.fit/ecmgraph/internal/logging"
)

// bootstrap loads the .env file, the config and the logger. A missing .env
// file is only a warning.
func bootstrap(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, bool) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, zerolog.Nop(), false
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return nil, zerolog.Nop(), false
	}

	return cfg, logger, true
}
