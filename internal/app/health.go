package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"horse.fit/ecmgraph/internal/cli"
	"horse.fit/ecmgraph/internal/store"
)

func runHealth(args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Second, "Store query timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, ok := bootstrap(envLoader)
	if !ok {
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}
	defer st.Close()

	count, err := st.CountCompanies(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("health check failed")
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		return 1
	}

	logger.Info().
		Str("driver", cfg.NormalizedStoreDriver()).
		Int64("companies", count).
		Dur("timeout", *timeout).
		Msg("store health check passed")
	fmt.Printf("ok: store readable, companies=%d\n", count)
	return 0
}
