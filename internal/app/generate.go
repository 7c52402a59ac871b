package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"horse.fit/ecmgraph/internal/accumulate"
	"horse.fit/ecmgraph/internal/cli"
	"horse.fit/ecmgraph/internal/config"
	"horse.fit/ecmgraph/internal/geo"
	"horse.fit/ecmgraph/internal/globaltime"
	"horse.fit/ecmgraph/internal/kg"
	"horse.fit/ecmgraph/internal/metrics"
	"horse.fit/ecmgraph/internal/nlp"
	"horse.fit/ecmgraph/internal/pipeline"
	"horse.fit/ecmgraph/internal/quote"
	"horse.fit/ecmgraph/internal/reader"
	"horse.fit/ecmgraph/internal/store"
	"horse.fit/ecmgraph/schema"
)

type generator interface {
	Generate(ctx context.Context, b *kg.Builder, offset int) error
}

func runGenerate(args []string) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	offset := fs.Int("offset", 0, "Number of companies (ordered by name) to skip")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *offset < 0 {
		fmt.Fprintln(os.Stderr, "--offset must be >= 0")
		return 2
	}

	cfg, logger, ok := bootstrap(envLoader)
	if !ok {
		return 1
	}
	if err := cfg.RequireExtraction(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	runID := uuid.NewString()
	logger = logger.With().Str("run_id", runID).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("open store failed")
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		return 1
	}
	defer st.Close()

	runMetrics := metrics.NewRun()
	acc, err := newAccumulator(cfg, st, runMetrics, logger)
	if err != nil {
		logger.Error().Err(err).Msg("generate setup failed")
		fmt.Fprintf(os.Stderr, "Generate setup failed: %v\n", err)
		return 1
	}

	fmt.Println("Generating schema")
	started := globaltime.UTC()
	path, genErr := executeGenerate(ctx, cfg, acc, *offset, logger)

	if err := runMetrics.WriteFile(cfg.MetricsFile); err != nil {
		logger.Warn().Err(err).Msg("metrics not written")
	}

	if genErr != nil {
		logger.Error().Err(genErr).Str("path", path).Msg("generate failed")
		fmt.Fprintf(os.Stderr, "Error encountered. Schema generated is incomplete: %v\n", genErr)
		if path != "" {
			fmt.Fprintf(os.Stderr, "Partial document written to %s\n", path)
		}
		return 1
	}

	logger.Info().
		Str("path", path).
		Int("offset", *offset).
		Dur("elapsed", globaltime.Since(started)).
		Msg("generate completed")
	fmt.Printf("Schema generated successfully: %s\n", path)
	return 0
}

func newAccumulator(cfg *config.Config, st *store.Store, runMetrics *metrics.Run, logger zerolog.Logger) (*accumulate.Accumulator, error) {
	extractor, err := nlp.NewClient(nlp.ClientOptions{
		Host:    cfg.DiffbotHost,
		Fields:  cfg.DiffbotFields,
		Token:   cfg.DiffbotKey,
		Timeout: cfg.HTTPTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create extraction client: %w", err)
	}

	quotes := quote.NewClient(quote.Options{Timeout: cfg.HTTPTimeout})
	articles := reader.NewFetcher(reader.Options{Timeout: cfg.HTTPTimeout, UserAgent: cfg.UserAgent})
	resolver := geo.NewResolver(geo.Options{Timeout: cfg.HTTPTimeout, UserAgent: cfg.UserAgent})

	return accumulate.New(accumulate.Options{
		Companies:          st,
		Filing:             pipeline.NewFilingPipeline(st, extractor, logger),
		Article:            pipeline.NewArticlePipeline(quotes, articles, extractor, logger),
		Factory:            kg.NewFactory(resolver, kg.NewPlaceholderEnricher(nil), logger),
		Tickers:            quotes,
		Metrics:            runMetrics,
		Logger:             logger,
		RegionsIncremental: cfg.RegionsIncremental,
	})
}

// executeGenerate runs one page and writes the document. On any failure,
// including a panic or cancellation, whatever was accumulated is written to
// the fallback file and its path returned with the error.
func executeGenerate(ctx context.Context, cfg *config.Config, gen generator, offset int, logger zerolog.Logger) (path string, err error) {
	b := kg.NewBuilder()

	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic during generate: %v", recovered)
		}
		if err == nil {
			return
		}
		partial, writeErr := kg.WriteDocument(cfg.OutputDir, config.FallbackOutputFile, b.Document())
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("partial document not written")
			err = errors.Join(err, writeErr)
			path = ""
			return
		}
		path = partial
	}()

	if err := gen.Generate(ctx, b, offset); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := schema.Check(b.Document()); err != nil {
		return "", err
	}
	return kg.WriteDocument(cfg.OutputDir, cfg.OutputFile, b.Document())
}
