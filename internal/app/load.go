package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"horse.fit/ecmgraph/internal/cli"
	"horse.fit/ecmgraph/internal/graphdb"
	"horse.fit/ecmgraph/schema"
)

func runLoad(args []string) int {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	file := fs.String("file", "", "Document file to load (default OUTPUT_DIR/ER_EXTRACTION_OUTPUT)")

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
	if err := cfg.RequireNeo4j(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	path := strings.TrimSpace(*file)
	if path == "" {
		path = filepath.Join(cfg.OutputDir, cfg.OutputFile)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read document: %v\n", err)
		return 1
	}
	doc, err := schema.ValidateDocument(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "INVALID %s: %v\n", path, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader, err := graphdb.NewLoader(graphdb.Options{
		URI:      cfg.Neo4jURI,
		User:     cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
	}, logger)
	if err != nil {
		logger.Error().Err(err).Msg("neo4j connect failed")
		fmt.Fprintf(os.Stderr, "Load failed: %v\n", err)
		return 1
	}
	defer loader.Close()

	statements, err := loader.Load(ctx, doc)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("load failed")
		fmt.Fprintf(os.Stderr, "Load failed: %v\n", err)
		return 1
	}

	fmt.Printf("load path=%s statements=%d\n", path, statements)
	return 0
}
