package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"

	// FallbackOutputFile receives the partial document when a run aborts.
	FallbackOutputFile = "nasdaq_kg_schema.json"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DiffbotKey    string `envconfig:"DIFFBOT_KEY"`
	DiffbotHost   string `envconfig:"DIFFBOT_HOST" default:"nl.diffbot.com"`
	DiffbotFields string `envconfig:"DIFFBOT_FIELDS" default:"entities,facts"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	StorePath   string `envconfig:"STORE_PATH" default:"data/ecmdatabase.db"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`

	OutputDir  string `envconfig:"OUTPUT_DIR" default:"output"`
	OutputFile string `envconfig:"ER_EXTRACTION_OUTPUT" default:"nasdaq_kg_schema.json"`

	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"60s"`
	UserAgent   string        `envconfig:"USER_AGENT" default:"ecmgraph/1.0 (+https://horse.fit/ecmgraph)"`

	RegionsIncremental bool   `envconfig:"REGIONS_INCREMENTAL" default:"false"`
	MetricsFile        string `envconfig:"METRICS_FILE" default:""`

	Neo4jURI      string `envconfig:"NEO4J_URI" default:""`
	Neo4jUser     string `envconfig:"NEO4J_USER" default:""`
	Neo4jPassword string `envconfig:"NEO4J_PASSWORD" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.NormalizedStoreDriver() {
	case StoreDriverSQLite:
		if strings.TrimSpace(c.StorePath) == "" {
			return fmt.Errorf("STORE_PATH is required when STORE_DRIVER=sqlite")
		}
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be sqlite or postgres, got %q", c.StoreDriver)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		return fmt.Errorf("ER_EXTRACTION_OUTPUT must not be empty")
	}
	if strings.ContainsAny(c.OutputFile, `/\`) {
		return fmt.Errorf("ER_EXTRACTION_OUTPUT must be a file name, not a path")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}
	if strings.TrimSpace(c.DiffbotHost) == "" {
		return fmt.Errorf("DIFFBOT_HOST is required")
	}
	return nil
}

// RequireExtraction reports whether the extraction credential is present.
// Only the generate command needs it, so Validate does not enforce it.
func (c *Config) RequireExtraction() error {
	if c == nil || strings.TrimSpace(c.DiffbotKey) == "" {
		return fmt.Errorf("DIFFBOT_KEY is required")
	}
	return nil
}

// RequireNeo4j reports whether the graph loader target is configured.
func (c *Config) RequireNeo4j() error {
	if c == nil || strings.TrimSpace(c.Neo4jURI) == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	return nil
}

func (c *Config) NormalizedStoreDriver() string {
	if c == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(c.StoreDriver))
}
