package graphdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
	"github.com/rs/zerolog"

	"horse.fit/ecmgraph/internal/kg"
)

type Options struct {
	URI      string
	User     string
	Password string
}

// Loader writes documents into Neo4j.
type Loader struct {
	driver neo4j.Driver
	logger zerolog.Logger
}

func NewLoader(opts Options, logger zerolog.Logger) (*Loader, error) {
	uri := strings.TrimSpace(opts.URI)
	if uri == "" {
		return nil, fmt.Errorf("neo4j uri is required")
	}
	auth := neo4j.NoAuth()
	if opts.User != "" {
		auth = neo4j.BasicAuth(opts.User, opts.Password, "")
	}
	driver, err := neo4j.NewDriver(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(); err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return &Loader{driver: driver, logger: logger}, nil
}

// Load applies every statement for doc in a single write transaction.
func (l *Loader) Load(ctx context.Context, doc *kg.Document) (int, error) {
	if l == nil || l.driver == nil {
		return 0, fmt.Errorf("loader is not initialized")
	}
	stmts := Statements(doc)
	if len(stmts) == 0 {
		return 0, nil
	}

	session := l.driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		return nil, apply(ctx, tx, stmts)
	})
	if err != nil {
		return 0, fmt.Errorf("load document: %w", err)
	}

	l.logger.Info().Int("statements", len(stmts)).Msg("document loaded")
	return len(stmts), nil
}

func (l *Loader) Close() error {
	if l == nil || l.driver == nil {
		return nil
	}
	return l.driver.Close()
}

type runner interface {
	Run(cypher string, params map[string]interface{}) (neo4j.Result, error)
}

// apply stops at the first failure; the caller's transaction rolls back.
func apply(ctx context.Context, tx runner, stmts []Statement) error {
	for i, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := tx.Run(stmt.Cypher, stmt.Params()); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}
