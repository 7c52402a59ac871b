package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"horse.fit/ecmgraph/internal/config"
	"horse.fit/ecmgraph/internal/globaltime"
)

var (
	ErrStore    = errors.New("store error")
	ErrNotFound = fmt.Errorf("%w: not found", ErrStore)
)

// Company is one row of the company listing used to drive a run.
type Company struct {
	Name   string `json:"name"`
	Ticker string `json:"stock_symbol"`
}

// Filing holds the two 10-K text sections stored for a ticker.
type Filing struct {
	Ticker string
	Name   string
	Item1  string
	Item7  string
}

// Store is a read-only view over the companies table.
type Store struct {
	gdb   *gorm.DB
	sqlDB *sql.DB
}

// Open connects to the configured store. SQLite files are opened read-only.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	var dialector gorm.Dialector
	switch cfg.NormalizedStoreDriver() {
	case config.StoreDriverSQLite:
		dialector = sqlite.Open(ReadOnlySQLiteDSN(cfg.StorePath))
	case config.StoreDriverPostgres:
		dialector = postgres.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	return OpenDialector(ctx, dialector, cfg.LogLevel, cfg.Environment)
}

// OpenDialector opens a store over an arbitrary gorm dialector.
func OpenDialector(ctx context.Context, dialector gorm.Dialector, logLevel, environment string) (*Store, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(resolveGormLogLevel(logLevel, environment)),
		NowFunc: globaltime.UTC,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get gorm sql db: %w", err)
	}
	// Runs are sequential; one connection is all a run ever uses.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{gdb: gdb, sqlDB: sqlDB}, nil
}

// ReadOnlySQLiteDSN builds a URI filename that forbids writes.
func ReadOnlySQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?mode=ro", strings.TrimSpace(path))
}

// FilingByTicker returns the filing sections for an exact ticker match.
//
// The companies table is read positionally (ticker, name, item 1, item 7) so
// the store does not depend on the section column names.
func (s *Store) FilingByTicker(ctx context.Context, ticker string) (*Filing, error) {
	if s == nil || s.gdb == nil {
		return nil, fmt.Errorf("store is not initialized")
	}

	const q = `SELECT * FROM companies WHERE stock_symbol = ? LIMIT 1`

	rows, err := s.gdb.WithContext(ctx).Raw(q, ticker).Rows()
	if err != nil {
		return nil, fmt.Errorf("query filing %s: %w", ticker, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read filing columns: %w", err)
	}
	if len(columns) < 4 {
		return nil, fmt.Errorf("%w: companies table has %d columns, want at least 4", ErrStore, len(columns))
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate filing rows: %w", err)
		}
		return nil, fmt.Errorf("ticker %s: %w", ticker, ErrNotFound)
	}

	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scan filing row: %w", err)
	}

	return &Filing{
		Ticker: values[0].String,
		Name:   values[1].String,
		Item1:  values[2].String,
		Item7:  values[3].String,
	}, nil
}

// ListCompanies returns one page of companies ordered by name.
func (s *Store) ListCompanies(ctx context.Context, offset, limit int) ([]Company, error) {
	if s == nil || s.gdb == nil {
		return nil, fmt.Errorf("store is not initialized")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must be >= 0")
	}

	const q = `
SELECT name, stock_symbol
FROM companies
ORDER BY name
LIMIT ? OFFSET ?
`

	rows, err := s.gdb.WithContext(ctx).Raw(q, limit, offset).Rows()
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	companies := make([]Company, 0, limit)
	for rows.Next() {
		var name, ticker sql.NullString
		if err := rows.Scan(&name, &ticker); err != nil {
			return nil, fmt.Errorf("scan company row: %w", err)
		}
		companies = append(companies, Company{Name: name.String, Ticker: ticker.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company rows: %w", err)
	}

	return companies, nil
}

// CountCompanies reports how many companies the store holds.
func (s *Store) CountCompanies(ctx context.Context) (int64, error) {
	if s == nil || s.gdb == nil {
		return 0, fmt.Errorf("store is not initialized")
	}
	var count int64
	if err := s.gdb.WithContext(ctx).Raw(`SELECT COUNT(*) FROM companies`).Row().Scan(&count); err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return count, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func resolveGormLogLevel(appLogLevel, environment string) logger.LogLevel {
	level := strings.ToLower(strings.TrimSpace(appLogLevel))
	switch level {
	case "trace", "debug":
		return logger.Info
	case "warn", "warning", "info", "":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		if strings.EqualFold(strings.TrimSpace(environment), "local") {
			return logger.Warn
		}
		return logger.Error
	}
}
