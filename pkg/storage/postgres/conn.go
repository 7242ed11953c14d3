// Package postgres holds the pgx/sqlx-backed repositories that persist
// issues, repositories, profiles, and the other domain aggregates across
// the ingestion, staging, and analytics schemas.
package postgres

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// NewPgxConnConfig parses a libpq-style connection string and forces
// QueryExecModeDescribeExec. The pgx default, QueryExecModeCacheStatement,
// caches prepared statement plans; a goose migration run concurrently with
// a live connection pool then trips "cached plan must not change result
// type" once a column type changes underneath the cached plan.
// DescribeExec still looks up parameter OIDs per call (required for
// encoding jsonb and vector columns correctly) but never caches the plan.
func NewPgxConnConfig(dsn string) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL connection string: %w", err)
	}
	cfg.DefaultQueryExecMode = pgx.QueryExecModeDescribeExec
	return cfg, nil
}

// Open establishes a *sqlx.DB over the pgx stdlib driver using dsn, so
// repositories can use sqlx's struct scanning while keeping pgx's native
// type handling (vector, jsonb) for the queries that need it.
func Open(dsn string) (*sqlx.DB, error) {
	cfg, err := NewPgxConnConfig(dsn)
	if err != nil {
		return nil, err
	}

	connStr := stdlib.RegisterConnConfig(cfg)
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	return sqlx.NewDb(db, "pgx"), nil
}
