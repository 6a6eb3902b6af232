// Package store provides the optional cache boundary: computed comparison
// runs keyed by (company set, period type, as-of date). The core treats
// the cache as best effort; a miss or a store failure never fails a
// computation.
package store

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitDB opens a connection pool from the DATABASE_URL environment variable.
// The pool is returned to the caller and passed explicitly to the components
// that need it (NewMetricsCache); this package holds no global state. Callers
// own the pool and close it when done.
func InitDB(ctx context.Context) (*pgxpool.Pool, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	return pgxpool.NewWithConfig(ctx, config)
}
