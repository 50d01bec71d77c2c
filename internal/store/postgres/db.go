package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to the coupon Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the coupons table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS coupons (
			code              TEXT PRIMARY KEY,
			discount_type     TEXT NOT NULL,
			discount_value    DOUBLE PRECISION NOT NULL,
			max_discount      DOUBLE PRECISION NOT NULL DEFAULT 0,
			elig_last_name    TEXT NOT NULL DEFAULT '',
			elig_dob          TEXT NOT NULL DEFAULT '',
			elig_registration TEXT NOT NULL DEFAULT '',
			active            BOOLEAN NOT NULL DEFAULT TRUE,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure coupons schema: %w", err)
	}
	return nil
}
