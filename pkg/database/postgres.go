package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Darlington720/library-module/pkg/config"
)

// NewPostgres returns a configured PostgreSQL client for the local audit store.
// A nil handle without error is returned when the store is disabled.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		user_id TEXT,
		action TEXT NOT NULL,
		resource TEXT NOT NULL,
		resource_id TEXT,
		old_values JSONB,
		new_values JSONB,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs (resource, resource_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS clearance_overrides (
		id UUID PRIMARY KEY,
		clearance_id TEXT NOT NULL,
		student_no TEXT NOT NULL,
		reason TEXT NOT NULL,
		approved_by TEXT NOT NULL,
		approved_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ,
		status TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clearance_overrides_clearance ON clearance_overrides (clearance_id, approved_at DESC)`,
}

// EnsureSchema creates the audit and override tables when missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
