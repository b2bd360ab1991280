package database

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS scan_payloads (
		content_hash TEXT NOT NULL,
		tool         TEXT NOT NULL,
		payload      JSONB NOT NULL,
		request_id   UUID,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (content_hash, tool)
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id             UUID PRIMARY KEY,
		content_hash   TEXT NOT NULL UNIQUE,
		package        TEXT NOT NULL,
		name           TEXT,
		version        TEXT,
		security_score INTEGER NOT NULL,
		score_mode     TEXT NOT NULL,
		summary        JSONB NOT NULL,
		finding_count  INTEGER NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS reports_package_created_idx ON reports (package, created_at DESC)`,
}

// EnsureSchema creates the payload and report tables when missing
func (db *PostgresDB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	db.logger.Info().Int("statements", len(schemaStatements)).Msg("database schema ready")
	return nil
}
