package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// migration is one forward step of the audit schema.
type migration struct {
	Version     int
	Description string
	Up          string
}

// migrations lists every schema version in order. Append, never edit.
var migrations = []migration{
	{
		Version:     1,
		Description: "review runs and scored pairs",
		Up: `
			CREATE TABLE IF NOT EXISTS review_runs (
				id TEXT PRIMARY KEY,
				created_at TEXT NOT NULL,
				label TEXT NOT NULL DEFAULT '',
				threshold REAL NOT NULL CHECK(threshold >= 0 AND threshold <= 1),
				record_count INTEGER NOT NULL CHECK(record_count >= 0),
				pair_count INTEGER NOT NULL CHECK(pair_count >= 0)
			);

			CREATE INDEX IF NOT EXISTS idx_review_runs_created_at ON review_runs(created_at);

			CREATE TABLE IF NOT EXISTS review_pairs (
				run_id TEXT NOT NULL,
				left_index INTEGER NOT NULL,
				right_index INTEGER NOT NULL,
				left_ref TEXT NOT NULL,
				right_ref TEXT NOT NULL,
				total REAL NOT NULL,
				title_score REAL NOT NULL,
				buyer_score REAL NOT NULL,
				cpv_score REAL NOT NULL,
				value_score REAL NOT NULL,
				PRIMARY KEY (run_id, left_index, right_index),
				FOREIGN KEY (run_id) REFERENCES review_runs(id) ON DELETE CASCADE
			);
		`,
	},
	{
		Version:     2,
		Description: "record the weights a run was scored with",
		Up: `
			ALTER TABLE review_runs ADD COLUMN weight_title REAL NOT NULL DEFAULT 0.4;
			ALTER TABLE review_runs ADD COLUMN weight_buyer REAL NOT NULL DEFAULT 0.3;
			ALTER TABLE review_runs ADD COLUMN weight_cpv REAL NOT NULL DEFAULT 0.2;
			ALTER TABLE review_runs ADD COLUMN weight_value REAL NOT NULL DEFAULT 0.1;
		`,
	},
}

// migrate applies every migration newer than the database's schema version.
// Each migration runs in its own transaction together with its version row.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create version table: %w", err)
	}

	current, err := schemaVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	pending := make([]migration, 0, len(migrations))
	for _, m := range migrations {
		if m.Version > current {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	for _, m := range pending {
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_version (version, description, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Description, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
