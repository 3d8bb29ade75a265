// Package audit records near-duplicate review runs in SQLite so a reviewer
// can come back to a report after the batch that produced it is gone.
//
// The deduplication engine itself never persists anything; this store is
// used by the operational tooling around it.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/tenderlink/tenderlink/internal/similarity"
	"github.com/tenderlink/tenderlink/internal/types"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("review run not found")

// Run describes one FindDuplicates invocation.
type Run struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	Label       string             `json:"label,omitempty"` // Free text, usually the input file name
	Threshold   float64            `json:"threshold"`
	Weights     similarity.Weights `json:"weights"`
	RecordCount int                `json:"record_count"`
	PairCount   int                `json:"pair_count"`
}

// Pair is a stored near-duplicate pair. Records are referenced by their
// source ids and batch positions, not copied.
type Pair struct {
	RunID      string                `json:"run_id"`
	LeftIndex  int                   `json:"left_index"`
	RightIndex int                   `json:"right_index"`
	LeftRef    string                `json:"left_ref"`
	RightRef   string                `json:"right_ref"`
	Score      types.SimilarityScore `json:"score"`
}

// Store is the SQLite-backed audit log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the audit database at path and brings its
// schema up to date. ":memory:" gives a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" a single database and avoids
	// writer contention on files.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores run together with its pairs in one transaction.
// An empty run.ID is filled with a new UUID and a zero CreatedAt with the
// current time; PairCount is always taken from len(pairs).
func (s *Store) SaveRun(ctx context.Context, run *Run, pairs []types.DuplicatePair) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.PairCount = len(pairs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO review_runs (
			id, created_at, label, threshold, record_count, pair_count,
			weight_title, weight_buyer, weight_cpv, weight_value
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), run.Label, run.Threshold,
		run.RecordCount, run.PairCount,
		run.Weights.Title, run.Weights.Buyer, run.Weights.CPV, run.Weights.Value,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO review_pairs (
			run_id, left_index, right_index, left_ref, right_ref,
			total, title_score, buyer_score, cpv_score, value_score
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare pair insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, p := range pairs {
		bd := p.Score.Breakdown
		if _, err := stmt.ExecContext(ctx,
			run.ID, p.LeftIndex, p.RightIndex, p.Left.ID, p.Right.ID,
			p.Score.Total, bd.Title, bd.Buyer, bd.CPV, bd.Value,
		); err != nil {
			return fmt.Errorf("failed to insert pair (%d, %d): %w", p.LeftIndex, p.RightIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

const runColumns = `id, created_at, label, threshold, record_count, pair_count,
	weight_title, weight_buyer, weight_cpv, weight_value`

// GetRun loads a single run by id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM review_runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM review_runs ORDER BY created_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// PairsForRun returns the stored pairs of a run, highest score first.
func (s *Store) PairsForRun(ctx context.Context, runID string) ([]Pair, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, left_index, right_index, left_ref, right_ref,
			total, title_score, buyer_score, cpv_score, value_score
		FROM review_pairs
		WHERE run_id = ?
		ORDER BY total DESC, left_index, right_index
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairs: %w", err)
	}
	defer rows.Close()

	var pairs []Pair
	for rows.Next() {
		var p Pair
		bd := &p.Score.Breakdown
		if err := rows.Scan(
			&p.RunID, &p.LeftIndex, &p.RightIndex, &p.LeftRef, &p.RightRef,
			&p.Score.Total, &bd.Title, &bd.Buyer, &bd.CPV, &bd.Value,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pairs: %w", err)
	}
	return pairs, nil
}

// DeleteRun removes a run and, through the foreign key, its pairs.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM review_runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		createdAt string
	)
	err := row.Scan(
		&run.ID, &createdAt, &run.Label, &run.Threshold, &run.RecordCount, &run.PairCount,
		&run.Weights.Title, &run.Weights.Buyer, &run.Weights.CPV, &run.Weights.Value,
	)
	if err != nil {
		return nil, err
	}
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	return &run, nil
}
