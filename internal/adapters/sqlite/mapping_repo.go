// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/models"
	"github.com/fab-uleuh/stripe-copy-prod-to-test/internal/ports/secondary"
)

// MappingRepository implements secondary.MappingRepository with SQLite.
type MappingRepository struct {
	db *sql.DB
}

// NewMappingRepository creates a new SQLite mapping repository.
func NewMappingRepository(db *sql.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// LoadAll retrieves every stored mapping grouped by kind.
func (r *MappingRepository) LoadAll(ctx context.Context) (map[models.Kind]map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT kind, prod_id, test_id FROM id_mappings",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load mappings: %w", err)
	}
	defer rows.Close()

	out := make(map[models.Kind]map[string]string)
	for rows.Next() {
		var kind, prodID, testID string
		if err := rows.Scan(&kind, &prodID, &testID); err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		k := models.Kind(kind)
		if out[k] == nil {
			out[k] = make(map[string]string)
		}
		out[k][prodID] = testID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load mappings: %w", err)
	}

	return out, nil
}

// Upsert stores or refreshes one mapping entry.
func (r *MappingRepository) Upsert(ctx context.Context, entry secondary.MappingEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO id_mappings (kind, prod_id, test_id) VALUES (?, ?, ?)
		 ON CONFLICT(kind, prod_id) DO UPDATE SET test_id = excluded.test_id, updated_at = CURRENT_TIMESTAMP`,
		string(entry.Kind), entry.ProdID, entry.TestID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert mapping %s/%s: %w", entry.Kind, entry.ProdID, err)
	}
	return nil
}

// CountByKind returns the number of stored mappings per kind.
func (r *MappingRepository) CountByKind(ctx context.Context) (map[models.Kind]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT kind, COUNT(*) FROM id_mappings GROUP BY kind",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count mappings: %w", err)
	}
	defer rows.Close()

	out := make(map[models.Kind]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		out[models.Kind(kind)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count mappings: %w", err)
	}

	return out, nil
}

// RecordRun appends a run summary to the runs ledger.
func (r *MappingRepository) RecordRun(ctx context.Context, run secondary.RunRecord) error {
	var snapshot sql.NullString
	if run.SnapshotPath != "" {
		snapshot = sql.NullString{String: run.SnapshotPath, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, dry_run, created, updated, errors, snapshot_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.DryRun,
		run.Created, run.Updated, run.Errors, snapshot,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// Ensure MappingRepository implements the interface.
var _ secondary.MappingRepository = (*MappingRepository)(nil)
