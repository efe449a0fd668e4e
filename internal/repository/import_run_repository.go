package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpattn/cabletrack/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type importRunRepository struct {
	pool *pgxpool.Pool
}

// NewImportRunRepository wires the audit ledger backed by pgxpool.
func NewImportRunRepository(pool *pgxpool.Pool) ImportRunRepository {
	return &importRunRepository{pool: pool}
}

// execer covers both pgxpool.Pool and pgx.Tx so the same insert serves the
// duplicate path and the transactional append path.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertImportRun(ctx context.Context, db execer, run domain.ImportRun) error {
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	diff, err := json.Marshal(run.Diff)
	if err != nil {
		return fmt.Errorf("failed to marshal run diff: %w", err)
	}

	_, err = db.Exec(
		ctx,
		`INSERT INTO import_runs (id, group_key, created_at, created_by, previous_upload_id, new_upload_id, content_hash, summary, diff)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID,
		run.GroupKey,
		run.CreatedAt,
		run.CreatedBy,
		nullableUUID(run.PreviousUploadID),
		nullableUUID(run.NewUploadID),
		run.ContentHash,
		summary,
		diff,
	)
	if err != nil {
		return fmt.Errorf("failed to insert import run: %w", err)
	}
	return nil
}

func (r *importRunRepository) Record(ctx context.Context, run domain.ImportRun) error {
	if r.pool == nil {
		return fmt.Errorf("import run repository not initialized")
	}
	return insertImportRun(ctx, r.pool, run)
}

func (r *importRunRepository) ListByGroup(ctx context.Context, groupKey string, limit int) ([]domain.ImportRun, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("import run repository not initialized")
	}

	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, group_key, created_at, created_by, previous_upload_id, new_upload_id, content_hash, summary, diff
		 FROM import_runs
		 WHERE group_key = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		groupKey,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.ImportRun{}
	for rows.Next() {
		run, scanErr := scanImportRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		runs = append(runs, run)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate import runs: %w", rowsErr)
	}

	return runs, nil
}

func (r *importRunRepository) Get(ctx context.Context, id uuid.UUID) (domain.ImportRun, error) {
	if r.pool == nil {
		return domain.ImportRun{}, fmt.Errorf("import run repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, group_key, created_at, created_by, previous_upload_id, new_upload_id, content_hash, summary, diff
		 FROM import_runs
		 WHERE id = $1`,
		id,
	)

	run, err := scanImportRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ImportRun{}, fmt.Errorf("import run %s: %w", id, ErrNotFound)
		}
		return domain.ImportRun{}, err
	}
	return run, nil
}

func scanImportRun(row pgx.Row) (domain.ImportRun, error) {
	var (
		run        domain.ImportRun
		createdAt  pgtype.Timestamptz
		previousID pgtype.UUID
		newID      pgtype.UUID
		summary    []byte
		diff       []byte
	)
	if err := row.Scan(
		&run.ID,
		&run.GroupKey,
		&createdAt,
		&run.CreatedBy,
		&previousID,
		&newID,
		&run.ContentHash,
		&summary,
		&diff,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ImportRun{}, err
		}
		return domain.ImportRun{}, fmt.Errorf("failed to scan import run: %w", err)
	}

	if createdAt.Valid {
		run.CreatedAt = createdAt.Time
	}
	if previousID.Valid {
		id := uuid.UUID(previousID.Bytes)
		run.PreviousUploadID = &id
	}
	if newID.Valid {
		id := uuid.UUID(newID.Bytes)
		run.NewUploadID = &id
	}
	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &run.Summary); err != nil {
			return domain.ImportRun{}, fmt.Errorf("failed to unmarshal run summary: %w", err)
		}
	}
	if len(diff) > 0 {
		if err := json.Unmarshal(diff, &run.Diff); err != nil {
			return domain.ImportRun{}, fmt.Errorf("failed to unmarshal run diff: %w", err)
		}
	}

	return run, nil
}
