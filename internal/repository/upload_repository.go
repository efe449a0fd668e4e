package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rpattn/cabletrack/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type uploadRepository struct {
	pool *pgxpool.Pool
}

// NewUploadRepository wires the lineage store backed by pgxpool.
func NewUploadRepository(pool *pgxpool.Pool) UploadRepository {
	return &uploadRepository{pool: pool}
}

func (r *uploadRepository) Append(ctx context.Context, upload domain.Upload, records []domain.CableRecord, run domain.ImportRun) error {
	if r.pool == nil {
		return fmt.Errorf("upload repository not initialized")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin append transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if upload.PreviousUploadID != nil {
		var exists bool
		err := tx.QueryRow(
			ctx,
			`SELECT EXISTS (SELECT 1 FROM uploads WHERE id = $1)`,
			*upload.PreviousUploadID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check previous upload: %w", err)
		}
		if !exists {
			return fmt.Errorf("upload %s: %w", *upload.PreviousUploadID, ErrPreviousUploadMissing)
		}
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO uploads (id, group_key, uploaded_at, content_hash, previous_upload_id, source_label)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		upload.ID,
		upload.GroupKey,
		upload.UploadedAt,
		upload.ContentHash,
		nullableUUID(upload.PreviousUploadID),
		upload.SourceLabel,
	)
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}

	batch := &pgx.Batch{}
	for position, record := range records {
		attributes, marshalErr := json.Marshal(record.Attributes)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal attributes for %q: %w", record.Code, marshalErr)
		}
		batch.Queue(
			`INSERT INTO upload_records (upload_id, position, code, attributes)
			 VALUES ($1, $2, $3, $4)`,
			upload.ID,
			position,
			record.Code,
			attributes,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert upload records: %w", err)
		}
	}

	if err := insertImportRun(ctx, tx, run); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}
	return nil
}

func (r *uploadRepository) ListByGroup(ctx context.Context, groupKey string) ([]domain.Upload, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("upload repository not initialized")
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, group_key, uploaded_at, content_hash, previous_upload_id, source_label
		 FROM uploads
		 WHERE group_key = $1`,
		groupKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	uploads := []domain.Upload{}
	for rows.Next() {
		upload, scanErr := scanUpload(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		uploads = append(uploads, upload)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate uploads: %w", rowsErr)
	}

	return uploads, nil
}

func (r *uploadRepository) Get(ctx context.Context, id uuid.UUID) (domain.Upload, error) {
	if r.pool == nil {
		return domain.Upload{}, fmt.Errorf("upload repository not initialized")
	}

	row := r.pool.QueryRow(
		ctx,
		`SELECT id, group_key, uploaded_at, content_hash, previous_upload_id, source_label
		 FROM uploads
		 WHERE id = $1`,
		id,
	)

	upload, err := scanUpload(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Upload{}, fmt.Errorf("upload %s: %w", id, ErrNotFound)
		}
		return domain.Upload{}, err
	}
	return upload, nil
}

func (r *uploadRepository) GetRecords(ctx context.Context, uploadID uuid.UUID) ([]domain.CableRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("upload repository not initialized")
	}

	// The upload must exist; an empty record set is valid but an unknown id
	// is NotFound.
	if _, err := r.Get(ctx, uploadID); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT code, attributes
		 FROM upload_records
		 WHERE upload_id = $1
		 ORDER BY position ASC`,
		uploadID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload records: %w", err)
	}
	defer rows.Close()

	records := []domain.CableRecord{}
	for rows.Next() {
		var (
			code       string
			attributes []byte
		)
		if scanErr := rows.Scan(&code, &attributes); scanErr != nil {
			return nil, fmt.Errorf("failed to scan upload record: %w", scanErr)
		}

		var parsed map[string]any
		if len(attributes) > 0 {
			if unmarshalErr := json.Unmarshal(attributes, &parsed); unmarshalErr != nil {
				return nil, fmt.Errorf("failed to unmarshal attributes for %q: %w", code, unmarshalErr)
			}
		}
		records = append(records, domain.CableRecord{Code: code, Attributes: parsed})
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate upload records: %w", rowsErr)
	}

	return records, nil
}

func scanUpload(row pgx.Row) (domain.Upload, error) {
	var (
		upload     domain.Upload
		uploadedAt pgtype.Timestamptz
		previousID pgtype.UUID
	)
	if err := row.Scan(
		&upload.ID,
		&upload.GroupKey,
		&uploadedAt,
		&upload.ContentHash,
		&previousID,
		&upload.SourceLabel,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Upload{}, err
		}
		return domain.Upload{}, fmt.Errorf("failed to scan upload: %w", err)
	}

	if uploadedAt.Valid {
		upload.UploadedAt = uploadedAt.Time
	}
	if previousID.Valid {
		id := uuid.UUID(previousID.Bytes)
		upload.PreviousUploadID = &id
	}
	return upload, nil
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
