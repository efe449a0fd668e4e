package repository

import (
	"context"
	"errors"

	"github.com/rpattn/cabletrack/internal/domain"

	"github.com/google/uuid"
)

// ErrNotFound reports a missing upload, import run, or group. Callers must
// treat it as distinct from an empty dataset, which is a valid success state.
var ErrNotFound = errors.New("not found")

// ErrPreviousUploadMissing reports a lineage append whose previous_upload_id
// does not reference an existing upload. Referential integrity is checked at
// write time, never at read time.
var ErrPreviousUploadMissing = errors.New("previous upload does not exist")

// UploadRepository is the append-only lineage store. Uploads are never
// updated or deleted. ListByGroup makes no ordering promise; callers that
// need an order sort explicitly (HEAD resolution orders by timestamp and id).
type UploadRepository interface {
	// Append persists a new upload, its full record set, and the import run
	// that produced it as one atomic write. No partial state survives a
	// failed append.
	Append(ctx context.Context, upload domain.Upload, records []domain.CableRecord, run domain.ImportRun) error
	ListByGroup(ctx context.Context, groupKey string) ([]domain.Upload, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Upload, error)
	// GetRecords returns the record set stored for an upload, in ingestion
	// order. An unknown upload id returns ErrNotFound, not an empty set.
	GetRecords(ctx context.Context, uploadID uuid.UUID) ([]domain.CableRecord, error)
}

// ImportRunRepository is the audit ledger of ingestion attempts.
type ImportRunRepository interface {
	// Record persists a run that created no upload (a rejected duplicate).
	// Runs paired with a new upload go through UploadRepository.Append.
	Record(ctx context.Context, run domain.ImportRun) error
	// ListByGroup returns runs ordered by created_at descending, most
	// recent first.
	ListByGroup(ctx context.Context, groupKey string, limit int) ([]domain.ImportRun, error)
	Get(ctx context.Context, id uuid.UUID) (domain.ImportRun, error)
}
