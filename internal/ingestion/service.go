package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rpattn/cabletrack/internal/auth"
	"github.com/rpattn/cabletrack/internal/domain"
	"github.com/rpattn/cabletrack/internal/repository"
	"github.com/rpattn/cabletrack/pkg/validator"

	"github.com/google/uuid"
)

// ErrEmptyGroupMetadata is returned when an upload carries no identifying
// metadata to derive a group key from.
var ErrEmptyGroupMetadata = errors.New("group metadata is required")

// ErrInvalidRecords is returned when the presented dataset fails validation
// before any lineage state is touched.
var ErrInvalidRecords = errors.New("dataset contains invalid records")

// Service is the single write path into the lineage. Every ingestion
// attempt, successful or rejected, produces exactly one import run.
type Service struct {
	uploads   repository.UploadRepository
	runs      repository.ImportRunRepository
	validator *validator.RecordValidator
	locks     groupLocks
}

// NewService creates the ingestion service.
func NewService(uploads repository.UploadRepository, runs repository.ImportRunRepository) *Service {
	return &Service{
		uploads:   uploads,
		runs:      runs,
		validator: validator.NewRecordValidator(),
	}
}

// Request describes one parsed dataset presented for ingestion. Records must
// already be structured; parsing raw spreadsheet bytes happens upstream.
type Request struct {
	Group       domain.GroupMetadata
	Records     []domain.CableRecord
	SourceLabel string
	ActorID     string
}

// Ingest runs the full write path for one dataset: resolve the group's
// current HEAD, reject a content-identical re-upload, diff against the HEAD
// record set, append the new upload, and record the import run. The whole
// sequence holds the group's lock, so at most one ingestion is in flight per
// group and each one observes its predecessor's result.
//
// A fingerprint match against HEAD is not an error: the attempt is logged as
// an import run with no new upload. Failures before the append leave no
// partial state behind.
func (s *Service) Ingest(ctx context.Context, req Request) (domain.ImportRun, error) {
	if req.Group.IsZero() {
		return domain.ImportRun{}, ErrEmptyGroupMetadata
	}

	for i, rec := range req.Records {
		if result := s.validator.ValidateRecord(rec.Code, rec.Attributes); !result.IsValid {
			return domain.ImportRun{}, fmt.Errorf("%w: row %d: %s", ErrInvalidRecords, i+1, result.Errors[0].Message)
		}
	}

	groupKey := domain.GroupKey(req.Group)
	actor := req.ActorID
	if actor == "" {
		actor, _ = auth.ActorFromContext(ctx)
	}

	unlock := s.locks.Lock(groupKey)
	defer unlock()

	contentHash := domain.Fingerprint(req.Records)

	uploads, err := s.uploads.ListByGroup(ctx, groupKey)
	if err != nil {
		return domain.ImportRun{}, fmt.Errorf("failed to load lineage for %q: %w", groupKey, err)
	}

	var (
		previousUploadID *uuid.UUID
		beforeRecords    []domain.CableRecord
	)
	if head, ok := domain.ResolveHead(uploads); ok {
		if head.ContentHash == contentHash {
			run := domain.NewImportRun(groupKey, actor, contentHash, &head.ID, nil, domain.DiffPayload{
				Added:   []string{},
				Removed: []string{},
				Changed: []domain.ChangedEntry{},
			})
			if err := s.runs.Record(ctx, run); err != nil {
				return domain.ImportRun{}, fmt.Errorf("failed to record duplicate run: %w", err)
			}
			log.Printf("[INGEST] group=%s duplicate content %s rejected, run=%s", groupKey, contentHash[:12], run.ID)
			return run, nil
		}

		beforeRecords, err = s.uploads.GetRecords(ctx, head.ID)
		if err != nil {
			return domain.ImportRun{}, fmt.Errorf("failed to load HEAD records: %w", err)
		}
		headID := head.ID
		previousUploadID = &headID
	}

	diff, err := domain.Diff(beforeRecords, req.Records)
	if err != nil {
		return domain.ImportRun{}, fmt.Errorf("failed to diff against HEAD: %w", err)
	}

	upload := domain.NewUpload(groupKey, contentHash, req.SourceLabel, previousUploadID)
	run := domain.NewImportRun(groupKey, actor, contentHash, previousUploadID, &upload.ID, diff)

	if err := s.uploads.Append(ctx, upload, req.Records, run); err != nil {
		return domain.ImportRun{}, fmt.Errorf("failed to append upload: %w", err)
	}

	log.Printf("[INGEST] group=%s upload=%s added=%d removed=%d changed=%d",
		groupKey, upload.ID, run.Summary.Added, run.Summary.Removed, run.Summary.Changed)
	return run, nil
}
