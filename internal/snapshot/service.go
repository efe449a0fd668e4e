package snapshot

import (
	"context"
	"fmt"

	"github.com/rpattn/cabletrack/internal/domain"
	"github.com/rpattn/cabletrack/internal/repository"

	"github.com/google/uuid"
)

// Service is the read path over the lineage: point-in-time record sets,
// HEAD resolution, upload listings, and the import run history. Reads take
// no locks; a reader sees either the pre- or post-ingestion state of a
// group, never a torn intermediate, because appends are written as one unit.
type Service struct {
	uploads repository.UploadRepository
	runs    repository.ImportRunRepository
}

// NewService creates the snapshot query service.
func NewService(uploads repository.UploadRepository, runs repository.ImportRunRepository) *Service {
	return &Service{
		uploads: uploads,
		runs:    runs,
	}
}

// ResolveHead returns the authoritative upload of a group. A group with no
// uploads is NotFound, not an empty lineage.
func (s *Service) ResolveHead(ctx context.Context, groupKey string) (domain.Upload, error) {
	uploads, err := s.uploads.ListByGroup(ctx, groupKey)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("failed to load lineage for %q: %w", groupKey, err)
	}

	head, ok := domain.ResolveHead(uploads)
	if !ok {
		return domain.Upload{}, fmt.Errorf("group %q: %w", groupKey, repository.ErrNotFound)
	}
	return head, nil
}

// Records returns the record set of a specific upload, in ingestion order.
func (s *Service) Records(ctx context.Context, uploadID uuid.UUID) ([]domain.CableRecord, error) {
	return s.uploads.GetRecords(ctx, uploadID)
}

// HeadRecords resolves the group's HEAD and returns its record set.
func (s *Service) HeadRecords(ctx context.Context, groupKey string) ([]domain.CableRecord, error) {
	head, err := s.ResolveHead(ctx, groupKey)
	if err != nil {
		return nil, err
	}
	return s.uploads.GetRecords(ctx, head.ID)
}

// GetUpload returns a single upload by id.
func (s *Service) GetUpload(ctx context.Context, uploadID uuid.UUID) (domain.Upload, error) {
	return s.uploads.Get(ctx, uploadID)
}

// ListUploads returns every upload of a group. No ordering is promised.
func (s *Service) ListUploads(ctx context.Context, groupKey string) ([]domain.Upload, error) {
	return s.uploads.ListByGroup(ctx, groupKey)
}

// ListImportRuns returns the group's run history, most recent first.
func (s *Service) ListImportRuns(ctx context.Context, groupKey string, limit int) ([]domain.ImportRun, error) {
	return s.runs.ListByGroup(ctx, groupKey, limit)
}

// GetDiff returns the diff payload stored with an import run.
func (s *Service) GetDiff(ctx context.Context, runID uuid.UUID) (domain.DiffPayload, error) {
	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		return domain.DiffPayload{}, err
	}
	return run.Diff, nil
}
