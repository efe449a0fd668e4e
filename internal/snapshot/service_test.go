package snapshot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rpattn/cabletrack/internal/domain"
	"github.com/rpattn/cabletrack/internal/repository"

	"github.com/google/uuid"
)

func TestResolveHeadUnknownGroupIsNotFound(t *testing.T) {
	service := NewService(&fakeUploads{}, &fakeRuns{})

	_, err := service.ResolveHead(context.Background(), "no-such-group")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveHeadPicksLatest(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := domain.Upload{ID: uuid.New(), GroupKey: "hull-7041", UploadedAt: base}
	newer := domain.Upload{ID: uuid.New(), GroupKey: "hull-7041", UploadedAt: base.Add(time.Hour)}

	uploads := &fakeUploads{uploads: []domain.Upload{older, newer}}
	service := NewService(uploads, &fakeRuns{})

	head, err := service.ResolveHead(context.Background(), "hull-7041")
	if err != nil {
		t.Fatalf("resolve head failed: %v", err)
	}
	if head.ID != newer.ID {
		t.Fatalf("expected newest upload as head, got %s", head.ID)
	}
}

func TestHeadRecordsDelegatesToHead(t *testing.T) {
	upload := domain.Upload{ID: uuid.New(), GroupKey: "hull-7041", UploadedAt: time.Now()}
	uploads := &fakeUploads{
		uploads: []domain.Upload{upload},
		records: map[uuid.UUID][]domain.CableRecord{
			upload.ID: {domain.NewCableRecord("C1", map[string]any{"len": 10.0})},
		},
	}
	service := NewService(uploads, &fakeRuns{})

	records, err := service.HeadRecords(context.Background(), "hull-7041")
	if err != nil {
		t.Fatalf("head records failed: %v", err)
	}
	if len(records) != 1 || records[0].Code != "C1" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestRecordsUnknownUploadIsNotFound(t *testing.T) {
	service := NewService(&fakeUploads{}, &fakeRuns{})

	_, err := service.Records(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordsEmptyDatasetIsNotAnError(t *testing.T) {
	upload := domain.Upload{ID: uuid.New(), GroupKey: "hull-7041", UploadedAt: time.Now()}
	uploads := &fakeUploads{
		uploads: []domain.Upload{upload},
		records: map[uuid.UUID][]domain.CableRecord{upload.ID: {}},
	}
	service := NewService(uploads, &fakeRuns{})

	records, err := service.Records(context.Background(), upload.ID)
	if err != nil {
		t.Fatalf("empty dataset must be a success state, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected zero records, got %d", len(records))
	}
}

func TestGetDiffReturnsStoredPayload(t *testing.T) {
	run := domain.NewImportRun("hull-7041", "operator-7", "abc", nil, nil, domain.DiffPayload{
		Added:   []string{"C1"},
		Removed: []string{},
		Changed: []domain.ChangedEntry{},
	})
	service := NewService(&fakeUploads{}, &fakeRuns{runs: []domain.ImportRun{run}})

	diff, err := service.GetDiff(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("get diff failed: %v", err)
	}
	if len(diff.Added) != 1 || diff.Added[0] != "C1" {
		t.Fatalf("unexpected diff: %+v", diff)
	}

	if _, err := service.GetDiff(context.Background(), uuid.New()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown run, got %v", err)
	}
}

type fakeUploads struct {
	uploads []domain.Upload
	records map[uuid.UUID][]domain.CableRecord
}

func (f *fakeUploads) Append(ctx context.Context, upload domain.Upload, records []domain.CableRecord, run domain.ImportRun) error {
	return errors.New("not implemented")
}

func (f *fakeUploads) ListByGroup(ctx context.Context, groupKey string) ([]domain.Upload, error) {
	uploads := []domain.Upload{}
	for _, upload := range f.uploads {
		if upload.GroupKey == groupKey {
			uploads = append(uploads, upload)
		}
	}
	return uploads, nil
}

func (f *fakeUploads) Get(ctx context.Context, id uuid.UUID) (domain.Upload, error) {
	for _, upload := range f.uploads {
		if upload.ID == id {
			return upload, nil
		}
	}
	return domain.Upload{}, fmt.Errorf("upload %s: %w", id, repository.ErrNotFound)
}

func (f *fakeUploads) GetRecords(ctx context.Context, uploadID uuid.UUID) ([]domain.CableRecord, error) {
	records, ok := f.records[uploadID]
	if !ok {
		return nil, fmt.Errorf("upload %s: %w", uploadID, repository.ErrNotFound)
	}
	return records, nil
}

type fakeRuns struct {
	runs []domain.ImportRun
}

func (f *fakeRuns) Record(ctx context.Context, run domain.ImportRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeRuns) ListByGroup(ctx context.Context, groupKey string, limit int) ([]domain.ImportRun, error) {
	runs := []domain.ImportRun{}
	for _, run := range f.runs {
		if run.GroupKey == groupKey {
			runs = append(runs, run)
		}
	}
	return runs, nil
}

func (f *fakeRuns) Get(ctx context.Context, id uuid.UUID) (domain.ImportRun, error) {
	for _, run := range f.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return domain.ImportRun{}, fmt.Errorf("import run %s: %w", id, repository.ErrNotFound)
}

var _ repository.UploadRepository = (*fakeUploads)(nil)
var _ repository.ImportRunRepository = (*fakeRuns)(nil)
