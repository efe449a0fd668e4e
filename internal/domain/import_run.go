package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImportRun is the audit record of one ingestion attempt. Every attempt
// produces exactly one run: successful ingestions reference the upload they
// created, rejected duplicates keep NewUploadID nil but are still logged so
// the attempt remains traceable.
type ImportRun struct {
	ID               uuid.UUID   `json:"id"`
	GroupKey         string      `json:"group_key"`
	CreatedAt        time.Time   `json:"created_at"`
	CreatedBy        string      `json:"created_by"`
	PreviousUploadID *uuid.UUID  `json:"previous_upload_id,omitempty"`
	NewUploadID      *uuid.UUID  `json:"new_upload_id,omitempty"`
	ContentHash      string      `json:"content_hash"`
	Summary          Summary     `json:"summary"`
	Diff             DiffPayload `json:"diff"`
}

// Duplicate reports whether this run recorded a rejected duplicate upload.
func (r ImportRun) Duplicate() bool {
	return r.NewUploadID == nil
}

// NewImportRun creates the audit entry for an ingestion attempt.
func NewImportRun(groupKey, createdBy, contentHash string, previousID, newID *uuid.UUID, diff DiffPayload) ImportRun {
	return ImportRun{
		ID:               uuid.New(),
		GroupKey:         groupKey,
		CreatedAt:        time.Now().UTC(),
		CreatedBy:        createdBy,
		PreviousUploadID: previousID,
		NewUploadID:      newID,
		ContentHash:      contentHash,
		Summary:          diff.Summarize(),
		Diff:             diff,
	}
}
