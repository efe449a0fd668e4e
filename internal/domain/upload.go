package domain

import (
	"time"

	"github.com/google/uuid"
)

// Upload is one ingested, immutable dataset snapshot. Uploads are never
// mutated or deleted; lineage is the chain of PreviousUploadID references
// within a group.
type Upload struct {
	ID               uuid.UUID  `json:"id"`
	GroupKey         string     `json:"group_key"`
	UploadedAt       time.Time  `json:"uploaded_at"`
	ContentHash      string     `json:"content_hash"`
	PreviousUploadID *uuid.UUID `json:"previous_upload_id,omitempty"`
	SourceLabel      string     `json:"source_label"`
}

// NewUpload creates an upload snapshot at ingestion time. previousID is the
// upload that was HEAD just before, or nil for the first upload of a group.
func NewUpload(groupKey, contentHash, sourceLabel string, previousID *uuid.UUID) Upload {
	return Upload{
		ID:               uuid.New(),
		GroupKey:         groupKey,
		UploadedAt:       time.Now().UTC(),
		ContentHash:      contentHash,
		PreviousUploadID: previousID,
		SourceLabel:      sourceLabel,
	}
}

// ResolveHead selects the authoritative upload of a group: the one with the
// greatest UploadedAt, ties broken by the lexicographically greatest id.
// HEAD is never stored; it is always recomputed from the immutable upload
// list, so a stale "current pointer" cannot drift from the lineage. The
// result depends only on the set, never on slice order, so repeated calls
// over permuted input agree.
func ResolveHead(uploads []Upload) (Upload, bool) {
	if len(uploads) == 0 {
		return Upload{}, false
	}
	head := uploads[0]
	for _, candidate := range uploads[1:] {
		if candidate.UploadedAt.After(head.UploadedAt) {
			head = candidate
			continue
		}
		if candidate.UploadedAt.Equal(head.UploadedAt) && candidate.ID.String() > head.ID.String() {
			head = candidate
		}
	}
	return head, true
}
