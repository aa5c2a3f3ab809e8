package ops

import (
	"database/sql"
	"encoding/json"
	"strings"

	"marginalia/internal/annot"
	"marginalia/internal/db"
	"marginalia/internal/errors"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	Document string `json:"document"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// HistoryOutput lists stored snapshots, newest first, without payloads.
type HistoryOutput struct {
	Document   string        `json:"document"`
	Items      []db.Snapshot `json:"items"`
	Pagination Pagination    `json:"pagination"`
}

// History lists the reconciliation snapshots stored for a document.
func History(database *sql.DB, input HistoryInput) (*HistoryOutput, error) {
	document := strings.TrimSpace(input.Document)
	if document == "" {
		return nil, errors.NewInvalidRequest("document is required")
	}
	if input.Offset < 0 {
		return nil, errors.NewInvalidRequest("offset must not be negative")
	}
	limit := clampLimit(input.Limit, DefaultHistoryLimit, MaxHistoryLimit)

	items, total, err := db.ListSnapshots(database, document, limit, input.Offset)
	if err != nil {
		return nil, err
	}

	return &HistoryOutput{
		Document: document,
		Items:    items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  input.Offset,
			HasMore: input.Offset+len(items) < total,
			Total:   total,
		},
	}, nil
}

// ShowSnapshotOutput is one stored snapshot with its records decoded.
type ShowSnapshotOutput struct {
	ID          string          `json:"id"`
	Document    string          `json:"document"`
	TakenAt     int64           `json:"taken_at"`
	RecordCount int             `json:"record_count"`
	Records     []annot.Summary `json:"records"`
}

// ShowSnapshot fetches one snapshot by id and decodes its canonical list.
func ShowSnapshot(database *sql.DB, id string) (*ShowSnapshotOutput, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	snap, err := db.GetSnapshot(database, id)
	if err != nil {
		return nil, err
	}

	var records []annot.Summary
	if err := json.Unmarshal([]byte(snap.Payload), &records); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ShowSnapshotOutput{
		ID:          snap.ID,
		Document:    snap.Document,
		TakenAt:     snap.TakenAt,
		RecordCount: snap.RecordCount,
		Records:     records,
	}, nil
}
