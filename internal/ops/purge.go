package ops

import (
	"database/sql"
	"strings"

	"marginalia/internal/db"
	"marginalia/internal/errors"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	Document string `json:"document"`

	// Before removes only snapshots taken before this Unix timestamp.
	// Zero removes all of the document's snapshots.
	Before int64 `json:"before,omitempty"`

	// Memory additionally clears the document's spilled memory entries.
	Memory bool `json:"memory,omitempty"`
}

// PurgeOutput reports what was removed.
type PurgeOutput struct {
	Document         string `json:"document"`
	SnapshotsRemoved int    `json:"snapshots_removed"`
	MemoryCleared    bool   `json:"memory_cleared"`
}

// Purge removes stored snapshots (and optionally spilled memory entries)
// for a document.
func Purge(database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	document := strings.TrimSpace(input.Document)
	if document == "" {
		return nil, errors.NewInvalidRequest("document is required")
	}

	removed, err := db.PurgeSnapshots(database, document, input.Before)
	if err != nil {
		return nil, err
	}

	out := &PurgeOutput{
		Document:         document,
		SnapshotsRemoved: removed,
	}
	if input.Memory {
		if err := db.ClearMemoryEntries(database, document); err != nil {
			return nil, err
		}
		out.MemoryCleared = true
	}
	return out, nil
}
