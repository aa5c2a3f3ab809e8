package ops

import (
	"crypto/rand"
	"encoding/json"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"marginalia/internal/annot"
	"marginalia/internal/config"
	"marginalia/internal/db"
	"marginalia/internal/errors"
	"marginalia/internal/session"
)

// ReconcileInput contains the candidate sets for one resolution pass.
type ReconcileInput struct {
	// Document optionally names the document the candidates belong to. When
	// set, it must match the session's active document.
	Document string `json:"document,omitempty"`

	// Editor holds candidates from the live editor model.
	Editor []annot.Summary `json:"editor,omitempty"`

	// PDF holds candidates from the parsed document object graph.
	PDF []annot.Summary `json:"pdf,omitempty"`

	// Snapshot records the canonical result for the history surface.
	Snapshot bool `json:"snapshot,omitempty"`
}

// ReconcileOutput is the canonical, UI-ready result of one pass.
type ReconcileOutput struct {
	SessionID  string          `json:"session_id"`
	Document   string          `json:"document"`
	Records    []annot.Summary `json:"records"`
	InputCount int             `json:"input_count"`
	Folded     int             `json:"folded"`
	Hydrated   int             `json:"hydrated"`
	SnapshotID *string         `json:"snapshot_id,omitempty"`
}

// Reconcile folds both candidate sets into the canonical list, backfills
// transiently blank records from the session's field memory, and remembers
// the results for the next cycle. The engine itself cannot fail; errors come
// only from the optional spill and snapshot writes.
func Reconcile(sess *session.Session, cfg *config.Config, input ReconcileInput) (*ReconcileOutput, error) {
	if doc := strings.TrimSpace(input.Document); doc != "" && doc != sess.Document() {
		return nil, errors.NewDocumentMismatch(sess.Document(), doc)
	}

	candidates := make([]annot.Summary, 0, len(input.Editor)+len(input.PDF))
	candidates = append(candidates, input.Editor...)
	candidates = append(candidates, input.PDF...)

	records := annot.Dedupe(candidates)

	hydrated := 0
	for i, rec := range records {
		filled := sess.Hydrate(rec)
		if filled.Text != rec.Text {
			hydrated++
			records[i] = filled
		}
		if err := sess.Remember(records[i]); err != nil {
			return nil, err
		}
	}

	out := &ReconcileOutput{
		SessionID:  sess.ID(),
		Document:   sess.Document(),
		Records:    records,
		InputCount: len(candidates),
		Folded:     len(candidates) - len(records),
		Hydrated:   hydrated,
	}

	if input.Snapshot {
		id, err := recordSnapshot(sess, cfg, records)
		if err != nil {
			return nil, err
		}
		out.SnapshotID = &id
	}

	return out, nil
}

// recordSnapshot persists the canonical list for the history surface and
// prunes old snapshots per config.
func recordSnapshot(sess *session.Session, cfg *config.Config, records []annot.Summary) (string, error) {
	database := sess.DB()
	if database == nil {
		return "", errors.NewInvalidRequest("snapshots require a database; run without --snapshot or configure a data directory")
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return "", errors.NewInternal(err)
	}

	id, err := generateULID()
	if err != nil {
		return "", errors.NewInternal(err)
	}

	snap := &db.Snapshot{
		ID:          id,
		Document:    sess.Document(),
		TakenAt:     time.Now().Unix(),
		RecordCount: len(records),
		Payload:     string(payload),
	}
	if err := db.InsertSnapshot(database, snap); err != nil {
		return "", err
	}

	retention := 0
	if cfg != nil {
		retention = cfg.SnapshotRetention
	}
	if err := db.PruneSnapshots(database, sess.Document(), retention); err != nil {
		return "", err
	}
	return id, nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
