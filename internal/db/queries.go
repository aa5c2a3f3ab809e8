package db

import (
	"database/sql"
	"time"

	"marginalia/internal/annot"
	"marginalia/internal/errors"
	"marginalia/internal/recall"
)

// Snapshot is one persisted reconciliation result: the canonical record list
// serialized as JSON, kept for the history/audit surface.
type Snapshot struct {
	ID          string `json:"id"`
	Document    string `json:"document"`
	TakenAt     int64  `json:"taken_at"`
	RecordCount int    `json:"record_count"`
	Payload     string `json:"payload,omitempty"`
}

// UpsertMemoryEntry writes one alias-keyed memory entry for a document,
// overwriting any previous value.
func UpsertMemoryEntry(database *sql.DB, document, aliasKey string, e recall.Entry) error {
	var left, top, width, height sql.NullFloat64
	if e.MarkerRect != nil {
		left = sql.NullFloat64{Float64: e.MarkerRect.Left, Valid: true}
		top = sql.NullFloat64{Float64: e.MarkerRect.Top, Valid: true}
		width = sql.NullFloat64{Float64: e.MarkerRect.Width, Valid: true}
		height = sql.NullFloat64{Float64: e.MarkerRect.Height, Valid: true}
	}

	query := `
		INSERT INTO memory_entries (
			document, alias_key, text, modified_at, author, kind_label,
			subtype, color, rect_left, rect_top, rect_width, rect_height,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (document, alias_key) DO UPDATE SET
			text = excluded.text,
			modified_at = excluded.modified_at,
			author = excluded.author,
			kind_label = excluded.kind_label,
			subtype = excluded.subtype,
			color = excluded.color,
			rect_left = excluded.rect_left,
			rect_top = excluded.rect_top,
			rect_width = excluded.rect_width,
			rect_height = excluded.rect_height,
			updated_at = excluded.updated_at
	`

	_, err := database.Exec(query,
		document, aliasKey, e.Text, toNullInt64(e.ModifiedAt),
		toNullString(e.Author), toNullString(e.KindLabel),
		toNullString(e.Subtype), toNullString(e.Color),
		left, top, width, height, time.Now().Unix(),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteMemoryEntry removes one alias-keyed entry for a document.
func DeleteMemoryEntry(database *sql.DB, document, aliasKey string) error {
	_, err := database.Exec(
		`DELETE FROM memory_entries WHERE document = ? AND alias_key = ?`,
		document, aliasKey,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// LoadMemoryEntries returns all alias-keyed entries stored for a document.
func LoadMemoryEntries(database *sql.DB, document string) (map[string]recall.Entry, error) {
	rows, err := database.Query(`
		SELECT alias_key, text, modified_at, author, kind_label, subtype,
		       color, rect_left, rect_top, rect_width, rect_height
		FROM memory_entries WHERE document = ?
	`, document)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := make(map[string]recall.Entry)
	for rows.Next() {
		var (
			key                      string
			entry                    recall.Entry
			modifiedAt               sql.NullInt64
			author, kind             sql.NullString
			subtype, color           sql.NullString
			left, top, width, height sql.NullFloat64
		)
		if err := rows.Scan(&key, &entry.Text, &modifiedAt, &author, &kind,
			&subtype, &color, &left, &top, &width, &height); err != nil {
			return nil, errors.NewInternal(err)
		}
		if modifiedAt.Valid {
			v := modifiedAt.Int64
			entry.ModifiedAt = &v
		}
		entry.Author = author.String
		entry.KindLabel = kind.String
		entry.Subtype = subtype.String
		entry.Color = color.String
		if left.Valid && top.Valid && width.Valid && height.Valid {
			entry.MarkerRect = &annot.Rect{
				Left:   left.Float64,
				Top:    top.Float64,
				Width:  width.Float64,
				Height: height.Float64,
			}
		}
		out[key] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// ClearMemoryEntries removes every entry stored for a document.
func ClearMemoryEntries(database *sql.DB, document string) error {
	if _, err := database.Exec(`DELETE FROM memory_entries WHERE document = ?`, document); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// InsertSnapshot stores a reconciliation snapshot.
func InsertSnapshot(database *sql.DB, s *Snapshot) error {
	_, err := database.Exec(`
		INSERT INTO snapshots (id, document, taken_at, record_count, payload)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.Document, s.TakenAt, s.RecordCount, s.Payload)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// PruneSnapshots deletes all but the newest keep snapshots for a document.
// keep <= 0 disables pruning.
func PruneSnapshots(database *sql.DB, document string, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := database.Exec(`
		DELETE FROM snapshots WHERE document = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE document = ?
			ORDER BY taken_at DESC, id DESC LIMIT ?
		)
	`, document, document, keep)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListSnapshots returns snapshots for a document, newest first, without
// payloads, plus the total count for pagination.
func ListSnapshots(database *sql.DB, document string, limit, offset int) ([]Snapshot, int, error) {
	var total int
	if err := database.QueryRow(
		`SELECT COUNT(*) FROM snapshots WHERE document = ?`, document,
	).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := database.Query(`
		SELECT id, document, taken_at, record_count
		FROM snapshots WHERE document = ?
		ORDER BY taken_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, document, limit, offset)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	items := make([]Snapshot, 0, limit)
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.Document, &s.TakenAt, &s.RecordCount); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return items, total, nil
}

// GetSnapshot returns one snapshot by id, including its payload.
func GetSnapshot(database *sql.DB, id string) (*Snapshot, error) {
	var s Snapshot
	err := database.QueryRow(`
		SELECT id, document, taken_at, record_count, payload
		FROM snapshots WHERE id = ?
	`, id).Scan(&s.ID, &s.Document, &s.TakenAt, &s.RecordCount, &s.Payload)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &s, nil
}

// PurgeSnapshots removes snapshots for a document, returning the count.
// A zero before removes everything; otherwise only snapshots taken before
// the given Unix timestamp are removed.
func PurgeSnapshots(database *sql.DB, document string, before int64) (int, error) {
	var (
		res sql.Result
		err error
	)
	if before > 0 {
		res, err = database.Exec(
			`DELETE FROM snapshots WHERE document = ? AND taken_at < ?`,
			document, before,
		)
	} else {
		res, err = database.Exec(`DELETE FROM snapshots WHERE document = ?`, document)
	}
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func toNullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
