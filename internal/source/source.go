// Package source builds reconciliation candidates from the two inputs: live
// editor annotation objects and records walked out of the parsed document's
// object graph. The engine itself never touches either collaborator; it only
// sees the summaries produced here.
package source

import (
	"marginalia/internal/annot"
	"marginalia/internal/identity"
)

// EditorObject exposes the fields of a live editor annotation. Identifiers
// may be absent until the underlying document round-trips through
// persistence.
type EditorObject interface {
	identity.Keyed

	PageIndex() int
	Text() string
	KindLabel() string
	Subtype() string
	Author() string
	ModifiedAt() *int64
	Color() string
	HasNote() bool
	MarkerRect() *annot.Rect
	SortIndex() *int
}

// DocumentAnnot is one annotation walked out of the parsed document graph by
// an upstream collaborator. Popup/Parent reference chains are already
// resolved into Text and MarkerRect; the engine never traverses references.
type DocumentAnnot struct {
	ObjectID   string      `json:"object_id"`
	UID        string      `json:"uid,omitempty"`
	PageIndex  int         `json:"page_index"`
	Text       string      `json:"text"`
	KindLabel  string      `json:"kind_label,omitempty"`
	Subtype    string      `json:"subtype,omitempty"`
	Author     string      `json:"author,omitempty"`
	ModifiedAt *int64      `json:"modified_at,omitempty"`
	Color      string      `json:"color,omitempty"`
	HasNote    bool        `json:"has_note,omitempty"`
	MarkerRect *annot.Rect `json:"marker_rect,omitempty"`
	SortIndex  *int        `json:"sort_index,omitempty"`
}

// FromEditor builds an editor-source candidate. The identity map supplies
// the source-local id; it only generates and caches a runtime id when the
// object carries no natural key at all.
func FromEditor(ids *identity.Map, obj EditorObject) annot.Summary {
	page := obj.PageIndex()
	return annot.NormalizeStableKey(annot.Summary{
		ID:           ids.IdentityFor(obj, page),
		PageIndex:    page,
		Text:         obj.Text(),
		KindLabel:    obj.KindLabel(),
		Subtype:      obj.Subtype(),
		Author:       obj.Author(),
		ModifiedAt:   obj.ModifiedAt(),
		Color:        obj.Color(),
		UID:          obj.UID(),
		AnnotationID: obj.AnnotationElementID(),
		Source:       annot.SourceEditor,
		HasNote:      obj.HasNote(),
		MarkerRect:   annot.NormalizeMarkerRect(obj.MarkerRect()),
		SortIndex:    obj.SortIndex(),
	})
}

// FromEditorAll builds candidates for every live editor object.
func FromEditorAll(ids *identity.Map, objs []EditorObject) []annot.Summary {
	out := make([]annot.Summary, 0, len(objs))
	for _, obj := range objs {
		out = append(out, FromEditor(ids, obj))
	}
	return out
}

// FromDocument builds a pdf-source candidate.
func FromDocument(a DocumentAnnot) annot.Summary {
	return annot.NormalizeStableKey(annot.Summary{
		ID:           a.ObjectID,
		PageIndex:    a.PageIndex,
		Text:         a.Text,
		KindLabel:    a.KindLabel,
		Subtype:      a.Subtype,
		Author:       a.Author,
		ModifiedAt:   a.ModifiedAt,
		Color:        a.Color,
		UID:          a.UID,
		AnnotationID: a.ObjectID,
		Source:       annot.SourcePDF,
		HasNote:      a.HasNote,
		MarkerRect:   annot.NormalizeMarkerRect(a.MarkerRect),
		SortIndex:    a.SortIndex,
	})
}

// FromDocumentAll builds candidates for every walked document annotation.
func FromDocumentAll(annots []DocumentAnnot) []annot.Summary {
	out := make([]annot.Summary, 0, len(annots))
	for _, a := range annots {
		out = append(out, FromDocument(a))
	}
	return out
}
