package source

import (
	"testing"

	"marginalia/internal/annot"
	"marginalia/internal/identity"
)

type fakeEditorObject struct {
	handle     identity.Handle
	uid        string
	elemID     string
	rawID      string
	page       int
	text       string
	subtype    string
	markerRect *annot.Rect
}

func (f fakeEditorObject) Handle() identity.Handle     { return f.handle }
func (f fakeEditorObject) UID() string                 { return f.uid }
func (f fakeEditorObject) AnnotationElementID() string { return f.elemID }
func (f fakeEditorObject) RawID() string               { return f.rawID }
func (f fakeEditorObject) PageIndex() int              { return f.page }
func (f fakeEditorObject) Text() string                { return f.text }
func (f fakeEditorObject) KindLabel() string           { return "" }
func (f fakeEditorObject) Subtype() string             { return f.subtype }
func (f fakeEditorObject) Author() string              { return "" }
func (f fakeEditorObject) ModifiedAt() *int64          { return nil }
func (f fakeEditorObject) Color() string               { return "" }
func (f fakeEditorObject) HasNote() bool               { return false }
func (f fakeEditorObject) MarkerRect() *annot.Rect     { return f.markerRect }
func (f fakeEditorObject) SortIndex() *int             { return nil }

func TestFromEditor_WithNaturalKey(t *testing.T) {
	ids := identity.NewMap()
	obj := fakeEditorObject{handle: 1, uid: "u1", elemID: "el1", page: 2, text: "note", subtype: "Highlight"}

	got := FromEditor(ids, obj)

	if got.Source != annot.SourceEditor {
		t.Errorf("Source = %q, want editor", got.Source)
	}
	if got.UID != "u1" || got.AnnotationID != "el1" {
		t.Errorf("identifiers = %q/%q, want u1/el1", got.UID, got.AnnotationID)
	}
	if got.ID != "u1" {
		t.Errorf("ID = %q, want uid per identity resolution order", got.ID)
	}
	if got.StableKey != "ann:2:el1" {
		t.Errorf("StableKey = %q, want ann:2:el1", got.StableKey)
	}
	if ids.Len() != 0 {
		t.Errorf("identity map grew to %d for a naturally-keyed object", ids.Len())
	}
}

func TestFromEditor_RuntimeIdentityFallback(t *testing.T) {
	ids := identity.NewMap()
	obj := fakeEditorObject{handle: 7, page: 0, subtype: "Highlight"}

	first := FromEditor(ids, obj)
	second := FromEditor(ids, obj)

	if first.ID != "editor:0:1" {
		t.Errorf("ID = %q, want editor:0:1", first.ID)
	}
	if first.ID != second.ID || first.StableKey != second.StableKey {
		t.Errorf("identity drifted across refreshes: %q/%q then %q/%q",
			first.ID, first.StableKey, second.ID, second.StableKey)
	}
	if ids.Len() != 1 {
		t.Errorf("identity map Len = %d, want 1", ids.Len())
	}
}

func TestFromEditor_DropsInvalidGeometry(t *testing.T) {
	ids := identity.NewMap()
	obj := fakeEditorObject{handle: 1, rawID: "r1", page: 0, markerRect: &annot.Rect{Width: -1, Height: 0.1}}

	got := FromEditor(ids, obj)
	if got.MarkerRect != nil {
		t.Errorf("MarkerRect = %v, want nil for invalid geometry", got.MarkerRect)
	}
	if got.ID != "editor:0:r1" {
		t.Errorf("ID = %q, want editor:0:r1", got.ID)
	}
}

func TestFromDocument(t *testing.T) {
	mod := int64(42)
	got := FromDocument(DocumentAnnot{
		ObjectID:   "obj7",
		PageIndex:  1,
		Text:       "from popup chain",
		Subtype:    "Highlight",
		ModifiedAt: &mod,
		MarkerRect: &annot.Rect{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.05},
	})

	if got.Source != annot.SourcePDF {
		t.Errorf("Source = %q, want pdf", got.Source)
	}
	if got.AnnotationID != "obj7" || got.ID != "obj7" {
		t.Errorf("ids = %q/%q, want obj7/obj7", got.AnnotationID, got.ID)
	}
	if got.StableKey != "ann:1:obj7" {
		t.Errorf("StableKey = %q, want ann:1:obj7", got.StableKey)
	}
	if got.Text != "from popup chain" {
		t.Errorf("Text = %q", got.Text)
	}
}

func TestFromEditorAll_And_FromDocumentAll(t *testing.T) {
	ids := identity.NewMap()
	editors := []EditorObject{
		fakeEditorObject{handle: 1, page: 0},
		fakeEditorObject{handle: 2, page: 1},
	}
	if got := FromEditorAll(ids, editors); len(got) != 2 {
		t.Errorf("FromEditorAll len = %d, want 2", len(got))
	}

	docs := []DocumentAnnot{{ObjectID: "a"}, {ObjectID: "b"}}
	if got := FromDocumentAll(docs); len(got) != 2 {
		t.Errorf("FromDocumentAll len = %d, want 2", len(got))
	}
}
