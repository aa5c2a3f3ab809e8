package annot

import "strings"

// Source identifies which side of the reconciliation a summary came from.
type Source string

const (
	// SourceEditor marks summaries built from the live interactive editor model.
	SourceEditor Source = "editor"

	// SourcePDF marks summaries built from the parsed document object graph.
	SourcePDF Source = "pdf"
)

// GenericHighlightLabel is the placeholder kind/subtype the editor assigns to
// annotations before the real markup kind is known. Merge rules treat it as
// weaker than any concrete label.
const GenericHighlightLabel = "Highlight"

// Rect is a marker rectangle in normalized page-fraction coordinates (0..1).
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Summary is the unit of reconciliation: one candidate view of an annotation,
// as seen by either the editor or the document graph on a single refresh pass.
//
// Summaries are value types and are never mutated in place. Merging two
// equivalent summaries always produces a new one, and the canonical list is
// fully replaced on each resolution pass. The stable key is the only part of
// a summary that must survive re-synchronization unchanged for the same
// logical annotation.
type Summary struct {
	// ID is the source-local identifier. For editor candidates lacking any
	// natural key this is a runtime id from the ephemeral identity map.
	ID string `json:"id"`

	// StableKey is the derived, globally canonical identity string.
	// Recomputed via NormalizeStableKey whenever identifiers may have changed.
	StableKey string `json:"stable_key"`

	// PageIndex is the zero-based page the annotation lives on.
	PageIndex int `json:"page_index"`

	// Text is the comment/note text. Empty is meaningful: it marks a record
	// whose text has not (yet) been populated by its source.
	Text string `json:"text"`

	// KindLabel is the human-readable kind shown in list UIs.
	KindLabel string `json:"kind_label,omitempty"`

	// Subtype is the markup kind (Highlight, Underline, StrikeOut, Squiggly).
	Subtype string `json:"subtype,omitempty"`

	// Author is the annotation author, empty when unknown.
	Author string `json:"author,omitempty"`

	// ModifiedAt is the last-modified Unix timestamp (nullable).
	ModifiedAt *int64 `json:"modified_at,omitempty"`

	// Color is the marker color as given by the source, empty when absent.
	Color string `json:"color,omitempty"`

	// UID is the cross-session persistent id (nullable; empty means absent).
	UID string `json:"uid,omitempty"`

	// AnnotationID is the document-native object id (nullable; empty means
	// absent). Outranks UID, which outranks ID, when deriving the stable key.
	AnnotationID string `json:"annotation_id,omitempty"`

	// Source is where this candidate record originated.
	Source Source `json:"source"`

	// HasNote reports whether the annotation carries an open/attached note.
	HasNote bool `json:"has_note,omitempty"`

	// MarkerRect is the normalized marker rectangle (nullable).
	MarkerRect *Rect `json:"marker_rect,omitempty"`

	// SortIndex is an optional ordering hint from the source (nullable).
	SortIndex *int `json:"sort_index,omitempty"`
}

// PageNumber returns the one-based page number for display.
func (s Summary) PageNumber() int {
	return s.PageIndex + 1
}

// TrimmedText returns the summary text with surrounding whitespace removed.
func (s Summary) TrimmedText() string {
	return strings.TrimSpace(s.Text)
}

// HasText reports whether the summary carries non-empty text after trimming.
func (s Summary) HasText() bool {
	return s.TrimmedText() != ""
}

// Clone returns a copy of the summary with its own Rect/SortIndex/ModifiedAt
// allocations, so callers can adjust fields without aliasing the original.
func (s Summary) Clone() Summary {
	out := s
	if s.MarkerRect != nil {
		r := *s.MarkerRect
		out.MarkerRect = &r
	}
	if s.SortIndex != nil {
		v := *s.SortIndex
		out.SortIndex = &v
	}
	if s.ModifiedAt != nil {
		v := *s.ModifiedAt
		out.ModifiedAt = &v
	}
	return out
}

// textsCompatible reports whether two texts can belong to the same logical
// annotation: either side may still be blank, but two different non-empty
// texts are a conflict.
func textsCompatible(a, b string) bool {
	ta := strings.TrimSpace(a)
	tb := strings.TrimSpace(b)
	return ta == "" || tb == "" || ta == tb
}
