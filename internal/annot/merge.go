package annot

import "strings"

// labelQualifies reports whether a kind/subtype label beats the generic
// "Highlight" placeholder.
func labelQualifies(label string) bool {
	trimmed := strings.TrimSpace(label)
	return trimmed != "" && trimmed != GenericHighlightLabel
}

// MergeFields combines two equivalent records field by field, existing
// winning every tie. The result starts as a copy of existing, so fields
// without an explicit rule (including ID and PageIndex) carry over from it.
func MergeFields(existing, incoming Summary) Summary {
	out := existing.Clone()

	if !existing.HasText() {
		out.Text = incoming.Text
	}
	if strings.TrimSpace(existing.Author) == "" {
		out.Author = incoming.Author
	}

	if !labelQualifies(existing.KindLabel) && labelQualifies(incoming.KindLabel) {
		out.KindLabel = incoming.KindLabel
	}
	if !labelQualifies(existing.Subtype) && labelQualifies(incoming.Subtype) {
		out.Subtype = incoming.Subtype
	}

	out.ModifiedAt = maxTimestamp(existing.ModifiedAt, incoming.ModifiedAt)

	if existing.Source != SourceEditor && incoming.Source == SourceEditor {
		out.Source = SourceEditor
	}

	out.SortIndex = minSortIndex(existing.SortIndex, incoming.SortIndex)
	out.HasNote = existing.HasNote || incoming.HasNote

	if existing.AnnotationID == "" {
		out.AnnotationID = incoming.AnnotationID
	}
	if existing.UID == "" {
		out.UID = incoming.UID
	}
	if existing.Color == "" {
		out.Color = incoming.Color
	}
	if existing.MarkerRect == nil {
		out.MarkerRect = incoming.MarkerRect
	}

	return out
}

// MergeDuplicate folds a lower-priority candidate into the accepted record
// it was judged equivalent to. On top of MergeFields it prefers primary's
// identifiers outright, re-normalizes the marker rectangle, resolves the
// source as editor if either side is live, and keeps the id of whichever
// side carried the identifier that determined equivalence. The stable key of
// the result is always recomputed, never carried over.
func MergeDuplicate(primary, secondary Summary) Summary {
	out := MergeFields(primary, secondary)

	if primary.AnnotationID != "" {
		out.AnnotationID = primary.AnnotationID
	} else {
		out.AnnotationID = secondary.AnnotationID
	}
	if primary.UID != "" {
		out.UID = primary.UID
	} else {
		out.UID = secondary.UID
	}

	if r := NormalizeMarkerRect(primary.MarkerRect); r != nil {
		out.MarkerRect = r
	} else {
		out.MarkerRect = NormalizeMarkerRect(secondary.MarkerRect)
	}

	if primary.Source == SourceEditor || secondary.Source == SourceEditor {
		out.Source = SourceEditor
	}
	out.SortIndex = minSortIndex(primary.SortIndex, secondary.SortIndex)

	// The surviving id follows the identifier the merge was keyed on.
	switch {
	case primary.AnnotationID != "":
		out.ID = primary.ID
	case secondary.AnnotationID != "":
		out.ID = secondary.ID
	case primary.UID != "":
		out.ID = primary.ID
	case secondary.UID != "":
		out.ID = secondary.ID
	}

	return NormalizeStableKey(out)
}

// maxTimestamp returns the later of two nullable timestamps, or whichever is
// present.
func maxTimestamp(a, b *int64) *int64 {
	switch {
	case a == nil:
		return copyInt64(b)
	case b == nil:
		return copyInt64(a)
	case *b > *a:
		return copyInt64(b)
	default:
		return copyInt64(a)
	}
}

// minSortIndex returns the smaller of two nullable ordering hints, or
// whichever is present.
func minSortIndex(a, b *int) *int {
	switch {
	case a == nil:
		return copyInt(b)
	case b == nil:
		return copyInt(a)
	case *b < *a:
		return copyInt(b)
	default:
		return copyInt(a)
	}
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
