package annot

import "fmt"

// ComputeStableKey derives the canonical identity string for one logical
// annotation from the strongest identifier available:
//
//	ann:<page>:<annotationID>   document-native id
//	uid:<page>:<uid>            cross-session persistent id
//	src:<source>:<page>:<id>    source-local fallback
//
// The function is pure and total; it never fails.
func ComputeStableKey(pageIndex int, id string, source Source, uid, annotationID string) string {
	if annotationID != "" {
		return fmt.Sprintf("ann:%d:%s", pageIndex, annotationID)
	}
	if uid != "" {
		return fmt.Sprintf("uid:%d:%s", pageIndex, uid)
	}
	return fmt.Sprintf("src:%s:%d:%s", source, pageIndex, id)
}

// NormalizeStableKey returns a copy of the summary with StableKey recomputed
// from its current fields. Used whenever identifiers may have changed, e.g.
// after an annotation acquired a document id on a save round-trip.
func NormalizeStableKey(s Summary) Summary {
	s.StableKey = ComputeStableKey(s.PageIndex, s.ID, s.Source, s.UID, s.AnnotationID)
	return s
}
