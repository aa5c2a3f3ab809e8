package annot

import "sort"

// Merge priority weights. A candidate's score decides which record anchors a
// fold: stronger identifiers and livelier state win.
const (
	weightAnnotationID = 110
	weightUID          = 55
	weightEditorSource = 22
	weightNonEmptyText = 12
	weightHasNote      = 8
	weightModifiedAt   = 5
	weightMarkerRect   = 3
)

// MergePriority scores a candidate for anchor selection during dedupe.
func MergePriority(s Summary) int {
	score := 0
	if s.AnnotationID != "" {
		score += weightAnnotationID
	}
	if s.UID != "" {
		score += weightUID
	}
	if s.Source == SourceEditor {
		score += weightEditorSource
	}
	if s.HasText() {
		score += weightNonEmptyText
	}
	if s.HasNote {
		score += weightHasNote
	}
	if s.ModifiedAt != nil {
		score += weightModifiedAt
	}
	if NormalizeMarkerRect(s.MarkerRect) != nil {
		score += weightMarkerRect
	}
	return score
}

// Dedupe folds a full candidate set into the minimal canonical list:
//
//  1. Every candidate's stable key is normalized.
//  2. Candidates are sorted by merge priority (descending score, then
//     modifiedAt descending, then stable key ascending).
//  3. Each candidate in priority order either folds into the first accepted
//     record it is logically equivalent to, or is appended as new.
//  4. The accepted list is sorted into display order.
//
// The output is a pure function of the input set: repeated invocation with an
// unchanged set yields identical ordering, and Dedupe(Dedupe(x)) == Dedupe(x).
func Dedupe(candidates []Summary) []Summary {
	sorted := make([]Summary, len(candidates))
	for i, c := range candidates {
		sorted[i] = NormalizeStableKey(c)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return priorityLess(sorted[i], sorted[j])
	})

	accepted := make([]Summary, 0, len(sorted))
	for _, cand := range sorted {
		folded := false
		for i, acc := range accepted {
			if SameLogicalAnnotation(acc, cand) {
				accepted[i] = MergeDuplicate(acc, cand)
				folded = true
				break
			}
		}
		if !folded {
			accepted = append(accepted, cand)
		}
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return displayLess(accepted[i], accepted[j])
	})
	return accepted
}

// priorityLess reports whether a precedes b in fold order: higher merge
// priority first, then newer modifiedAt, then stable key ascending.
func priorityLess(a, b Summary) bool {
	pa, pb := MergePriority(a), MergePriority(b)
	if pa != pb {
		return pa > pb
	}
	ma, mb := timestampOrZero(a.ModifiedAt), timestampOrZero(b.ModifiedAt)
	if ma != mb {
		return ma > mb
	}
	return a.StableKey < b.StableKey
}

// displayLess is the final ordering comparator: page ascending, then
// sortIndex ascending (nulls after non-null), then modifiedAt descending
// (nulls as zero), then stable key ascending.
func displayLess(a, b Summary) bool {
	if a.PageIndex != b.PageIndex {
		return a.PageIndex < b.PageIndex
	}

	switch {
	case a.SortIndex != nil && b.SortIndex != nil:
		if *a.SortIndex != *b.SortIndex {
			return *a.SortIndex < *b.SortIndex
		}
	case a.SortIndex != nil:
		return true
	case b.SortIndex != nil:
		return false
	}

	ma, mb := timestampOrZero(a.ModifiedAt), timestampOrZero(b.ModifiedAt)
	if ma != mb {
		return ma > mb
	}
	return a.StableKey < b.StableKey
}

func timestampOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
