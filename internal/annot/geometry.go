package annot

import (
	"math"
	"strings"
)

// Matching thresholds for save/reload coordinate drift. Tuned empirically in
// the original application; treated as a fixed contract, not re-derived.
const (
	// iouSameMarkup is the minimum intersection-over-union at which two
	// marker rectangles are considered the same markup outright.
	iouSameMarkup = 0.46

	// maxCenterDistance is the fallback center-to-center distance (in
	// normalized page units) below which near-identical rectangles match.
	maxCenterDistance = 0.045

	// maxAreaRatio is the largest allowed ratio of larger to smaller
	// rectangle area for the center-distance fallback to apply.
	maxAreaRatio = 2.8
)

// textMarkupSubtypes are the annotation kinds whose geometry is comparable:
// two highlights drawn over the same words land in (nearly) the same rect,
// which is not true for, say, free-floating notes.
var textMarkupSubtypes = map[string]bool{
	"highlight": true,
	"underline": true,
	"strikeout": true,
	"squiggly":  true,
}

// IsTextMarkup reports whether the subtype is a text-markup kind
// (highlight/underline/strikeout/squiggly, case-insensitive).
func IsTextMarkup(subtype string) bool {
	return textMarkupSubtypes[strings.ToLower(strings.TrimSpace(subtype))]
}

// NormalizeMarkerRect validates a marker rectangle. Non-finite coordinates or
// non-positive dimensions degrade to nil rather than propagating invalid
// geometry.
func NormalizeMarkerRect(r *Rect) *Rect {
	if r == nil {
		return nil
	}
	for _, v := range []float64{r.Left, r.Top, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	}
	if r.Width <= 0 || r.Height <= 0 {
		return nil
	}
	out := *r
	return &out
}

// MarkerRectIoU returns the intersection-over-union of two normalized
// rectangles in [0,1]. Nil or non-overlapping rectangles yield 0.
func MarkerRectIoU(a, b *Rect) float64 {
	a = NormalizeMarkerRect(a)
	b = NormalizeMarkerRect(b)
	if a == nil || b == nil {
		return 0
	}

	ix := math.Max(0, math.Min(a.Left+a.Width, b.Left+b.Width)-math.Max(a.Left, b.Left))
	iy := math.Max(0, math.Min(a.Top+a.Height, b.Top+b.Height)-math.Max(a.Top, b.Top))
	inter := ix * iy
	if inter <= 0 {
		return 0
	}

	union := a.Width*a.Height + b.Width*b.Height - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// LikelySameMarkup reports whether two text-markup candidates on the same
// page plausibly denote the same drawn markup. It matches on IoU >= 0.46, or
// falls back to near-identical placement: center distance <= 0.045 with an
// area ratio <= 2.8. Anything else, including non-markup subtypes and
// cross-page pairs, is distinct.
func LikelySameMarkup(a, b Summary) bool {
	if a.PageIndex != b.PageIndex {
		return false
	}
	if !IsTextMarkup(a.Subtype) || !IsTextMarkup(b.Subtype) {
		return false
	}

	ra := NormalizeMarkerRect(a.MarkerRect)
	rb := NormalizeMarkerRect(b.MarkerRect)
	if MarkerRectIoU(ra, rb) >= iouSameMarkup {
		return true
	}
	if ra == nil || rb == nil {
		return false
	}

	dx := (ra.Left + ra.Width/2) - (rb.Left + rb.Width/2)
	dy := (ra.Top + ra.Height/2) - (rb.Top + rb.Height/2)
	if math.Hypot(dx, dy) > maxCenterDistance {
		return false
	}

	areaA := ra.Width * ra.Height
	areaB := rb.Width * rb.Height
	larger := math.Max(areaA, areaB)
	smaller := math.Min(areaA, areaB)
	return larger/smaller <= maxAreaRatio
}
