package annot

import (
	"math"
	"testing"
)

func TestNormalizeMarkerRect(t *testing.T) {
	tests := []struct {
		name string
		in   *Rect
		ok   bool
	}{
		{"nil", nil, false},
		{"valid", &Rect{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.05}, true},
		{"zero width", &Rect{Left: 0.1, Top: 0.1, Width: 0, Height: 0.05}, false},
		{"negative height", &Rect{Left: 0.1, Top: 0.1, Width: 0.2, Height: -0.05}, false},
		{"nan left", &Rect{Left: math.NaN(), Top: 0.1, Width: 0.2, Height: 0.05}, false},
		{"inf width", &Rect{Left: 0.1, Top: 0.1, Width: math.Inf(1), Height: 0.05}, false},
		{"negative inf top", &Rect{Left: 0.1, Top: math.Inf(-1), Width: 0.2, Height: 0.05}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeMarkerRect(tt.in)
			if (got != nil) != tt.ok {
				t.Errorf("NormalizeMarkerRect = %v, want valid=%v", got, tt.ok)
			}
			if got != nil && got == tt.in {
				t.Error("NormalizeMarkerRect returned the input pointer, want a copy")
			}
		})
	}
}

func TestMarkerRectIoU(t *testing.T) {
	unit := &Rect{Left: 0, Top: 0, Width: 1, Height: 1}

	if got := MarkerRectIoU(unit, unit); got != 1 {
		t.Errorf("identical rects IoU = %v, want 1", got)
	}
	if got := MarkerRectIoU(unit, nil); got != 0 {
		t.Errorf("nil rect IoU = %v, want 0", got)
	}
	disjoint := &Rect{Left: 2, Top: 2, Width: 1, Height: 1}
	if got := MarkerRectIoU(unit, disjoint); got != 0 {
		t.Errorf("disjoint IoU = %v, want 0", got)
	}
	invalid := &Rect{Left: 0, Top: 0, Width: -1, Height: 1}
	if got := MarkerRectIoU(unit, invalid); got != 0 {
		t.Errorf("invalid rect IoU = %v, want 0", got)
	}

	// Half-overlapping unit squares: inter 0.5, union 1.5.
	half := &Rect{Left: 0.5, Top: 0, Width: 1, Height: 1}
	want := 0.5 / 1.5
	if got := MarkerRectIoU(unit, half); math.Abs(got-want) > 1e-12 {
		t.Errorf("half overlap IoU = %v, want %v", got, want)
	}
}

func markupSummary(page int, r *Rect) Summary {
	return Summary{PageIndex: page, Subtype: "Highlight", MarkerRect: r}
}

func TestLikelySameMarkup_IoUThresholdExact(t *testing.T) {
	// b sits inside a with union exactly 0.25 (a power of two) and
	// intersection exactly 0.46*0.25, so the computed IoU equals the
	// threshold constant bit-for-bit.
	a := &Rect{Left: 0, Top: 0, Width: 0.5, Height: 0.5}
	b := &Rect{Left: 0, Top: 0, Width: 0.5, Height: 0.23}

	if got := MarkerRectIoU(a, b); got < 0.46 || got > 0.46 {
		t.Fatalf("setup: IoU = %v, want exactly 0.46", got)
	}
	if !LikelySameMarkup(markupSummary(0, a), markupSummary(0, b)) {
		t.Error("IoU == 0.46 judged distinct, want likely same")
	}
}

func TestLikelySameMarkup_BelowThresholdIsDistinct(t *testing.T) {
	// IoU ~0.45, centers ~0.05 apart, area ratio ~3.0: below the IoU
	// threshold and outside both fallback limits.
	a := Summary{PageIndex: 0, Subtype: "Highlight", MarkerRect: &Rect{Left: 0.1, Top: 0.1, Width: 0.3, Height: 0.1}}
	b := Summary{PageIndex: 0, Subtype: "Highlight", MarkerRect: &Rect{Left: 0.1, Top: 0.2, Width: 0.1, Height: 0.1}}

	if LikelySameMarkup(a, b) {
		t.Error("clearly distinct markups judged likely same")
	}
}

func TestLikelySameMarkup_SaveReloadDrift(t *testing.T) {
	// Nearly identical rect after save/reload rounding drift.
	a := markupSummary(0, &Rect{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.05})
	b := markupSummary(0, &Rect{Left: 0.101, Top: 0.102, Width: 0.198, Height: 0.049})

	if !LikelySameMarkup(a, b) {
		t.Error("drifted rect judged distinct, want likely same")
	}
}

func TestLikelySameMarkup_CenterDistanceFallback(t *testing.T) {
	// Shifted enough that IoU drops below 0.46 but centers stay within
	// 0.045 and areas match.
	a := markupSummary(0, &Rect{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.02})
	b := markupSummary(0, &Rect{Left: 0.1, Top: 0.115, Width: 0.2, Height: 0.02})

	if got := MarkerRectIoU(a.MarkerRect, b.MarkerRect); got >= 0.46 {
		t.Fatalf("setup: IoU = %v, want below threshold", got)
	}
	if !LikelySameMarkup(a, b) {
		t.Error("near-identical placement judged distinct, want likely same")
	}
}

func TestLikelySameMarkup_FallbackNeedsBothLimits(t *testing.T) {
	// Close centers but area ratio > 2.8.
	a := markupSummary(0, &Rect{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.02})
	b := markupSummary(0, &Rect{Left: 0.1, Top: 0.08, Width: 0.2, Height: 0.08})
	if LikelySameMarkup(a, b) {
		t.Error("area ratio above limit judged likely same")
	}

	// Compatible areas but centers > 0.045 apart and no overlap.
	c := markupSummary(0, &Rect{Left: 0.1, Top: 0.1, Width: 0.1, Height: 0.02})
	d := markupSummary(0, &Rect{Left: 0.3, Top: 0.1, Width: 0.1, Height: 0.02})
	if LikelySameMarkup(c, d) {
		t.Error("far centers judged likely same")
	}
}

func TestLikelySameMarkup_GateConditions(t *testing.T) {
	r := &Rect{Left: 0.1, Top: 0.1, Width: 0.2, Height: 0.05}

	// Cross-page pairs never match.
	if LikelySameMarkup(markupSummary(0, r), markupSummary(1, r)) {
		t.Error("cross-page markups judged likely same")
	}

	// Non-markup subtypes never match.
	a := Summary{PageIndex: 0, Subtype: "Text", MarkerRect: r}
	b := Summary{PageIndex: 0, Subtype: "Text", MarkerRect: r}
	if LikelySameMarkup(a, b) {
		t.Error("non-markup subtype judged likely same")
	}

	// Missing geometry on either side fails the fallback.
	if LikelySameMarkup(markupSummary(0, r), markupSummary(0, nil)) {
		t.Error("missing rect judged likely same")
	}
}

func TestIsTextMarkup(t *testing.T) {
	for _, subtype := range []string{"Highlight", "Underline", "StrikeOut", "Squiggly", "underline"} {
		if !IsTextMarkup(subtype) {
			t.Errorf("IsTextMarkup(%q) = false, want true", subtype)
		}
	}
	for _, subtype := range []string{"", "Text", "Link", "Popup"} {
		if IsTextMarkup(subtype) {
			t.Errorf("IsTextMarkup(%q) = true, want false", subtype)
		}
	}
}
