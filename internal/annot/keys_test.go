package annot

import "testing"

func TestComputeStableKey_Precedence(t *testing.T) {
	tests := []struct {
		name         string
		id           string
		uid          string
		annotationID string
		source       Source
		want         string
	}{
		{
			name:         "annotation id outranks uid and id",
			id:           "e1",
			uid:          "u1",
			annotationID: "obj7",
			source:       SourceEditor,
			want:         "ann:3:obj7",
		},
		{
			name:   "uid outranks id",
			id:     "e1",
			uid:    "u1",
			source: SourceEditor,
			want:   "uid:3:u1",
		},
		{
			name:   "source-local fallback",
			id:     "e1",
			source: SourceEditor,
			want:   "src:editor:3:e1",
		},
		{
			name:   "pdf fallback includes source",
			id:     "p1",
			source: SourcePDF,
			want:   "src:pdf:3:p1",
		},
		{
			name:   "total even with empty id",
			source: SourcePDF,
			want:   "src:pdf:3:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStableKey(3, tt.id, tt.source, tt.uid, tt.annotationID)
			if got != tt.want {
				t.Errorf("ComputeStableKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeStableKey_OverwritesStaleKey(t *testing.T) {
	s := Summary{
		ID:        "e1",
		StableKey: "src:editor:0:e1",
		PageIndex: 0,
		Source:    SourceEditor,
	}

	// Annotation acquired a document id after a save round-trip.
	s.AnnotationID = "obj9"
	got := NormalizeStableKey(s)

	if got.StableKey != "ann:0:obj9" {
		t.Errorf("StableKey = %q, want %q", got.StableKey, "ann:0:obj9")
	}
	if s.StableKey != "src:editor:0:e1" {
		t.Errorf("input mutated: StableKey = %q", s.StableKey)
	}
}

func TestNormalizeStableKey_StableAcrossPasses(t *testing.T) {
	s := Summary{ID: "e1", PageIndex: 2, UID: "u-42", Source: SourceEditor}
	first := NormalizeStableKey(s)
	second := NormalizeStableKey(first)
	if first.StableKey != second.StableKey {
		t.Errorf("stable key drifted: %q then %q", first.StableKey, second.StableKey)
	}
}
