package identity

import "testing"

type fakeObject struct {
	handle Handle
	uid    string
	elemID string
	rawID  string
}

func (f fakeObject) Handle() Handle              { return f.handle }
func (f fakeObject) UID() string                 { return f.uid }
func (f fakeObject) AnnotationElementID() string { return f.elemID }
func (f fakeObject) RawID() string               { return f.rawID }

func TestIdentityFor_ResolutionOrder(t *testing.T) {
	m := NewMap()

	tests := []struct {
		name string
		obj  fakeObject
		want string
	}{
		{"uid wins", fakeObject{handle: 1, uid: "u1", elemID: "el1", rawID: "r1"}, "u1"},
		{"element id next", fakeObject{handle: 2, elemID: "el1", rawID: "r1"}, "el1"},
		{"raw id formatted", fakeObject{handle: 3, rawID: "r1"}, "editor:4:r1"},
		{"runtime id generated", fakeObject{handle: 4}, "editor:4:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.IdentityFor(tt.obj, 4); got != tt.want {
				t.Errorf("IdentityFor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIdentityFor_StablePerObject(t *testing.T) {
	m := NewMap()
	obj := fakeObject{handle: 7}

	first := m.IdentityFor(obj, 0)
	second := m.IdentityFor(obj, 0)
	if first != second {
		t.Errorf("identity drifted for the same handle: %q then %q", first, second)
	}

	other := m.IdentityFor(fakeObject{handle: 8}, 0)
	if other == first {
		t.Errorf("distinct handles share identity %q", other)
	}
}

func TestRelease_DropsAssignmentWithoutReuse(t *testing.T) {
	m := NewMap()
	obj := fakeObject{handle: 7}

	first := m.IdentityFor(obj, 0)
	m.Release(obj.Handle())
	if m.Len() != 0 {
		t.Errorf("Len = %d after Release, want 0", m.Len())
	}

	// The counter keeps advancing: the same handle seen again is a new
	// object and must not inherit the released identity.
	second := m.IdentityFor(obj, 0)
	if second == first {
		t.Errorf("released identity %q was reissued", second)
	}
}

func TestClear(t *testing.T) {
	m := NewMap()
	m.IdentityFor(fakeObject{handle: 1}, 0)
	m.IdentityFor(fakeObject{handle: 2}, 1)
	m.Clear()
	if m.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", m.Len())
	}
}
