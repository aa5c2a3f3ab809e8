// Package identity assigns stable runtime identifiers to opaque editor
// objects that lack any document- or application-level key.
//
// Go has no weak references usable for arbitrary host objects, so the map is
// an explicit handle table: the host registers a stable handle per object,
// the map hands out monotonic runtime ids, and the host signals disposal via
// Release so assignments never outlive their objects.
package identity

import "fmt"

// Handle is the host-maintained stable token for one live editor object.
type Handle uint64

// Keyed exposes the identifier fields the map inspects before falling back
// to a generated runtime id.
type Keyed interface {
	// Handle returns the host's stable token for this object.
	Handle() Handle

	// UID returns the cross-session persistent id, or "" when unassigned.
	UID() string

	// AnnotationElementID returns the document-native element id, or "".
	AnnotationElementID() string

	// RawID returns the editor's source-local id, or "".
	RawID() string
}

// Map assigns runtime identities to editor objects. Session-scoped, single
// logical thread, cleared on document switch.
type Map struct {
	runtime map[Handle]string
	counter uint64
}

// NewMap returns an empty identity map.
func NewMap() *Map {
	return &Map{runtime: make(map[Handle]string)}
}

// IdentityFor resolves a stable identity for the object: its uid, else its
// annotation element id, else "editor:<page>:<rawId>", else a cached runtime
// id of the form "editor:<page>:<counter>" generated on first encounter.
func (m *Map) IdentityFor(obj Keyed, pageIndex int) string {
	if uid := obj.UID(); uid != "" {
		return uid
	}
	if el := obj.AnnotationElementID(); el != "" {
		return el
	}
	if raw := obj.RawID(); raw != "" {
		return fmt.Sprintf("editor:%d:%s", pageIndex, raw)
	}

	h := obj.Handle()
	if id, ok := m.runtime[h]; ok {
		return id
	}
	m.counter++
	id := fmt.Sprintf("editor:%d:%d", pageIndex, m.counter)
	m.runtime[h] = id
	return id
}

// Release drops the runtime id for a disposed object.
func (m *Map) Release(h Handle) {
	delete(m.runtime, h)
}

// Clear drops all assignments. Tied to the document-close lifecycle. The
// counter keeps advancing so released ids are never reissued within a
// process.
func (m *Map) Clear() {
	m.runtime = make(map[Handle]string)
}

// Len reports the number of live runtime assignments.
func (m *Map) Len() int {
	return len(m.runtime)
}
