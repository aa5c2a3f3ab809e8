package annot

// SameLogicalAnnotation decides whether two candidate records denote the same
// real-world annotation. Cross-page records are never equivalent. Within a
// page the first matching rule wins:
//
//  1. Both carry a document-native id: equal iff the ids match.
//  2. Both carry a persistent uid: equal iff the uids match.
//  3. Exactly one side carries an annotation id, or exactly one side carries
//     a uid (typical right after creation, before the save round-trip
//     assigns a native id): equal iff the texts are compatible and the
//     markup geometry matches.
//  4. Neither side carries any identifier: equal iff (id, source) match
//     exactly, or the markup geometry matches.
//
// Identifiers are authoritative when comparably present; asymmetric
// identification falls back to geometry gated by text compatibility; with no
// identifiers at all, exact source-local identity or geometry is the last
// resort.
func SameLogicalAnnotation(a, b Summary) bool {
	if a.PageIndex != b.PageIndex {
		return false
	}

	aAnn := a.AnnotationID != ""
	bAnn := b.AnnotationID != ""
	if aAnn && bAnn {
		return a.AnnotationID == b.AnnotationID
	}

	aUID := a.UID != ""
	bUID := b.UID != ""
	if aUID && bUID {
		return a.UID == b.UID
	}

	if aAnn != bAnn || aUID != bUID {
		return textsCompatible(a.Text, b.Text) && LikelySameMarkup(a, b)
	}

	// No identifiers on either side.
	if a.ID == b.ID && a.Source == b.Source {
		return true
	}
	return LikelySameMarkup(a, b)
}
