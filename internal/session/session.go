// Package session scopes the engine's mutable state to one open document.
//
// The field memory cache and the ephemeral identity map live here instead of
// as package-level singletons: a session is constructed on document open,
// cleared on close/switch, and passed by reference to every engine call. All
// access happens on a single logical thread.
package session

import (
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"marginalia/internal/annot"
	"marginalia/internal/db"
	"marginalia/internal/errors"
	"marginalia/internal/identity"
	"marginalia/internal/recall"
)

// Session holds the per-document reconciliation state.
type Session struct {
	id         string
	document   string
	memory     *recall.Cache
	identities *identity.Map
	database   *sql.DB // optional spill; nil keeps memory purely in-process
}

// New opens a session for the given document fingerprint. When a database is
// provided, memory entries spilled by a previous session for the same
// document are reloaded so hydration survives an application restart.
func New(document string, database *sql.DB) (*Session, error) {
	document = strings.TrimSpace(document)
	if document == "" {
		return nil, errors.NewInvalidRequest("document is required")
	}

	s := &Session{
		id:         generateULID(),
		document:   document,
		memory:     recall.New(),
		identities: identity.NewMap(),
		database:   database,
	}
	if err := s.loadSpill(); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session's ULID.
func (s *Session) ID() string { return s.id }

// Document returns the active document fingerprint.
func (s *Session) Document() string { return s.document }

// Identities returns the session's ephemeral identity map.
func (s *Session) Identities() *identity.Map { return s.identities }

// DB returns the session's database handle, nil when spilling is disabled.
func (s *Session) DB() *sql.DB { return s.database }

// MemoryLen reports the number of alias entries currently cached.
func (s *Session) MemoryLen() int { return s.memory.Len() }

// Remember stores the summary's text/metadata in the field memory cache and
// writes it through to the spill. Summaries without text are ignored.
func (s *Session) Remember(summary annot.Summary) error {
	if !summary.HasText() {
		return nil
	}
	s.memory.Remember(summary)

	if s.database == nil {
		return nil
	}
	entry := recall.EntryFrom(summary)
	for _, key := range recall.AliasKeys(summary) {
		if err := db.UpsertMemoryEntry(s.database, s.document, key, entry); err != nil {
			return err
		}
	}
	return nil
}

// Hydrate backfills a transiently blank summary from the memory cache.
func (s *Session) Hydrate(summary annot.Summary) annot.Summary {
	return s.memory.Hydrate(summary)
}

// Forget drops the summary's memory entries from the cache and the spill.
func (s *Session) Forget(summary annot.Summary) error {
	s.memory.Forget(summary)

	if s.database == nil {
		return nil
	}
	for _, key := range recall.AliasKeys(summary) {
		if err := db.DeleteMemoryEntry(s.database, s.document, key); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseEditorObject signals that the host disposed an editor object, so
// its runtime identity assignment can be dropped.
func (s *Session) ReleaseEditorObject(h identity.Handle) {
	s.identities.Release(h)
}

// Reset switches the session to a different document: both caches are
// cleared to prevent cross-document text and identity leakage, a fresh
// session id is issued, and the new document's spill is loaded.
func (s *Session) Reset(document string) error {
	document = strings.TrimSpace(document)
	if document == "" {
		return errors.NewInvalidRequest("document is required")
	}

	s.memory.Clear()
	s.identities.Clear()
	s.id = generateULID()
	s.document = document
	return s.loadSpill()
}

// Close clears both caches. The database handle is owned by the caller and
// stays open.
func (s *Session) Close() {
	s.memory.Clear()
	s.identities.Clear()
}

// loadSpill hydrates the in-process cache from persisted memory entries.
func (s *Session) loadSpill() error {
	if s.database == nil {
		return nil
	}
	entries, err := db.LoadMemoryEntries(s.database, s.document)
	if err != nil {
		return err
	}
	for key, entry := range entries {
		s.memory.Put(key, entry)
	}
	return nil
}

// generateULID returns a new ULID for session identity. ULID generation can
// only fail on entropy exhaustion, which crypto/rand does not exhibit.
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0)).String()
}
