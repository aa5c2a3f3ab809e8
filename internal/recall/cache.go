// Package recall retains last-known annotation text and metadata across
// refresh cycles, so a momentarily blank editor record does not flash empty
// in the UI or lose its identity during merge.
package recall

import (
	"fmt"
	"strings"

	"marginalia/internal/annot"
)

// Entry is the remembered slice of a summary, stored under every alias key
// the summary can be reached by.
type Entry struct {
	Text       string      `json:"text"`
	ModifiedAt *int64      `json:"modified_at,omitempty"`
	Author     string      `json:"author,omitempty"`
	KindLabel  string      `json:"kind_label,omitempty"`
	Subtype    string      `json:"subtype,omitempty"`
	Color      string      `json:"color,omitempty"`
	MarkerRect *annot.Rect `json:"marker_rect,omitempty"`
}

// Cache is the field memory cache. It is session-scoped mutable state: all
// access happens on a single logical thread, and it must be cleared when the
// active document changes to prevent cross-document text leakage.
type Cache struct {
	entries map[string]Entry
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// AliasKeys returns every key a summary's memory entry is stored under, in
// hydration lookup order: the stable key first, then page-scoped and
// page-agnostic variants of each identifier.
func AliasKeys(s annot.Summary) []string {
	keys := make([]string, 0, 7)
	if s.StableKey != "" {
		keys = append(keys, "stable:"+s.StableKey)
	}
	if s.AnnotationID != "" {
		keys = append(keys,
			fmt.Sprintf("ann:%d:%s", s.PageIndex, s.AnnotationID),
			"ann:any:"+s.AnnotationID,
		)
	}
	if s.UID != "" {
		keys = append(keys,
			fmt.Sprintf("uid:%d:%s", s.PageIndex, s.UID),
			"uid:any:"+s.UID,
		)
	}
	if s.ID != "" {
		keys = append(keys,
			fmt.Sprintf("id:%d:%s", s.PageIndex, s.ID),
			"id:any:"+s.ID,
		)
	}
	return keys
}

// EntryFrom extracts the remembered fields of a summary.
func EntryFrom(s annot.Summary) Entry {
	return Entry{
		Text:       s.Text,
		ModifiedAt: s.ModifiedAt,
		Author:     s.Author,
		KindLabel:  s.KindLabel,
		Subtype:    s.Subtype,
		Color:      s.Color,
		MarkerRect: s.MarkerRect,
	}
}

// Remember stores the summary's entry under all its alias keys, but only
// when the summary carries non-empty text. Existing entries are overwritten.
func (c *Cache) Remember(s annot.Summary) {
	if !s.HasText() {
		return
	}
	entry := EntryFrom(s)
	for _, key := range AliasKeys(s) {
		c.entries[key] = entry
	}
}

// Put stores a pre-built entry under a single alias key. Used when reloading
// a persisted spill; Remember is the normal write path.
func (c *Cache) Put(key string, entry Entry) {
	if strings.TrimSpace(entry.Text) == "" {
		return
	}
	c.entries[key] = entry
}

// Hydrate backfills a transiently blank summary from the cache. A summary
// that already has text or a note is returned unchanged. Otherwise the first
// alias key holding non-empty cached text supplies the missing fields; the
// summary's own non-null values always win over cached ones.
func (c *Cache) Hydrate(s annot.Summary) annot.Summary {
	if s.HasText() || s.HasNote {
		return s
	}

	for _, key := range AliasKeys(s) {
		entry, ok := c.entries[key]
		if !ok || strings.TrimSpace(entry.Text) == "" {
			continue
		}

		out := s.Clone()
		out.Text = entry.Text
		if out.ModifiedAt == nil {
			out.ModifiedAt = entry.ModifiedAt
		}
		if out.Author == "" {
			out.Author = entry.Author
		}
		if out.KindLabel == "" {
			out.KindLabel = entry.KindLabel
		}
		if out.Subtype == "" {
			out.Subtype = entry.Subtype
		}
		if out.Color == "" {
			out.Color = entry.Color
		}
		if out.MarkerRect == nil {
			out.MarkerRect = entry.MarkerRect
		}
		return out
	}
	return s
}

// Forget removes the summary's entry under all its alias keys.
func (c *Cache) Forget(s annot.Summary) {
	for _, key := range AliasKeys(s) {
		delete(c.entries, key)
	}
}

// Clear drops every entry. Tied to the document-close lifecycle.
func (c *Cache) Clear() {
	c.entries = make(map[string]Entry)
}

// Len reports the number of stored alias entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Snapshot returns a copy of the cache contents keyed by alias key. Used by
// the session spill to persist entries.
func (c *Cache) Snapshot() map[string]Entry {
	out := make(map[string]Entry, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}
