package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// recordSchema is the JSON schema fragment for one annotation summary, used
// by array-valued tool arguments.
var recordSchema = map[string]any{
	"type":        "object",
	"description": "One annotation summary (id, stable_key, page_index, text, identifiers, marker_rect, ...)",
}

var reconcileToolDef = mcp.NewTool("annotations_reconcile",
	mcp.WithDescription("Fold editor and pdf annotation candidates into one canonical, stably-keyed list. Backfills transiently blank text from the session's field memory and remembers the results for the next cycle."),
	mcp.WithString("document", mcp.Description("Document fingerprint; must match the session's active document when set")),
	mcp.WithArray("editor", mcp.Description("Candidates from the live editor model"), mcp.Items(recordSchema)),
	mcp.WithArray("pdf", mcp.Description("Candidates from the parsed document object graph"), mcp.Items(recordSchema)),
	mcp.WithBoolean("snapshot", mcp.Description("Record the canonical result as a history snapshot")),
)

var exportToolDef = mcp.NewTool("annotations_export",
	mcp.WithDescription("Render a canonical annotation list as a markdown document grouped by page, or as HTML."),
	mcp.WithString("title", mcp.Description("Document title; defaults to 'Annotations'")),
	mcp.WithArray("records", mcp.Required(), mcp.Description("Canonical records in display order"), mcp.Items(recordSchema)),
	mcp.WithString("format", mcp.Description("Output format: markdown (default) or html")),
)

var rememberToolDef = mcp.NewTool("memory_remember",
	mcp.WithDescription("Store an annotation's text and metadata in the session's field memory under every alias key. Records without text are ignored."),
	mcp.WithObject("record", mcp.Required(), mcp.Description("The annotation summary to remember")),
)

var hydrateToolDef = mcp.NewTool("memory_hydrate",
	mcp.WithDescription("Backfill a transiently blank annotation from the session's field memory. Records that already carry text or a note are returned unchanged."),
	mcp.WithObject("record", mcp.Required(), mcp.Description("The annotation summary to hydrate")),
)

var forgetToolDef = mcp.NewTool("memory_forget",
	mcp.WithDescription("Drop an annotation's field memory entries under every alias key, in the cache and the persisted spill."),
	mcp.WithObject("record", mcp.Required(), mcp.Description("The annotation summary to forget")),
)

var resetToolDef = mcp.NewTool("session_reset",
	mcp.WithDescription("Switch the session to a different document. Clears the field memory and identity caches, issues a fresh session id, and reloads the new document's persisted memory."),
	mcp.WithString("document", mcp.Required(), mcp.Description("The new document fingerprint")),
)

var snapshotListToolDef = mcp.NewTool("snapshot_list",
	mcp.WithDescription("List stored reconciliation snapshots for a document, newest first, without payloads."),
	mcp.WithString("document", mcp.Required(), mcp.Description("Document fingerprint")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Pagination offset")),
)

var snapshotShowToolDef = mcp.NewTool("snapshot_show",
	mcp.WithDescription("Fetch one stored snapshot by id with its canonical record list decoded."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Snapshot ULID")),
)

var snapshotPurgeToolDef = mcp.NewTool("snapshot_purge",
	mcp.WithDescription("Remove stored snapshots for a document, optionally only those taken before a cutoff, optionally clearing the document's persisted field memory too."),
	mcp.WithString("document", mcp.Required(), mcp.Description("Document fingerprint")),
	mcp.WithNumber("before", mcp.Description("Unix timestamp cutoff; zero removes all snapshots")),
	mcp.WithBoolean("memory", mcp.Description("Also clear the document's persisted memory entries")),
)
