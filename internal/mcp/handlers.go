package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"marginalia/internal/annot"
	"marginalia/internal/config"
	"marginalia/internal/errors"
	"marginalia/internal/ops"
	"marginalia/internal/session"
)

// Handlers holds dependencies for MCP tool handlers. The session carries the
// active document's field memory and identity state; snapshot tools reach the
// database through it.
type Handlers struct {
	sess *session.Session
	cfg  *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sess *session.Session, cfg *config.Config) *Handlers {
	return &Handlers{sess: sess, cfg: cfg}
}

// Request types for each tool

// ReconcileRequest represents the arguments for annotations_reconcile.
type ReconcileRequest struct {
	Document string          `json:"document,omitempty"`
	Editor   []annot.Summary `json:"editor,omitempty"`
	PDF      []annot.Summary `json:"pdf,omitempty"`
	Snapshot bool            `json:"snapshot,omitempty"`
}

// ExportRequest represents the arguments for annotations_export.
type ExportRequest struct {
	Title   string          `json:"title,omitempty"`
	Records []annot.Summary `json:"records"`
	Format  string          `json:"format,omitempty"`
}

// RecordRequest represents the arguments for the memory_* tools, which all
// address one annotation summary.
type RecordRequest struct {
	Record annot.Summary `json:"record"`
}

// ResetRequest represents the arguments for session_reset.
type ResetRequest struct {
	Document string `json:"document"`
}

// SnapshotListRequest represents the arguments for snapshot_list.
type SnapshotListRequest struct {
	Document string `json:"document"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// SnapshotShowRequest represents the arguments for snapshot_show.
type SnapshotShowRequest struct {
	ID string `json:"id"`
}

// SnapshotPurgeRequest represents the arguments for snapshot_purge.
type SnapshotPurgeRequest struct {
	Document string `json:"document"`
	Before   int64  `json:"before,omitempty"`
	Memory   bool   `json:"memory,omitempty"`
}

// Handler implementations

// HandleReconcile handles the annotations_reconcile tool call.
func (h *Handlers) HandleReconcile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReconcileRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Reconcile(h.sess, h.cfg, ops.ReconcileInput{
		Document: input.Document,
		Editor:   input.Editor,
		PDF:      input.PDF,
		Snapshot: input.Snapshot,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the annotations_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Export(ops.ExportInput{
		Title:   input.Title,
		Records: input.Records,
		Format:  input.Format,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRemember handles the memory_remember tool call.
func (h *Handlers) HandleRemember(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecordRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	record := annot.NormalizeStableKey(input.Record)
	if err := h.sess.Remember(record); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"remembered":     record.HasText(),
		"stable_key":     record.StableKey,
		"memory_entries": h.sess.MemoryLen(),
	})
}

// HandleHydrate handles the memory_hydrate tool call.
func (h *Handlers) HandleHydrate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecordRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	record := annot.NormalizeStableKey(input.Record)
	filled := h.sess.Hydrate(record)

	return successResult(map[string]any{
		"record":   filled,
		"hydrated": filled.Text != record.Text,
	})
}

// HandleForget handles the memory_forget tool call.
func (h *Handlers) HandleForget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecordRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	record := annot.NormalizeStableKey(input.Record)
	if err := h.sess.Forget(record); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"stable_key":     record.StableKey,
		"memory_entries": h.sess.MemoryLen(),
	})
}

// HandleReset handles the session_reset tool call.
func (h *Handlers) HandleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ResetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if err := h.sess.Reset(input.Document); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"session_id": h.sess.ID(),
		"document":   h.sess.Document(),
	})
}

// HandleSnapshotList handles the snapshot_list tool call.
func (h *Handlers) HandleSnapshotList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnapshotListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	database, dbErr := h.requireDB()
	if dbErr != nil {
		return errorResult(dbErr), nil
	}

	result, err := ops.History(database, ops.HistoryInput{
		Document: input.Document,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSnapshotShow handles the snapshot_show tool call.
func (h *Handlers) HandleSnapshotShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnapshotShowRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	database, dbErr := h.requireDB()
	if dbErr != nil {
		return errorResult(dbErr), nil
	}

	result, err := ops.ShowSnapshot(database, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSnapshotPurge handles the snapshot_purge tool call.
func (h *Handlers) HandleSnapshotPurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnapshotPurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	database, dbErr := h.requireDB()
	if dbErr != nil {
		return errorResult(dbErr), nil
	}

	result, err := ops.Purge(database, ops.PurgeInput{
		Document: input.Document,
		Before:   input.Before,
		Memory:   input.Memory,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// requireDB returns the session's database handle, or an error when the
// server was started without a data directory.
func (h *Handlers) requireDB() (*sql.DB, error) {
	if database := h.sess.DB(); database != nil {
		return database, nil
	}
	return nil, errors.NewInvalidRequest("snapshot tools require a configured data directory")
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if appErr, ok := err.(*errors.Error); ok {
		errorObj := map[string]any{
			"code":    appErr.Code,
			"message": appErr.Message,
			"status":  appErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if appErr.Code != errors.ErrInternal && appErr.Details != nil {
			errorObj["details"] = appErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
