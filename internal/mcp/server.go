package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"marginalia/internal/config"
	"marginalia/internal/session"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"annotations_reconcile": {
		def:     reconcileToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReconcile },
	},
	"annotations_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"memory_remember": {
		def:     rememberToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRemember },
	},
	"memory_hydrate": {
		def:     hydrateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHydrate },
	},
	"memory_forget": {
		def:     forgetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleForget },
	},
	"session_reset": {
		def:     resetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReset },
	},
	"snapshot_list": {
		def:     snapshotListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnapshotList },
	},
	"snapshot_show": {
		def:     snapshotShowToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnapshotShow },
	},
	"snapshot_purge": {
		def:     snapshotPurgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnapshotPurge },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the annotation tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(sess *session.Session, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"marginalia",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(sess, cfg)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(sess *session.Session, cfg *config.Config, version string) error {
	s := NewServer(sess, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
