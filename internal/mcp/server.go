package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tally/internal/config"
	"tally/internal/ops"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{
	"session", "log", "todo", "goal",
	"category", "scope", "rule", "todolist",
	"snapshot", "journal", "sync",
}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"session_start": {
		def:     sessionStartToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionStart },
	},
	"session_stop": {
		def:     sessionStopToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionStop },
	},
	"session_cancel": {
		def:     sessionCancelToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionCancel },
	},
	"session_list": {
		def:     sessionListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionList },
	},
	"log_save": {
		def:     logSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogSave },
	},
	"log_delete": {
		def:     logDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogDelete },
	},
	"log_list": {
		def:     logListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogList },
	},
	"log_punch": {
		def:     logPunchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogPunch },
	},
	"todo_save": {
		def:     todoSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTodoSave },
	},
	"todo_toggle": {
		def:     todoToggleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTodoToggle },
	},
	"todo_delete": {
		def:     todoDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTodoDelete },
	},
	"todo_nudge": {
		def:     todoNudgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTodoNudge },
	},
	"todo_list": {
		def:     todoListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTodoList },
	},
	"goal_save": {
		def:     goalSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGoalSave },
	},
	"goal_delete": {
		def:     goalDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGoalDelete },
	},
	"goal_status": {
		def:     goalStatusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGoalStatus },
	},
	"goal_list": {
		def:     goalListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGoalList },
	},
	"category_save": {
		def:     categorySaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategorySave },
	},
	"category_delete": {
		def:     categoryDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategoryDelete },
	},
	"scope_save": {
		def:     scopeSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleScopeSave },
	},
	"scope_delete": {
		def:     scopeDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleScopeDelete },
	},
	"rule_save": {
		def:     ruleSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRuleSave },
	},
	"rule_delete": {
		def:     ruleDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRuleDelete },
	},
	"todolist_save": {
		def:     todolistSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTodolistSave },
	},
	"todolist_delete": {
		def:     todolistDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTodolistDelete },
	},
	"snapshot_export": {
		def:     snapshotExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnapshotExport },
	},
	"snapshot_import": {
		def:     snapshotImportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSnapshotImport },
	},
	"journal_export": {
		def:     journalExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleJournalExport },
	},
	"sync_upload": {
		def:     syncUploadToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSyncUpload },
	},
	"sync_download": {
		def:     syncDownloadToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSyncDownload },
	},
	"sync_status": {
		def:     syncStatusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSyncStatus },
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

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "log_save" → "log").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	// Build set of types for O(1) lookup
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	// Collect tools belonging to disabled types
	tools := make([]string, 0)
	for name := range toolRegistry {
		typ := GetTypeForTool(name)
		if typeSet[typ] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with Tally tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(env *ops.Env, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tally",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(env)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(env *ops.Env, cfg *config.Config, version string) error {
	s := NewServer(env, cfg, version)
	return server.ServeStdio(s)
}
