package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/tratativa/internal/ops"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"checklist", "template"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     toolDef
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"checklist_state": {
		def:     stateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleState },
	},
	"checklist_answer": {
		def:     answerToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAnswer },
	},
	"checklist_extract": {
		def:     extractToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExtract },
	},
	"checklist_clear": {
		def:     clearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClear },
	},
	"checklist_copy": {
		def:     copyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCopy },
	},
	"template_list": {
		def:     listTemplatesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListTemplates },
	},
	"template_save": {
		def:     saveTemplateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSaveTemplate },
	},
	"template_delete": {
		def:     deleteTemplateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDeleteTemplate },
	},
	"template_move": {
		def:     moveTemplateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMoveTemplate },
	},
	"template_reset": {
		def:     resetTemplatesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleResetTemplates },
	},
	"template_export": {
		def:     exportTemplatesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExportTemplates },
	},
	"template_import": {
		def:     importTemplatesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImportTemplates },
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
// Tool names follow the pattern "type_action" (e.g., "template_save" → "template").
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

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates an MCP server with the checklist and template tools.
// Tools listed in DisabledTools or belonging to DisabledTypes are not registered.
func NewServer(env ops.Env, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tratativa",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(env)

	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(env.Config.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range env.Config.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def.build(name), entry.handler(h))
	}

	return s
}

// Run serves the MCP tools over stdio.
func Run(env ops.Env, version string) error {
	return server.ServeStdio(NewServer(env, version))
}
