package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// toolDef describes a tool without its name; the registry key names it.
type toolDef struct {
	description string
	options     []mcp.ToolOption
}

func (d toolDef) build(name string) mcp.Tool {
	opts := append([]mcp.ToolOption{mcp.WithDescription(d.description)}, d.options...)
	return mcp.NewTool(name, opts...)
}

var stateToolDef = toolDef{
	description: "Return the current checklist session: answers with per-field status grouped by section, " +
		"progress, pasted text, extracted contacts, the joined email list and the generated code and comment.",
}

var answerToolDef = toolDef{
	description: "Set checklist answers by question id and return the updated session. " +
		"A blank value clears the answer. Unknown question ids reject the whole call.",
	options: []mcp.ToolOption{
		mcp.WithObject("answers",
			mcp.Required(),
			mcp.Description("Map of question id to answer text, e.g. {\"fase\": \"Hotline\", \"card_aprovado\": \"Sim\"}"),
		),
	},
}

var extractToolDef = toolDef{
	description: "Replace the pasted contact text and re-extract contacts from it. " +
		"Spreadsheet rows (8+ tab-separated columns) use column 3 as name and column 4 as email; " +
		"other lines are scanned for an email. Blank text clears the contacts.",
	options: []mcp.ToolOption{
		mcp.WithString("raw_text",
			mcp.Required(),
			mcp.Description("Pasted text, one contact per line"),
		),
	},
}

var clearToolDef = toolDef{
	description: "Clear all answers, pasted text and contacts. Templates are kept.",
}

var copyToolDef = toolDef{
	description: "Copy the generated code, the comment or the email list to the system clipboard of the host.",
	options: []mcp.ToolOption{
		mcp.WithString("target",
			mcp.Required(),
			mcp.Enum("code", "comment", "emails"),
			mcp.Description("What to copy"),
		),
	},
}

var listTemplatesToolDef = toolDef{
	description: "List the stored templates in priority order. The first template whose conditions all equal the answers wins.",
}

var saveTemplateToolDef = toolDef{
	description: "Create a template, or replace one by id with mode=replace. " +
		"Conditions map question ids to the exact answer required.",
	options: []mcp.ToolOption{
		mcp.WithObject("template",
			mcp.Required(),
			mcp.Description("Template object: {id?, name, code, comment, conditions: {question_id: answer}}"),
		),
		mcp.WithString("mode",
			mcp.Enum("error", "replace"),
			mcp.Description("What to do when the id exists (default: error)"),
		),
	},
}

var deleteTemplateToolDef = toolDef{
	description: "Delete a template by id.",
	options: []mcp.ToolOption{
		mcp.WithString("id", mcp.Required(), mcp.Description("Template id")),
	},
}

var moveTemplateToolDef = toolDef{
	description: "Move a template to a new 0-based position in the priority order.",
	options: []mcp.ToolOption{
		mcp.WithString("id", mcp.Required(), mcp.Description("Template id")),
		mcp.WithNumber("position", mcp.Required(), mcp.Description("Target 0-based position")),
	},
}

var resetTemplatesToolDef = toolDef{
	description: "Replace all stored templates with the built-in defaults.",
}

var exportTemplatesToolDef = toolDef{
	description: "Export the templates to a .jsonl or .yaml file. " +
		"Without a path the file goes to ~/.tratativa/exports.",
	options: []mcp.ToolOption{
		mcp.WithString("path", mcp.Description("Destination file path (.jsonl, .yaml or .yml)")),
		mcp.WithString("format",
			mcp.Enum("jsonl", "yaml"),
			mcp.Description("Format used for the default path (default: jsonl)"),
		),
	},
}

var importTemplatesToolDef = toolDef{
	description: "Import templates from a .jsonl or .yaml export. " +
		"append adds new ids and skips existing ones; replace swaps the whole list only if every record is valid.",
	options: []mcp.ToolOption{
		mcp.WithString("path", mcp.Required(), mcp.Description("Source file path")),
		mcp.WithString("mode",
			mcp.Enum("append", "replace"),
			mcp.Description("Import mode (default: append)"),
		),
	},
}
