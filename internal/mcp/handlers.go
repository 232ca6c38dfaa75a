package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tratativa/internal/errors"
	"github.com/hpungsan/tratativa/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	env ops.Env
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(env ops.Env) *Handlers {
	return &Handlers{env: env}
}

// HandleState handles the checklist_state tool call.
func (h *Handlers) HandleState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return result(ops.Snapshot(ctx, h.env))
}

// HandleAnswer handles the checklist_answer tool call.
func (h *Handlers) HandleAnswer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.AnswerInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Answer(ctx, h.env, input))
}

// HandleExtract handles the checklist_extract tool call.
func (h *Handlers) HandleExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ExtractInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Extract(ctx, h.env, input))
}

// HandleClear handles the checklist_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return result(ops.Clear(ctx, h.env))
}

// HandleCopy handles the checklist_copy tool call.
func (h *Handlers) HandleCopy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.CopyInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.Copy(ctx, h.env, input))
}

// HandleListTemplates handles the template_list tool call.
func (h *Handlers) HandleListTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return result(ops.ListTemplates(ctx, h.env))
}

// HandleSaveTemplate handles the template_save tool call.
func (h *Handlers) HandleSaveTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.SaveTemplateInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.SaveTemplate(ctx, h.env, input))
}

// HandleDeleteTemplate handles the template_delete tool call.
func (h *Handlers) HandleDeleteTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.DeleteTemplateInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.DeleteTemplate(ctx, h.env, input))
}

// HandleMoveTemplate handles the template_move tool call.
func (h *Handlers) HandleMoveTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.MoveTemplateInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.MoveTemplate(ctx, h.env, input))
}

// HandleResetTemplates handles the template_reset tool call.
func (h *Handlers) HandleResetTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return result(ops.ResetTemplates(ctx, h.env))
}

// HandleExportTemplates handles the template_export tool call.
func (h *Handlers) HandleExportTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ExportTemplatesInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.ExportTemplates(ctx, h.env, input))
}

// HandleImportTemplates handles the template_import tool call.
func (h *Handlers) HandleImportTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ops.ImportTemplatesInput](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	return result(ops.ImportTemplates(ctx, h.env, input))
}

// Result helpers

// result turns an operation's return values into a tool result.
func result[T any](data T, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(data)
}

// errorResult creates an MCP error result from any error.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var tErr *errors.TratativaError
	if stderrors.As(err, &tErr) {
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": tErr.Message,
			"status":  tErr.Status,
		}
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
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
