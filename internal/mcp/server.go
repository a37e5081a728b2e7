// Package mcp exposes the organiser's save flow as an MCP tool.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sgx-labs/aiorg/internal/credential"
	"github.com/sgx-labs/aiorg/internal/organiser"
)

// ServerName is the implementation name reported to clients.
const ServerName = "AI Organiser MCP"

// ToolName is the single tool this server registers.
const ToolName = "ai_organiser_save"

// Version is set by the caller (main) before building servers.
var Version = "dev"

// Saver runs one save call. *organiser.Service implements it.
type Saver interface {
	Save(ctx context.Context, req organiser.Request, src *credential.Sources) organiser.Outcome
}

// NewServer builds an MCP server whose tool calls resolve credentials from
// src. src is nil outside HTTP, leaving only the fallback secret.
func NewServer(svc Saver, src *credential.Sources) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: Version,
	}, &mcp.ServerOptions{
		Instructions: Instructions,
	})

	h := &handler{svc: svc, src: src}
	registerTools(server, h)
	return server
}

// ServeStdio runs a server on stdin/stdout until ctx is done or the client
// disconnects.
func ServeStdio(ctx context.Context, svc Saver) error {
	return NewServer(svc, nil).Run(ctx, &mcp.StdioTransport{})
}

func registerTools(server *mcp.Server, h *handler) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: "Save a text message to AI Organiser as a note. Only call this when the user's latest message asks to save (e.g. 'сохрани это', 'сохрани в «Проект»', 'save this').\n\nArgs:\n  body: Exact copy of your previous assistant message. Never summarize or rephrase.\n  raw_utterance: The user's latest message, unchanged.\n  project_name: Project to save into, as the user wrote it. Omit for Inbox.\n  title: Optional note title.\n  source_url: Optional link to the conversation.\n\nReturns JSON with saved/skipped, error_category, and a hint on how to report the result.",
		Annotations: &mcp.ToolAnnotations{
			Title:           "Save to AI Organiser",
			ReadOnlyHint:    false,
			DestructiveHint: boolPtr(false),
			IdempotentHint:  false,
			OpenWorldHint:   boolPtr(true),
		},
	}, h.handleSave)
}

// Tool input types

type saveInput struct {
	Body         string `json:"body" jsonschema:"Exact copy of the previous assistant message"`
	RawUtterance string `json:"raw_utterance,omitempty" jsonschema:"The user's latest message, unchanged. Always pass it; without it nothing is saved"`
	ProjectName  string `json:"project_name,omitempty" jsonschema:"Project name as the user wrote it; omit for Inbox"`
	Title        string `json:"title,omitempty" jsonschema:"Optional note title"`
	SourceURL    string `json:"source_url,omitempty" jsonschema:"Optional link to the conversation"`
}

type handler struct {
	svc Saver
	src *credential.Sources
}

// Tool handlers

func (h *handler) handleSave(ctx context.Context, req *mcp.CallToolRequest, input saveInput) (*mcp.CallToolResult, any, error) {
	out := h.svc.Save(ctx, organiser.Request{
		Body:         input.Body,
		RawUtterance: input.RawUtterance,
		Project:      input.ProjectName,
		Title:        input.Title,
		SourceURL:    input.SourceURL,
	}, h.src)

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		out.Response = nil
		data, _ = json.MarshalIndent(out, "", "  ")
	}
	return textResult(string(data)), nil, nil
}

// Helpers

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func boolPtr(b bool) *bool { return &b }
