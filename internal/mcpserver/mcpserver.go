// Package mcpserver exposes the tool registry and prompts over the Model
// Context Protocol, for clients such as Claude Code that speak MCP on stdio.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Asar007/claude-code-compact-mcp/internal/prompts"
	"github.com/Asar007/claude-code-compact-mcp/internal/tools"
	"github.com/Asar007/claude-code-compact-mcp/internal/types"
)

// Name is the implementation name reported during the MCP handshake.
const Name = "claude-code-compact"

// New builds an MCP server offering every tool in registry and every prompt.
func New(registry *tools.Registry, version string, logger *slog.Logger) (*mcp.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)

	for _, t := range registry.All() {
		var schema map[string]any
		if err := json.Unmarshal(t.Parameters(), &schema); err != nil {
			return nil, fmt.Errorf("tool %s: parse parameters: %w", t.Name(), err)
		}
		server.AddTool(&mcp.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: schema,
		}, toolHandler(registry, t.Name(), logger))
	}

	for _, p := range prompts.List() {
		server.AddPrompt(toPrompt(p), getPrompt)
	}
	return server, nil
}

// toolHandler runs a registry tool. Tool failures are reported in-band
// with IsError so the client's model can read the message.
func toolHandler(registry *tools.Registry, name string, logger *slog.Logger) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := registry.Call(ctx, name, req.Params.Arguments)
		if !result.Success {
			logger.Info("mcp tool call failed", "tool", name, "error", result.Error)
			text, _ := json.Marshal(types.ToolResult{Error: result.Error})
			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
				IsError: true,
			}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: indent(result.Data)}},
		}, nil
	}
}

func indent(data json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}

func toPrompt(p prompts.Prompt) *mcp.Prompt {
	out := &mcp.Prompt{Name: p.Name, Description: p.Description}
	for _, a := range p.Arguments {
		out.Arguments = append(out.Arguments, &mcp.PromptArgument{
			Name:        a.Name,
			Description: a.Description,
			Required:    a.Required,
		})
	}
	return out
}

func getPrompt(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	res, err := prompts.Get(req.Params.Name, req.Params.Arguments)
	if err != nil {
		return nil, err
	}
	out := &mcp.GetPromptResult{Description: res.Description}
	for _, m := range res.Messages {
		out.Messages = append(out.Messages, &mcp.PromptMessage{
			Role:    mcp.Role(m.Role),
			Content: &mcp.TextContent{Text: m.Text},
		})
	}
	return out, nil
}
