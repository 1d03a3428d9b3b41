// Package tools implements the tool surface: each tool takes JSON
// arguments and returns a {success, data, error} result.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Asar007/claude-code-compact-mcp/internal/extract"
	"github.com/Asar007/claude-code-compact-mcp/internal/metrics"
	"github.com/Asar007/claude-code-compact-mcp/internal/types"
)

// Tool defines the interface for an executable tool. Execute returns a
// JSON-serializable result.
type Tool interface {
	Name() string
	Description() string
	Parameters() json.RawMessage
	Execute(ctx context.Context, args json.RawMessage) (any, error)
}

// Definition describes a tool for listing.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// Registry holds registered tools and provides lookup.
type Registry struct {
	tools  map[string]Tool
	logger *slog.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{tools: make(map[string]Tool), logger: logger}
}

// Register adds a tool to the registry.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// All returns all registered tools sorted by name.
func (r *Registry) All() []Tool {
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Definitions returns the listing form of every registered tool.
func (r *Registry) Definitions() []Definition {
	all := r.All()
	out := make([]Definition, len(all))
	for i, t := range all {
		out[i] = Definition{Name: t.Name(), Description: t.Description(), InputSchema: t.Parameters()}
	}
	return out
}

// Call runs the named tool and wraps the outcome in a ToolResult. Tool
// failures are reported in the result, never as a Go error.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) types.ToolResult {
	t, ok := r.tools[name]
	if !ok {
		return types.ToolResult{Error: fmt.Sprintf("unknown tool: %s", name)}
	}
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	start := time.Now()
	data, err := t.Execute(ctx, args)
	duration := time.Since(start)
	metrics.ObserveToolCall(name, err == nil, duration)

	if err != nil {
		r.logger.Warn("tool failed", "tool", name, "duration", duration, "error", err)
		return types.ToolResult{Error: err.Error()}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return types.ToolResult{Error: fmt.Sprintf("encode %s result: %v", name, err)}
	}
	r.logger.Debug("tool executed", "tool", name, "duration", duration)
	return types.ToolResult{Success: true, Data: raw}
}

// Deps carries what the built-in tools need. Navigate may be nil when the
// connection is not configured; the Navigate tools then report that.
type Deps struct {
	Extractor      *extract.Extractor
	OutputDir      string
	TranscriptsDir string
	Navigate       NavigateClient
	Logger         *slog.Logger
}

// NewDefaultRegistry registers every built-in tool.
func NewDefaultRegistry(d Deps) *Registry {
	r := NewRegistry(d.Logger)
	r.Register(NewCompactConversation(d.Extractor))
	r.Register(NewExportJSON(d.OutputDir))
	r.Register(NewPushToNavigate(d.Navigate))
	r.Register(NewListVisualizations(d.OutputDir))
	r.Register(NewListTranscripts(d.TranscriptsDir))
	r.Register(NewTestNavigateConnection(d.Navigate))
	r.Register(ValidateVisualization{})
	return r
}
