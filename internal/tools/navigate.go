package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Asar007/claude-code-compact-mcp/internal/config"
	"github.com/Asar007/claude-code-compact-mcp/internal/publish"
	"github.com/Asar007/claude-code-compact-mcp/pkg/navigate"
)

// NavigateClient is the subset of *navigate.Client the tools use.
type NavigateClient interface {
	Publish(ctx context.Context, document any, metadata map[string]any) (*navigate.PublishResult, error)
	Authenticate(ctx context.Context) (navigate.Credential, error)
	ThreadURL(threadID string) string
}

// PushToNavigate publishes a visualization into a new Navigate Chat thread.
// A nil client means the connection is not configured.
type PushToNavigate struct {
	client NavigateClient
}

func NewPushToNavigate(client NavigateClient) *PushToNavigate {
	return &PushToNavigate{client: client}
}

func (p *PushToNavigate) Name() string { return "push_to_navigate" }
func (p *PushToNavigate) Description() string {
	return "Push visualization to Navigate Chat API. Creates a new thread and streams the visualization. " +
		"Requires NAVIGATE_CHAT_API_URL, NAVIGATE_CHAT_EMAIL, and NAVIGATE_CHAT_PASSWORD environment variables."
}
func (p *PushToNavigate) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"visualization": {"type": "object", "description": "Visualization JSON data (mindmap, sequence, knowledge_graph, or timeline)"},
			"metadata": {"type": "object", "description": "Optional metadata for the thread"},
			"type": {"type": "string", "enum": ["mindmap", "sequence", "knowledge_graph", "timeline"], "description": "Optional type, used with strict"},
			"strict": {"type": "boolean", "description": "Reject documents that do not match their schema"}
		},
		"required": ["visualization"]
	}`)
}

type pushArgs struct {
	Visualization json.RawMessage `json:"visualization"`
	Metadata      map[string]any  `json:"metadata"`
	Type          string          `json:"type"`
	Strict        bool            `json:"strict"`
}

// PushResult describes the remote thread a visualization was pushed to.
type PushResult struct {
	ThreadID  string `json:"threadId"`
	ThreadURL string `json:"threadUrl"`
	Success   bool   `json:"success"`
}

func (p *PushToNavigate) Execute(ctx context.Context, args json.RawMessage) (any, error) {
	if p.client == nil {
		return nil, config.ErrNavigateNotConfigured
	}
	var params pushArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("failed to push to Navigate Chat: parse args: %w", err)
	}
	doc, _, err := documentArgs(params.Visualization, params.Type, params.Strict)
	if err != nil {
		return nil, fmt.Errorf("failed to push to Navigate Chat: %w", err)
	}

	out := publish.One(ctx, p.client, publish.Item{Document: doc, Metadata: params.Metadata})
	if out.Err != nil {
		return nil, fmt.Errorf("failed to push to Navigate Chat: %w", out.Err)
	}
	return &PushResult{
		ThreadID:  out.ThreadID,
		ThreadURL: p.client.ThreadURL(out.ThreadID),
		Success:   out.Succeeded,
	}, nil
}

// TestNavigateConnection checks that the configured credentials log in.
type TestNavigateConnection struct {
	client NavigateClient
}

func NewTestNavigateConnection(client NavigateClient) *TestNavigateConnection {
	return &TestNavigateConnection{client: client}
}

func (t *TestNavigateConnection) Name() string { return "test_navigate_connection" }
func (t *TestNavigateConnection) Description() string {
	return "Verify the Navigate Chat API credentials by logging in"
}
func (t *TestNavigateConnection) Parameters() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *TestNavigateConnection) Execute(ctx context.Context, _ json.RawMessage) (any, error) {
	if t.client == nil {
		return nil, config.ErrNavigateNotConfigured
	}
	if _, err := t.client.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return map[string]bool{"authenticated": true}, nil
}
