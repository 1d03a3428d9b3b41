package navigate

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	// EventEnd is the SSE event name the remote side sends when a run is complete.
	EventEnd = "end"

	// SourceTag is always present under the "source" key of thread metadata.
	SourceTag = "claude-code-compact"

	// DefaultGraphID is the graph a published thread runs against.
	DefaultGraphID = "agent"

	// DefaultTokenTTL is how long a credential is trusted after login. The
	// server issues tokens valid for an hour; the margin keeps a token from
	// expiring mid-publish.
	DefaultTokenTTL = 55 * time.Minute
)

// Config holds the connection settings for the Navigate Chat API.
type Config struct {
	BaseURL  string
	Email    string
	Password string

	// TokenTTL overrides DefaultTokenTTL when positive.
	TokenTTL time.Duration

	// Metadata is merged under caller metadata on every published thread.
	Metadata map[string]any

	// HTTPClient is used for every request. It must not carry a Timeout,
	// which would cut long-running streams; bound calls with a context.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Credential is a bearer token issued by the login endpoint.
type Credential struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"-"`
}

// ThreadCreate is the request body for opening a thread.
type ThreadCreate struct {
	GraphID      string         `json:"graph_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	InitialState map[string]any `json:"initial_state,omitempty"`
}

// Thread describes a remote conversation thread.
type Thread struct {
	ThreadID    string         `json:"thread_id"`
	AssistantID string         `json:"assistant_id,omitempty"`
	Status      string         `json:"status,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	UserID      string         `json:"user_id,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
}

// StreamEvent is one decoded SSE frame.
type StreamEvent struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// PublishResult is the outcome of one Publish call.
type PublishResult struct {
	ThreadID  string `json:"thread_id"`
	Succeeded bool   `json:"success"`
}

// runCreate is the request body for streaming a run.
type runCreate struct {
	Input      runInput `json:"input"`
	Stream     bool     `json:"stream"`
	StreamMode []string `json:"stream_mode"`
}

type runInput struct {
	Messages []runMessage `json:"messages"`
}

type runMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}
