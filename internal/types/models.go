// internal/types/models.go
package types

import "encoding/json"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type ConversationMessage struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

type ConversationSummary struct {
	Topic        string   `json:"topic"`
	KeyPoints    []string `json:"keyPoints"`
	Entities     []string `json:"entities"`
	Actions      []string `json:"actions"`
	MessageCount int      `json:"messageCount"`
	ToolsUsed    []string `json:"toolsUsed"`
	TokenCount   int      `json:"tokenCount,omitempty"`
}

type CompactedConversation struct {
	Summary    ConversationSummary   `json:"summary"`
	Messages   []ConversationMessage `json:"messages"`
	RawContent string                `json:"rawContent,omitempty"`
	SourceType string                `json:"sourceType,omitempty"`
}

// ToolResult is the envelope every tool call returns.
type ToolResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}
