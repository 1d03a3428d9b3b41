package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Asar007/claude-code-compact-mcp/internal/export"
	"github.com/Asar007/claude-code-compact-mcp/internal/extract"
	"github.com/Asar007/claude-code-compact-mcp/internal/types"
)

// CompactConversation extracts messages and a summary from a transcript
// file, pasted conversation text, or a message list.
type CompactConversation struct {
	extractor *extract.Extractor
}

func NewCompactConversation(extractor *extract.Extractor) *CompactConversation {
	if extractor == nil {
		extractor = &extract.Extractor{}
	}
	return &CompactConversation{extractor: extractor}
}

func (c *CompactConversation) Name() string { return "compact_conversation" }
func (c *CompactConversation) Description() string {
	return "Extract and summarize a Claude conversation. Supports Claude Code JSONL transcripts and plain text " +
		"conversations (Human:/Assistant: format). Returns topic, key points, entities, and actions for visualization."
}
func (c *CompactConversation) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"source": {"type": "string", "description": "Path to a JSONL transcript file, or pasted conversation text"},
			"isFilePath": {"type": "boolean", "description": "Whether source is a file path. Auto-detected from a .jsonl suffix when omitted"},
			"messages": {"type": "array", "description": "Already parsed messages ({role, content}) to summarize instead of source"}
		}
	}`)
}

type compactArgs struct {
	Source     string                      `json:"source"`
	IsFilePath *bool                       `json:"isFilePath"`
	Messages   []types.ConversationMessage `json:"messages"`
}

func (c *CompactConversation) Execute(_ context.Context, args json.RawMessage) (any, error) {
	var params compactArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("failed to compact conversation: parse args: %w", err)
	}

	if len(params.Messages) > 0 {
		out := c.extractor.CompactMessages(params.Messages)
		out.SourceType = "content"
		return out, nil
	}
	if params.Source == "" {
		return nil, fmt.Errorf("failed to compact conversation: source is required")
	}

	raw := params.Source
	sourceType := "content"
	if (params.IsFilePath == nil || *params.IsFilePath) && strings.HasSuffix(params.Source, ".jsonl") {
		content, err := export.ReadTranscript(params.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to compact conversation: %w", err)
		}
		raw = content
		sourceType = "file"
	}

	out := c.extractor.Compact(raw)
	out.SourceType = sourceType
	return out, nil
}
