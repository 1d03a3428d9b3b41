// Package extract turns raw conversation transcripts into messages and a
// heuristic summary suitable for building visualizations.
package extract

import (
	"strings"

	"github.com/Asar007/claude-code-compact-mcp/internal/types"
)

// Format identifies how a transcript was encoded.
type Format string

const (
	FormatJSONL     Format = "jsonl"
	FormatPlainText Format = "text"
)

// Extractor compacts transcripts. The zero value works without token counts.
type Extractor struct {
	Counter types.TokenCounter
}

// Detect reports FormatJSONL when the first non-blank line looks like a
// JSON object, FormatPlainText otherwise.
func Detect(raw string) Format {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "{") {
			return FormatJSONL
		}
		return FormatPlainText
	}
	return FormatPlainText
}

// Parse splits raw into messages using the detected format. A JSONL
// transcript that yields nothing falls back to plain text parsing.
func Parse(raw string) []types.ConversationMessage {
	if Detect(raw) == FormatJSONL {
		if msgs := ParseJSONL(raw); len(msgs) > 0 {
			return msgs
		}
	}
	return ParsePlainText(raw)
}

// Compact parses raw and summarizes it. RawContent carries raw unchanged.
func (e *Extractor) Compact(raw string) *types.CompactedConversation {
	msgs := Parse(raw)
	c := e.CompactMessages(msgs)
	c.RawContent = raw
	return c
}

// CompactMessages summarizes already parsed messages.
func (e *Extractor) CompactMessages(msgs []types.ConversationMessage) *types.CompactedConversation {
	if msgs == nil {
		msgs = []types.ConversationMessage{}
	}
	return &types.CompactedConversation{
		Summary:  Summarize(msgs, e.Counter),
		Messages: msgs,
	}
}
