package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/Asar007/claude-code-compact-mcp/internal/types"
)

type jsonlEntry struct {
	Type      string        `json:"type"`
	Timestamp string        `json:"timestamp"`
	Message   *jsonlMessage `json:"message"`
}

type jsonlMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ParseJSONL parses a transcript with one JSON entry per line. Entries of
// type "message" (or the per-role "user"/"assistant" entries written by the
// CLI) contribute a message; invalid lines and blank messages are skipped.
func ParseJSONL(content string) []types.ConversationMessage {
	var messages []types.ConversationMessage
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var entry jsonlEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		switch entry.Type {
		case "message", "user", "assistant":
		default:
			continue
		}
		if entry.Message == nil || entry.Message.Role == "" {
			continue
		}

		text := messageText(entry.Message.Content)
		if strings.TrimSpace(text) == "" {
			continue
		}
		messages = append(messages, types.ConversationMessage{
			Role:      types.Role(entry.Message.Role),
			Content:   normalizeContent(text),
			Timestamp: entry.Timestamp,
		})
	}
	return messages
}

// messageText returns string content as-is, or the text blocks of an
// array joined by newlines.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var blocks []contentBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return ""
	}
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

var turnPrefixes = []struct {
	prefix string
	role   types.Role
}{
	{"Human:", types.RoleUser},
	{"User:", types.RoleUser},
	{"Assistant:", types.RoleAssistant},
	{"Claude:", types.RoleAssistant},
}

// ParsePlainText parses a conversation pasted as "Human:"/"Assistant:"
// turns. Lines without a prefix continue the current turn; text before the
// first prefixed line is ignored.
func ParsePlainText(content string) []types.ConversationMessage {
	var messages []types.ConversationMessage
	var current *types.ConversationMessage
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text != "" {
			current.Content = normalizeContent(text)
			messages = append(messages, *current)
		}
		current = nil
		body = nil
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if role, rest, ok := splitTurn(line); ok {
			flush()
			current = &types.ConversationMessage{Role: role}
			body = []string{rest}
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return messages
}

func splitTurn(line string) (types.Role, string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	for _, p := range turnPrefixes {
		if strings.HasPrefix(trimmed, p.prefix) {
			return p.role, strings.TrimSpace(trimmed[len(p.prefix):]), true
		}
	}
	return "", "", false
}

var htmlTag = regexp.MustCompile(`(?i)<(p|div|br|ul|ol|li|h[1-6]|table|tr|td|pre|code|a|span|strong|em|b|i|blockquote)\b[^>]*>`)

// normalizeContent converts HTML fragments (e.g. text copied from a web
// chat) to markdown. Content without HTML tags, or that fails to convert,
// is returned unchanged.
func normalizeContent(text string) string {
	if !htmlTag.MatchString(text) {
		return text
	}
	md, err := htmltomarkdown.ConvertString(text)
	if err != nil || strings.TrimSpace(md) == "" {
		return text
	}
	return strings.TrimSpace(md)
}
