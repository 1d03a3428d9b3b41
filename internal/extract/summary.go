package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Asar007/claude-code-compact-mcp/internal/types"
)

const (
	DefaultTopic = "Claude Code Session"

	maxTopicLen      = 100
	maxKeyPoints     = 10
	maxKeyPointLen   = 200
	minSentenceLen   = 20
	sentenceWindow   = 50
	maxEntities      = 15
	maxActions       = 10
	maxActionsPerMsg = 5
)

var (
	toolMention   = regexp.MustCompile(`(?i)(?:using|calling|invoke)\s+(\w+)`)
	sentenceBreak = regexp.MustCompile(`[.!?]+`)
	keywordRules  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(implement|create|build|fix|add|update|modify|change|refactor)\b`),
		regexp.MustCompile(`(?i)\b(error|bug|issue|problem|solution)\b`),
		regexp.MustCompile(`(?i)\b(successfully|completed|done|finished)\b`),
	}
	entityPattern = regexp.MustCompile(`\b([A-Z][a-z]+(?:[A-Z][a-z]+)+|\w+\.(?:ts|js|py|json|yaml|md|go))\b`)
	actionPattern = regexp.MustCompile(`(?i)\b(?:created|updated|fixed|added|implemented|refactored|deleted|modified)\s+[^.]{5,50}`)
)

// Summarize extracts topic, key points, entities, actions and tools from
// messages. counter may be nil, in which case TokenCount is left zero.
func Summarize(messages []types.ConversationMessage, counter types.TokenCounter) types.ConversationSummary {
	texts := make([]string, len(messages))
	for i, m := range messages {
		texts[i] = m.Content
	}
	allText := strings.Join(texts, "\n")

	summary := types.ConversationSummary{
		Topic:        DefaultTopic,
		KeyPoints:    keyPoints(allText),
		Entities:     entities(allText),
		Actions:      actions(messages),
		MessageCount: len(messages),
		ToolsUsed:    toolsUsed(messages),
	}

	for _, m := range messages {
		if m.Role == types.RoleUser {
			if topic := topicFrom(m.Content); topic != "" {
				summary.Topic = topic
			}
			break
		}
	}

	if counter != nil {
		for _, t := range texts {
			summary.TokenCount += counter.Count(t)
		}
	}
	return summary
}

func topicFrom(content string) string {
	first, _, _ := strings.Cut(content, "\n")
	first = strings.TrimSpace(first)
	if utf8.RuneCountInString(first) <= maxTopicLen {
		return first
	}
	return truncateRunes(first, maxTopicLen-3) + "..."
}

func toolsUsed(messages []types.ConversationMessage) []string {
	var tools uniqueList
	for _, m := range messages {
		if m.Role != types.RoleAssistant {
			continue
		}
		for _, match := range toolMention.FindAllStringSubmatch(m.Content, -1) {
			tools.add(match[1])
		}
	}
	return tools.items()
}

func keyPoints(allText string) []string {
	var sentences []string
	for _, s := range sentenceBreak.Split(allText, -1) {
		if utf8.RuneCountInString(strings.TrimSpace(s)) > minSentenceLen {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) > sentenceWindow {
		sentences = sentences[:sentenceWindow]
	}

	var points uniqueList
	for _, s := range sentences {
		if !matchesAny(s, keywordRules) {
			continue
		}
		points.add(truncateRunes(strings.TrimSpace(s), maxKeyPointLen))
		if len(points.list) >= maxKeyPoints {
			break
		}
	}
	return points.items()
}

func entities(allText string) []string {
	var found uniqueList
	for _, m := range entityPattern.FindAllString(allText, -1) {
		found.add(m)
		if len(found.list) >= maxEntities {
			break
		}
	}
	return found.items()
}

func actions(messages []types.ConversationMessage) []string {
	var all []string
	for _, m := range messages {
		if m.Role != types.RoleAssistant {
			continue
		}
		matches := actionPattern.FindAllString(m.Content, maxActionsPerMsg)
		if len(matches) == 0 {
			continue
		}
		for _, a := range matches {
			all = append(all, strings.TrimSpace(a))
		}
		if len(all) >= maxActions {
			break
		}
	}

	var unique uniqueList
	for _, a := range all {
		unique.add(a)
		if len(unique.list) >= maxActions {
			break
		}
	}
	return unique.items()
}

func matchesAny(s string, rules []*regexp.Regexp) bool {
	for _, r := range rules {
		if r.MatchString(s) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// uniqueList keeps first-seen order.
type uniqueList struct {
	seen map[string]bool
	list []string
}

func (u *uniqueList) add(s string) {
	if s == "" {
		return
	}
	if u.seen == nil {
		u.seen = make(map[string]bool)
	}
	if u.seen[s] {
		return
	}
	u.seen[s] = true
	u.list = append(u.list, s)
}

// items returns a non-nil slice so summaries encode as [] rather than null.
func (u *uniqueList) items() []string {
	if u.list == nil {
		return []string{}
	}
	return u.list
}
