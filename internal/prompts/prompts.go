// Package prompts renders the analysis prompts offered to MCP clients.
// A prompt asks the client's model to read the current conversation, write
// a visualization document and save it with the export_json tool.
package prompts

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	"github.com/Asar007/claude-code-compact-mcp/internal/visualization"
)

// CompactName is the name of the conversation-to-visualization prompt.
const CompactName = "compact"

// ErrUnknownPrompt is returned by Get for a name that is not registered.
var ErrUnknownPrompt = errors.New("unknown prompt")

// Argument describes one prompt argument.
type Argument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Prompt describes a prompt without rendering it.
type Prompt struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Arguments   []Argument `json:"arguments,omitempty"`
}

// Message is one rendered prompt message.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Result is a rendered prompt.
type Result struct {
	Description string    `json:"description,omitempty"`
	Messages    []Message `json:"messages"`
}

var compactPrompt = Prompt{
	Name:        CompactName,
	Description: "Analyze the current conversation and create a visualization (mindmap, sequence diagram, knowledge graph, or timeline)",
	Arguments: []Argument{{
		Name:        "type",
		Description: "Visualization type: mindmap, sequence, knowledge_graph, or timeline",
	}},
}

// List returns every available prompt.
func List() []Prompt {
	return []Prompt{compactPrompt}
}

// Get renders the named prompt with args.
func Get(name string, args map[string]string) (*Result, error) {
	if name != CompactName {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPrompt, name)
	}
	t := visualization.Mindmap
	if s := args["type"]; s != "" {
		parsed, err := visualization.ParseType(s)
		if err != nil {
			return nil, err
		}
		t = parsed
	}
	text, err := Compact(t)
	if err != nil {
		return nil, err
	}
	return &Result{
		Description: fmt.Sprintf("Create a %s visualization of this conversation", t),
		Messages:    []Message{{Role: "user", Text: text}},
	}, nil
}

// Compact renders the analysis instructions for a visualization of type t.
func Compact(t visualization.Type) (string, error) {
	example, ok := Examples[t]
	if !ok {
		return "", fmt.Errorf("no example for visualization type %q", t)
	}
	var buf bytes.Buffer
	err := compactTemplate.Execute(&buf, struct {
		Type    visualization.Type
		Example string
	}{t, example})
	if err != nil {
		return "", fmt.Errorf("render compact prompt: %w", err)
	}
	return buf.String(), nil
}

var compactTemplate = template.Must(template.New(CompactName).Parse(compactText))

// compactText uses text/template fields .Type and .Example.
const compactText = `Analyze our ENTIRE conversation above and create a {{.Type}} visualization.

INSTRUCTIONS:
1. Read through ALL messages in this conversation
2. Identify the main topic, key points, entities mentioned, and actions taken
3. Create a {{.Type}} JSON structure following this format:

{{.Example}}

4. After generating the JSON, call the export_json tool to save it locally, passing the JSON as "visualization" and "{{.Type}}" as "type"

IMPORTANT: Read the ENTIRE conversation history, not just the last message. Include all key topics discussed.`

// Examples holds one document per type that satisfies that type's schema.
var Examples = map[visualization.Type]string{
	visualization.Mindmap: `{
  "metadata": {"topic": "Conversation Topic", "contentType": "mindmap", "nodeCount": 3},
  "nodes": [
    {"id": "root", "data": {"label": "Main Topic", "type": "root", "summary": "What the conversation was about", "level": 0}},
    {"id": "sub1", "data": {"label": "Subtopic 1", "type": "category", "summary": "A theme that came up", "level": 1}},
    {"id": "detail1", "data": {"label": "Detail 1", "type": "leaf", "summary": "A specific point", "level": 2}}
  ],
  "edges": [
    {"id": "e1", "source": "root", "target": "sub1"},
    {"id": "e2", "source": "sub1", "target": "detail1"}
  ],
  "hierarchy": {"root": ["sub1"], "sub1": ["detail1"]}
}`,
	visualization.Sequence: `{
  "metadata": {"title": "Process Flow", "summary": "How the request moved between parties"},
  "participants": [
    {"id": "user", "label": "User", "type": "Actor"},
    {"id": "assistant", "label": "Assistant", "type": "Participant"},
    {"id": "system", "label": "System", "type": "Participant"}
  ],
  "activations": [{"participant": "assistant", "startStep": 1, "endStep": 3}],
  "fragments": [],
  "events": [
    {"step": 1, "type": "message", "source": "user", "target": "assistant", "label": "Request", "arrowType": "solid", "lineType": "solid"},
    {"step": 2, "type": "message", "source": "assistant", "target": "system", "label": "Action", "arrowType": "solid", "lineType": "solid"},
    {"step": 3, "type": "message", "source": "system", "target": "assistant", "label": "Result", "arrowType": "open_arrow", "lineType": "dotted"}
  ]
}`,
	visualization.KnowledgeGraph: `{
  "metadata": {"projectName": "Project", "topic": "Knowledge Graph", "contentType": "knowledge_graph"},
  "nodes": [
    {"id": "1", "data": {"label": "Entity 1", "type": "backend", "summary": "What this entity is"}},
    {"id": "2", "data": {"label": "Entity 2", "type": "data", "summary": "What this entity is"}}
  ],
  "hierarchy": {"1": ["2"]},
  "edges": [{"id": "e1", "source": "1", "target": "2", "type": "relates"}]
}`,
	visualization.Timeline: `{
  "metadata": {"title": "Timeline", "summary": "What happened, in order", "contentType": "timeline"},
  "events": [
    {"id": "1", "date": "Step 1", "title": "First Action", "description": "What happened"},
    {"id": "2", "date": "Step 2", "title": "Second Action", "description": "What happened"}
  ]
}`,
}
