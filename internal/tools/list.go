package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Asar007/claude-code-compact-mcp/internal/export"
	"github.com/Asar007/claude-code-compact-mcp/internal/visualization"
)

// ListVisualizations lists exported visualization files.
type ListVisualizations struct {
	defaultDir string
}

func NewListVisualizations(defaultDir string) *ListVisualizations {
	return &ListVisualizations{defaultDir: defaultDir}
}

func (l *ListVisualizations) Name() string        { return "list_visualizations" }
func (l *ListVisualizations) Description() string { return "List exported visualization JSON files" }
func (l *ListVisualizations) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"outputDir": {"type": "string", "description": "Optional custom output directory"}
		}
	}`)
}

func (l *ListVisualizations) Execute(_ context.Context, args json.RawMessage) (any, error) {
	var params struct {
		OutputDir string `json:"outputDir"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("failed to list visualizations: parse args: %w", err)
	}
	dir := params.OutputDir
	if dir == "" {
		dir = l.defaultDir
	}
	files, err := export.NewExporter(dir).List()
	if err != nil {
		return nil, fmt.Errorf("failed to list visualizations: %w", err)
	}
	return files, nil
}

// ListTranscripts lists JSONL transcripts under the transcripts directory.
type ListTranscripts struct {
	root string
}

func NewListTranscripts(root string) *ListTranscripts {
	if root == "" {
		root = export.DefaultTranscriptsDir()
	}
	return &ListTranscripts{root: root}
}

func (l *ListTranscripts) Name() string { return "list_transcripts" }
func (l *ListTranscripts) Description() string {
	return "List Claude Code JSONL transcripts found on this machine"
}
func (l *ListTranscripts) Parameters() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (l *ListTranscripts) Execute(_ context.Context, _ json.RawMessage) (any, error) {
	return export.ListTranscripts(l.root), nil
}

// ValidateVisualization checks a document against the schema of its type.
type ValidateVisualization struct{}

func (ValidateVisualization) Name() string { return "validate_visualization" }
func (ValidateVisualization) Description() string {
	return "Check a visualization document against the schema for its type"
}
func (ValidateVisualization) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"visualization": {"type": "object", "description": "Visualization JSON data"},
			"type": {"type": "string", "enum": ["mindmap", "sequence", "knowledge_graph", "timeline"], "description": "Type to validate against; detected from metadata.contentType when omitted"}
		},
		"required": ["visualization"]
	}`)
}

// ValidationReport is the outcome of a validation.
type ValidationReport struct {
	Valid  bool               `json:"valid"`
	Type   visualization.Type `json:"type"`
	Errors []string           `json:"errors,omitempty"`
}

func (ValidateVisualization) Execute(_ context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Visualization json.RawMessage `json:"visualization"`
		Type          string          `json:"type"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("failed to validate visualization: parse args: %w", err)
	}
	doc, t, err := documentArgs(params.Visualization, params.Type, false)
	if err != nil {
		return nil, fmt.Errorf("failed to validate visualization: %w", err)
	}
	if t == "" {
		return nil, fmt.Errorf("failed to validate visualization: type unknown")
	}

	report := &ValidationReport{Valid: true, Type: t}
	if err := visualization.Validate(t, doc); err != nil {
		var verr *visualization.ValidationError
		if !errors.As(err, &verr) {
			return nil, fmt.Errorf("failed to validate visualization: %w", err)
		}
		report.Valid = false
		report.Errors = verr.Errors
	}
	return report, nil
}
