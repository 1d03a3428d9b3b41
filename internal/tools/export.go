package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/Asar007/claude-code-compact-mcp/internal/export"
	"github.com/Asar007/claude-code-compact-mcp/internal/visualization"
)

// ExportJSON saves a visualization document to a local file.
type ExportJSON struct {
	defaultDir string
}

func NewExportJSON(defaultDir string) *ExportJSON {
	return &ExportJSON{defaultDir: defaultDir}
}

func (e *ExportJSON) Name() string { return "export_json" }
func (e *ExportJSON) Description() string {
	return "Save visualization JSON to a local file. Default directory is ~/.claude-code-compact/visualizations/"
}
func (e *ExportJSON) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"visualization": {"type": "object", "description": "Visualization JSON data (mindmap, sequence, knowledge_graph, or timeline)"},
			"type": {"type": "string", "enum": ["mindmap", "sequence", "knowledge_graph", "timeline"], "description": "Type of visualization"},
			"filename": {"type": "string", "description": "Optional custom filename (defaults to auto-generated)"},
			"outputDir": {"type": "string", "description": "Optional custom output directory"},
			"strict": {"type": "boolean", "description": "Reject documents that do not match the schema for type"}
		},
		"required": ["visualization", "type"]
	}`)
}

type exportArgs struct {
	Visualization json.RawMessage `json:"visualization"`
	Type          string          `json:"type"`
	Filename      string          `json:"filename"`
	OutputDir     string          `json:"outputDir"`
	Strict        bool            `json:"strict"`
}

// ExportResult describes a written file.
type ExportResult struct {
	FilePath string             `json:"filePath"`
	Filename string             `json:"filename"`
	Type     visualization.Type `json:"type"`
}

func (e *ExportJSON) Execute(_ context.Context, args json.RawMessage) (any, error) {
	var params exportArgs
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("failed to export JSON: parse args: %w", err)
	}
	doc, t, err := documentArgs(params.Visualization, params.Type, params.Strict)
	if err != nil {
		return nil, fmt.Errorf("failed to export JSON: %w", err)
	}
	if t == "" {
		return nil, fmt.Errorf("failed to export JSON: %w", export.ErrTypeRequired)
	}

	dir := params.OutputDir
	if dir == "" {
		dir = e.defaultDir
	}
	path, err := export.NewExporter(dir).Export(doc, t, params.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to export JSON: %w", err)
	}
	return &ExportResult{FilePath: path, Filename: filepath.Base(path), Type: t}, nil
}

// documentArgs checks the visualization argument and resolves its type,
// falling back to detection when typeName is empty.
func documentArgs(doc json.RawMessage, typeName string, strict bool) (json.RawMessage, visualization.Type, error) {
	if len(doc) == 0 || string(doc) == "null" {
		return nil, "", fmt.Errorf("visualization is required")
	}
	var t visualization.Type
	if typeName != "" {
		parsed, err := visualization.ParseType(typeName)
		if err != nil {
			return nil, "", err
		}
		t = parsed
	} else if detected, ok := visualization.DetectType(doc); ok {
		t = detected
	}
	if strict {
		if t == "" {
			return nil, "", fmt.Errorf("cannot validate: visualization type unknown")
		}
		if err := visualization.Validate(t, doc); err != nil {
			return nil, "", err
		}
	}
	return doc, t, nil
}
