// Package visualization describes the four visualization document shapes
// and validates documents against their JSON Schemas.
package visualization

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Type is the closed set of visualization shapes.
type Type string

const (
	Mindmap        Type = "mindmap"
	Sequence       Type = "sequence"
	KnowledgeGraph Type = "knowledge_graph"
	Timeline       Type = "timeline"
)

// Types lists every supported shape.
var Types = []Type{Mindmap, Sequence, KnowledgeGraph, Timeline}

// ParseType converts s into a Type, rejecting unknown names.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown visualization type %q (want one of %s)", s, typeNames())
}

func typeNames() string {
	names := make([]string, len(Types))
	for i, t := range Types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

//go:embed schemas/*.json
var schemaFS embed.FS

var schemas = mustLoadSchemas()

func mustLoadSchemas() map[Type]*gojsonschema.Schema {
	out := make(map[Type]*gojsonschema.Schema, len(Types))
	for _, t := range Types {
		data, err := schemaFS.ReadFile("schemas/" + string(t) + ".json")
		if err != nil {
			panic(fmt.Sprintf("visualization: read schema %s: %v", t, err))
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			panic(fmt.Sprintf("visualization: compile schema %s: %v", t, err))
		}
		out[t] = s
	}
	return out
}

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Type   Type
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s visualization: %s", e.Type, strings.Join(e.Errors, "; "))
}

// Validate checks raw against the schema for t. Violations are reported as
// a *ValidationError; malformed JSON as a plain error.
func Validate(t Type, raw []byte) error {
	schema, ok := schemas[t]
	if !ok {
		return fmt.Errorf("unknown visualization type %q", t)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate %s: %w", t, err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{Type: t}
	for _, e := range result.Errors() {
		verr.Errors = append(verr.Errors, e.String())
	}
	return verr
}

type header struct {
	Metadata struct {
		ContentType string `json:"contentType"`
		Topic       any    `json:"topic"`
		Title       any    `json:"title"`
		ProjectName any    `json:"projectName"`
	} `json:"metadata"`
	Participants json.RawMessage `json:"participants"`
}

func readHeader(raw []byte) (header, bool) {
	var h header
	if err := json.Unmarshal(raw, &h); err != nil {
		return h, false
	}
	return h, true
}

// DetectType infers the shape from metadata.contentType, or reports
// Sequence for documents carrying a participants list.
func DetectType(raw []byte) (Type, bool) {
	h, ok := readHeader(raw)
	if !ok {
		return "", false
	}
	if t, err := ParseType(h.Metadata.ContentType); err == nil {
		return t, true
	}
	if len(h.Participants) > 0 && string(h.Participants) != "null" {
		return Sequence, true
	}
	return "", false
}

// Topic returns metadata.topic, metadata.title or metadata.projectName,
// whichever is first present as a string. It returns "" otherwise.
func Topic(raw []byte) string {
	h, ok := readHeader(raw)
	if !ok {
		return ""
	}
	for _, v := range []any{h.Metadata.Topic, h.Metadata.Title, h.Metadata.ProjectName} {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
