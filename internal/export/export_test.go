package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Asar007/claude-code-compact-mcp/internal/visualization"
)

var fixedTime = time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.UTC)

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	e := NewExporter(filepath.Join(t.TempDir(), "viz"))
	e.now = func() time.Time { return fixedTime }
	return e
}

func TestGenerateFilename(t *testing.T) {
	tests := []struct {
		name  string
		typ   visualization.Type
		topic string
		want  string
	}{
		{"simple", visualization.Mindmap, "Auth", "mindmap_Auth_2025-03-04T05-06-07-890Z.json"},
		{"sanitized", visualization.Timeline, "Fix: login/logout flow", "timeline_Fix__login_logout_flow_2025-03-04T05-06-07-890Z.json"},
		{"empty topic", visualization.Sequence, "", "sequence_visualization_2025-03-04T05-06-07-890Z.json"},
		{"truncated", visualization.KnowledgeGraph, strings.Repeat("a", 40), "knowledge_graph_" + strings.Repeat("a", 30) + "_2025-03-04T05-06-07-890Z.json"},
		{"multibyte", visualization.Mindmap, "café", "mindmap_caf__2025-03-04T05-06-07-890Z.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GenerateFilename(tt.typ, tt.topic, fixedTime); got != tt.want {
				t.Errorf("GenerateFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateFilename_NonUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	got := GenerateFilename(visualization.Mindmap, "x", fixedTime.In(loc))
	if !strings.HasSuffix(got, "_2025-03-04T05-06-07-890Z.json") {
		t.Errorf("expected UTC timestamp, got %q", got)
	}
}

func TestExport_GeneratedName(t *testing.T) {
	e := newTestExporter(t)
	doc := json.RawMessage(`{"metadata":{"topic":"Release plan","contentType":"timeline"},"events":[]}`)

	path, err := e.Export(doc, visualization.Timeline, "")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if filepath.Dir(path) != e.Dir() {
		t.Errorf("expected file in %s, got %s", e.Dir(), path)
	}
	if filepath.Base(path) != "timeline_Release_plan_2025-03-04T05-06-07-890Z.json" {
		t.Errorf("unexpected filename %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  \"metadata\"") {
		t.Errorf("expected indented JSON, got %s", data)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not remain after export")
	}
}

func TestExport_CustomName(t *testing.T) {
	e := newTestExporter(t)
	path, err := e.Export(json.RawMessage(`{"a":1}`), visualization.Mindmap, "../escape/custom.json")
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if path != filepath.Join(e.Dir(), "custom.json") {
		t.Errorf("expected custom name inside output dir, got %s", path)
	}
}

func TestExport_InvalidJSON(t *testing.T) {
	e := newTestExporter(t)
	if _, err := e.Export(json.RawMessage(`{"a":`), visualization.Mindmap, ""); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestReadAndList(t *testing.T) {
	e := newTestExporter(t)

	files, err := e.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected empty list, got %v", files)
	}

	p1, err := e.Export(json.RawMessage(`{"n":1}`), visualization.Mindmap, "b.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Export(json.RawMessage(`{"n":2}`), visualization.Mindmap, "a.json"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(e.Dir(), "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err = e.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.json" || filepath.Base(files[1]) != "b.json" {
		t.Errorf("unexpected listing %v", files)
	}

	raw, err := e.Read(p1)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(raw, &got); err != nil || got["n"] != 1 {
		t.Errorf("unexpected content %s (%v)", raw, err)
	}

	if _, err := e.Read(filepath.Join(e.Dir(), "notes.txt")); err == nil {
		t.Error("expected error reading non-JSON file")
	}
}

func TestListTranscripts(t *testing.T) {
	root := t.TempDir()
	mustWrite := func(rel string) {
		t.Helper()
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("proj-a/s1.jsonl")
	mustWrite("proj-b/nested/s2.jsonl")
	mustWrite("proj-b/readme.md")

	files := ListTranscripts(root)
	if len(files) != 2 {
		t.Fatalf("expected 2 transcripts, got %v", files)
	}
	if !strings.HasSuffix(files[0], "s1.jsonl") || !strings.HasSuffix(files[1], "s2.jsonl") {
		t.Errorf("unexpected transcripts %v", files)
	}

	if got := ListTranscripts(filepath.Join(root, "missing")); len(got) != 0 {
		t.Errorf("expected no transcripts for missing root, got %v", got)
	}
}

func TestReadTranscript(t *testing.T) {
	p := filepath.Join(t.TempDir(), "s.jsonl")
	if err := os.WriteFile(p, []byte("line\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadTranscript(p)
	if err != nil || got != "line\n" {
		t.Errorf("ReadTranscript() = %q, %v", got, err)
	}
	if _, err := ReadTranscript(p + ".missing"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExport_TypeRequired(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewExporter(dir).Export(json.RawMessage(`{"a":1}`), "", ""); !errors.Is(err, ErrTypeRequired) {
		t.Fatalf("expected ErrTypeRequired, got %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("expected nothing written, found %d entries", len(entries))
	}
}
