package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type echoTool struct{}

func (e *echoTool) Name() string        { return "echo" }
func (e *echoTool) Description() string { return "Echoes input" }
func (e *echoTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`)
}
func (e *echoTool) Execute(_ context.Context, args json.RawMessage) (any, error) {
	var p struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(args, &p); err != nil {
		return nil, err
	}
	if p.Text == "" {
		return nil, errors.New("text is required")
	}
	return map[string]string{"echo": p.Text}, nil
}

type badTool struct{ echoTool }

func (b *badTool) Name() string { return "bad" }
func (b *badTool) Execute(context.Context, json.RawMessage) (any, error) {
	return func() {}, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&echoTool{})

	tool, ok := r.Get("echo")
	if !ok {
		t.Fatal("expected to find echo tool")
	}
	if tool.Name() != "echo" {
		t.Errorf("expected name 'echo', got %q", tool.Name())
	}
	if _, ok := r.Get("missing"); ok {
		t.Fatal("expected not to find missing tool")
	}
}

func TestRegistryAllSorted(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&echoTool{})
	r.Register(&badTool{})
	all := r.All()
	if len(all) != 2 || all[0].Name() != "bad" || all[1].Name() != "echo" {
		t.Fatalf("expected tools sorted by name, got %v", all)
	}
	defs := r.Definitions()
	if defs[1].Name != "echo" || defs[1].Description != "Echoes input" || len(defs[1].InputSchema) == 0 {
		t.Errorf("unexpected definition %+v", defs[1])
	}
}

func TestRegistryCall(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&echoTool{})
	r.Register(&badTool{})
	ctx := context.Background()

	res := r.Call(ctx, "echo", json.RawMessage(`{"text":"hi"}`))
	if !res.Success || res.Error != "" {
		t.Fatalf("expected success, got %+v", res)
	}
	if string(res.Data) != `{"echo":"hi"}` {
		t.Errorf("unexpected data %s", res.Data)
	}

	res = r.Call(ctx, "echo", nil)
	if res.Success || res.Error != "text is required" {
		t.Errorf("expected tool error in result, got %+v", res)
	}

	res = r.Call(ctx, "nope", nil)
	if res.Success || res.Error != "unknown tool: nope" {
		t.Errorf("expected unknown tool error, got %+v", res)
	}

	res = r.Call(ctx, "bad", nil)
	if res.Success || res.Error == "" {
		t.Errorf("expected encode failure, got %+v", res)
	}
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry(Deps{OutputDir: t.TempDir(), TranscriptsDir: t.TempDir()})
	want := []string{
		"compact_conversation",
		"export_json",
		"list_transcripts",
		"list_visualizations",
		"push_to_navigate",
		"test_navigate_connection",
		"validate_visualization",
	}
	all := r.All()
	if len(all) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(all))
	}
	for i, name := range want {
		if all[i].Name() != name {
			t.Errorf("tool %d: got %q, want %q", i, all[i].Name(), name)
		}
		var schema map[string]any
		if err := json.Unmarshal(all[i].Parameters(), &schema); err != nil {
			t.Errorf("%s: parameters are not valid JSON: %v", name, err)
		}
	}
}
