package extract

import (
	"testing"

	"github.com/Asar007/claude-code-compact-mcp/internal/types"
)

func TestCompact_JSONL(t *testing.T) {
	raw := `{"type":"message","message":{"role":"user","content":"Build a CLI"}}` + "\n" +
		`{"type":"message","message":{"role":"assistant","content":"Created main.go with cobra"}}`

	e := &Extractor{Counter: wordCounter{}}
	c := e.Compact(raw)
	if len(c.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(c.Messages))
	}
	if c.RawContent != raw {
		t.Error("expected raw content preserved")
	}
	if c.Summary.Topic != "Build a CLI" {
		t.Errorf("unexpected topic %q", c.Summary.Topic)
	}
	if c.Summary.TokenCount != 7 {
		t.Errorf("expected 7 tokens, got %d", c.Summary.TokenCount)
	}
}

func TestCompact_PlainText(t *testing.T) {
	var e Extractor
	c := e.Compact("Human: Explain channels\nAssistant: They pass values between goroutines")
	if len(c.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(c.Messages))
	}
	if c.Messages[1].Role != types.RoleAssistant {
		t.Errorf("expected assistant turn, got %q", c.Messages[1].Role)
	}
	if c.Summary.Topic != "Explain channels" {
		t.Errorf("unexpected topic %q", c.Summary.Topic)
	}
}

func TestCompact_NothingParsed(t *testing.T) {
	var e Extractor
	c := e.Compact("just some notes")
	if c.Messages == nil || len(c.Messages) != 0 {
		t.Errorf("expected empty non-nil messages, got %v", c.Messages)
	}
	if c.Summary.Topic != DefaultTopic {
		t.Errorf("expected default topic, got %q", c.Summary.Topic)
	}
}

func TestNewTokenizer(t *testing.T) {
	tok, err := NewTokenizer("gpt-4")
	if err != nil {
		t.Fatal(err)
	}
	if n := tok.Count("hello world"); n <= 0 {
		t.Errorf("expected positive token count, got %d", n)
	}
	if _, err := NewTokenizer("not-a-real-model"); err != nil {
		t.Errorf("unknown model should fall back, got %v", err)
	}
}
