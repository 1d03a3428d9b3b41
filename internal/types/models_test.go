// internal/types/models_test.go
package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSummaryFieldNames(t *testing.T) {
	summary := ConversationSummary{
		Topic:        "Fix login",
		KeyPoints:    []string{"fix the bug"},
		MessageCount: 2,
		ToolsUsed:    []string{"Read"},
	}

	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"keyPoints"`, `"messageCount"`, `"toolsUsed"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("expected %s in %s", key, data)
		}
	}
	if strings.Contains(string(data), "tokenCount") {
		t.Errorf("expected zero tokenCount to be omitted, got %s", data)
	}
}

func TestToolResultOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(ToolResult{Success: false, Error: "boom"})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"success":false,"error":"boom"}` {
		t.Errorf("unexpected encoding %s", data)
	}
}
