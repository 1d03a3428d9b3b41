// internal/types/interfaces.go
package types

import (
	"context"

	"github.com/Asar007/claude-code-compact-mcp/pkg/navigate"
)

// Publisher pushes a visualization document to a remote chat thread.
type Publisher interface {
	Publish(ctx context.Context, document any, metadata map[string]any) (*navigate.PublishResult, error)
}

// TokenCounter estimates the model token count of a text.
type TokenCounter interface {
	Count(text string) int
}
