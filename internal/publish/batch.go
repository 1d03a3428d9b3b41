// Package publish pushes visualization documents to Navigate Chat,
// singly or as a bounded-concurrency batch sharing one client.
package publish

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Asar007/claude-code-compact-mcp/internal/metrics"
	"github.com/Asar007/claude-code-compact-mcp/internal/types"
)

// Item is one document to publish.
type Item struct {
	Name     string          `json:"name"`
	Document json.RawMessage `json:"document"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

// Outcome is the result of publishing one Item. Err is set when the
// publish failed outright; Succeeded is false with a nil Err when the
// stream ended without an end event.
type Outcome struct {
	Name      string        `json:"name"`
	ThreadID  string        `json:"threadId,omitempty"`
	Succeeded bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// One publishes a single item and records its metrics.
func One(ctx context.Context, p types.Publisher, item Item) Outcome {
	start := time.Now()
	out := Outcome{Name: item.Name}

	result, err := p.Publish(ctx, item.Document, item.Metadata)
	out.Duration = time.Since(start)

	status := metrics.PublishFailed
	switch {
	case err != nil:
		out.Err = err
		out.Error = err.Error()
	case result.Succeeded:
		status = metrics.PublishSucceeded
		out.ThreadID = result.ThreadID
		out.Succeeded = true
	default:
		status = metrics.PublishIncomplete
		out.ThreadID = result.ThreadID
	}
	metrics.ObservePublish(status, out.Duration)
	return out
}

// Batch publishes many items through one Publisher so that concurrent
// publishes share a single credential refresh.
type Batch struct {
	publisher   types.Publisher
	concurrency int
	logger      *slog.Logger
}

// NewBatch creates a Batch running at most concurrency publishes at once.
func NewBatch(p types.Publisher, concurrency int, logger *slog.Logger) *Batch {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{publisher: p, concurrency: concurrency, logger: logger}
}

// Run publishes every item and returns outcomes in item order. A failed
// item does not stop the others. Once ctx is canceled no further item is
// started; those items are reported with the context error.
func (b *Batch) Run(ctx context.Context, items []Item) []Outcome {
	batchID := types.NewBatchID()
	logger := b.logger.With("batch_id", string(batchID))
	logger.Info("batch publish started", "items", len(items), "concurrency", b.concurrency)

	outcomes := make([]Outcome, len(items))
	var g errgroup.Group
	g.SetLimit(b.concurrency)

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			outcomes[i] = Outcome{Name: item.Name, Err: err, Error: err.Error()}
			continue
		}
		g.Go(func() error {
			outcomes[i] = One(ctx, b.publisher, item)
			o := outcomes[i]
			if o.Err != nil {
				logger.Warn("publish failed", "item", o.Name, "error", o.Err)
			} else {
				logger.Debug("published", "item", o.Name, "thread_id", o.ThreadID, "success", o.Succeeded)
			}
			return nil
		})
	}
	g.Wait()

	s := Summarize(outcomes)
	logger.Info("batch publish finished", "succeeded", s.Succeeded, "incomplete", s.Incomplete, "failed", s.Failed)
	return outcomes
}

// Summary counts outcomes by kind.
type Summary struct {
	Succeeded  int `json:"succeeded"`
	Incomplete int `json:"incomplete"`
	Failed     int `json:"failed"`
}

func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			s.Failed++
		case o.Succeeded:
			s.Succeeded++
		default:
			s.Incomplete++
		}
	}
	return s
}
