package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Asar007/claude-code-compact-mcp/pkg/navigate"
)

type fakePublisher struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	delay    time.Duration
	fail     map[string]error
	noEnd    map[string]bool
}

func (f *fakePublisher) Publish(ctx context.Context, doc any, meta map[string]any) (*navigate.PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	name, _ := meta["name"].(string)
	if err := f.fail[name]; err != nil {
		return nil, err
	}
	return &navigate.PublishResult{ThreadID: "thread-" + name, Succeeded: !f.noEnd[name]}, nil
}

func items(names ...string) []Item {
	out := make([]Item, len(names))
	for i, n := range names {
		out[i] = Item{Name: n, Document: json.RawMessage(`{}`), Metadata: map[string]any{"name": n}}
	}
	return out
}

func TestBatchRun_Outcomes(t *testing.T) {
	pub := &fakePublisher{
		delay: 5 * time.Millisecond,
		fail:  map[string]error{"b": errors.New("boom")},
		noEnd: map[string]bool{"c": true},
	}
	outcomes := NewBatch(pub, 2, nil).Run(context.Background(), items("a", "b", "c", "d"))

	if len(outcomes) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(outcomes))
	}
	for i, want := range []string{"a", "b", "c", "d"} {
		if outcomes[i].Name != want {
			t.Errorf("outcome %d: expected %q, got %q", i, want, outcomes[i].Name)
		}
	}
	if !outcomes[0].Succeeded || outcomes[0].ThreadID != "thread-a" {
		t.Errorf("unexpected outcome a: %+v", outcomes[0])
	}
	if outcomes[1].Err == nil || outcomes[1].Error != "boom" {
		t.Errorf("expected b to fail, got %+v", outcomes[1])
	}
	if outcomes[2].Succeeded || outcomes[2].Err != nil || outcomes[2].ThreadID != "thread-c" {
		t.Errorf("expected c incomplete, got %+v", outcomes[2])
	}
	if !outcomes[3].Succeeded {
		t.Errorf("a failure must not stop later items: %+v", outcomes[3])
	}

	s := Summarize(outcomes)
	if s != (Summary{Succeeded: 2, Incomplete: 1, Failed: 1}) {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestBatchRun_ConcurrencyLimit(t *testing.T) {
	pub := &fakePublisher{delay: 20 * time.Millisecond}
	NewBatch(pub, 3, nil).Run(context.Background(), items("1", "2", "3", "4", "5", "6", "7", "8"))
	if pub.peak > 3 {
		t.Errorf("expected at most 3 concurrent publishes, saw %d", pub.peak)
	}
	if pub.peak < 2 {
		t.Errorf("expected publishes to overlap, peak %d", pub.peak)
	}
}

func TestBatchRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcomes := NewBatch(&fakePublisher{}, 1, nil).Run(ctx, items("a", "b"))
	for _, o := range outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("expected canceled outcome, got %+v", o)
		}
	}
}

func TestBatchRun_CanceledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	outcomes := NewBatch(&fakePublisher{delay: time.Second}, 1, nil).Run(ctx, items("a", "b", "c"))
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("batch kept running %v after cancellation", elapsed)
	}
	for _, o := range outcomes {
		if !errors.Is(o.Err, context.Canceled) {
			t.Errorf("expected canceled outcome, got %+v", o)
		}
	}
}

func TestNewBatch_MinimumConcurrency(t *testing.T) {
	if b := NewBatch(&fakePublisher{}, 0, nil); b.concurrency != 1 {
		t.Errorf("expected concurrency clamped to 1, got %d", b.concurrency)
	}
}

// A batch through one real client logs in once, however many documents.
func TestBatchRun_SharedLogin(t *testing.T) {
	var logins, threads atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/login/access-token", func(w http.ResponseWriter, r *http.Request) {
		logins.Add(1)
		time.Sleep(10 * time.Millisecond)
		fmt.Fprint(w, `{"access_token":"tok","token_type":"bearer"}`)
	})
	mux.HandleFunc("POST /api/chat/new", func(w http.ResponseWriter, r *http.Request) {
		n := threads.Add(1)
		fmt.Fprintf(w, `{"thread_id":"t-%d"}`, n)
	})
	mux.HandleFunc("POST /api/threads/{id}/runs/stream", func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: values\ndata: {}\n\nevent: end\ndata: null\n\n")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := navigate.New(&navigate.Config{BaseURL: srv.URL, Email: "e", Password: "p"})
	outcomes := NewBatch(client, 4, nil).Run(context.Background(), items("a", "b", "c", "d", "e"))

	for _, o := range outcomes {
		if !o.Succeeded {
			t.Errorf("expected success, got %+v", o)
		}
	}
	if n := logins.Load(); n != 1 {
		t.Errorf("expected a single login, got %d", n)
	}
	if n := threads.Load(); n != 5 {
		t.Errorf("expected 5 threads, got %d", n)
	}
}
