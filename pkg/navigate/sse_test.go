package navigate

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func feedAll(p *Parser, chunks ...string) []StreamEvent {
	var events []StreamEvent
	for _, c := range chunks {
		events = append(events, p.Feed([]byte(c))...)
	}
	return events
}

func TestParserSplitFrame(t *testing.T) {
	p := NewParser()
	events := feedAll(p,
		"event: progress\ndata: 10\n",
		"event: end\ndat",
		"a: done\n",
	)

	want := []StreamEvent{
		{Event: "progress", Data: "10"},
		{Event: "end", Data: "done"},
	}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("expected %v, got %v", want, events)
	}
	if !p.Done() {
		t.Error("expected parser to be done after end event")
	}
}

func TestParserChunkingInvariance(t *testing.T) {
	stream := "event: metadata\ndata: {\"run_id\":\"r1\"}\n\n" +
		"event: values\ndata: {\"text\":\"héllo wörld ✓\"}\n\n" +
		"event: messages\r\ndata: 日本語\r\n\r\n" +
		"event: end\ndata: null\n\n"
	want := feedAll(NewParser(), stream)
	if len(want) != 4 {
		t.Fatalf("expected 4 events from whole stream, got %d: %v", len(want), want)
	}

	raw := []byte(stream)
	for i := 0; i <= len(raw); i++ {
		for j := i; j <= len(raw); j += 7 {
			p := NewParser()
			var got []StreamEvent
			got = append(got, p.Feed(raw[:i])...)
			got = append(got, p.Feed(raw[i:j])...)
			got = append(got, p.Feed(raw[j:])...)
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("split at %d,%d: expected %v, got %v", i, j, want, got)
			}
		}
	}

	p := NewParser()
	var got []StreamEvent
	for _, b := range raw {
		got = append(got, p.Feed([]byte{b})...)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("byte-by-byte: expected %v, got %v", want, got)
	}
}

func TestParserEventNamePersists(t *testing.T) {
	events := feedAll(NewParser(), "event: values\ndata: 1\ndata: 2\n\ndata: 3\n")
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for _, ev := range events {
		if ev.Event != "values" {
			t.Errorf("expected event 'values', got %q", ev.Event)
		}
	}
}

func TestParserIgnoresDataBeforeEvent(t *testing.T) {
	events := feedAll(NewParser(), "data: orphan\n: comment\nid: 7\nevent: values\ndata: kept\n")
	want := []StreamEvent{{Event: "values", Data: "kept"}}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("expected %v, got %v", want, events)
	}
}

func TestParserIgnoresInputAfterEnd(t *testing.T) {
	p := NewParser()
	events := feedAll(p, "event: end\ndata: done\nevent: values\ndata: late\n")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d: %v", len(events), events)
	}
	if more := p.Feed([]byte("event: values\ndata: later\n")); more != nil {
		t.Errorf("expected no events after end, got %v", more)
	}
	if err := p.Finish(); err != nil {
		t.Errorf("expected nil from Finish after end, got %v", err)
	}
}

func TestParserFinish(t *testing.T) {
	p := NewParser()
	feedAll(p, "event: values\ndata: 1\n")
	if err := p.Finish(); err != nil {
		t.Errorf("expected nil for clean end, got %v", err)
	}

	p = NewParser()
	events := feedAll(p, "event: values\ndata: 1\nevent: end\ndata: do")
	if len(events) != 1 {
		t.Fatalf("expected 1 complete event, got %d", len(events))
	}
	if err := p.Finish(); !errors.Is(err, ErrIncompleteFrame) {
		t.Errorf("expected ErrIncompleteFrame, got %v", err)
	}
}

// chunkReader serves one chunk per Read and records how many reads happened.
type chunkReader struct {
	chunks []string
	reads  int
	err    error
}

func (r *chunkReader) Read(p []byte) (int, error) {
	r.reads++
	if len(r.chunks) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

func TestReadStreamStopsAfterEnd(t *testing.T) {
	r := &chunkReader{chunks: []string{
		"event: progress\ndata: 10\n",
		"event: end\ndata: done\n",
		"event: values\ndata: never\n",
	}}

	var events []StreamEvent
	err := ReadStream(context.Background(), r, func(ev StreamEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if r.reads != 2 {
		t.Errorf("expected 2 reads, got %d", r.reads)
	}
	if len(r.chunks) != 1 {
		t.Errorf("expected the last chunk to stay unread, %d left", len(r.chunks))
	}
}

func TestReadStreamEOFWithoutEnd(t *testing.T) {
	r := &chunkReader{chunks: []string{"event: values\ndata: 1\n"}}

	var events []StreamEvent
	err := ReadStream(context.Background(), r, func(ev StreamEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("expected nil error at EOF, got %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

func TestReadStreamReadError(t *testing.T) {
	boom := errors.New("connection reset")
	r := &chunkReader{chunks: []string{"event: values\ndata: 1\n"}, err: boom}

	err := ReadStream(context.Background(), r, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestReadStreamCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &chunkReader{chunks: []string{"event: end\ndata: done\n"}}
	err := ReadStream(ctx, r, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if r.reads != 0 {
		t.Errorf("expected no reads on canceled context, got %d", r.reads)
	}
}

func TestReadStreamLargeFrame(t *testing.T) {
	big := strings.Repeat("x", 3*readChunkSize)
	r := strings.NewReader("event: values\ndata: " + big + "\nevent: end\ndata: ok\n")

	var events []StreamEvent
	if err := ReadStream(context.Background(), r, func(ev StreamEvent) {
		events = append(events, ev)
	}); err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 || events[0].Data != big {
		t.Fatalf("expected large frame to be reassembled, got %d events", len(events))
	}
}
