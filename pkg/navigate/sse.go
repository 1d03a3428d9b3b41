package navigate

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"
)

// readChunkSize is the buffer size used when pulling from a stream body.
const readChunkSize = 4096

// Parser reassembles SSE frames from arbitrarily split chunks.
//
// Each "data:" line emits one event tagged with the most recent "event:"
// name. Frames do not need to align with chunk boundaries: the trailing
// partial line, and any partial UTF-8 sequence, are carried into the next
// Feed. Once an "end" event has been emitted the parser ignores all further
// input.
type Parser struct {
	pending []byte
	buf     string
	current string
	done    bool
}

// NewParser returns an empty parser.
func NewParser() *Parser {
	return &Parser{}
}

// Done reports whether the terminal event has been emitted.
func (p *Parser) Done() bool {
	return p.done
}

// Feed appends a chunk and returns the events completed by it, in order.
func (p *Parser) Feed(chunk []byte) []StreamEvent {
	if p.done {
		return nil
	}
	p.buf += p.decode(chunk)

	var events []StreamEvent
	for !p.done {
		i := strings.IndexByte(p.buf, '\n')
		if i < 0 {
			break
		}
		line := p.buf[:i]
		p.buf = p.buf[i+1:]
		if ev, ok := p.processLine(line); ok {
			events = append(events, ev)
		}
	}
	if p.done {
		p.buf = ""
		p.pending = nil
	}
	return events
}

// Finish marks the end of input. Any partial line left in the buffer is
// discarded and reported as ErrIncompleteFrame.
func (p *Parser) Finish() error {
	partial := len(p.pending) > 0 || p.buf != ""
	p.buf = ""
	p.pending = nil
	if partial && !p.done {
		return ErrIncompleteFrame
	}
	return nil
}

// decode converts chunk to text, holding back a trailing incomplete rune.
func (p *Parser) decode(chunk []byte) string {
	data := chunk
	if len(p.pending) > 0 {
		data = append(p.pending, chunk...)
		p.pending = nil
	}

	cut := len(data)
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}
		if !utf8.FullRune(data[i:]) {
			cut = i
		}
		break
	}
	if cut < len(data) {
		p.pending = append([]byte(nil), data[cut:]...)
		data = data[:cut]
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError))
}

func (p *Parser) processLine(line string) (StreamEvent, bool) {
	line = strings.TrimSuffix(line, "\r")
	switch {
	case strings.HasPrefix(line, "event:"):
		p.current = strings.TrimSpace(line[len("event:"):])
	case strings.HasPrefix(line, "data:") && p.current != "":
		ev := StreamEvent{
			Event: p.current,
			Data:  strings.TrimSpace(line[len("data:"):]),
		}
		if ev.Event == EventEnd {
			p.done = true
		}
		return ev, true
	}
	return StreamEvent{}, false
}

// ReadStream pulls chunks from r and invokes onEvent for each decoded event.
// It stops without reading further once the terminal event is delivered.
// Reaching EOF without a terminal event is not an error; ending inside a
// line returns ErrIncompleteFrame. Closing r is the caller's job.
func ReadStream(ctx context.Context, r io.Reader, onEvent func(StreamEvent)) error {
	parser := NewParser()
	buf := make([]byte, readChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			for _, ev := range parser.Feed(buf[:n]) {
				if onEvent != nil {
					onEvent(ev)
				}
			}
			if parser.Done() {
				return nil
			}
		}
		if err == io.EOF {
			return parser.Finish()
		}
		if err != nil {
			return err
		}
	}
}
