package navigate

import (
	"errors"
	"fmt"
)

// ErrNoStreamBody is wrapped by a StreamTransportError when a stream
// response carries no body, or one that ends before its first byte.
var ErrNoStreamBody = errors.New("no response body for SSE stream")

// ErrIncompleteFrame is returned by Parser.Finish when the stream ended in
// the middle of a line.
var ErrIncompleteFrame = errors.New("stream ended inside an SSE frame")

// AuthenticationError reports a rejected login.
type AuthenticationError struct {
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %d %s", e.StatusCode, e.Body)
}

// RemoteRequestError reports a non-2xx response from thread creation or
// stream initiation.
type RemoteRequestError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RemoteRequestError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.StatusCode, e.Body)
}

// StreamTransportError reports a stream whose body could not be read.
type StreamTransportError struct {
	Err error
}

func (e *StreamTransportError) Error() string {
	return "stream transport: " + e.Err.Error()
}

func (e *StreamTransportError) Unwrap() error { return e.Err }
