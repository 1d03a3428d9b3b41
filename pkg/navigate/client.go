package navigate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// Client publishes visualization documents to the Navigate Chat API.
type Client struct {
	config     *Config
	baseURL    string
	httpClient *http.Client
	tokens     *TokenCache
	logger     *slog.Logger
}

// New creates a Navigate client with the given configuration.
func New(config *Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config:     config,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		tokens:     NewTokenCache(config.BaseURL, config.Email, config.Password, config.TokenTTL, httpClient),
		logger:     logger,
	}
}

// Tokens exposes the client's credential cache.
func (c *Client) Tokens() *TokenCache {
	return c.tokens
}

// Authenticate ensures the client holds a valid credential.
func (c *Client) Authenticate(ctx context.Context) (Credential, error) {
	return c.tokens.Ensure(ctx)
}

// CreateThread opens a new remote thread.
func (c *Client) CreateThread(ctx context.Context, create ThreadCreate) (*Thread, error) {
	resp, err := c.postJSON(ctx, "/api/chat/new", create, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteRequestError{
			Op:         "create thread",
			StatusCode: resp.StatusCode,
			Body:       readErrorBody(resp.Body),
		}
	}

	var thread Thread
	if err := json.NewDecoder(resp.Body).Decode(&thread); err != nil {
		return nil, fmt.Errorf("parsing thread response: %w", err)
	}
	if thread.ThreadID == "" {
		return nil, fmt.Errorf("thread response has no thread_id")
	}
	c.logger.Debug("thread created", "thread_id", thread.ThreadID, "graph_id", create.GraphID)
	return &thread, nil
}

// StreamRun streams document into the thread as a human message and calls
// onEvent for each SSE event until the terminal event or end of stream.
// A response body that ends before its first byte fails with
// ErrNoStreamBody; a stream that sends anything and then ends without the
// terminal event is not an error.
func (c *Client) StreamRun(ctx context.Context, threadID string, document any, onEvent func(StreamEvent)) error {
	payload, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}

	run := runCreate{
		Input: runInput{
			Messages: []runMessage{{Type: "human", Content: string(payload)}},
		},
		Stream:     true,
		StreamMode: []string{"values", "messages"},
	}

	path := "/api/threads/" + url.PathEscape(threadID) + "/runs/stream"
	resp, err := c.postJSON(ctx, path, run, "text/event-stream")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteRequestError{
			Op:         "stream run",
			StatusCode: resp.StatusCode,
			Body:       readErrorBody(resp.Body),
		}
	}
	// http.Client swaps a nil Body for an empty reader, so an absent body
	// only shows up as one that yields no bytes at all.
	body := bufio.NewReaderSize(resp.Body, readChunkSize)
	if _, err := body.Peek(1); errors.Is(err, io.EOF) {
		return &StreamTransportError{Err: ErrNoStreamBody}
	}

	err = ReadStream(ctx, body, onEvent)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrIncompleteFrame):
		c.logger.Warn("stream ended mid-frame", "thread_id", threadID)
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return &StreamTransportError{Err: err}
	}
}

// Publish creates a thread tagged with SourceTag and streams document into
// it. Succeeded reports whether the remote side sent the terminal event.
func (c *Client) Publish(ctx context.Context, document any, metadata map[string]any) (*PublishResult, error) {
	thread, err := c.CreateThread(ctx, ThreadCreate{
		GraphID:  DefaultGraphID,
		Metadata: c.mergeMetadata(metadata),
	})
	if err != nil {
		return nil, err
	}

	var events []StreamEvent
	if err := c.StreamRun(ctx, thread.ThreadID, document, func(ev StreamEvent) {
		events = append(events, ev)
	}); err != nil {
		return nil, err
	}

	result := &PublishResult{ThreadID: thread.ThreadID}
	for _, ev := range events {
		if ev.Event == EventEnd {
			result.Succeeded = true
			break
		}
	}
	c.logger.Info("visualization published",
		"thread_id", result.ThreadID,
		"events", len(events),
		"succeeded", result.Succeeded,
	)
	return result, nil
}

// ThreadURL returns the browser URL of a thread.
func (c *Client) ThreadURL(threadID string) string {
	return ThreadURL(c.config.BaseURL, threadID)
}

var apiSuffix = regexp.MustCompile(`/api/?$`)

// ThreadURL derives the chat UI URL for threadID from an API base URL.
func ThreadURL(baseURL, threadID string) string {
	base := apiSuffix.ReplaceAllString(baseURL, "")
	base = strings.TrimSuffix(base, "/")
	return base + "/chat/" + threadID
}

// mergeMetadata layers caller metadata over the configured defaults and
// pins the source tag.
func (c *Client) mergeMetadata(metadata map[string]any) map[string]any {
	merged := make(map[string]any, len(c.config.Metadata)+len(metadata)+1)
	for k, v := range c.config.Metadata {
		merged[k] = v
	}
	for k, v := range metadata {
		merged[k] = v
	}
	merged["source"] = SourceTag
	return merged
}

// postJSON sends an authenticated JSON POST. The caller owns the response.
func (c *Client) postJSON(ctx context.Context, path string, payload any, accept string) (*http.Response, error) {
	cred, err := c.tokens.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	return resp, nil
}
