// Package server exposes the tool registry over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Asar007/claude-code-compact-mcp/internal/prompts"
	"github.com/Asar007/claude-code-compact-mcp/internal/publish"
	"github.com/Asar007/claude-code-compact-mcp/internal/tools"
	"github.com/Asar007/claude-code-compact-mcp/internal/types"
)

const maxBodyBytes = 16 << 20

// Options configure optional parts of the server.
type Options struct {
	// Token, when set, is required as a bearer token (or X-API-Key) on
	// every route except /health and /metrics.
	Token string
	// Publisher enables POST /publish. Nil leaves the route answering 503.
	Publisher   types.Publisher
	Concurrency int
	Logger      *slog.Logger
}

// Server is the HTTP handler for the tool endpoints.
type Server struct {
	registry *tools.Registry
	opts     Options
	logger   *slog.Logger
	handler  http.Handler
}

// NewServer creates a Server dispatching to registry.
func NewServer(registry *tools.Registry, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{registry: registry, opts: opts, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /tools", s.auth(http.HandlerFunc(s.handleListTools)))
	mux.Handle("POST /tools/{name}", s.auth(http.HandlerFunc(s.handleCallTool)))
	mux.Handle("POST /publish", s.auth(http.HandlerFunc(s.handlePublish)))
	mux.Handle("GET /prompts", s.auth(http.HandlerFunc(s.handleListPrompts)))
	mux.Handle("GET /prompts/{name}", s.auth(http.HandlerFunc(s.handleGetPrompt)))

	s.handler = s.requestID(s.observe(mux))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.registry.Definitions()})
}

func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"prompts": prompts.List()})
}

// handleGetPrompt renders a prompt; query parameters are its arguments.
func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	args := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			args[k] = v[0]
		}
	}
	res, err := prompts.Get(r.PathValue("name"), args)
	switch {
	case errors.Is(err, prompts.ErrUnknownPrompt):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

// handleCallTool runs a tool with the request body as its arguments.
// Executed tools answer 200 whether or not they succeeded; the outcome is
// in the result envelope.
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, ok := s.registry.Get(name); !ok {
		writeJSON(w, http.StatusNotFound, types.ToolResult{Error: "unknown tool: " + name})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "read body failed")
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	result := s.registry.Call(r.Context(), name, body)
	if !result.Success {
		s.logger.Info("tool call failed", "tool", name, "request_id", requestIDFrom(r), "error", result.Error)
	}
	writeJSON(w, http.StatusOK, result)
}

type publishRequest struct {
	Items []publish.Item `json:"items"`
}

type publishResponse struct {
	Outcomes []publish.Outcome `json:"outcomes"`
	Summary  publish.Summary   `json:"summary"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if s.opts.Publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "navigate chat is not configured")
		return
	}

	var req publishRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "items are required")
		return
	}
	for _, item := range req.Items {
		if len(item.Document) == 0 {
			writeError(w, http.StatusBadRequest, "every item needs a document")
			return
		}
	}

	batch := publish.NewBatch(s.opts.Publisher, s.opts.Concurrency, s.logger.With("request_id", requestIDFrom(r)))
	outcomes := batch.Run(r.Context(), req.Items)
	writeJSON(w, http.StatusOK, publishResponse{Outcomes: outcomes, Summary: publish.Summarize(outcomes)})
}
