package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Asar007/claude-code-compact-mcp/internal/metrics"
	"github.com/Asar007/claude-code-compact-mcp/internal/types"
)

type ctxKey struct{}

func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(types.RequestID)
	return string(id)
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := types.RequestID(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = types.NewRequestID()
		}
		w.Header().Set("X-Request-ID", string(id))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// observe logs each request and records its metrics under the matched
// route pattern.
func (s *Server) observe(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		mux.ServeHTTP(rec, r)

		latency := time.Since(start)
		_, pattern := mux.Handler(r)
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.ObserveHTTPRequest(r.Method, pattern, rec.status, latency)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", latency,
			"request_id", requestIDFrom(r),
		)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	if s.opts.Token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if strings.HasPrefix(token, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
		}
		if token == "" {
			token = r.Header.Get("X-API-Key")
		}
		if token != s.opts.Token {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
