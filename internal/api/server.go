// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/Sankalp-SISL/MIDC-chatbot/internal/common/errors"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/logger"
	"github.com/Sankalp-SISL/MIDC-chatbot/internal/common/metrics"
	composeanswer "github.com/Sankalp-SISL/MIDC-chatbot/internal/workers/grounded-answer/compose-answer"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const requestIDHeader = "X-Request-ID"

// Answerer runs the answer pipeline for one question.
type Answerer interface {
	Execute(ctx context.Context, input *composeanswer.Input) (*composeanswer.Output, error)
}

// ReadinessChecker reports whether the knowledge snapshot has loaded.
type ReadinessChecker interface {
	Ready() bool
}

type Server struct {
	answerer Answerer
	ready    ReadinessChecker
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewServer(answerer Answerer, ready ReadinessChecker, log logger.Logger) *Server {
	log = log.WithFields(map[string]interface{}{"component": "api"})
	return &Server{
		answerer: answerer,
		ready:    ready,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

// Routes returns the service's HTTP handler with middleware applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	return s.withRequestContext(mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("MIDC Chatbot is running"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil && !s.ready.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestContext assigns a request id, attaches a request-scoped logger
// to the context, and records an access log line and request counter.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		reqLog := s.logger.With(map[string]interface{}{"requestId": id})
		r = r.WithContext(logger.IntoContext(r.Context(), reqLog))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
		reqLog.Info("http request", map[string]interface{}{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    rec.status,
			"elapsedMs": time.Since(started).Milliseconds(),
		})
	})
}
