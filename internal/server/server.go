// Package server exposes a built Index over HTTP: POST /retrieve runs one
// query, GET /healthz and /readyz report liveness/readiness via pkg/health,
// and GET /metrics exposes the collectors in pkg/metrics. Grounded on the
// teacher's gateway/searcher handler and router wiring.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kestrelindex/beindex/internal/beindex"
	apperrors "github.com/kestrelindex/beindex/pkg/errors"
	"github.com/kestrelindex/beindex/pkg/health"
	"github.com/kestrelindex/beindex/pkg/logger"
	"github.com/kestrelindex/beindex/pkg/metrics"
)

// Handler serves retrievals against one already-built Index. Index is
// immutable after Build, so Handler needs no locking to serve concurrent
// requests (see the Index concurrency contract).
type Handler struct {
	index   *beindex.Index[string]
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewHandler(index *beindex.Index[string], m *metrics.Metrics) *Handler {
	return &Handler{
		index:   index,
		metrics: m,
		logger:  slog.Default().With("component", "server"),
	}
}

// retrieveRequest is the JSON body of POST /retrieve: a map from predicate
// key to the values assigned to it. A list of JSON integers is read as
// ints and a list of JSON strings as strings; any other value is rejected.
// A document's predicates commit to one domain per key, so the assignment
// for that key must match it.
type retrieveRequest struct {
	Assignment map[string]json.RawMessage `json:"assignment"`
}

type retrieveResponse struct {
	DocumentIDs []uint64 `json:"document_ids"`
}

func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())

	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		appErr := apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "malformed request body")
		h.writeError(w, appErr.StatusCode, appErr.Error())
		return
	}

	assignment, err := decodeAssignment(req.Assignment)
	if err != nil {
		appErr := apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, err.Error())
		h.writeError(w, apperrors.HTTPStatusCode(appErr), appErr.Error())
		return
	}

	result := beindex.NewResultSet()
	h.index.Retrieve(result, assignment)
	ids := result.DocumentIDs()

	latency := time.Since(start)
	if h.metrics != nil {
		outcome := "miss"
		if len(ids) > 0 {
			outcome = "hit"
		}
		h.metrics.RetrieveDuration.WithLabelValues(outcome).Observe(latency.Seconds())
		h.metrics.RetrieveMatchesCount.Observe(float64(len(ids)))
	}
	log.Info("retrieve completed", "matches", len(ids), "latency_ms", latency.Milliseconds())

	h.writeJSON(w, http.StatusOK, retrieveResponse{DocumentIDs: ids})
}

// decodeAssignment converts a JSON assignment body into a MapAssignment,
// inferring per-key value domain from the JSON value shapes: a list of
// JSON numbers becomes Ints, a list of JSON strings becomes Strings.
func decodeAssignment(raw map[string]json.RawMessage) (*beindex.MapAssignment[string], error) {
	assignment := beindex.NewMapAssignment[string]()
	for key, msg := range raw {
		var ints []int64
		if err := json.Unmarshal(msg, &ints); err == nil {
			assignment.Bind(key, beindex.Ints(ints...))
			continue
		}
		var strs []string
		if err := json.Unmarshal(msg, &strs); err == nil {
			assignment.Bind(key, beindex.Strings(strs...))
			continue
		}
		return nil, fmt.Errorf("assignment key %q: values must be a list of numbers or a list of strings", key)
	}
	return assignment, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// New builds the full HTTP handler: /retrieve, health, and (if m is
// non-nil) metrics, wrapped with a request-id middleware in the teacher's
// style, and (if m is non-nil) an HTTP request-metrics middleware.
func New(index *beindex.Index[string], checker *health.Checker, m *metrics.Metrics) http.Handler {
	h := NewHandler(index, m)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /retrieve", h.Retrieve)
	mux.HandleFunc("GET /healthz", checker.LiveHandler())
	mux.HandleFunc("GET /readyz", checker.ReadyHandler())
	if m != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	var handler http.Handler = mux
	if m != nil {
		handler = instrumentRequests(m, handler)
	}
	return requestID(handler)
}

// instrumentRequests records HTTPRequestsTotal, HTTPRequestDuration, and
// HTTPRequestsInFlight around every request, labeled by method, request
// path, and response status.
func instrumentRequests(m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.URL.Path
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
	})
}

// statusWriter captures the status code written through an
// http.ResponseWriter so the metrics middleware can label by it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// requestID stamps every inbound request with a correlation id consumed by
// pkg/logger's FromContext, mirroring the teacher's pkg/middleware.RequestID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = fmt.Sprintf("%d", time.Now().UnixNano())
		}
		w.Header().Set("X-Request-ID", id)
		ctx := logger.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Shutdown gracefully stops srv, waiting up to timeout for in-flight
// requests to complete.
func Shutdown(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
