package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kestrelindex/beindex/internal/beindex"
	"github.com/kestrelindex/beindex/pkg/health"
	"github.com/kestrelindex/beindex/pkg/metrics"
)

func buildTestIndex(t *testing.T) *beindex.Index[string] {
	t.Helper()
	conj := &beindex.Conjunction[string]{}
	conj.In("a", beindex.Ints(3)).In("b", beindex.Strings("y"))
	idx, err := beindex.Build([]beindex.Document[string]{{Conjunctions: []beindex.Conjunction[string]{*conj}}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestRetrieveHandlerMatches(t *testing.T) {
	idx := buildTestIndex(t)
	checker := health.NewChecker()
	handler := New(idx, checker, nil)

	body := bytes.NewBufferString(`{"assignment": {"a": [3], "b": ["x", "y", "z"]}}`)
	req := httptest.NewRequest(http.MethodPost, "/retrieve", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	var resp retrieveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(resp.DocumentIDs) != 1 || resp.DocumentIDs[0] != 0 {
		t.Errorf("DocumentIDs = %v, want [0]", resp.DocumentIDs)
	}
}

func TestRetrieveHandlerNonMatch(t *testing.T) {
	idx := buildTestIndex(t)
	handler := New(idx, health.NewChecker(), nil)

	body := bytes.NewBufferString(`{"assignment": {"a": [3], "b": ["x", "z"]}}`)
	req := httptest.NewRequest(http.MethodPost, "/retrieve", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp retrieveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(resp.DocumentIDs) != 0 {
		t.Errorf("DocumentIDs = %v, want empty", resp.DocumentIDs)
	}
}

func TestRetrieveHandlerRejectsMalformedBody(t *testing.T) {
	idx := buildTestIndex(t)
	handler := New(idx, health.NewChecker(), nil)

	req := httptest.NewRequest(http.MethodPost, "/retrieve", bytes.NewBufferString(`not json`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRetrieveHandlerRecordsMetrics(t *testing.T) {
	idx := buildTestIndex(t)
	m := metrics.New()
	handler := New(idx, health.NewChecker(), m)

	body := bytes.NewBufferString(`{"assignment": {"a": [3], "b": ["x", "y", "z"]}}`)
	req := httptest.NewRequest(http.MethodPost, "/retrieve", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	if count := testutil.CollectAndCount(m.RetrieveDuration); count != 1 {
		t.Errorf("RetrieveDuration series count = %d, want 1", count)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/retrieve", "200")); got != 1 {
		t.Errorf("HTTPRequestsTotal = %v, want 1", got)
	}
}

func TestHealthzReturnsOK(t *testing.T) {
	idx := buildTestIndex(t)
	handler := New(idx, health.NewChecker(), nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
