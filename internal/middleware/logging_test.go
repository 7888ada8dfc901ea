package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestLoggingMiddleware_LogsRequest 는 요청 로그에 필수 필드가 있는지 검증한다.
func TestLoggingMiddleware_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	mw := NewLoggingMiddleware(logger)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/posts/no-such-slug", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("로그 해석에 실패했습니다: %v", err)
	}

	if entry["method"] != "GET" {
		t.Errorf("method = %v, want GET", entry["method"])
	}
	if entry["path"] != "/api/posts/no-such-slug" {
		t.Errorf("path = %v", entry["path"])
	}
	if entry["status"] != float64(http.StatusNotFound) {
		t.Errorf("status = %v, want 404", entry["status"])
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN (4xx)", entry["level"])
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("duration_ms 필드가 없습니다")
	}
}

// TestMetricsMiddleware_RecordsStatus 는 상태 코드가 기록되는지 검증한다.
func TestMetricsMiddleware_RecordsStatus(t *testing.T) {
	recorded := make([]int, 0, 2)
	recorder := statusRecorderFunc(func(code int) { recorded = append(recorded, code) })

	mw := NewMetricsMiddleware(recorder)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/posts", nil))

	if len(recorded) != 1 || recorded[0] != http.StatusCreated {
		t.Errorf("recorded = %v, want [201]", recorded)
	}
}

type statusRecorderFunc func(int)

func (f statusRecorderFunc) RecordHTTPStatus(code int) { f(code) }
