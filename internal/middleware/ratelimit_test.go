package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func testRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1),
		GeneralBurst:    2,
		UploadRate:      rate.Limit(1),
		UploadBurst:     1,
		CleanupInterval: time.Minute,
	}
}

// TestGeneralMiddleware_AllowsWithinBurst 는 버스트 이내 요청이 통과하는지 검증한다.
func TestGeneralMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.RemoteAddr = "203.0.113.1:50000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}
}

// TestGeneralMiddleware_BlocksOverBurst 는 버스트 초과 요청이 429 가 되는지 검증한다.
func TestGeneralMiddleware_BlocksOverBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.RemoteAddr = "203.0.113.2:50000"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", last.Code, http.StatusTooManyRequests)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("Retry-After 헤더가 설정되어야 합니다")
	}
}

// TestGeneralMiddleware_SeparateClients 는 클라이언트 IP 별로 독립 제한되는지 검증한다.
func TestGeneralMiddleware_SeparateClients(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 첫 클라이언트의 버스트 소진
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.RemoteAddr = "203.0.113.3:50000"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// 다른 클라이언트는 영향받지 않는다
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.RemoteAddr = "203.0.113.4:50000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount() = %d, want 2", got)
	}
}

// TestUploadMiddleware_RequiresAuth 는 미인증 요청이 401 이 되는지 검증한다.
func TestUploadMiddleware_RequiresAuth(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.UploadMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("미인증 요청이 핸들러에 도달했습니다")
	}))

	req := httptest.NewRequest(http.MethodPost, "/admin/files", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestUploadMiddleware_LimitsPerUser 는 사용자 단위 업로드 제한을 검증한다.
func TestUploadMiddleware_LimitsPerUser(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig())
	defer rl.Stop()

	handler := rl.UploadMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	makeReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/admin/files", nil)
		return req.WithContext(ContextWithUserID(req.Context(), "admin"))
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, makeReq())
	if w.Code != http.StatusCreated {
		t.Errorf("first request: status = %d, want %d", w.Code, http.StatusCreated)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, makeReq())
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second request: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}
