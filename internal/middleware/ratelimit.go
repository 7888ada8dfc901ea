package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/sujin/chongmu/internal/model"
)

// RateLimiterConfig 는 레이트 제한 설정을 보유한다.
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // 공개 API 전반의 레이트(req/sec). 120/60 = 2 req/sec
	GeneralBurst    int           // 공개 API 전반의 버스트 크기
	UploadRate      rate.Limit    // 파일 업로드의 레이트(req/sec). 10/60
	UploadBurst     int           // 파일 업로드의 버스트 크기
	CleanupInterval time.Duration // 만료 엔트리 정리 간격
}

// DefaultRateLimiterConfig 는 기본 레이트 제한 설정을 반환한다.
// 공개 API 120 req/min/클라이언트, 업로드 10 req/min/사용자.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0),
		GeneralBurst:    120,
		UploadRate:      rate.Limit(10.0 / 60.0),
		UploadBurst:     10,
		CleanupInterval: 5 * time.Minute,
	}
}

// keyLimiter 는 키별 리미터와 마지막 접근 시각을 보유한다.
type keyLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterPool 은 키(클라이언트 IP 또는 사용자 ID)별 리미터 집합.
type limiterPool struct {
	mu       sync.RWMutex
	limiters map[string]*keyLimiter
	limit    rate.Limit
	burst    int
}

func newLimiterPool(limit rate.Limit, burst int) *limiterPool {
	return &limiterPool{
		limiters: make(map[string]*keyLimiter),
		limit:    limit,
		burst:    burst,
	}
}

// getOrCreate 는 키에 대응하는 리미터를 가져오거나 생성한다.
func (p *limiterPool) getOrCreate(key string) *rate.Limiter {
	p.mu.RLock()
	kl, exists := p.limiters[key]
	p.mu.RUnlock()

	if exists {
		p.mu.Lock()
		kl.lastAccess = time.Now()
		p.mu.Unlock()
		return kl.limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// 이중 확인
	if kl, exists := p.limiters[key]; exists {
		kl.lastAccess = time.Now()
		return kl.limiter
	}

	limiter := rate.NewLimiter(p.limit, p.burst)
	p.limiters[key] = &keyLimiter{limiter: limiter, lastAccess: time.Now()}
	return limiter
}

func (p *limiterPool) count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.limiters)
}

func (p *limiterPool) cleanup(ttl time.Duration) {
	now := time.Now()
	p.mu.Lock()
	for key, kl := range p.limiters {
		if now.Sub(kl.lastAccess) > ttl {
			delete(p.limiters, key)
		}
	}
	p.mu.Unlock()
}

// RateLimiter 는 키별 레이트 제한을 관리한다.
// 공개 API 는 클라이언트 IP 단위, 업로드는 업로더 단위로 제한한다.
type RateLimiter struct {
	config  RateLimiterConfig
	general *limiterPool
	upload  *limiterPool
	stopCh  chan struct{}
}

// NewRateLimiter 는 RateLimiter 를 생성한다.
// 백그라운드에서 만료 엔트리 정리를 시작한다.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		general: newLimiterPool(config.GeneralRate, config.GeneralBurst),
		upload:  newLimiterPool(config.UploadRate, config.UploadBurst),
		stopCh:  make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop 은 정리용 백그라운드 고루틴을 중지한다.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware 는 공개 API 전반의 레이트 제한 미들웨어를 반환한다.
// 클라이언트 IP 단위로 제한한다.
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			limiter := rl.general.getOrCreate(key)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.GeneralRate)
				slog.Warn("rate limit exceeded",
					slog.String("client", key),
					slog.String("limit_type", "general"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UploadMiddleware 는 파일 업로드 전용 레이트 제한 미들웨어를 반환한다.
// 인증된 사용자 ID 단위로 제한하며, 공개 API 제한과 독립적으로 동작한다.
// 인증 미들웨어 뒤에 배치해야 한다.
func (rl *RateLimiter) UploadMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			limiter := rl.upload.getOrCreate(userID)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.UploadRate)
				slog.Warn("rate limit exceeded",
					slog.String("user_id", userID),
					slog.String("limit_type", "upload"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount 는 현재 관리 중인 공개 API 리미터 수를 반환한다.
// 테스트와 메트릭용.
func (rl *RateLimiter) GeneralLimiterCount() int {
	return rl.general.count()
}

// UploadLimiterCount 는 현재 관리 중인 업로드 리미터 수를 반환한다.
// 테스트와 메트릭용.
func (rl *RateLimiter) UploadLimiterCount() int {
	return rl.upload.count()
}

// clientIP 는 요청의 클라이언트 IP 를 추출한다.
// 포트를 제거하고, 분리 실패 시 RemoteAddr 전체를 키로 쓴다.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// cleanupLoop 은 백그라운드에서 만료 엔트리를 주기적으로 정리한다.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ttl := rl.config.CleanupInterval * 2
			rl.general.cleanup(ttl)
			rl.upload.cleanup(ttl)
		case <-rl.stopCh:
			return
		}
	}
}

// writeRateLimitResponse 는 429 Too Many Requests 응답을 쓴다.
// Retry-After 헤더에 토큰 보충까지의 예상 초를 설정한다.
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	WriteErrorResponse(w, http.StatusTooManyRequests, &model.APIError{
		Code:     "RATE_LIMIT_EXCEEDED",
		Message:  "요청이 너무 많습니다.",
		Category: "system",
		Action:   "잠시 후 다시 시도해 주세요.",
	})
}
