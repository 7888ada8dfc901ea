package middleware

import "net/http"

// NewSecurityHeadersMiddleware 는 기본 보안 헤더를 부여하는 미들웨어를 반환한다.
// 업로드 파일 다운로드 응답에서의 콘텐츠 스니핑을 막기 위해
// X-Content-Type-Options 를 항상 설정한다.
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}
