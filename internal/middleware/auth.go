// Package middleware 는 HTTP 미들웨어를 제공한다.
package middleware

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/sujin/chongmu/internal/model"
)

// contextKey 는 컨텍스트에 값을 저장하기 위한 타입 안전 키.
type contextKey string

// userIDContextKey 는 요청 컨텍스트에 사용자 ID를 저장하는 키.
var userIDContextKey = contextKey("user_id")

// NewAdminAuthMiddleware 는 Authorization: Bearer 헤더의 관리자 토큰을
// 검증하는 미들웨어를 반환한다. 검증 성공 시 관리자 사용자 ID를
// 요청 컨텍스트에 주입하고, 실패 시 401 을 반환한다.
// 토큰 비교는 타이밍 공격을 피하기 위해 상수 시간으로 수행한다.
func NewAdminAuthMiddleware(adminToken, adminUserID string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, adminUserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken 은 Authorization 헤더에서 Bearer 토큰을 추출한다.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// UserIDFromContext 는 요청 컨텍스트에서 사용자 ID를 가져온다.
// 인증 미들웨어를 통과한 요청에서만 유효하다.
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("컨텍스트에 사용자 ID가 없습니다")
	}
	return userID, nil
}

// ContextWithUserID 는 컨텍스트에 사용자 ID를 주입한다.
// 테스트와 미들웨어 외부의 컨텍스트 생성에 사용한다.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
