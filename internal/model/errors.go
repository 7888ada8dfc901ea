// Package model 은 도메인 모델을 정의한다.
package model

import "fmt"

// APIError 는 통일 에러 포맷을 나타낸다.
// UI에 표시할 원인 카테고리와 대처 방법을 포함한다.
type APIError struct {
	Code     string // 에러 코드
	Message  string // 에러 메시지
	Category string // 카테고리: auth, validation, content, file, system
	Action   string // 사용자 대처 방법
}

// Error 는 error 인터페이스를 구현한다.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 정의된 에러 코드
const (
	ErrCodeSizeExceeded      = "SIZE_EXCEEDED"
	ErrCodeUnsupportedType   = "UNSUPPORTED_TYPE"
	ErrCodeNotFoundForbidden = "NOT_FOUND_OR_FORBIDDEN"
	ErrCodeStoreFailure      = "STORE_FAILURE"
	ErrCodePartialDelete     = "PARTIAL_DELETE"
	ErrCodePostNotFound      = "POST_NOT_FOUND"
	ErrCodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	ErrCodeDuplicateSlug     = "DUPLICATE_SLUG"
	ErrCodeInvalidTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
)

// NewSizeExceededError 는 파일 크기 초과 에러를 생성한다.
func NewSizeExceededError(maxBytes int64) *APIError {
	return &APIError{
		Code:     ErrCodeSizeExceeded,
		Message:  fmt.Sprintf("파일 크기가 최대 허용치(%dMB)를 초과했습니다.", maxBytes/(1024*1024)),
		Category: "file",
		Action:   "파일 크기를 줄이거나 분할하여 다시 업로드해 주세요.",
	}
}

// NewUnsupportedTypeError 는 허용되지 않은 파일 형식 에러를 생성한다.
func NewUnsupportedTypeError(ext string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedType,
		Message:  fmt.Sprintf("지원하지 않는 파일 형식입니다: %s", ext),
		Category: "file",
		Action:   "문서, 스프레드시트, 이미지, 압축 파일 등 허용된 형식으로 업로드해 주세요.",
	}
}

// NewNotFoundOrForbiddenError 는 파일이 없거나 소유자가 아닌 경우의 에러를 생성한다.
// 존재 여부와 권한 여부를 구분해 노출하지 않는다.
func NewNotFoundOrForbiddenError(fileID string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFoundForbidden,
		Message:  fmt.Sprintf("파일을 찾을 수 없거나 삭제 권한이 없습니다: %s", fileID),
		Category: "file",
		Action:   "파일 ID와 업로더 계정을 확인해 주세요.",
	}
}

// NewStoreFailureError 는 백엔드 저장소에서 전파된 실패를 생성한다.
// 원인은 로그에만 기록하고 사용자에게는 일반화된 메시지를 반환한다.
func NewStoreFailureError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreFailure,
		Message:  "저장소 처리 중 오류가 발생했습니다.",
		Category: "system",
		Action:   "잠시 후 다시 시도해 주세요.",
	}
}

// NewPartialDeleteError 는 스토리지 삭제 성공 후 메타데이터 삭제가 실패한
// 부분 실패 상태를 생성한다. 전체 성공이나 전체 실패로 가장하지 않는다.
func NewPartialDeleteError(fileID string) *APIError {
	return &APIError{
		Code:     ErrCodePartialDelete,
		Message:  fmt.Sprintf("파일 본문은 삭제되었으나 메타데이터 삭제에 실패했습니다: %s", fileID),
		Category: "file",
		Action:   "남은 메타데이터는 정리 작업에서 자동으로 회수됩니다. 목록에 잔여 항목이 보이면 잠시 후 확인해 주세요.",
	}
}

// NewPostNotFoundError 는 게시글 미검출 에러를 생성한다.
func NewPostNotFoundError(ref string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("게시글을 찾을 수 없습니다: %s", ref),
		Category: "content",
		Action:   "게시글 주소를 확인해 주세요.",
	}
}

// NewCategoryNotFoundError 는 카테고리 미검출 에러를 생성한다.
func NewCategoryNotFoundError(ref string) *APIError {
	return &APIError{
		Code:     ErrCodeCategoryNotFound,
		Message:  fmt.Sprintf("카테고리를 찾을 수 없습니다: %s", ref),
		Category: "content",
		Action:   "존재하는 카테고리를 지정해 주세요.",
	}
}

// NewDuplicateSlugError 는 slug 중복 에러를 생성한다.
func NewDuplicateSlugError(slug string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateSlug,
		Message:  fmt.Sprintf("이미 사용 중인 slug 입니다: %s", slug),
		Category: "validation",
		Action:   "다른 slug 를 지정해 주세요.",
	}
}

// NewInvalidTransitionError 는 허용되지 않은 상태 전이 에러를 생성한다.
func NewInvalidTransitionError(from, to PostStatus) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTransition,
		Message:  fmt.Sprintf("허용되지 않은 상태 전이입니다: %s → %s", from, to),
		Category: "validation",
		Action:   "상태 전이는 draft → published → archived 순서로만 가능합니다.",
	}
}

// NewInvalidRequestError 는 요청 형식 오류를 생성한다.
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("잘못된 요청입니다: %s", reason),
		Category: "validation",
		Action:   "요청 형식을 확인해 주세요.",
	}
}

// NewUnauthorizedError 는 인증 실패 에러를 생성한다.
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "인증이 필요합니다.",
		Category: "auth",
		Action:   "관리자 토큰을 확인해 주세요.",
	}
}
