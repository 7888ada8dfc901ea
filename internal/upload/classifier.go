// Package upload 는 파일 업로드의 검증, 분류, 저장 키 생성, 저장 흐름을 제공한다.
package upload

import (
	"path/filepath"
	"strings"

	"github.com/sujin/chongmu/internal/model"
)

// DefaultMaxSize 는 업로드 파일의 기본 최대 크기(10MiB).
const DefaultMaxSize = 10 << 20

// categoryByExt 는 확장자 → 분류 매핑 테이블.
// 이 테이블의 키 집합이 곧 허용 확장자 목록이다.
var categoryByExt = map[string]model.FileCategory{
	"pdf":  model.FileCategoryDocument,
	"doc":  model.FileCategoryDocument,
	"docx": model.FileCategoryDocument,
	"hwp":  model.FileCategoryDocument,
	"txt":  model.FileCategoryDocument,

	"xls":  model.FileCategorySpreadsheet,
	"xlsx": model.FileCategorySpreadsheet,

	"ppt":  model.FileCategoryPresentation,
	"pptx": model.FileCategoryPresentation,

	"jpg":  model.FileCategoryImage,
	"jpeg": model.FileCategoryImage,
	"png":  model.FileCategoryImage,
	"gif":  model.FileCategoryImage,
	"webp": model.FileCategoryImage,

	"zip": model.FileCategoryArchive,
	"rar": model.FileCategoryArchive,
	"7z":  model.FileCategoryArchive,

	"exe": model.FileCategoryProgram,
	"msi": model.FileCategoryProgram,
}

// NormalizeExt 는 파일명에서 소문자화한 확장자(점 제외)를 추출한다.
// 확장자가 없으면 빈 문자열을 반환한다.
func NormalizeExt(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// IsAllowedExt 는 확장자가 허용 목록에 있는지 반환한다.
func IsAllowedExt(ext string) bool {
	_, ok := categoryByExt[strings.ToLower(ext)]
	return ok
}

// Validate 는 업로드 파일을 검증한다. 크기 검사가 확장자 검사보다 먼저다.
// maxSize 가 0 이하이면 DefaultMaxSize 를 사용한다. 통과 시 nil 을 반환한다.
func Validate(name string, size, maxSize int64) *model.APIError {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if size > maxSize {
		return model.NewSizeExceededError(maxSize)
	}
	if !IsAllowedExt(NormalizeExt(name)) {
		return model.NewUnsupportedTypeError(NormalizeExt(name))
	}
	return nil
}

// Classify 는 확장자를 파일 분류로 매핑한다.
// 테이블에 없는 확장자는 OTHER 로 분류되지만, Validate 가 허용 목록으로
// 먼저 거르기 때문에 정상 흐름에서 OTHER 는 도달하지 않는다.
func Classify(ext string) model.FileCategory {
	if category, ok := categoryByExt[strings.ToLower(ext)]; ok {
		return category
	}
	return model.FileCategoryOther
}

// BucketFor 는 분류에 대응하는 스토리지 버킷명을 반환한다.
// 이미지는 images, 그 외 전부 documents.
func BucketFor(category model.FileCategory) string {
	if category == model.FileCategoryImage {
		return "images"
	}
	return "documents"
}
