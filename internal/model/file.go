// Package model 은 도메인 모델을 정의한다.
package model

import "time"

// FileCategory 는 업로드 파일의 분류를 나타내는 닫힌 열거형이다.
// 확장자 → 분류 매핑 테이블은 upload 패키지에 있다.
type FileCategory string

const (
	// FileCategoryDocument 는 문서 파일(pdf, doc, docx, hwp, txt).
	FileCategoryDocument FileCategory = "DOCUMENT"
	// FileCategorySpreadsheet 는 스프레드시트 파일(xls, xlsx).
	FileCategorySpreadsheet FileCategory = "SPREADSHEET"
	// FileCategoryPresentation 는 프레젠테이션 파일(ppt, pptx).
	FileCategoryPresentation FileCategory = "PRESENTATION"
	// FileCategoryImage 는 이미지 파일(jpg, jpeg, png, gif, webp).
	FileCategoryImage FileCategory = "IMAGE"
	// FileCategoryArchive 는 압축 파일(zip, rar, 7z).
	FileCategoryArchive FileCategory = "ARCHIVE"
	// FileCategoryProgram 는 실행 파일(exe, msi).
	FileCategoryProgram FileCategory = "PROGRAM"
	// FileCategoryOther 는 매핑 테이블에 없는 확장자.
	// 현행 허용 목록 검증이 먼저 수행되므로 실제로는 도달하지 않는다.
	FileCategoryOther FileCategory = "OTHER"
)

// UploadedFile 은 업로드된 파일의 메타데이터를 나타낸다.
// 실제 바이너리는 오브젝트 스토리지에 저장되며 StorageID 로 참조한다.
type UploadedFile struct {
	ID           string
	StorageKey   string // 충돌 회피용으로 생성된 저장 파일명
	OriginalName string
	MimeType     string
	Size         int64
	StoragePath  string // <YYYY>/<MM>/<StorageKey>
	StorageID    string // 스토리지 백엔드의 오브젝트 핸들
	Bucket       string // images 또는 documents
	Category     FileCategory
	Description  string
	IsPublic     bool
	UploaderID   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
