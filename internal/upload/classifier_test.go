package upload

import (
	"errors"
	"testing"

	"github.com/sujin/chongmu/internal/model"
)

// TestValidate_SizeBoundary 는 최대 크기 경계값 판정을 검증한다.
func TestValidate_SizeBoundary(t *testing.T) {
	// 정확히 최대 크기는 통과한다.
	if err := Validate("report.pdf", DefaultMaxSize, DefaultMaxSize); err != nil {
		t.Errorf("Validate(크기 == 최대) error = %v, want nil", err)
	}

	// 1바이트 초과는 거부한다.
	err := Validate("report.pdf", DefaultMaxSize+1, DefaultMaxSize)
	if err == nil || err.Code != model.ErrCodeSizeExceeded {
		t.Errorf("Validate(크기 초과) = %v, want SIZE_EXCEEDED", err)
	}
}

// TestValidate_SizeCheckedBeforeExt 는 크기 검사가 확장자 검사보다 먼저인지 검증한다.
// 허용되지 않는 확장자라도 크기 초과면 SIZE_EXCEEDED 가 반환되어야 한다.
func TestValidate_SizeCheckedBeforeExt(t *testing.T) {
	err := Validate("huge.bin", DefaultMaxSize+1, DefaultMaxSize)
	if err == nil || err.Code != model.ErrCodeSizeExceeded {
		t.Errorf("error = %v, want SIZE_EXCEEDED (확장자보다 크기 우선)", err)
	}
}

// TestValidate_UnsupportedExt 는 허용 목록 밖 확장자의 거부를 검증한다.
func TestValidate_UnsupportedExt(t *testing.T) {
	tests := []string{"script.sh", "page.html", "noext", "archive.tar.gz"}
	for _, name := range tests {
		err := Validate(name, 1024, DefaultMaxSize)
		if err == nil || err.Code != model.ErrCodeUnsupportedType {
			t.Errorf("Validate(%q) = %v, want UNSUPPORTED_TYPE", name, err)
		}
	}
}

// TestValidate_ReturnsAPIError 는 에러가 APIError 로 언래핑되는지 검증한다.
func TestValidate_ReturnsAPIError(t *testing.T) {
	var err error = Validate("malware.bat", 10, DefaultMaxSize)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error 타입 = %T, want *model.APIError", err)
	}
}

// TestClassify_Table 은 확장자 → 분류 매핑 전체를 검증한다.
func TestClassify_Table(t *testing.T) {
	tests := []struct {
		ext  string
		want model.FileCategory
	}{
		{"pdf", model.FileCategoryDocument},
		{"doc", model.FileCategoryDocument},
		{"docx", model.FileCategoryDocument},
		{"hwp", model.FileCategoryDocument},
		{"txt", model.FileCategoryDocument},
		{"xls", model.FileCategorySpreadsheet},
		{"xlsx", model.FileCategorySpreadsheet},
		{"ppt", model.FileCategoryPresentation},
		{"pptx", model.FileCategoryPresentation},
		{"jpg", model.FileCategoryImage},
		{"jpeg", model.FileCategoryImage},
		{"png", model.FileCategoryImage},
		{"gif", model.FileCategoryImage},
		{"webp", model.FileCategoryImage},
		{"zip", model.FileCategoryArchive},
		{"rar", model.FileCategoryArchive},
		{"7z", model.FileCategoryArchive},
		{"exe", model.FileCategoryProgram},
		{"msi", model.FileCategoryProgram},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := Classify(tt.ext); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}

// TestClassify_UnknownIsOther 는 테이블 밖 확장자의 OTHER 분류를 검증한다.
// 정상 흐름에서는 Validate 가 먼저 거르므로 도달하지 않는 방어적 분기다.
func TestClassify_UnknownIsOther(t *testing.T) {
	if got := Classify("xyz"); got != model.FileCategoryOther {
		t.Errorf("Classify(xyz) = %v, want OTHER", got)
	}
}

// TestClassify_CaseInsensitive 는 대문자 확장자 처리를 검증한다.
func TestClassify_CaseInsensitive(t *testing.T) {
	if got := Classify("PDF"); got != model.FileCategoryDocument {
		t.Errorf("Classify(PDF) = %v, want DOCUMENT", got)
	}
}

// TestNormalizeExt 는 확장자 추출 규칙을 검증한다.
func TestNormalizeExt(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"report.PDF", "pdf"},
		{"임대차계약서.hwp", "hwp"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{".gitignore", "gitignore"},
	}

	for _, tt := range tests {
		if got := NormalizeExt(tt.name); got != tt.want {
			t.Errorf("NormalizeExt(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

// TestBucketFor 는 분류 → 버킷 매핑을 검증한다.
func TestBucketFor(t *testing.T) {
	if got := BucketFor(model.FileCategoryImage); got != "images" {
		t.Errorf("BucketFor(IMAGE) = %q, want images", got)
	}

	// 이미지 외 전부 documents
	for _, c := range []model.FileCategory{
		model.FileCategoryDocument,
		model.FileCategorySpreadsheet,
		model.FileCategoryPresentation,
		model.FileCategoryArchive,
		model.FileCategoryProgram,
		model.FileCategoryOther,
	} {
		if got := BucketFor(c); got != "documents" {
			t.Errorf("BucketFor(%v) = %q, want documents", c, got)
		}
	}
}
