package content

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// TestExtractText 는 HTML 태그 제거와 공백 정리를 검증한다.
func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"단순 문단", "<p>안녕하세요</p>", "안녕하세요"},
		{"중첩 태그", "<div><p>비품 <strong>신청</strong> 안내</p></div>", "비품 신청 안내"},
		{"script 무시", "<p>본문</p><script>alert(1)</script>", "본문"},
		{"style 무시", "<style>p{color:red}</style><p>본문</p>", "본문"},
		{"연속 공백 접기", "<p>첫째</p>\n\n<p>둘째</p>", "첫째 둘째"},
		{"빈 입력", "", ""},
		{"태그만", "<p></p><br/>", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(tt.html); got != tt.want {
				t.Errorf("ExtractText(%q) = %q, want %q", tt.html, got, tt.want)
			}
		})
	}
}

// TestReadingMinutes 는 읽기 시간 추정을 검증한다.
func TestReadingMinutes(t *testing.T) {
	if got := ReadingMinutes(""); got != 0 {
		t.Errorf("ReadingMinutes(빈 본문) = %d, want 0", got)
	}

	// 짧은 본문도 최소 1분
	if got := ReadingMinutes("<p>짧은 공지</p>"); got != 1 {
		t.Errorf("ReadingMinutes(짧은 본문) = %d, want 1", got)
	}

	// 500자 초과 1000자 이하는 2분
	long := "<p>" + strings.Repeat("가", 700) + "</p>"
	if got := ReadingMinutes(long); got != 2 {
		t.Errorf("ReadingMinutes(700자) = %d, want 2", got)
	}
}

// TestExcerptFromBody 는 요약문 파생을 검증한다.
func TestExcerptFromBody(t *testing.T) {
	// 짧은 본문은 그대로
	if got := ExcerptFromBody("<p>전체 공지 내용</p>", 150); got != "전체 공지 내용" {
		t.Errorf("ExcerptFromBody = %q", got)
	}

	// 긴 본문은 글자 수로 잘리고 말줄임표가 붙는다
	long := "<p>" + strings.Repeat("나", 300) + "</p>"
	got := ExcerptFromBody(long, 150)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("말줄임표가 없습니다: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 151 {
		t.Errorf("요약 길이 = %d자, want 151자(150 + 말줄임표)", n)
	}
}
