package content

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// charsPerMinute 는 읽기 시간 추정에 사용하는 분당 글자 수.
// 한국어 본문 기준의 보수적인 값이다.
const charsPerMinute = 500

// ExtractText 는 HTML 본문에서 태그를 제거한 순수 텍스트를 추출한다.
// script/style 블록의 내용은 무시하고, 연속 공백은 하나로 접는다.
func ExtractText(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))

	var b strings.Builder
	skipDepth := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return collapseSpaces(b.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isSkippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isSkippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func isSkippedTag(name string) bool {
	return name == "script" || name == "style"
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ReadingMinutes 는 HTML 본문에서 파생한 예상 읽기 시간(분)을 반환한다.
// 비어 있지 않은 본문은 최소 1분으로 취급한다.
func ReadingMinutes(rawHTML string) int {
	text := ExtractText(rawHTML)
	if text == "" {
		return 0
	}

	chars := utf8.RuneCountInString(text)
	minutes := (chars + charsPerMinute - 1) / charsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// ExcerptFromBody 는 HTML 본문에서 maxRunes 글자 이내의 요약문을 생성한다.
// 단어 경계를 존중하지 않고 글자 수로 자른다(한국어 본문은 공백 경계가 약하다).
func ExcerptFromBody(rawHTML string, maxRunes int) string {
	text := ExtractText(rawHTML)
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	cut := runes[:maxRunes]
	// 잘린 끝의 공백은 제거한다.
	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + "…"
}
