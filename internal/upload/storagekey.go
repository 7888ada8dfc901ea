package upload

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// sanitizedMaxRunes 는 저장 키에 포함되는 원본 파일명 부분의 최대 글자 수.
const sanitizedMaxRunes = 50

// GenerateStorageKey 는 충돌 회피용 저장 파일명을 생성한다.
// 형식: <밀리초 타임스탬프>_<8자 무작위 토큰>_<정제된 원본명>.<확장자>
// 타임스탬프와 토큰의 조합으로 동명 파일의 반복 업로드에서도 키가 겹치지 않는다.
func GenerateStorageKey(originalName string, now time.Time) string {
	ext := NormalizeExt(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d_%s_%s.%s", now.UnixMilli(), token, sanitizeBaseName(base), ext)
}

// sanitizeBaseName 은 원본 파일명을 저장 키에 넣을 수 있게 정제한다.
// 영숫자와 한글만 남기고 나머지는 밑줄로 치환하며, 50자로 자른다.
// 정제 결과가 비면 대체 이름 file 을 사용한다.
func sanitizeBaseName(base string) string {
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= '가' && r <= '힣':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	sanitized := b.String()
	if runes := []rune(sanitized); len(runes) > sanitizedMaxRunes {
		sanitized = string(runes[:sanitizedMaxRunes])
	}
	if strings.Trim(sanitized, "_") == "" {
		return "file"
	}
	return sanitized
}

// StoragePath 는 저장 키를 연/월 디렉터리 아래에 배치한 경로를 반환한다.
// 형식: <YYYY>/<MM>/<저장 키>
func StoragePath(key string, now time.Time) string {
	return fmt.Sprintf("%04d/%02d/%s", now.Year(), int(now.Month()), key)
}
