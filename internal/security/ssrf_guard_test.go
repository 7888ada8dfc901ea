package security

import (
	"testing"
	"time"
)

// TestValidateURL_AllowedURLs 는 정상 URL 이 통과하는지 검증한다.
func TestValidateURL_AllowedURLs(t *testing.T) {
	guard := NewSSRFGuard()

	urls := []string{
		"https://example.com/feed.xml",
		"http://news.example.co.kr/rss",
		"https://8.8.8.8/feed",
	}
	for _, u := range urls {
		if err := guard.ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}
}

// TestValidateURL_BlockedURLs 는 위험 URL 이 거부되는지 검증한다.
func TestValidateURL_BlockedURLs(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		name string
		url  string
	}{
		{name: "빈 URL", url: ""},
		{name: "비허용 스킴 file", url: "file:///etc/passwd"},
		{name: "비허용 스킴 ftp", url: "ftp://example.com/feed"},
		{name: "루프백 IP", url: "http://127.0.0.1/feed"},
		{name: "사설 IP 10.x", url: "http://10.0.0.5/feed"},
		{name: "사설 IP 172.16.x", url: "http://172.16.1.1/feed"},
		{name: "사설 IP 192.168.x", url: "http://192.168.0.10/feed"},
		{name: "메타데이터 IP", url: "http://169.254.169.254/latest/meta-data/"},
		{name: "IPv6 루프백", url: "http://[::1]/feed"},
		{name: "localhost 호스트명", url: "http://localhost/feed"},
		{name: "호스트 없음", url: "https:///feed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := guard.ValidateURL(tt.url); err == nil {
				t.Errorf("ValidateURL(%q) = nil, want error", tt.url)
			}
		})
	}
}

// TestNewSafeClient 는 클라이언트 생성과 타임아웃 설정을 검증한다.
func TestNewSafeClient(t *testing.T) {
	guard := NewSSRFGuard()

	client := guard.NewSafeClient(5 * time.Second)
	if client == nil {
		t.Fatal("NewSafeClient() = nil")
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("client.Timeout = %v, want %v", client.Timeout, 5*time.Second)
	}
}
