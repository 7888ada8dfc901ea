// Package security 는 본문 새니타이즈와 SSRF 방지 기능을 제공한다.
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// SSRFGuard 는 RSS 피드 URL 에 대한 SSRF 방지 인터페이스.
// 피드 URL 설정 검증과 실제 취득 양쪽에서 사용된다.
type SSRFGuard interface {
	// NewSafeClient 는 SSRF 방지가 적용된 HTTP 클라이언트를 생성한다.
	// safeurl 에 의해 사설 IP, 루프백, 링크 로컬, 메타데이터 IP 로의
	// 요청이 차단되며 DNS 리바인딩 대책도 적용된다.
	NewSafeClient(timeout time.Duration) *http.Client

	// ValidateURL 은 URL 의 안전성을 사전 검증한다.
	// 스킴, 호스트, IP 주소를 검사해 위험한 URL 이면 에러를 반환한다.
	ValidateURL(rawURL string) error
}

// allowedSchemes 는 피드 URL 에 허용되는 스킴.
var allowedSchemes = []string{"http", "https"}

// blockedNetworks 는 차단 대상 네트워크 범위.
// 패키지 초기화 시 1회만 파싱한다. safeurl 은 DNS 해석 후의 IP 도
// 다이얼러 수준에서 검증하므로 DNS 리바인딩에도 대응한다.
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		// 사설 IP (RFC 1918)
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// 루프백 (RFC 1122)
		"127.0.0.0/8",
		// 링크 로컬 (RFC 3927), 클라우드 메타데이터 IP(169.254.169.254) 포함
		"169.254.0.0/16",
		// 현재 네트워크
		"0.0.0.0/8",
		// IPv6 루프백
		"::1/128",
		// IPv6 링크 로컬
		"fe80::/10",
		// IPv6 유니크 로컬
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

type ssrfGuard struct{}

// NewSSRFGuard 는 SSRFGuard 구현을 생성한다.
func NewSSRFGuard() *ssrfGuard {
	return &ssrfGuard{}
}

// NewSafeClient 는 SSRF 방지가 적용된 HTTP 클라이언트를 생성한다.
func (g *ssrfGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	wrappedClient := safeurl.Client(config)
	return wrappedClient.Client
}

// ValidateURL 은 DNS 해석 없이 URL 을 정적으로 검증한다.
// 피드 URL 설정 시 요청 전 사전 점검으로 사용한다. DNS 리바인딩은
// NewSafeClient 가 생성하는 클라이언트의 다이얼러 검증으로 방지된다.
func (g *ssrfGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("빈 URL 입니다")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("URL 을 해석할 수 없습니다: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("허용되지 않은 스킴입니다: %s (허용: %v)", scheme, allowedSchemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("호스트가 비어 있습니다: %s", rawURL)
	}

	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("차단된 IP 주소입니다: %s", ip.String())
		}
		return nil
	}

	if isBlockedHostname(host) {
		return fmt.Errorf("차단된 호스트입니다: %s", host)
	}

	return nil
}

func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// blockedHostnames 는 차단 대상 호스트명.
var blockedHostnames = []string{
	"localhost",
}

func isBlockedHostname(host string) bool {
	lower := strings.ToLower(host)
	for _, blocked := range blockedHostnames {
		if lower == blocked {
			return true
		}
	}
	return false
}
