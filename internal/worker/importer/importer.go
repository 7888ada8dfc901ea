// Package importer 는 외부 RSS 피드에서 초안 게시글을 가져오는
// 백그라운드 작업을 제공한다. 가져온 글은 초안 상태로 저장되며
// 관리자가 검토 후 발행한다.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/sujin/chongmu/internal/content"
	"github.com/sujin/chongmu/internal/model"
)

// PostImporter 는 가져오기가 필요로 하는 게시글 서비스 인터페이스.
type PostImporter interface {
	// ImportedPostExists 는 해당 원문 URL 로 이미 가져온 글이 있는지 반환한다.
	ImportedPostExists(ctx context.Context, sourceURL string) (bool, error)
	// CreateDraft 는 초안 게시글을 생성한다.
	CreateDraft(ctx context.Context, input content.CreatePostInput) (*model.Post, error)
}

// SSRFValidator 는 SSRF 검증 인터페이스.
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration) *http.Client
}

// ImportMetrics 는 가져오기 작업이 기록하는 메트릭의 부분 집합.
type ImportMetrics interface {
	RecordImportSuccess()
	RecordImportFailure(reason string)
	RecordImportLatency(duration time.Duration)
}

// defaultAuthorName 은 피드에 저자 정보가 없을 때 사용하는 이름.
const defaultAuthorName = "외부 소식"

// Importer 는 개별 RSS 피드의 취득, 파싱, 초안 생성을 수행한다.
// 원문 URL 단위로 중복을 판정하므로 반복 실행해도 같은 글이 중복 생성되지 않는다.
type Importer struct {
	posts        PostImporter
	guard        SSRFValidator
	metrics      ImportMetrics
	logger       *slog.Logger
	categorySlug string
	timeout      time.Duration
	maxBodySize  int64
}

// NewImporter 는 Importer 를 생성한다.
// categorySlug 는 가져온 초안에 부여할 카테고리의 slug.
func NewImporter(
	posts PostImporter,
	guard SSRFValidator,
	metrics ImportMetrics,
	logger *slog.Logger,
	categorySlug string,
	timeout time.Duration,
	maxBodySize int64,
) *Importer {
	return &Importer{
		posts:        posts,
		guard:        guard,
		metrics:      metrics,
		logger:       logger,
		categorySlug: categorySlug,
		timeout:      timeout,
		maxBodySize:  maxBodySize,
	}
}

// ImportFeed 는 피드 하나를 취득해 새 항목을 초안으로 저장한다.
// 항목 단위 실패는 로그로 남기고 다음 항목을 계속 처리한다.
func (im *Importer) ImportFeed(ctx context.Context, feedURL string) error {
	start := time.Now()
	defer func() { im.metrics.RecordImportLatency(time.Since(start)) }()

	if err := im.guard.ValidateURL(feedURL); err != nil {
		im.metrics.RecordImportFailure("ssrf_blocked")
		return fmt.Errorf("피드 URL 검증에 실패했습니다 (%s): %w", feedURL, err)
	}

	client := im.guard.NewSafeClient(im.timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		im.metrics.RecordImportFailure("request_build")
		return fmt.Errorf("요청 생성에 실패했습니다: %w", err)
	}
	req.Header.Set("User-Agent", "Chongmu/1.0 Blog Importer")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := client.Do(req)
	if err != nil {
		im.metrics.RecordImportFailure("http_request")
		return fmt.Errorf("피드 취득에 실패했습니다 (%s): %w", feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		im.metrics.RecordImportFailure("http_status")
		return fmt.Errorf("피드 응답 상태가 올바르지 않습니다 (%s): %d", feedURL, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, im.maxBodySize))
	if err != nil {
		im.metrics.RecordImportFailure("parse")
		return fmt.Errorf("피드 파싱에 실패했습니다 (%s): %w", feedURL, err)
	}

	imported := 0
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}

		created, err := im.importItem(ctx, item)
		if err != nil {
			im.logger.Warn("피드 항목 가져오기에 실패했습니다",
				slog.String("feed_url", feedURL),
				slog.String("item_link", item.Link),
				slog.String("error", err.Error()),
			)
			continue
		}
		if created {
			imported++
		}
	}

	im.metrics.RecordImportSuccess()
	im.logger.Info("피드 가져오기를 완료했습니다",
		slog.String("feed_url", feedURL),
		slog.Int("item_count", len(feed.Items)),
		slog.Int("imported", imported),
	)

	return nil
}

// importItem 은 항목 1건을 초안으로 저장한다.
// 이미 가져온 항목이면 (false, nil) 을 반환한다.
func (im *Importer) importItem(ctx context.Context, item *gofeed.Item) (bool, error) {
	exists, err := im.posts.ImportedPostExists(ctx, item.Link)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}

	author := defaultAuthorName
	if item.Author != nil && item.Author.Name != "" {
		author = item.Author.Name
	}

	input := content.CreatePostInput{
		Title:        strings.TrimSpace(item.Title),
		Slug:         slugForItem(item.Title),
		Body:         body,
		AuthorName:   author,
		CategorySlug: im.categorySlug,
		SourceURL:    item.Link,
	}

	_, err = im.posts.CreateDraft(ctx, input)
	if err != nil {
		// slug 충돌 시 무작위 접미사를 붙여 1회 재시도한다.
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeDuplicateSlug {
			input.Slug = input.Slug + "-" + randomSlugToken()
			_, err = im.posts.CreateDraft(ctx, input)
		}
		if err != nil {
			return false, err
		}
	}

	return true, nil
}

// slugForItem 은 제목에서 slug 를 파생한다.
// 허용 문자(소문자 영숫자, 한글)만 남기고 나머지는 하이픈으로 치환하며,
// 유효한 slug 를 만들 수 없으면 무작위 slug 를 사용한다.
func slugForItem(title string) string {
	var b strings.Builder
	prevHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r >= '가' && r <= '힣':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "news-" + randomSlugToken()
	}
	return slug
}

// randomSlugToken 은 slug 충돌 회피용 8자 토큰을 반환한다.
func randomSlugToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
