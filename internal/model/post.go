// Package model 은 도메인 모델을 정의한다.
package model

import "time"

// Post 는 블로그 게시글을 나타낸다.
// 발행 이후에는 카운터(조회수/좋아요)와 상태 전이를 제외하고 불변으로 취급한다.
type Post struct {
	ID             string
	Title          string
	Slug           string
	Excerpt        string
	Body           string // 새니타이즈된 HTML
	AuthorName     string
	CategoryID     string
	CategoryName   string
	Tags           []string
	Status         PostStatus
	Featured       bool
	ViewCount      int
	LikeCount      int
	ReadingMinutes int // 본문 길이에서 파생된 예상 읽기 시간(분)
	PublishedAt    *time.Time
	UpdatedAt      time.Time
	CreatedAt      time.Time
	SourceURL      string // RSS 가져오기로 생성된 초안의 원문 URL(수기 작성 글은 빈 값)
}

// PostStatus 는 게시글의 발행 상태를 나타낸다.
// 전이는 draft → published → archived 순서로만 허용된다.
type PostStatus string

const (
	// PostStatusDraft 는 작성 중인 초안 상태.
	PostStatusDraft PostStatus = "draft"
	// PostStatusPublished 는 공개 발행된 상태.
	PostStatusPublished PostStatus = "published"
	// PostStatusArchived 는 보관 처리되어 목록에서 제외된 상태.
	PostStatusArchived PostStatus = "archived"
)

// CanTransitionTo 는 현재 상태에서 next 로의 전이가 허용되는지 반환한다.
func (s PostStatus) CanTransitionTo(next PostStatus) bool {
	switch s {
	case PostStatusDraft:
		return next == PostStatusPublished
	case PostStatusPublished:
		return next == PostStatusArchived
	default:
		return false
	}
}

// PublishedTime 은 발행 시각을 반환한다. 미발행 글은 제로값을 반환한다.
func (p *Post) PublishedTime() time.Time {
	if p.PublishedAt == nil {
		return time.Time{}
	}
	return *p.PublishedAt
}
