// Package repository 는 데이터 영속화 인터페이스를 정의한다.
package repository

import (
	"context"
	"time"

	"github.com/sujin/chongmu/internal/model"
)

// PostRepository 는 게시글 데이터의 영속화 인터페이스.
type PostRepository interface {
	// FindByID 는 지정 ID의 게시글을 조회한다. 없으면 nil 을 반환한다.
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// FindBySlug 는 slug 로 게시글을 조회한다. 없으면 nil 을 반환한다.
	FindBySlug(ctx context.Context, slug string) (*model.Post, error)

	// FindBySourceURL 은 RSS 가져오기 중복 판정을 위해 원문 URL 로 조회한다.
	// 없으면 nil 을 반환한다.
	FindBySourceURL(ctx context.Context, sourceURL string) (*model.Post, error)

	// ListPublished 는 발행된 게시글을 published_at 내림차순으로
	// 커서 기반 페이지네이션으로 조회한다. cursor 가 제로값이면 처음부터 조회한다.
	ListPublished(ctx context.Context, cursor time.Time, limit int) ([]*model.Post, error)

	// ListAllPublished 는 발행된 게시글 전체를 반환한다.
	// 연관 글 랭킹과 검색의 후보 풀로 사용되며 캐시 계층에서 호출한다.
	ListAllPublished(ctx context.Context) ([]*model.Post, error)

	// Create 는 게시글과 태그 연결을 동일 트랜잭션으로 생성한다.
	Create(ctx context.Context, post *model.Post, tagIDs []string) error

	// Update 는 게시글을 갱신하고 태그 연결을 교체한다.
	Update(ctx context.Context, post *model.Post, tagIDs []string) error

	// UpdateStatus 는 게시글 상태를 갱신한다. 발행 시 published_at 을 설정한다.
	UpdateStatus(ctx context.Context, id string, status model.PostStatus, publishedAt *time.Time) error

	// IncrementViewCount 는 조회수를 1 증가시킨다.
	IncrementViewCount(ctx context.Context, id string) error

	// IncrementLikeCount 는 좋아요 수를 1 증가시키고 갱신된 값을 반환한다.
	IncrementLikeCount(ctx context.Context, id string) (int, error)
}

// CategoryRepository 는 카테고리 데이터의 영속화 인터페이스.
type CategoryRepository interface {
	// FindByID 는 지정 ID의 카테고리를 조회한다. 없으면 nil 을 반환한다.
	FindByID(ctx context.Context, id string) (*model.Category, error)

	// FindBySlug 는 slug 로 카테고리를 조회한다. 없으면 nil 을 반환한다.
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)

	// ListActive 는 활성 카테고리를 sort_order 오름차순으로 반환한다.
	ListActive(ctx context.Context) ([]*model.Category, error)

	// Create 는 카테고리를 생성한다. slug 중복 시 DuplicateSlug 에러를 반환한다.
	Create(ctx context.Context, category *model.Category) error

	// Update 는 카테고리를 갱신한다.
	Update(ctx context.Context, category *model.Category) error
}

// TagRepository 는 태그 데이터의 영속화 인터페이스.
type TagRepository interface {
	// FindBySlug 는 slug 로 태그를 조회한다. 없으면 nil 을 반환한다.
	FindBySlug(ctx context.Context, slug string) (*model.Tag, error)

	// FindBySlugs 는 여러 slug 로 태그를 일괄 조회한다. 존재하는 것만 반환한다.
	FindBySlugs(ctx context.Context, slugs []string) ([]*model.Tag, error)

	// ListActive 는 활성 태그를 이름 오름차순으로 반환한다.
	ListActive(ctx context.Context) ([]*model.Tag, error)

	// Create 는 태그를 생성한다. slug 중복 시 DuplicateSlug 에러를 반환한다.
	Create(ctx context.Context, tag *model.Tag) error
}

// FileRepository 는 업로드 파일 메타데이터의 영속화 인터페이스.
type FileRepository interface {
	// Create 는 파일 메타데이터 행을 생성한다.
	Create(ctx context.Context, file *model.UploadedFile) error

	// FindByID 는 지정 ID의 파일을 조회한다. 없으면 nil 을 반환한다.
	FindByID(ctx context.Context, id string) (*model.UploadedFile, error)

	// FindByIDAndUploader 는 (fileID, uploaderID) 로 스코프된 조회를 수행한다.
	// 소유권 확인은 별도 인가 단계가 아니라 이 쿼리 자체에 포함된다.
	// 일치하는 행이 없으면 nil 을 반환한다.
	FindByIDAndUploader(ctx context.Context, id, uploaderID string) (*model.UploadedFile, error)

	// List 는 파일 목록을 생성 시각 내림차순으로 반환한다.
	List(ctx context.Context, limit int) ([]*model.UploadedFile, error)

	// DeleteByID 는 파일 메타데이터 행을 삭제한다.
	DeleteByID(ctx context.Context, id string) error

	// ListOlderThan 은 생성된 지 minAge 이상 지난 행을 반환한다.
	// 고아 행 회수 작업에서 사용한다.
	ListOlderThan(ctx context.Context, minAge time.Duration, limit int) ([]*model.UploadedFile, error)
}

// VisitRepository 는 방문 로그의 영속화 인터페이스.
// 기록은 베스트 에포트로 취급되며 호출자에게 에러를 노출하지 않는 용도로 사용된다.
type VisitRepository interface {
	// Insert 는 방문 로그 1건을 기록한다.
	Insert(ctx context.Context, path, referer, userAgent string) error
}
