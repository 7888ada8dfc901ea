package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sujin/chongmu/internal/model"
)

// countingPostRepo 는 ListAllPublished 호출 횟수를 세는 최소 구현.
// 캐시 테스트에서는 그 외 메서드가 호출되지 않는다.
type countingPostRepo struct {
	calls int
	posts []*model.Post
	err   error
}

func (r *countingPostRepo) ListAllPublished(ctx context.Context) ([]*model.Post, error) {
	r.calls++
	return r.posts, r.err
}

func (r *countingPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	return nil, nil
}

func (r *countingPostRepo) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	return nil, nil
}

func (r *countingPostRepo) FindBySourceURL(ctx context.Context, sourceURL string) (*model.Post, error) {
	return nil, nil
}

func (r *countingPostRepo) ListPublished(ctx context.Context, cursor time.Time, limit int) ([]*model.Post, error) {
	return nil, nil
}

func (r *countingPostRepo) Create(ctx context.Context, post *model.Post, tagIDs []string) error {
	return nil
}

func (r *countingPostRepo) Update(ctx context.Context, post *model.Post, tagIDs []string) error {
	return nil
}

func (r *countingPostRepo) UpdateStatus(ctx context.Context, id string, status model.PostStatus, publishedAt *time.Time) error {
	return nil
}

func (r *countingPostRepo) IncrementViewCount(ctx context.Context, id string) error { return nil }

func (r *countingPostRepo) IncrementLikeCount(ctx context.Context, id string) (int, error) {
	return 0, nil
}

// TestPublishedPosts_LoadsOnce 는 신선한 캐시가 리포지토리를 다시 호출하지 않는지 검증한다.
func TestPublishedPosts_LoadsOnce(t *testing.T) {
	repo := &countingPostRepo{posts: []*model.Post{{ID: "p1"}}}
	c := NewPostCache(repo, time.Minute)

	for i := 0; i < 3; i++ {
		posts, err := c.PublishedPosts(context.Background())
		if err != nil {
			t.Fatalf("PublishedPosts() error = %v", err)
		}
		if len(posts) != 1 {
			t.Errorf("len = %d, want 1", len(posts))
		}
	}

	if repo.calls != 1 {
		t.Errorf("ListAllPublished 호출 = %d회, want 1회", repo.calls)
	}
}

// TestInvalidate_ForcesReload 는 무효화 후 다음 읽기에서 재적재되는지 검증한다.
func TestInvalidate_ForcesReload(t *testing.T) {
	repo := &countingPostRepo{posts: []*model.Post{{ID: "p1"}}}
	c := NewPostCache(repo, time.Minute)

	c.PublishedPosts(context.Background())
	c.Invalidate()
	c.PublishedPosts(context.Background())

	if repo.calls != 2 {
		t.Errorf("ListAllPublished 호출 = %d회, want 2회", repo.calls)
	}
	if c.Invalidations() != 1 {
		t.Errorf("Invalidations() = %d, want 1", c.Invalidations())
	}
}

// TestPublishedPosts_TTLExpiry 는 TTL 경과 후 재적재를 검증한다.
func TestPublishedPosts_TTLExpiry(t *testing.T) {
	repo := &countingPostRepo{posts: []*model.Post{{ID: "p1"}}}
	c := NewPostCache(repo, 10*time.Millisecond)

	c.PublishedPosts(context.Background())
	time.Sleep(20 * time.Millisecond)
	c.PublishedPosts(context.Background())

	if repo.calls != 2 {
		t.Errorf("ListAllPublished 호출 = %d회, want 2회", repo.calls)
	}
}

// TestPublishedPosts_NilBecomesEmpty 는 nil 결과가 빈 슬라이스로 정규화되는지 검증한다.
func TestPublishedPosts_NilBecomesEmpty(t *testing.T) {
	repo := &countingPostRepo{posts: nil}
	c := NewPostCache(repo, time.Minute)

	posts, err := c.PublishedPosts(context.Background())
	if err != nil {
		t.Fatalf("PublishedPosts() error = %v", err)
	}
	if posts == nil {
		t.Error("posts = nil, want 빈 슬라이스")
	}
}

// TestPublishedPosts_LoadError 는 적재 실패 전파를 검증한다.
func TestPublishedPosts_LoadError(t *testing.T) {
	repo := &countingPostRepo{err: errors.New("db down")}
	c := NewPostCache(repo, time.Minute)

	if _, err := c.PublishedPosts(context.Background()); err == nil {
		t.Error("PublishedPosts() error = nil, want error")
	}
}
