// Package cache 는 발행 글 풀의 인메모리 캐시와 무효화 리스너를 제공한다.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/sujin/chongmu/internal/model"
	"github.com/sujin/chongmu/internal/repository"
)

// PostCache 는 발행된 게시글 전체를 TTL 과 함께 보관하는 인메모리 캐시.
// 연관 글 랭킹과 검색의 후보 풀로 사용된다.
//
// 무효화는 조대(粗大) 단위다: 어떤 변경이든 풀 전체를 버리고 다음 읽기에서
// 다시 적재한다. 항목 단위의 부분 갱신은 하지 않는다.
type PostCache struct {
	mu      sync.RWMutex
	posts   []*model.Post
	fetched time.Time
	ttl     time.Duration
	repo    repository.PostRepository

	invalidations uint64
}

// NewPostCache 는 PostCache 를 생성한다.
func NewPostCache(repo repository.PostRepository, ttl time.Duration) *PostCache {
	return &PostCache{repo: repo, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate 는 캐시를 비워 다음 읽기에서 재적재하게 한다.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.invalidations++
	c.mu.Unlock()
}

// Invalidations 는 누적 무효화 횟수를 반환한다.
func (c *PostCache) Invalidations() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.invalidations
}

func (c *PostCache) load(ctx context.Context) error {
	if c.valid() {
		return nil
	}
	posts, err := c.repo.ListAllPublished(ctx)
	if err != nil {
		return err
	}
	if posts == nil {
		posts = []*model.Post{}
	}
	c.posts = posts
	c.fetched = time.Now()
	return nil
}

// PublishedPosts 는 캐시가 신선한지 확인한 뒤 발행 글 풀을 반환한다.
// 먼저 읽기 잠금으로 시도하고, 재적재가 필요할 때만 쓰기 잠금을 잡는다.
func (c *PostCache) PublishedPosts(ctx context.Context) ([]*model.Post, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(ctx); err != nil {
		return nil, err
	}
	return c.posts, nil
}
