package content

import (
	"context"
	"log/slog"
	"math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sujin/chongmu/internal/model"
	"github.com/sujin/chongmu/internal/repository"
)

// PoolProvider 는 랭킹·검색의 후보 풀(발행 글 전체)을 제공하는 인터페이스.
// 캐시 계층이 구현하며, 변경 알림 수신 시 전체 무효화된다.
type PoolProvider interface {
	// PublishedPosts 는 발행된 게시글 전체를 반환한다.
	PublishedPosts(ctx context.Context) ([]*model.Post, error)
}

// Sanitizer 는 본문 HTML 새니타이즈 인터페이스.
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// excerptMaxRunes 는 요약문이 비어 있을 때 본문에서 파생하는 최대 글자 수.
const excerptMaxRunes = 150

// slugPattern 은 허용되는 slug 형식. 소문자 영숫자와 한글, 하이픈 구분.
var slugPattern = regexp.MustCompile(`^[a-z0-9가-힣]+(-[a-z0-9가-힣]+)*$`)

// PostService 는 게시글 조회·랭킹·검색·관리 서비스.
type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
	pool         PoolProvider
	sanitizer    Sanitizer
	logger       *slog.Logger

	// rng 는 연관 글 무작위 채움에 사용한다. 테스트에서 시드 고정용으로 주입 가능.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewPostService 는 PostService 를 생성한다.
// rng 가 nil 이면 현재 시각으로 시드한 전용 난수원을 사용한다.
func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
	pool PoolProvider,
	sanitizer Sanitizer,
	logger *slog.Logger,
	rng *rand.Rand,
) *PostService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
		pool:         pool,
		sanitizer:    sanitizer,
		logger:       logger,
		rng:          rng,
	}
}

// PostListResult 는 게시글 목록 조회의 반환값.
type PostListResult struct {
	Posts      []*model.Post
	NextCursor string
	HasMore    bool
}

// ListPublished 는 발행 글 목록을 커서 기반 페이지네이션으로 반환한다.
// limit+1 건을 조회해 HasMore 를 판정한다.
func (s *PostService) ListPublished(ctx context.Context, cursorStr string, limit int) (*PostListResult, error) {
	var cursor time.Time
	if cursorStr != "" {
		var err error
		cursor, err = time.Parse(time.RFC3339Nano, cursorStr)
		if err != nil {
			cursor, err = time.Parse(time.RFC3339, cursorStr)
			if err != nil {
				return nil, model.NewInvalidRequestError("커서 값을 해석할 수 없습니다: " + cursorStr)
			}
		}
	}

	posts, err := s.postRepo.ListPublished(ctx, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	var nextCursor string
	if hasMore && len(posts) > 0 {
		nextCursor = posts[len(posts)-1].PublishedTime().Format(time.RFC3339Nano)
	}

	return &PostListResult{Posts: posts, NextCursor: nextCursor, HasMore: hasMore}, nil
}

// GetBySlug 는 slug 로 발행 글을 조회하고 조회수를 1 증가시킨다.
// 조회수 갱신 실패는 읽기를 실패시키지 않고 로그로만 남긴다.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*model.Post, error) {
	post, err := s.postRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post == nil || post.Status != model.PostStatusPublished {
		return nil, model.NewPostNotFoundError(slug)
	}

	if err := s.postRepo.IncrementViewCount(ctx, post.ID); err != nil {
		s.logger.Warn("조회수 갱신에 실패했습니다",
			slog.String("post_id", post.ID),
			slog.String("error", err.Error()),
		)
	} else {
		post.ViewCount++
	}

	return post, nil
}

// RelatedPosts 는 slug 로 지정된 글의 연관 글을 limit 건까지 반환한다.
// 후보 풀은 캐시된 발행 글 전체를 사용한다.
func (s *PostService) RelatedPosts(ctx context.Context, slug string, limit int) ([]*model.Post, error) {
	source, err := s.postRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if source == nil || source.Status != model.PostStatusPublished {
		return nil, model.NewPostNotFoundError(slug)
	}

	pool, err := s.pool.PublishedPosts(ctx)
	if err != nil {
		return nil, err
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return Related(source, pool, limit, s.rng), nil
}

// SearchPosts 는 자유 텍스트 질의로 발행 글을 검색한다.
func (s *PostService) SearchPosts(ctx context.Context, query string) ([]*model.Post, error) {
	pool, err := s.pool.PublishedPosts(ctx)
	if err != nil {
		return nil, err
	}
	return Search(query, pool), nil
}

// Like 는 slug 로 지정된 발행 글의 좋아요 수를 1 증가시키고 갱신된 값을 반환한다.
func (s *PostService) Like(ctx context.Context, slug string) (int, error) {
	post, err := s.postRepo.FindBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	if post == nil || post.Status != model.PostStatusPublished {
		return 0, model.NewPostNotFoundError(slug)
	}
	return s.postRepo.IncrementLikeCount(ctx, post.ID)
}

// CreatePostInput 은 게시글 생성 입력.
type CreatePostInput struct {
	Title        string
	Slug         string
	Excerpt      string
	Body         string // 미새니타이즈 HTML
	AuthorName   string
	CategorySlug string
	TagSlugs     []string
	Featured     bool
	SourceURL    string // RSS 가져오기 초안에만 설정
}

// CreateDraft 는 초안 상태의 게시글을 생성한다.
// 본문은 새니타이즈되고, 요약문과 읽기 시간은 본문에서 파생된다.
func (s *PostService) CreateDraft(ctx context.Context, input CreatePostInput) (*model.Post, error) {
	if input.Title == "" {
		return nil, model.NewInvalidRequestError("제목은 비울 수 없습니다")
	}
	if !slugPattern.MatchString(input.Slug) {
		return nil, model.NewInvalidRequestError("slug 형식이 올바르지 않습니다: " + input.Slug)
	}

	var categoryID string
	if input.CategorySlug != "" {
		category, err := s.categoryRepo.FindBySlug(ctx, input.CategorySlug)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, model.NewCategoryNotFoundError(input.CategorySlug)
		}
		categoryID = category.ID
	}

	tags, err := s.tagRepo.FindBySlugs(ctx, input.TagSlugs)
	if err != nil {
		return nil, err
	}
	tagIDs := make([]string, len(tags))
	tagNames := make([]string, len(tags))
	for i, tag := range tags {
		tagIDs[i] = tag.ID
		tagNames[i] = tag.Name
	}

	body := s.sanitizer.Sanitize(input.Body)
	excerpt := input.Excerpt
	if excerpt == "" {
		excerpt = ExcerptFromBody(body, excerptMaxRunes)
	}

	now := time.Now().UTC()
	post := &model.Post{
		ID:             uuid.NewString(),
		Title:          input.Title,
		Slug:           input.Slug,
		Excerpt:        excerpt,
		Body:           body,
		AuthorName:     input.AuthorName,
		CategoryID:     categoryID,
		Tags:           tagNames,
		Status:         model.PostStatusDraft,
		Featured:       input.Featured,
		ReadingMinutes: ReadingMinutes(body),
		SourceURL:      input.SourceURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.postRepo.Create(ctx, post, tagIDs); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdateDraft 는 초안 게시글을 갱신한다.
// 발행 이후의 글은 카운터와 상태 전이를 제외하고 불변이므로 수정할 수 없다.
func (s *PostService) UpdateDraft(ctx context.Context, id string, input CreatePostInput) (*model.Post, error) {
	existing, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, model.NewPostNotFoundError(id)
	}
	if existing.Status != model.PostStatusDraft {
		return nil, model.NewInvalidRequestError("발행된 게시글은 수정할 수 없습니다")
	}
	if !slugPattern.MatchString(input.Slug) {
		return nil, model.NewInvalidRequestError("slug 형식이 올바르지 않습니다: " + input.Slug)
	}

	var categoryID string
	if input.CategorySlug != "" {
		category, err := s.categoryRepo.FindBySlug(ctx, input.CategorySlug)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, model.NewCategoryNotFoundError(input.CategorySlug)
		}
		categoryID = category.ID
	}

	tags, err := s.tagRepo.FindBySlugs(ctx, input.TagSlugs)
	if err != nil {
		return nil, err
	}
	tagIDs := make([]string, len(tags))
	tagNames := make([]string, len(tags))
	for i, tag := range tags {
		tagIDs[i] = tag.ID
		tagNames[i] = tag.Name
	}

	body := s.sanitizer.Sanitize(input.Body)
	excerpt := input.Excerpt
	if excerpt == "" {
		excerpt = ExcerptFromBody(body, excerptMaxRunes)
	}

	existing.Title = input.Title
	existing.Slug = input.Slug
	existing.Excerpt = excerpt
	existing.Body = body
	existing.AuthorName = input.AuthorName
	existing.CategoryID = categoryID
	existing.Tags = tagNames
	existing.Featured = input.Featured
	existing.ReadingMinutes = ReadingMinutes(body)
	existing.UpdatedAt = time.Now().UTC()

	if err := s.postRepo.Update(ctx, existing, tagIDs); err != nil {
		return nil, err
	}
	return existing, nil
}

// Transition 은 게시글 상태를 전이시킨다.
// 허용 전이는 draft → published → archived 뿐이다.
func (s *PostService) Transition(ctx context.Context, id string, to model.PostStatus) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}
	if !post.Status.CanTransitionTo(to) {
		return nil, model.NewInvalidTransitionError(post.Status, to)
	}

	var publishedAt *time.Time
	if to == model.PostStatusPublished {
		now := time.Now().UTC()
		publishedAt = &now
	}

	if err := s.postRepo.UpdateStatus(ctx, id, to, publishedAt); err != nil {
		return nil, err
	}

	post.Status = to
	if publishedAt != nil {
		post.PublishedAt = publishedAt
	}
	return post, nil
}

// ImportedPostExists 는 해당 원문 URL 로 이미 가져온 글이 있는지 반환한다.
// RSS 가져오기 작업의 중복 판정에 사용한다.
func (s *PostService) ImportedPostExists(ctx context.Context, sourceURL string) (bool, error) {
	post, err := s.postRepo.FindBySourceURL(ctx, sourceURL)
	if err != nil {
		return false, err
	}
	return post != nil, nil
}
