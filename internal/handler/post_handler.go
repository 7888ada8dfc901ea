package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sujin/chongmu/internal/content"
	"github.com/sujin/chongmu/internal/model"
)

// defaultPostsPerPage 는 게시글 목록의 기본 조회 건수.
const defaultPostsPerPage = 20

// maxPostsPerPage 는 게시글 목록의 최대 조회 건수.
const maxPostsPerPage = 100

// defaultRelatedLimit 는 연관 글의 기본 반환 건수.
const defaultRelatedLimit = 4

// PostServiceInterface 는 게시글 핸들러가 필요로 하는 서비스 인터페이스.
type PostServiceInterface interface {
	ListPublished(ctx context.Context, cursor string, limit int) (*content.PostListResult, error)
	GetBySlug(ctx context.Context, slug string) (*model.Post, error)
	RelatedPosts(ctx context.Context, slug string, limit int) ([]*model.Post, error)
	SearchPosts(ctx context.Context, query string) ([]*model.Post, error)
	Like(ctx context.Context, slug string) (int, error)
	CreateDraft(ctx context.Context, input content.CreatePostInput) (*model.Post, error)
	UpdateDraft(ctx context.Context, id string, input content.CreatePostInput) (*model.Post, error)
	Transition(ctx context.Context, id string, to model.PostStatus) (*model.Post, error)
}

// VisitRecorder 는 방문 로그 기록 인터페이스. 베스트 에포트로 호출된다.
type VisitRecorder interface {
	Record(ctx context.Context, path, referer, userAgent string)
}

// ContentMetrics 는 게시글 핸들러가 기록하는 메트릭의 부분 집합.
type ContentMetrics interface {
	RecordSearch()
	RecordRelatedLookup()
}

// PostHandler 는 게시글 API 의 HTTP 핸들러.
type PostHandler struct {
	service PostServiceInterface
	visits  VisitRecorder
	metrics ContentMetrics
}

// NewPostHandler 는 PostHandler 를 생성한다.
func NewPostHandler(service PostServiceInterface, visits VisitRecorder, metrics ContentMetrics) *PostHandler {
	return &PostHandler{service: service, visits: visits, metrics: metrics}
}

// --- 응답 타입 ---

// postSummaryResponse 는 게시글 목록·검색의 요약 응답.
type postSummaryResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Excerpt        string     `json:"excerpt"`
	AuthorName     string     `json:"author_name"`
	CategoryName   string     `json:"category_name,omitempty"`
	Tags           []string   `json:"tags"`
	Featured       bool       `json:"featured"`
	ViewCount      int        `json:"view_count"`
	LikeCount      int        `json:"like_count"`
	ReadingMinutes int        `json:"reading_minutes"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
}

// postDetailResponse 는 게시글 상세 응답.
type postDetailResponse struct {
	postSummaryResponse
	Body      string `json:"body"` // 새니타이즈 완료 HTML
	Status    string `json:"status"`
	SourceURL string `json:"source_url,omitempty"`
}

// postListResponse 는 게시글 목록 응답.
type postListResponse struct {
	Posts      []postSummaryResponse `json:"posts"`
	NextCursor string                `json:"next_cursor,omitempty"`
	HasMore    bool                  `json:"has_more"`
}

// likeResponse 는 좋아요 응답.
type likeResponse struct {
	Slug      string `json:"slug"`
	LikeCount int    `json:"like_count"`
}

// postRequest 는 게시글 생성·수정 요청 바디.
type postRequest struct {
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Excerpt      string   `json:"excerpt,omitempty"`
	Body         string   `json:"body"`
	AuthorName   string   `json:"author_name"`
	CategorySlug string   `json:"category_slug,omitempty"`
	TagSlugs     []string `json:"tag_slugs,omitempty"`
	Featured     bool     `json:"featured"`
}

func toPostSummaryResponse(post *model.Post) postSummaryResponse {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	return postSummaryResponse{
		ID:             post.ID,
		Title:          post.Title,
		Slug:           post.Slug,
		Excerpt:        post.Excerpt,
		AuthorName:     post.AuthorName,
		CategoryName:   post.CategoryName,
		Tags:           tags,
		Featured:       post.Featured,
		ViewCount:      post.ViewCount,
		LikeCount:      post.LikeCount,
		ReadingMinutes: post.ReadingMinutes,
		PublishedAt:    post.PublishedAt,
	}
}

func toPostSummaryResponses(posts []*model.Post) []postSummaryResponse {
	results := make([]postSummaryResponse, len(posts))
	for i, post := range posts {
		results[i] = toPostSummaryResponse(post)
	}
	return results
}

func toPostDetailResponse(post *model.Post) postDetailResponse {
	return postDetailResponse{
		postSummaryResponse: toPostSummaryResponse(post),
		Body:                post.Body,
		Status:              string(post.Status),
		SourceURL:           post.SourceURL,
	}
}

// ListPosts 는 발행 글 목록을 반환한다.
// GET /api/posts?cursor=xxx&limit=20
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")

	limit := defaultPostsPerPage
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeAPIErrorResponse(w, http.StatusBadRequest,
				model.NewInvalidRequestError("limit 은 1 이상의 정수여야 합니다"))
			return
		}
		if parsed > maxPostsPerPage {
			parsed = maxPostsPerPage
		}
		limit = parsed
	}

	result, err := h.service.ListPublished(r.Context(), cursor, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postListResponse{
		Posts:      toPostSummaryResponses(result.Posts),
		NextCursor: result.NextCursor,
		HasMore:    result.HasMore,
	})
}

// GetPost 는 게시글 상세를 반환한다. 방문 로그를 베스트 에포트로 남긴다.
// GET /api/posts/:slug
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.service.GetBySlug(r.Context(), slug)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.visits.Record(r.Context(), r.URL.Path, r.Referer(), r.UserAgent())

	writeJSON(w, http.StatusOK, toPostDetailResponse(post))
}

// GetRelated 는 연관 글을 반환한다.
// GET /api/posts/:slug/related?limit=4
func (h *PostHandler) GetRelated(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	limit := defaultRelatedLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeAPIErrorResponse(w, http.StatusBadRequest,
				model.NewInvalidRequestError("limit 은 1 이상의 정수여야 합니다"))
			return
		}
		limit = parsed
	}

	posts, err := h.service.RelatedPosts(r.Context(), slug, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordRelatedLookup()

	writeJSON(w, http.StatusOK, map[string][]postSummaryResponse{
		"posts": toPostSummaryResponses(posts),
	})
}

// Search 는 자유 텍스트 질의로 발행 글을 검색한다.
// GET /api/search?q=검색어
func (h *PostHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	posts, err := h.service.SearchPosts(r.Context(), query)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordSearch()

	writeJSON(w, http.StatusOK, map[string]any{
		"query": query,
		"posts": toPostSummaryResponses(posts),
	})
}

// Like 는 좋아요 수를 1 증가시킨다.
// POST /api/posts/:slug/like
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	count, err := h.service.Like(r.Context(), slug)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, likeResponse{Slug: slug, LikeCount: count})
}

// CreatePost 는 초안 게시글을 생성한다.
// POST /admin/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("요청 바디를 해석할 수 없습니다"))
		return
	}

	post, err := h.service.CreateDraft(r.Context(), content.CreatePostInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Excerpt:      req.Excerpt,
		Body:         req.Body,
		AuthorName:   req.AuthorName,
		CategorySlug: req.CategorySlug,
		TagSlugs:     req.TagSlugs,
		Featured:     req.Featured,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPostDetailResponse(post))
}

// UpdatePost 는 초안 게시글을 갱신한다.
// PUT /admin/posts/:id
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("요청 바디를 해석할 수 없습니다"))
		return
	}

	post, err := h.service.UpdateDraft(r.Context(), id, content.CreatePostInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Excerpt:      req.Excerpt,
		Body:         req.Body,
		AuthorName:   req.AuthorName,
		CategorySlug: req.CategorySlug,
		TagSlugs:     req.TagSlugs,
		Featured:     req.Featured,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostDetailResponse(post))
}

// Publish 는 게시글을 발행 상태로 전이시킨다.
// POST /admin/posts/:id/publish
func (h *PostHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.PostStatusPublished)
}

// Archive 는 게시글을 보관 상태로 전이시킨다.
// POST /admin/posts/:id/archive
func (h *PostHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, model.PostStatusArchived)
}

func (h *PostHandler) transition(w http.ResponseWriter, r *http.Request, to model.PostStatus) {
	id := chi.URLParam(r, "id")

	post, err := h.service.Transition(r.Context(), id, to)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPostDetailResponse(post))
}
