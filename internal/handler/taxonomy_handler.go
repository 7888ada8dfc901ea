package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sujin/chongmu/internal/model"
	"github.com/sujin/chongmu/internal/repository"
)

// TaxonomyHandler 는 카테고리와 태그 API 의 HTTP 핸들러.
type TaxonomyHandler struct {
	categories repository.CategoryRepository
	tags       repository.TagRepository
}

// NewTaxonomyHandler 는 TaxonomyHandler 를 생성한다.
func NewTaxonomyHandler(categories repository.CategoryRepository, tags repository.TagRepository) *TaxonomyHandler {
	return &TaxonomyHandler{categories: categories, tags: tags}
}

// --- 응답·요청 타입 ---

type categoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	SortOrder   int    `json:"sort_order"`
}

type tagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color,omitempty"`
}

type tagRequest struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color,omitempty"`
}

func toCategoryResponse(c *model.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		SortOrder:   c.SortOrder,
	}
}

func toTagResponse(t *model.Tag) tagResponse {
	return tagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug, Color: t.Color}
}

// ListCategories 는 활성 카테고리 목록을 반환한다.
// GET /api/categories
func (h *TaxonomyHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.ListActive(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]categoryResponse, len(categories))
	for i, c := range categories {
		results[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, map[string][]categoryResponse{"categories": results})
}

// ListTags 는 활성 태그 목록을 반환한다.
// GET /api/tags
func (h *TaxonomyHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.ListActive(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]tagResponse, len(tags))
	for i, t := range tags {
		results[i] = toTagResponse(t)
	}
	writeJSON(w, http.StatusOK, map[string][]tagResponse{"tags": results})
}

// CreateCategory 는 카테고리를 생성한다.
// POST /admin/categories
func (h *TaxonomyHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("요청 바디를 해석할 수 없습니다"))
		return
	}
	if req.Name == "" || req.Slug == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("name 과 slug 는 필수입니다"))
		return
	}

	now := time.Now().UTC()
	category := &model.Category{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		SortOrder:   req.SortOrder,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.categories.Create(r.Context(), category); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// UpdateCategory 는 카테고리를 갱신한다.
// PUT /admin/categories/:id
func (h *TaxonomyHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.categories.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if existing == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewCategoryNotFoundError(id))
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("요청 바디를 해석할 수 없습니다"))
		return
	}
	if req.Name == "" || req.Slug == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("name 과 slug 는 필수입니다"))
		return
	}

	existing.Name = req.Name
	existing.Slug = req.Slug
	existing.Description = req.Description
	existing.Color = req.Color
	existing.Icon = req.Icon
	existing.SortOrder = req.SortOrder
	existing.UpdatedAt = time.Now().UTC()

	if err := h.categories.Update(r.Context(), existing); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(existing))
}

// CreateTag 는 태그를 생성한다.
// POST /admin/tags
func (h *TaxonomyHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("요청 바디를 해석할 수 없습니다"))
		return
	}
	if req.Name == "" || req.Slug == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("name 과 slug 는 필수입니다"))
		return
	}

	now := time.Now().UTC()
	tag := &model.Tag{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Slug:      req.Slug,
		Color:     req.Color,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.tags.Create(r.Context(), tag); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTagResponse(tag))
}
