package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sujin/chongmu/internal/model"
)

// PostgresCategoryRepo 는 PostgreSQL 을 사용한 카테고리 리포지토리.
type PostgresCategoryRepo struct {
	db *sql.DB
}

// NewPostgresCategoryRepo 는 PostgresCategoryRepo 를 생성한다.
func NewPostgresCategoryRepo(db *sql.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{db: db}
}

const categorySelectColumns = `
	SELECT id, name, slug, description, color, icon, sort_order, is_active,
	       created_at, updated_at
	FROM categories`

func scanCategory(scan func(dest ...interface{}) error) (*model.Category, error) {
	c := &model.Category{}
	err := scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.Color, &c.Icon,
		&c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindByID 는 지정 ID의 카테고리를 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresCategoryRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	row := r.db.QueryRowContext(ctx, categorySelectColumns+" WHERE id = $1", id)
	c, err := scanCategory(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("카테고리 조회에 실패했습니다: %w", err)
	}
	return c, nil
}

// FindBySlug 는 slug 로 카테고리를 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresCategoryRepo) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	row := r.db.QueryRowContext(ctx, categorySelectColumns+" WHERE slug = $1", slug)
	c, err := scanCategory(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("카테고리 조회에 실패했습니다: %w", err)
	}
	return c, nil
}

// ListActive 는 활성 카테고리를 sort_order 오름차순으로 반환한다.
func (r *PostgresCategoryRepo) ListActive(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		categorySelectColumns+" WHERE is_active = true ORDER BY sort_order ASC, name ASC")
	if err != nil {
		return nil, fmt.Errorf("카테고리 목록 조회에 실패했습니다: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		c, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("카테고리 행 읽기에 실패했습니다: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("카테고리 목록 순회에 실패했습니다: %w", err)
	}

	return categories, nil
}

// Create 는 카테고리를 생성한다. slug 중복 시 DuplicateSlug 에러를 반환한다.
func (r *PostgresCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, slug, description, color, icon,
		                         sort_order, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		category.ID, category.Name, category.Slug, category.Description,
		category.Color, category.Icon, category.SortOrder, category.IsActive,
		category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateSlugError(category.Slug)
		}
		return fmt.Errorf("카테고리 생성에 실패했습니다: %w", err)
	}
	return nil
}

// Update 는 카테고리를 갱신한다.
func (r *PostgresCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE categories SET
		    name = $2, slug = $3, description = $4, color = $5, icon = $6,
		    sort_order = $7, is_active = $8, updated_at = $9
		 WHERE id = $1`,
		category.ID, category.Name, category.Slug, category.Description,
		category.Color, category.Icon, category.SortOrder, category.IsActive,
		category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateSlugError(category.Slug)
		}
		return fmt.Errorf("카테고리 갱신에 실패했습니다: %w", err)
	}
	return nil
}

// compile-time interface check
var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
