package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/sujin/chongmu/internal/model"
)

// PostgresTagRepo 는 PostgreSQL 을 사용한 태그 리포지토리.
type PostgresTagRepo struct {
	db *sql.DB
}

// NewPostgresTagRepo 는 PostgresTagRepo 를 생성한다.
func NewPostgresTagRepo(db *sql.DB) *PostgresTagRepo {
	return &PostgresTagRepo{db: db}
}

const tagSelectColumns = `
	SELECT id, name, slug, color, is_active, created_at, updated_at
	FROM tags`

func scanTag(scan func(dest ...interface{}) error) (*model.Tag, error) {
	tag := &model.Tag{}
	err := scan(&tag.ID, &tag.Name, &tag.Slug, &tag.Color, &tag.IsActive,
		&tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// FindBySlug 는 slug 로 태그를 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresTagRepo) FindBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	row := r.db.QueryRowContext(ctx, tagSelectColumns+" WHERE slug = $1", slug)
	tag, err := scanTag(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("태그 조회에 실패했습니다: %w", err)
	}
	return tag, nil
}

// FindBySlugs 는 여러 slug 로 태그를 일괄 조회한다. 존재하는 것만 반환한다.
func (r *PostgresTagRepo) FindBySlugs(ctx context.Context, slugs []string) ([]*model.Tag, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx,
		tagSelectColumns+" WHERE slug = ANY($1) ORDER BY name ASC",
		pq.Array(slugs),
	)
	if err != nil {
		return nil, fmt.Errorf("태그 일괄 조회에 실패했습니다: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// ListActive 는 활성 태그를 이름 오름차순으로 반환한다.
func (r *PostgresTagRepo) ListActive(ctx context.Context) ([]*model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		tagSelectColumns+" WHERE is_active = true ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("태그 목록 조회에 실패했습니다: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

func collectTags(rows *sql.Rows) ([]*model.Tag, error) {
	var tags []*model.Tag
	for rows.Next() {
		tag, err := scanTag(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("태그 행 읽기에 실패했습니다: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("태그 목록 순회에 실패했습니다: %w", err)
	}
	return tags, nil
}

// Create 는 태그를 생성한다. slug 중복 시 DuplicateSlug 에러를 반환한다.
func (r *PostgresTagRepo) Create(ctx context.Context, tag *model.Tag) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, slug, color, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tag.ID, tag.Name, tag.Slug, tag.Color, tag.IsActive,
		tag.CreatedAt, tag.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateSlugError(tag.Slug)
		}
		return fmt.Errorf("태그 생성에 실패했습니다: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TagRepository = (*PostgresTagRepo)(nil)
