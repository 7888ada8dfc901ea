package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/sujin/chongmu/internal/model"
)

// postSelectColumns 는 게시글 조회 공통 SELECT 절.
// 카테고리명과 태그명 배열을 조인으로 함께 가져온다.
const postSelectColumns = `
	SELECT p.id, p.title, p.slug, p.excerpt, p.body, p.author_name,
	       COALESCE(p.category_id, '') AS category_id,
	       COALESCE(c.name, '') AS category_name,
	       p.status, p.featured, p.view_count, p.like_count, p.reading_minutes,
	       p.published_at, p.source_url, p.created_at, p.updated_at,
	       COALESCE(array_agg(t.name ORDER BY t.name) FILTER (WHERE t.name IS NOT NULL), '{}') AS tags
	FROM posts p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN post_tags pt ON pt.post_id = p.id
	LEFT JOIN tags t ON t.id = pt.tag_id`

const postGroupBy = ` GROUP BY p.id, c.name`

// PostgresPostRepo 는 PostgreSQL 을 사용한 게시글 리포지토리.
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo 는 PostgresPostRepo 를 생성한다.
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// scanPost 는 공통 SELECT 절의 1행을 model.Post 로 읽는다.
func scanPost(scan func(dest ...interface{}) error) (*model.Post, error) {
	post := &model.Post{}
	var publishedAt sql.NullTime
	var sourceURL sql.NullString
	var tags pq.StringArray

	err := scan(
		&post.ID, &post.Title, &post.Slug, &post.Excerpt, &post.Body, &post.AuthorName,
		&post.CategoryID, &post.CategoryName,
		&post.Status, &post.Featured, &post.ViewCount, &post.LikeCount, &post.ReadingMinutes,
		&publishedAt, &sourceURL, &post.CreatedAt, &post.UpdatedAt,
		&tags,
	)
	if err != nil {
		return nil, err
	}

	if publishedAt.Valid {
		post.PublishedAt = &publishedAt.Time
	}
	post.SourceURL = nullStringValue(sourceURL)
	post.Tags = []string(tags)
	return post, nil
}

// findOne 은 WHERE 조건 1개로 게시글 단건을 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresPostRepo) findOne(ctx context.Context, where string, arg interface{}) (*model.Post, error) {
	row := r.db.QueryRowContext(ctx, postSelectColumns+" WHERE "+where+postGroupBy, arg)
	post, err := scanPost(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("게시글 조회에 실패했습니다: %w", err)
	}
	return post, nil
}

// FindByID 는 지정 ID의 게시글을 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	return r.findOne(ctx, "p.id = $1", id)
}

// FindBySlug 는 slug 로 게시글을 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresPostRepo) FindBySlug(ctx context.Context, slug string) (*model.Post, error) {
	return r.findOne(ctx, "p.slug = $1", slug)
}

// FindBySourceURL 은 원문 URL 로 게시글을 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresPostRepo) FindBySourceURL(ctx context.Context, sourceURL string) (*model.Post, error) {
	return r.findOne(ctx, "p.source_url = $1", sourceURL)
}

// ListPublished 는 발행된 게시글을 published_at 내림차순으로
// 커서 기반 페이지네이션으로 조회한다.
func (r *PostgresPostRepo) ListPublished(ctx context.Context, cursor time.Time, limit int) ([]*model.Post, error) {
	query := postSelectColumns + " WHERE p.status = 'published'"
	args := []interface{}{}
	argIndex := 1

	if !cursor.IsZero() {
		query += fmt.Sprintf(" AND p.published_at < $%d", argIndex)
		args = append(args, cursor)
		argIndex++
	}

	query += postGroupBy + fmt.Sprintf(" ORDER BY p.published_at DESC LIMIT $%d", argIndex)
	args = append(args, limit)

	return r.queryPosts(ctx, query, args...)
}

// ListAllPublished 는 발행된 게시글 전체를 published_at 내림차순으로 반환한다.
func (r *PostgresPostRepo) ListAllPublished(ctx context.Context) ([]*model.Post, error) {
	query := postSelectColumns + " WHERE p.status = 'published'" + postGroupBy +
		" ORDER BY p.published_at DESC"
	return r.queryPosts(ctx, query)
}

func (r *PostgresPostRepo) queryPosts(ctx context.Context, query string, args ...interface{}) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("게시글 목록 조회에 실패했습니다: %w", err)
	}
	defer rows.Close()

	var posts []*model.Post
	for rows.Next() {
		post, err := scanPost(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("게시글 행 읽기에 실패했습니다: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("게시글 목록 순회에 실패했습니다: %w", err)
	}

	return posts, nil
}

// Create 는 게시글과 태그 연결을 동일 트랜잭션으로 생성한다.
// slug 중복 시 DuplicateSlug 에러를 반환한다.
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post, tagIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("트랜잭션 시작에 실패했습니다: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO posts (id, title, slug, excerpt, body, author_name, category_id,
		                    status, featured, view_count, like_count, reading_minutes,
		                    published_at, source_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		post.ID, post.Title, post.Slug, post.Excerpt, post.Body, post.AuthorName,
		nullString(post.CategoryID), post.Status, post.Featured,
		post.ViewCount, post.LikeCount, post.ReadingMinutes,
		post.PublishedAt, nullString(post.SourceURL), post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateSlugError(post.Slug)
		}
		return fmt.Errorf("게시글 생성에 실패했습니다: %w", err)
	}

	if err := insertPostTags(ctx, tx, post.ID, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("트랜잭션 커밋에 실패했습니다: %w", err)
	}
	return nil
}

// Update 는 게시글을 갱신하고 태그 연결을 교체한다.
func (r *PostgresPostRepo) Update(ctx context.Context, post *model.Post, tagIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("트랜잭션 시작에 실패했습니다: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE posts SET
		    title = $2, slug = $3, excerpt = $4, body = $5, author_name = $6,
		    category_id = $7, featured = $8, reading_minutes = $9, updated_at = $10
		 WHERE id = $1`,
		post.ID, post.Title, post.Slug, post.Excerpt, post.Body, post.AuthorName,
		nullString(post.CategoryID), post.Featured, post.ReadingMinutes, post.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateSlugError(post.Slug)
		}
		return fmt.Errorf("게시글 갱신에 실패했습니다: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, post.ID); err != nil {
		return fmt.Errorf("태그 연결 삭제에 실패했습니다: %w", err)
	}
	if err := insertPostTags(ctx, tx, post.ID, tagIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("트랜잭션 커밋에 실패했습니다: %w", err)
	}
	return nil
}

func insertPostTags(ctx context.Context, tx *sql.Tx, postID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			postID, tagID,
		); err != nil {
			return fmt.Errorf("태그 연결 생성에 실패했습니다: %w", err)
		}
	}
	return nil
}

// UpdateStatus 는 게시글 상태를 갱신한다.
func (r *PostgresPostRepo) UpdateStatus(ctx context.Context, id string, status model.PostStatus, publishedAt *time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET status = $2,
		        published_at = COALESCE($3, published_at),
		        updated_at = now()
		 WHERE id = $1`,
		id, status, publishedAt,
	)
	if err != nil {
		return fmt.Errorf("게시글 상태 갱신에 실패했습니다: %w", err)
	}
	return nil
}

// IncrementViewCount 는 조회수를 1 증가시킨다.
func (r *PostgresPostRepo) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("조회수 갱신에 실패했습니다: %w", err)
	}
	return nil
}

// IncrementLikeCount 는 좋아요 수를 1 증가시키고 갱신된 값을 반환한다.
func (r *PostgresPostRepo) IncrementLikeCount(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`UPDATE posts SET like_count = like_count + 1 WHERE id = $1 RETURNING like_count`,
		id,
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, model.NewPostNotFoundError(id)
	}
	if err != nil {
		return 0, fmt.Errorf("좋아요 수 갱신에 실패했습니다: %w", err)
	}
	return count, nil
}

// nullString 은 빈 문자열을 NULL 로 저장하기 위한 변환 헬퍼.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullStringValue 는 NULL 허용 컬럼을 빈 문자열로 되돌리는 헬퍼.
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// isUniqueViolation 은 PostgreSQL 의 unique 제약 위반(23505) 여부를 판정한다.
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
