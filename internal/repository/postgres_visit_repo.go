package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresVisitRepo 는 PostgreSQL 을 사용한 방문 로그 리포지토리.
type PostgresVisitRepo struct {
	db *sql.DB
}

// NewPostgresVisitRepo 는 PostgresVisitRepo 를 생성한다.
func NewPostgresVisitRepo(db *sql.DB) *PostgresVisitRepo {
	return &PostgresVisitRepo{db: db}
}

// Insert 는 방문 로그 1건을 기록한다.
func (r *PostgresVisitRepo) Insert(ctx context.Context, path, referer, userAgent string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO visits (path, referer, user_agent) VALUES ($1, $2, $3)`,
		path, referer, userAgent,
	)
	if err != nil {
		return fmt.Errorf("방문 로그 기록에 실패했습니다: %w", err)
	}
	return nil
}

// compile-time interface check
var _ VisitRepository = (*PostgresVisitRepo)(nil)
