package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sujin/chongmu/internal/model"
)

// PostgresFileRepo 는 PostgreSQL 을 사용한 업로드 파일 메타데이터 리포지토리.
type PostgresFileRepo struct {
	db *sql.DB
}

// NewPostgresFileRepo 는 PostgresFileRepo 를 생성한다.
func NewPostgresFileRepo(db *sql.DB) *PostgresFileRepo {
	return &PostgresFileRepo{db: db}
}

const fileSelectColumns = `
	SELECT id, storage_key, original_name, mime_type, size, storage_path,
	       storage_id, bucket, category, description, is_public, uploader_id,
	       created_at, updated_at
	FROM files`

func scanFile(scan func(dest ...interface{}) error) (*model.UploadedFile, error) {
	f := &model.UploadedFile{}
	err := scan(
		&f.ID, &f.StorageKey, &f.OriginalName, &f.MimeType, &f.Size, &f.StoragePath,
		&f.StorageID, &f.Bucket, &f.Category, &f.Description, &f.IsPublic, &f.UploaderID,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Create 는 파일 메타데이터 행을 생성한다.
func (r *PostgresFileRepo) Create(ctx context.Context, file *model.UploadedFile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO files (id, storage_key, original_name, mime_type, size,
		                    storage_path, storage_id, bucket, category, description,
		                    is_public, uploader_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		file.ID, file.StorageKey, file.OriginalName, file.MimeType, file.Size,
		file.StoragePath, file.StorageID, file.Bucket, file.Category, file.Description,
		file.IsPublic, file.UploaderID, file.CreatedAt, file.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("파일 메타데이터 생성에 실패했습니다: %w", err)
	}
	return nil
}

// FindByID 는 지정 ID의 파일을 조회한다. 없으면 nil 을 반환한다.
func (r *PostgresFileRepo) FindByID(ctx context.Context, id string) (*model.UploadedFile, error) {
	row := r.db.QueryRowContext(ctx, fileSelectColumns+" WHERE id = $1", id)
	f, err := scanFile(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("파일 조회에 실패했습니다: %w", err)
	}
	return f, nil
}

// FindByIDAndUploader 는 (fileID, uploaderID) 로 스코프된 조회를 수행한다.
// 소유권 확인이 쿼리에 포함되므로 미소유 파일은 존재하지 않는 것과 동일하게 취급된다.
func (r *PostgresFileRepo) FindByIDAndUploader(ctx context.Context, id, uploaderID string) (*model.UploadedFile, error) {
	row := r.db.QueryRowContext(ctx,
		fileSelectColumns+" WHERE id = $1 AND uploader_id = $2", id, uploaderID)
	f, err := scanFile(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("파일 조회에 실패했습니다: %w", err)
	}
	return f, nil
}

// List 는 파일 목록을 생성 시각 내림차순으로 반환한다.
func (r *PostgresFileRepo) List(ctx context.Context, limit int) ([]*model.UploadedFile, error) {
	rows, err := r.db.QueryContext(ctx,
		fileSelectColumns+" ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("파일 목록 조회에 실패했습니다: %w", err)
	}
	defer rows.Close()

	return collectFiles(rows)
}

// DeleteByID 는 파일 메타데이터 행을 삭제한다.
func (r *PostgresFileRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("파일 메타데이터 삭제에 실패했습니다: %w", err)
	}
	return nil
}

// ListOlderThan 은 생성된 지 minAge 이상 지난 행을 오래된 순으로 반환한다.
func (r *PostgresFileRepo) ListOlderThan(ctx context.Context, minAge time.Duration, limit int) ([]*model.UploadedFile, error) {
	interval := fmt.Sprintf("%d seconds", int(minAge.Seconds()))

	rows, err := r.db.QueryContext(ctx,
		fileSelectColumns+` WHERE created_at < now() - $1::interval
		 ORDER BY created_at ASC LIMIT $2`,
		interval, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("정리 대상 파일 조회에 실패했습니다: %w", err)
	}
	defer rows.Close()

	return collectFiles(rows)
}

func collectFiles(rows *sql.Rows) ([]*model.UploadedFile, error) {
	var files []*model.UploadedFile
	for rows.Next() {
		f, err := scanFile(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("파일 행 읽기에 실패했습니다: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("파일 목록 순회에 실패했습니다: %w", err)
	}
	return files, nil
}

// compile-time interface check
var _ FileRepository = (*PostgresFileRepo)(nil)
