package upload

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sujin/chongmu/internal/model"
	"github.com/sujin/chongmu/internal/repository"
)

// BlobStore 는 파일 바이너리를 보관하는 오브젝트 스토리지 인터페이스.
type BlobStore interface {
	// Put 은 바이너리를 저장하고 스토리지 핸들을 반환한다.
	Put(ctx context.Context, bucket, filename string, r io.Reader) (string, error)

	// Get 은 저장된 바이너리의 리더를 반환한다.
	Get(ctx context.Context, bucket, storageID string) (io.ReadCloser, error)

	// Delete 는 저장된 바이너리를 삭제한다.
	Delete(ctx context.Context, bucket, storageID string) error

	// Exists 는 해당 핸들의 오브젝트가 존재하는지 반환한다.
	Exists(ctx context.Context, bucket, storageID string) (bool, error)
}

// Service 는 파일 업로드·조회·삭제 서비스.
type Service struct {
	files   repository.FileRepository
	blobs   BlobStore
	maxSize int64
	logger  *slog.Logger
	now     func() time.Time
}

// NewService 는 업로드 Service 를 생성한다.
// maxSize 가 0 이하이면 DefaultMaxSize 를 사용한다.
func NewService(files repository.FileRepository, blobs BlobStore, maxSize int64, logger *slog.Logger) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Service{
		files:   files,
		blobs:   blobs,
		maxSize: maxSize,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Input 은 업로드 입력.
type Input struct {
	OriginalName string
	MimeType     string
	Size         int64
	Content      io.Reader
	Description  string
	IsPublic     bool
	UploaderID   string
}

// Upload 는 파일을 검증·분류한 뒤 스토리지와 메타데이터에 저장한다.
// 검증 실패는 저장 시도 전에 즉시 반환한다(fail-fast).
func (s *Service) Upload(ctx context.Context, input Input) (*model.UploadedFile, error) {
	if apiErr := Validate(input.OriginalName, input.Size, s.maxSize); apiErr != nil {
		return nil, apiErr
	}

	now := s.now()
	category := Classify(NormalizeExt(input.OriginalName))
	bucket := BucketFor(category)
	key := GenerateStorageKey(input.OriginalName, now)
	path := StoragePath(key, now)

	storageID, err := s.blobs.Put(ctx, bucket, path, input.Content)
	if err != nil {
		s.logger.Error("스토리지 저장에 실패했습니다",
			slog.String("bucket", bucket),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, model.NewStoreFailureError()
	}

	file := &model.UploadedFile{
		ID:           uuid.NewString(),
		StorageKey:   key,
		OriginalName: input.OriginalName,
		MimeType:     input.MimeType,
		Size:         input.Size,
		StoragePath:  path,
		StorageID:    storageID,
		Bucket:       bucket,
		Category:     category,
		Description:  input.Description,
		IsPublic:     input.IsPublic,
		UploaderID:   input.UploaderID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.files.Create(ctx, file); err != nil {
		s.logger.Error("파일 메타데이터 생성에 실패했습니다",
			slog.String("storage_id", storageID),
			slog.String("error", err.Error()),
		)
		// 메타데이터 없이 남은 바이너리는 즉시 회수를 시도한다.
		// 실패해도 정리 작업이 회수하므로 로그만 남긴다.
		if delErr := s.blobs.Delete(ctx, bucket, storageID); delErr != nil {
			s.logger.Warn("고아 바이너리 회수에 실패했습니다",
				slog.String("storage_id", storageID),
				slog.String("error", delErr.Error()),
			)
		}
		return nil, model.NewStoreFailureError()
	}

	return file, nil
}

// Delete 는 업로더 본인의 파일을 삭제한다.
//
// 삭제는 비트랜잭션 2단계다: 스토리지 삭제 후 메타데이터 삭제.
// 1단계 실패는 전체 실패(StoreFailure)로, 1단계 성공 후 2단계 실패는
// 부분 실패(PartialDelete)로 구분해 반환한다. 소유권 불일치와 부재는
// 같은 에러(NotFoundOrForbidden)로 노출한다.
func (s *Service) Delete(ctx context.Context, fileID, uploaderID string) error {
	file, err := s.files.FindByIDAndUploader(ctx, fileID, uploaderID)
	if err != nil {
		return err
	}
	if file == nil {
		return model.NewNotFoundOrForbiddenError(fileID)
	}

	if err := s.blobs.Delete(ctx, file.Bucket, file.StorageID); err != nil {
		s.logger.Error("스토리지 삭제에 실패했습니다",
			slog.String("file_id", fileID),
			slog.String("storage_id", file.StorageID),
			slog.String("error", err.Error()),
		)
		return model.NewStoreFailureError()
	}

	if err := s.files.DeleteByID(ctx, fileID); err != nil {
		s.logger.Error("파일 메타데이터 삭제에 실패했습니다",
			slog.String("file_id", fileID),
			slog.String("error", err.Error()),
		)
		return model.NewPartialDeleteError(fileID)
	}

	return nil
}

// Download 는 파일 메타데이터와 바이너리 리더를 반환한다.
// 리더는 호출자가 닫아야 한다.
func (s *Service) Download(ctx context.Context, fileID string) (*model.UploadedFile, io.ReadCloser, error) {
	file, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	if file == nil {
		return nil, nil, model.NewNotFoundOrForbiddenError(fileID)
	}

	r, err := s.blobs.Get(ctx, file.Bucket, file.StorageID)
	if err != nil {
		s.logger.Error("스토리지 조회에 실패했습니다",
			slog.String("file_id", fileID),
			slog.String("storage_id", file.StorageID),
			slog.String("error", err.Error()),
		)
		return nil, nil, model.NewStoreFailureError()
	}

	return file, r, nil
}

// List 는 파일 목록을 생성 시각 내림차순으로 반환한다.
func (s *Service) List(ctx context.Context, limit int) ([]*model.UploadedFile, error) {
	return s.files.List(ctx, limit)
}
