package reconcile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sujin/chongmu/internal/model"
)

type mockFileRepo struct {
	createFunc              func(ctx context.Context, file *model.UploadedFile) error
	findByIDFunc            func(ctx context.Context, id string) (*model.UploadedFile, error)
	findByIDAndUploaderFunc func(ctx context.Context, id, uploaderID string) (*model.UploadedFile, error)
	listFunc                func(ctx context.Context, limit int) ([]*model.UploadedFile, error)
	deleteByIDFunc          func(ctx context.Context, id string) error
	listOlderThanFunc       func(ctx context.Context, minAge time.Duration, limit int) ([]*model.UploadedFile, error)
}

func (m *mockFileRepo) Create(ctx context.Context, file *model.UploadedFile) error {
	return m.createFunc(ctx, file)
}

func (m *mockFileRepo) FindByID(ctx context.Context, id string) (*model.UploadedFile, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockFileRepo) FindByIDAndUploader(ctx context.Context, id, uploaderID string) (*model.UploadedFile, error) {
	return m.findByIDAndUploaderFunc(ctx, id, uploaderID)
}

func (m *mockFileRepo) List(ctx context.Context, limit int) ([]*model.UploadedFile, error) {
	return m.listFunc(ctx, limit)
}

func (m *mockFileRepo) DeleteByID(ctx context.Context, id string) error {
	return m.deleteByIDFunc(ctx, id)
}

func (m *mockFileRepo) ListOlderThan(ctx context.Context, minAge time.Duration, limit int) ([]*model.UploadedFile, error) {
	return m.listOlderThanFunc(ctx, minAge, limit)
}

type mockBlobStore struct {
	existsFunc func(ctx context.Context, bucket, storageID string) (bool, error)
}

func (m *mockBlobStore) Put(ctx context.Context, bucket, filename string, r io.Reader) (string, error) {
	return "", errors.New("호출되지 않아야 합니다")
}

func (m *mockBlobStore) Get(ctx context.Context, bucket, storageID string) (io.ReadCloser, error) {
	return nil, errors.New("호출되지 않아야 합니다")
}

func (m *mockBlobStore) Delete(ctx context.Context, bucket, storageID string) error {
	return errors.New("호출되지 않아야 합니다")
}

func (m *mockBlobStore) Exists(ctx context.Context, bucket, storageID string) (bool, error) {
	return m.existsFunc(ctx, bucket, storageID)
}

type mockOrphanMetrics struct {
	reclaimed int
}

func (m *mockOrphanMetrics) RecordOrphansReclaimed(count int) {
	m.reclaimed += count
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

func fileRow(id, storageID string) *model.UploadedFile {
	return &model.UploadedFile{
		ID:        id,
		Bucket:    "documents",
		StorageID: storageID,
		CreatedAt: time.Now().Add(-2 * time.Hour),
	}
}

// TestRun_ReclaimsOrphans 는 바이너리가 없는 행만 회수되는지 검증한다.
func TestRun_ReclaimsOrphans(t *testing.T) {
	var deleted []string
	repo := &mockFileRepo{
		listOlderThanFunc: func(ctx context.Context, minAge time.Duration, limit int) ([]*model.UploadedFile, error) {
			if minAge != time.Hour {
				t.Errorf("minAge = %v, want 1h", minAge)
			}
			return []*model.UploadedFile{
				fileRow("f1", "blob-exists"),
				fileRow("f2", "blob-missing"),
			}, nil
		},
		deleteByIDFunc: func(ctx context.Context, id string) error {
			deleted = append(deleted, id)
			return nil
		},
	}
	blobs := &mockBlobStore{
		existsFunc: func(ctx context.Context, bucket, storageID string) (bool, error) {
			return storageID == "blob-exists", nil
		},
	}
	metrics := &mockOrphanMetrics{}
	job := NewJob(repo, blobs, metrics, testLogger(), time.Hour)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(deleted) != 1 || deleted[0] != "f2" {
		t.Errorf("deleted = %v, want [f2]", deleted)
	}
	if metrics.reclaimed != 1 {
		t.Errorf("reclaimed metric = %d, want 1", metrics.reclaimed)
	}
}

// TestRun_SkipsRowOnExistsError 는 점검 실패 행을 건너뛰고 계속하는지 검증한다.
func TestRun_SkipsRowOnExistsError(t *testing.T) {
	var deleted []string
	repo := &mockFileRepo{
		listOlderThanFunc: func(ctx context.Context, minAge time.Duration, limit int) ([]*model.UploadedFile, error) {
			return []*model.UploadedFile{
				fileRow("f1", "blob-error"),
				fileRow("f2", "blob-missing"),
			}, nil
		},
		deleteByIDFunc: func(ctx context.Context, id string) error {
			deleted = append(deleted, id)
			return nil
		},
	}
	blobs := &mockBlobStore{
		existsFunc: func(ctx context.Context, bucket, storageID string) (bool, error) {
			if storageID == "blob-error" {
				return false, errors.New("connection reset")
			}
			return false, nil
		},
	}
	metrics := &mockOrphanMetrics{}
	job := NewJob(repo, blobs, metrics, testLogger(), time.Hour)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(deleted) != 1 || deleted[0] != "f2" {
		t.Errorf("deleted = %v, want [f2]", deleted)
	}
}

// TestRun_NoOrphans 는 회수 대상이 없으면 메트릭이 기록되지 않는지 검증한다.
func TestRun_NoOrphans(t *testing.T) {
	repo := &mockFileRepo{
		listOlderThanFunc: func(ctx context.Context, minAge time.Duration, limit int) ([]*model.UploadedFile, error) {
			return []*model.UploadedFile{fileRow("f1", "blob-exists")}, nil
		},
		deleteByIDFunc: func(ctx context.Context, id string) error {
			t.Error("DeleteByID 가 호출되면 안 됩니다")
			return nil
		},
	}
	blobs := &mockBlobStore{
		existsFunc: func(ctx context.Context, bucket, storageID string) (bool, error) {
			return true, nil
		},
	}
	metrics := &mockOrphanMetrics{}
	job := NewJob(repo, blobs, metrics, testLogger(), time.Hour)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if metrics.reclaimed != 0 {
		t.Errorf("reclaimed metric = %d, want 0", metrics.reclaimed)
	}
}

// TestRun_ListError 는 조회 실패가 에러로 반환되는지 검증한다.
func TestRun_ListError(t *testing.T) {
	repo := &mockFileRepo{
		listOlderThanFunc: func(ctx context.Context, minAge time.Duration, limit int) ([]*model.UploadedFile, error) {
			return nil, errors.New("db down")
		},
	}
	job := NewJob(repo, &mockBlobStore{}, &mockOrphanMetrics{}, testLogger(), time.Hour)

	if err := job.Run(context.Background()); err == nil {
		t.Error("Run() error = nil, want error")
	}
}
