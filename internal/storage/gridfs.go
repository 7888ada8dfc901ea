package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sujin/chongmu/internal/upload"
)

// GridFSStore 는 GridFS 를 사용한 BlobStore 구현.
// 버킷명(images, documents)마다 별도의 GridFS 버킷을 사용한다.
type GridFSStore struct {
	database *mongo.Database

	mu      sync.Mutex
	buckets map[string]*gridfs.Bucket
}

// NewGridFSStore 는 GridFSStore 를 생성한다.
func NewGridFSStore(database *mongo.Database) *GridFSStore {
	return &GridFSStore{
		database: database,
		buckets:  make(map[string]*gridfs.Bucket),
	}
}

// bucket 은 버킷명에 대응하는 GridFS 버킷을 반환한다. 최초 참조 시 생성한다.
func (s *GridFSStore) bucket(name string) (*gridfs.Bucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.buckets[name]; ok {
		return b, nil
	}
	b, err := gridfs.NewBucket(s.database, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("GridFS 버킷 생성에 실패했습니다 (%s): %w", name, err)
	}
	s.buckets[name] = b
	return b, nil
}

// Put 은 바이너리를 저장하고 오브젝트 ID(16진수)를 반환한다.
func (s *GridFSStore) Put(ctx context.Context, bucket, filename string, r io.Reader) (string, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return "", err
	}

	stream, err := b.OpenUploadStream(filename)
	if err != nil {
		return "", fmt.Errorf("업로드 스트림 열기에 실패했습니다: %w", err)
	}

	if _, err := io.Copy(stream, r); err != nil {
		stream.Close()
		return "", fmt.Errorf("바이너리 쓰기에 실패했습니다: %w", err)
	}
	if err := stream.Close(); err != nil {
		return "", fmt.Errorf("업로드 스트림 닫기에 실패했습니다: %w", err)
	}

	return stream.FileID.(primitive.ObjectID).Hex(), nil
}

// Get 은 저장된 바이너리의 리더를 반환한다. 리더는 호출자가 닫는다.
func (s *GridFSStore) Get(ctx context.Context, bucket, storageID string) (io.ReadCloser, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}

	objectID, err := primitive.ObjectIDFromHex(storageID)
	if err != nil {
		return nil, fmt.Errorf("스토리지 핸들이 올바르지 않습니다: %w", err)
	}

	stream, err := b.OpenDownloadStream(objectID)
	if err != nil {
		return nil, fmt.Errorf("다운로드 스트림 열기에 실패했습니다: %w", err)
	}
	return stream, nil
}

// Delete 는 저장된 바이너리를 삭제한다.
func (s *GridFSStore) Delete(ctx context.Context, bucket, storageID string) error {
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}

	objectID, err := primitive.ObjectIDFromHex(storageID)
	if err != nil {
		return fmt.Errorf("스토리지 핸들이 올바르지 않습니다: %w", err)
	}

	if err := b.Delete(objectID); err != nil {
		return fmt.Errorf("바이너리 삭제에 실패했습니다: %w", err)
	}
	return nil
}

// Exists 는 해당 핸들의 오브젝트 존재 여부를 반환한다.
func (s *GridFSStore) Exists(ctx context.Context, bucket, storageID string) (bool, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return false, err
	}

	objectID, err := primitive.ObjectIDFromHex(storageID)
	if err != nil {
		return false, fmt.Errorf("스토리지 핸들이 올바르지 않습니다: %w", err)
	}

	cursor, err := b.Find(bson.M{"_id": objectID})
	if err != nil {
		return false, fmt.Errorf("오브젝트 조회에 실패했습니다: %w", err)
	}
	defer cursor.Close(ctx)

	return cursor.Next(ctx), nil
}

// compile-time interface check
var _ upload.BlobStore = (*GridFSStore)(nil)
