// Package reconcile 는 파일 메타데이터와 오브젝트 스토리지의 정합성을
// 회복하는 배치 작업을 제공한다. 삭제가 부분 실패하면 바이너리는 지워지고
// 메타데이터 행만 남는데, 이 작업이 그런 고아 행을 회수한다.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/sujin/chongmu/internal/model"
	"github.com/sujin/chongmu/internal/repository"
	"github.com/sujin/chongmu/internal/upload"
)

// OrphanMetrics 는 회수 작업이 기록하는 메트릭의 부분 집합.
type OrphanMetrics interface {
	RecordOrphansReclaimed(count int)
}

// defaultBatchSize 는 1회 실행에서 점검할 최대 행 수.
const defaultBatchSize = 500

// Job 은 고아 메타데이터 행의 회수 작업.
// 주기 실행 배치로 설계되어 있으며 멱등하다: 점검 대상이 없거나
// 이미 회수된 행을 다시 점검해도 에러가 되지 않는다.
type Job struct {
	files     repository.FileRepository
	blobs     upload.BlobStore
	metrics   OrphanMetrics
	logger    *slog.Logger
	MinAge    time.Duration // 점검 대상의 최소 경과 시간(업로드 직후 행 제외)
	BatchSize int
}

// NewJob 은 Job 을 생성한다.
// minAge 는 생성 직후의 행(업로드 진행 중일 수 있음)을 점검에서 제외하는 유예 시간.
func NewJob(
	files repository.FileRepository,
	blobs upload.BlobStore,
	metrics OrphanMetrics,
	logger *slog.Logger,
	minAge time.Duration,
) *Job {
	return &Job{
		files:     files,
		blobs:     blobs,
		metrics:   metrics,
		logger:    logger,
		MinAge:    minAge,
		BatchSize: defaultBatchSize,
	}
}

// Run 은 유예 시간이 지난 메타데이터 행을 순회하며 바이너리가 없는
// 행을 삭제한다. 행 단위 실패는 로그로 남기고 다음 행을 계속 점검한다.
func (j *Job) Run(ctx context.Context) error {
	start := time.Now()

	files, err := j.files.ListOlderThan(ctx, j.MinAge, j.BatchSize)
	if err != nil {
		j.logger.Error("회수 대상 조회에 실패했습니다",
			slog.String("error", err.Error()),
		)
		return err
	}

	reclaimed := 0
	for _, f := range files {
		ok, err := j.reconcileFile(ctx, f)
		if err != nil {
			j.logger.Warn("파일 정합성 점검에 실패했습니다",
				slog.String("file_id", f.ID),
				slog.String("storage_id", f.StorageID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if ok {
			reclaimed++
		}
	}

	if reclaimed > 0 {
		j.metrics.RecordOrphansReclaimed(reclaimed)
	}

	duration := time.Since(start)
	j.logger.Info("파일 정합성 회수 작업이 완료되었습니다",
		slog.Int("checked_count", len(files)),
		slog.Int("reclaimed_count", reclaimed),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// reconcileFile 은 행 1건을 점검한다.
// 바이너리가 없으면 메타데이터 행을 삭제하고 true 를 반환한다.
func (j *Job) reconcileFile(ctx context.Context, f *model.UploadedFile) (bool, error) {
	exists, err := j.blobs.Exists(ctx, f.Bucket, f.StorageID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if err := j.files.DeleteByID(ctx, f.ID); err != nil {
		return false, err
	}

	j.logger.Info("고아 메타데이터 행을 회수했습니다",
		slog.String("file_id", f.ID),
		slog.String("storage_key", f.StorageKey),
	)
	return true, nil
}

// Start 는 지정 간격의 티커로 회수 작업을 기동한다.
// 기동 직후 1회 실행하고, 이후 컨텍스트가 취소될 때까지 반복한다.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("파일 정합성 회수 작업을 시작했습니다",
		slog.Duration("interval", interval),
		slog.Duration("min_age", j.MinAge),
	)

	if err := j.Run(ctx); err != nil {
		j.logger.Error("회수 작업 실행에 실패했습니다",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("파일 정합성 회수 작업을 중지했습니다")
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("회수 작업 실행에 실패했습니다",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
