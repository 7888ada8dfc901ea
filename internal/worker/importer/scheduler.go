package importer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// FeedImportService 는 피드 가져오기 실행 인터페이스.
type FeedImportService interface {
	// ImportFeed 는 지정 피드를 취득해 새 항목을 초안으로 저장한다.
	ImportFeed(ctx context.Context, feedURL string) error
}

// Scheduler 는 피드 가져오기의 스케줄링과 병렬 제어를 담당한다.
// 설정된 간격의 티커로 구성된 피드 목록을 순회하며,
// 세마포어 패턴으로 최대 병렬 수를 제어한다.
type Scheduler struct {
	feedURLs       []string
	importer       FeedImportService
	logger         *slog.Logger
	maxConcurrency int
}

// NewScheduler 는 Scheduler 를 생성한다.
// maxConcurrency 가 0 이하이면 기본값 4 를 사용한다.
func NewScheduler(
	feedURLs []string,
	importer FeedImportService,
	logger *slog.Logger,
	maxConcurrency int,
) *Scheduler {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Scheduler{
		feedURLs:       feedURLs,
		importer:       importer,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Start 는 지정 간격의 티커로 스케줄러를 기동한다.
// 컨텍스트가 취소될 때까지 실행을 계속한다.
func (s *Scheduler) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("가져오기 스케줄러를 시작했습니다",
		slog.Duration("interval", interval),
		slog.Int("feed_count", len(s.feedURLs)),
		slog.Int("max_concurrency", s.maxConcurrency),
	)

	// 기동 직후 1회 실행
	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("가져오기 스케줄러를 중지했습니다")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce 는 구성된 모든 피드를 병렬로 1회 가져온다.
// 피드 단위 실패는 로그로 남기고 나머지 피드를 계속 처리한다.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if len(s.feedURLs) == 0 {
		s.logger.Info("가져올 피드가 구성되어 있지 않습니다")
		return
	}

	start := time.Now()
	s.logger.Info("가져오기 사이클을 시작합니다",
		slog.Int("feed_count", len(s.feedURLs)),
	)

	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup

	for _, feedURL := range s.feedURLs {
		wg.Add(1)
		sem <- struct{}{}

		go func(url string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.importer.ImportFeed(ctx, url); err != nil {
				s.logger.Error("피드 가져오기에 실패했습니다",
					slog.String("feed_url", url),
					slog.String("error", err.Error()),
				)
			}
		}(feedURL)
	}

	wg.Wait()

	duration := time.Since(start)
	s.logger.Info("가져오기 사이클이 완료되었습니다",
		slog.Int("feed_count", len(s.feedURLs)),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)
}
