package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// channelName 은 게시글 변경 트리거가 통지하는 PostgreSQL 채널명.
const channelName = "posts_changed"

const (
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// InvalidationRecorder 는 캐시 무효화 횟수를 기록하는 인터페이스.
type InvalidationRecorder interface {
	RecordCacheInvalidation()
}

// Listener 는 PostgreSQL LISTEN/NOTIFY 로 게시글 변경을 수신해
// 캐시를 무효화한다. 게시글과 태그 연결의 변경은 DB 트리거가 통지한다.
type Listener struct {
	listener *pq.Listener
	cache    *PostCache
	metrics  InvalidationRecorder
	logger   *slog.Logger
}

// NewListener 는 Listener 를 생성한다. metrics 는 nil 허용.
func NewListener(databaseURL string, cache *PostCache, metrics InvalidationRecorder, logger *slog.Logger) *Listener {
	pl := pq.NewListener(databaseURL, minReconnectInterval, maxReconnectInterval,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.Warn("통지 리스너 접속 이벤트",
					slog.Int("event", int(ev)),
					slog.String("error", err.Error()),
				)
			}
		})
	return &Listener{listener: pl, cache: cache, metrics: metrics, logger: logger}
}

// Run 은 통지 수신 루프를 실행한다. ctx 취소까지 블록한다.
// 통지가 오면 종류와 무관하게 캐시 전체를 무효화한다.
// 재접속 후에는 끊긴 동안의 통지를 놓쳤을 수 있으므로 역시 무효화한다.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.listener.Listen(channelName); err != nil {
		return fmt.Errorf("채널 구독에 실패했습니다 (%s): %w", channelName, err)
	}
	defer l.listener.Close()

	l.logger.Info("게시글 변경 통지 수신을 시작합니다", slog.String("channel", channelName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-l.listener.Notify:
			// n == nil 은 재접속 직후를 의미한다.
			l.cache.Invalidate()
			if l.metrics != nil {
				l.metrics.RecordCacheInvalidation()
			}
			if n != nil {
				l.logger.Debug("게시글 변경 통지를 수신했습니다", slog.String("op", n.Extra))
			} else {
				l.logger.Info("통지 접속이 복구되어 캐시를 무효화했습니다")
			}
		case <-time.After(pingInterval):
			if err := l.listener.Ping(); err != nil {
				l.logger.Warn("통지 접속 핑에 실패했습니다", slog.String("error", err.Error()))
			}
		}
	}
}
