// Package analytics 는 방문 로그 기록을 제공한다.
package analytics

import (
	"context"
	"log/slog"

	"github.com/sujin/chongmu/internal/repository"
)

// VisitLogger 는 방문 로그를 베스트 에포트로 기록한다.
// 기록 실패는 로그로만 남기고 호출자에게 전파하지 않는다.
// 게시글 조회 실패의 원인이 되어서는 안 된다.
type VisitLogger struct {
	visits repository.VisitRepository
	logger *slog.Logger
}

// NewVisitLogger 는 VisitLogger 를 생성한다.
func NewVisitLogger(visits repository.VisitRepository, logger *slog.Logger) *VisitLogger {
	return &VisitLogger{visits: visits, logger: logger}
}

// Record 는 방문 1건을 기록한다. 실패해도 에러를 반환하지 않는다.
func (l *VisitLogger) Record(ctx context.Context, path, referer, userAgent string) {
	if err := l.visits.Insert(ctx, path, referer, userAgent); err != nil {
		l.logger.Warn("방문 로그 기록에 실패했습니다",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
