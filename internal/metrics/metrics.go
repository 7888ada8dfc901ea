// Package metrics 는 Prometheus 메트릭 수집과 공개를 제공한다.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector 는 메트릭 수집 인터페이스.
// 핸들러, 서비스, 워커 계층에서 사용한다.
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordSearch()
	RecordRelatedLookup()
	RecordUploadSuccess(category string)
	RecordUploadFailure(reason string)
	RecordCacheInvalidation()
	RecordImportSuccess()
	RecordImportFailure(reason string)
	RecordImportLatency(duration time.Duration)
	RecordOrphansReclaimed(count int)
}

// Collector 는 Prometheus 메트릭을 수집하는 구현.
type Collector struct {
	httpStatus       *prometheus.CounterVec
	searches         prometheus.Counter
	relatedLookups   prometheus.Counter
	uploadSuccess    *prometheus.CounterVec
	uploadFail       *prometheus.CounterVec
	cacheInvalidated prometheus.Counter
	importSuccess    prometheus.Counter
	importFail       *prometheus.CounterVec
	importLatency    prometheus.Histogram
	orphansReclaimed prometheus.Counter
}

// NewCollector 는 Collector 를 생성하고 지정된 레지스트리에 메트릭을 등록한다.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chongmu_http_status_total",
			Help: "HTTP 상태 코드별 응답 수",
		}, []string{"status_code"}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chongmu_search_total",
			Help: "검색 요청 합계",
		}),
		relatedLookups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chongmu_related_lookup_total",
			Help: "연관 글 조회 합계",
		}),
		uploadSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chongmu_upload_success_total",
			Help: "분류별 업로드 성공 합계",
		}, []string{"category"}),
		uploadFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chongmu_upload_fail_total",
			Help: "사유별 업로드 실패 합계",
		}, []string{"reason"}),
		cacheInvalidated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chongmu_cache_invalidation_total",
			Help: "게시글 풀 캐시 무효화 합계",
		}),
		importSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chongmu_import_success_total",
			Help: "RSS 가져오기 성공 합계",
		}),
		importFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chongmu_import_fail_total",
			Help: "사유별 RSS 가져오기 실패 합계",
		}, []string{"reason"}),
		importLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chongmu_import_latency_seconds",
			Help:    "RSS 가져오기 소요 시간(초)",
			Buckets: prometheus.DefBuckets,
		}),
		orphansReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chongmu_orphans_reclaimed_total",
			Help: "정리 작업이 회수한 고아 파일 행 합계",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.searches,
		c.relatedLookups,
		c.uploadSuccess,
		c.uploadFail,
		c.cacheInvalidated,
		c.importSuccess,
		c.importFail,
		c.importLatency,
		c.orphansReclaimed,
	)

	return c
}

// RecordHTTPStatus 는 HTTP 상태 코드를 기록한다.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSearch 는 검색 요청 1건을 기록한다.
func (c *Collector) RecordSearch() {
	c.searches.Inc()
}

// RecordRelatedLookup 는 연관 글 조회 1건을 기록한다.
func (c *Collector) RecordRelatedLookup() {
	c.relatedLookups.Inc()
}

// RecordUploadSuccess 는 업로드 성공을 분류 라벨과 함께 기록한다.
func (c *Collector) RecordUploadSuccess(category string) {
	c.uploadSuccess.WithLabelValues(category).Inc()
}

// RecordUploadFailure 는 업로드 실패를 사유 라벨과 함께 기록한다.
func (c *Collector) RecordUploadFailure(reason string) {
	c.uploadFail.WithLabelValues(reason).Inc()
}

// RecordCacheInvalidation 은 캐시 무효화 1건을 기록한다.
func (c *Collector) RecordCacheInvalidation() {
	c.cacheInvalidated.Inc()
}

// RecordImportSuccess 는 RSS 가져오기 성공을 기록한다.
func (c *Collector) RecordImportSuccess() {
	c.importSuccess.Inc()
}

// RecordImportFailure 는 RSS 가져오기 실패를 사유 라벨과 함께 기록한다.
func (c *Collector) RecordImportFailure(reason string) {
	c.importFail.WithLabelValues(reason).Inc()
}

// RecordImportLatency 는 RSS 가져오기 소요 시간을 기록한다.
func (c *Collector) RecordImportLatency(duration time.Duration) {
	c.importLatency.Observe(duration.Seconds())
}

// RecordOrphansReclaimed 는 회수된 고아 파일 행 수를 기록한다.
func (c *Collector) RecordOrphansReclaimed(count int) {
	c.orphansReclaimed.Add(float64(count))
}

// Handler 는 Prometheus 스크레이프용 HTTP 핸들러를 반환한다.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute 는 /metrics 엔드포인트를 제공하는 HTTP 핸들러를 반환한다.
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
