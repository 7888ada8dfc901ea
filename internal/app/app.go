// Package app 은 애플리케이션의 기동과 의존성 와이어링을 담당한다.
// serve / worker / migrate / healthcheck 의 4가지 서브커맨드를 제공한다.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/sujin/chongmu/internal/analytics"
	"github.com/sujin/chongmu/internal/cache"
	"github.com/sujin/chongmu/internal/config"
	"github.com/sujin/chongmu/internal/content"
	"github.com/sujin/chongmu/internal/database"
	"github.com/sujin/chongmu/internal/handler"
	"github.com/sujin/chongmu/internal/logger"
	"github.com/sujin/chongmu/internal/metrics"
	"github.com/sujin/chongmu/internal/middleware"
	"github.com/sujin/chongmu/internal/repository"
	"github.com/sujin/chongmu/internal/security"
	"github.com/sujin/chongmu/internal/storage"
	"github.com/sujin/chongmu/internal/upload"
	"github.com/sujin/chongmu/internal/worker/importer"
	"github.com/sujin/chongmu/internal/worker/reconcile"
)

// Init 은 애플리케이션 초기화를 수행한다.
// JSON 구조화 로그를 셋업한 뒤 환경 변수에서 Config 를 읽는다.
// writer 가 지정되면 로그 출력처로 사용한다.
func Init(w io.Writer) (*config.Config, error) {
	// 설정 읽기 전에 로그를 쓸 수 있도록 로그를 먼저 초기화한다.
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run 은 애플리케이션의 메인 엔트리 포인트.
// 커맨드라인 인자에서 서브커맨드를 해석해 대응하는 모드로 기동한다.
// args 에는 os.Args[1:] 를 넘긴다.
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck 는 경량 서브커맨드이므로 풀 초기화를 생략한다.
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// rateLimiterConfigFrom 은 req/min 단위의 설정값을 req/sec 레이트로 변환한다.
func rateLimiterConfigFrom(cfg *config.Config) middleware.RateLimiterConfig {
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimitGeneral > 0 {
		rlCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
		rlCfg.GeneralBurst = cfg.RateLimitGeneral
	}
	if cfg.RateLimitUpload > 0 {
		rlCfg.UploadRate = rate.Limit(float64(cfg.RateLimitUpload) / 60.0)
		rlCfg.UploadBurst = cfg.RateLimitUpload
	}
	return rlCfg
}

// runServe 는 API 서버 모드로 기동한다.
// PostgreSQL 과 GridFS 에 접속해 전체 의존성을 와이어링하고 HTTP 서버를 시작한다.
// SIGINT 또는 SIGTERM 수신 시 그레이스풀 셧다운한다.
func runServe(cfg *config.Config) error {
	// 1. DB 접속
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. 오브젝트 스토리지(GridFS) 접속
	mc, err := storage.NewMongoClient(cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("failed to connect to object storage: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mc.Close(ctx)
	}()

	blobs := storage.NewGridFSStore(mc.Database())

	// 3. 리포지토리 초기화
	postRepo := repository.NewPostgresPostRepo(db)
	categoryRepo := repository.NewPostgresCategoryRepo(db)
	tagRepo := repository.NewPostgresTagRepo(db)
	fileRepo := repository.NewPostgresFileRepo(db)
	visitRepo := repository.NewPostgresVisitRepo(db)

	// 4. 메트릭 초기화
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. 캐시와 변경 통지 리스너
	postCache := cache.NewPostCache(postRepo, cfg.CacheTTL)
	listener := cache.NewListener(cfg.DatabaseURL, postCache, collector, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := listener.Run(ctx); err != nil {
			slog.Error("change notification listener stopped",
				slog.String("error", err.Error()),
			)
		}
	}()

	// 6. 도메인 서비스 초기화
	sanitizer := security.NewBodySanitizer()
	postService := content.NewPostService(
		postRepo, categoryRepo, tagRepo, postCache, sanitizer, slog.Default(), nil,
	)
	uploadService := upload.NewService(fileRepo, blobs, cfg.UploadMaxSize, slog.Default())
	visitLogger := analytics.NewVisitLogger(visitRepo, slog.Default())

	// 7. 라우터 구성
	rateLimiter := middleware.NewRateLimiter(rateLimiterConfigFrom(cfg))
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		AdminToken:        cfg.AdminToken,
		AdminUserID:       cfg.AdminUserID,
		MetricsRecorder:   collector,
		AccessLogger:      slog.Default(),

		PostService: postService,
		Visits:      visitLogger,
		Metrics:     collector,

		CategoryRepo: categoryRepo,
		TagRepo:      tagRepo,

		UploadService: uploadService,
	})

	// 8. 메트릭 서버를 별도 포트로 기동
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metrics.SetupMetricsRoute(registry),
	}
	go func() {
		slog.Info("metrics server starting", slog.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()

	// 9. HTTP 서버 기동
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("metrics server shutdown failed", slog.String("error", err.Error()))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker 는 워커 모드로 기동한다.
// RSS 가져오기 스케줄러와 파일 정합성 회수 작업을 실행한다.
// SIGINT 또는 SIGTERM 수신 시 셧다운한다.
func runWorker(cfg *config.Config) error {
	// 1. DB 접속
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. 오브젝트 스토리지 접속
	mc, err := storage.NewMongoClient(cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("failed to connect to object storage: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mc.Close(ctx)
	}()

	blobs := storage.NewGridFSStore(mc.Database())

	// 3. 리포지토리 초기화
	postRepo := repository.NewPostgresPostRepo(db)
	categoryRepo := repository.NewPostgresCategoryRepo(db)
	tagRepo := repository.NewPostgresTagRepo(db)
	fileRepo := repository.NewPostgresFileRepo(db)

	// 4. 메트릭 초기화
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. 가져오기 파이프라인 초기화
	// 워커는 캐시를 조회하지 않지만 PostService 가 풀 제공자를 요구하므로
	// 동일한 캐시 구현을 공유한다.
	postCache := cache.NewPostCache(postRepo, cfg.CacheTTL)
	sanitizer := security.NewBodySanitizer()
	ssrfGuard := security.NewSSRFGuard()
	postService := content.NewPostService(
		postRepo, categoryRepo, tagRepo, postCache, sanitizer, slog.Default(), nil,
	)

	feedImporter := importer.NewImporter(
		postService, ssrfGuard, collector, slog.Default(),
		cfg.ImportCategorySlug, cfg.ImportTimeout, cfg.ImportMaxSize,
	)
	scheduler := importer.NewScheduler(
		cfg.ImportFeedURLs, feedImporter, slog.Default(), cfg.ImportMaxConcurrent,
	)

	// 6. 파일 정합성 회수 작업 초기화
	reconcileJob := reconcile.NewJob(
		fileRepo, blobs, collector, slog.Default(), cfg.ReconcileMinAge,
	)

	// 그레이스풀 셧다운을 위한 시그널 핸들링
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("import_interval", cfg.ImportInterval),
		slog.Int("max_concurrent", cfg.ImportMaxConcurrent),
		slog.Duration("reconcile_interval", cfg.ReconcileInterval),
	)

	// 메트릭 서버를 백그라운드로 기동
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metrics.SetupMetricsRoute(registry),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server listen error", slog.String("error", err.Error()))
		}
	}()

	// 정합성 회수 작업을 백그라운드로 실행
	go reconcileJob.Start(ctx, cfg.ReconcileInterval)

	// 가져오기 스케줄러를 메인 고루틴에서 실행(블로킹)
	scheduler.Start(ctx, cfg.ImportInterval)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	metricsServer.Shutdown(shutdownCtx)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate 는 데이터베이스 마이그레이션을 실행한다.
// 미적용 마이그레이션을 순서대로 모두 적용한다.
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck 는 헬스체크를 실행한다.
// distroless 환경의 Docker 헬스체크용 서브커맨드.
// /healthz 엔드포인트에 HTTP 요청을 보내 결과를 반환한다.
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL 은 데이터베이스 URL 의 인증 정보를 마스킹한다.
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
