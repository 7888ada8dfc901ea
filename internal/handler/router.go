package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sujin/chongmu/internal/middleware"
	"github.com/sujin/chongmu/internal/repository"
)

// RouterDeps 는 NewRouter 에 필요한 의존성을 모은 구조체.
type RouterDeps struct {
	// 미들웨어 의존
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	AdminToken        string
	AdminUserID       string
	MetricsRecorder   middleware.HTTPStatusRecorder
	AccessLogger      *slog.Logger

	// 게시글
	PostService PostServiceInterface
	Visits      VisitRecorder
	Metrics     interface {
		ContentMetrics
		UploadMetrics
	}

	// 분류 체계
	CategoryRepo repository.CategoryRepository
	TagRepo      repository.TagRepository

	// 파일
	UploadService UploadServiceInterface
}

// NewRouter 는 전체 API 엔드포인트의 라우팅과 미들웨어 체인을 구성한 chi.Router 를 반환한다.
//
// 미들웨어 스택 실행 순서:
//
//	Recovery → AccessLog → SecurityHeaders → CORS → Metrics → (공개: RateLimit(General) | 관리: AdminAuth)
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.AccessLogger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.AccessLogger))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}

	postHandler := NewPostHandler(deps.PostService, deps.Visits, deps.Metrics)
	taxonomyHandler := NewTaxonomyHandler(deps.CategoryRepo, deps.TagRepo)
	fileHandler := NewFileHandler(deps.UploadService, deps.Metrics)

	// 헬스체크는 레이트 제한 밖에 둔다.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- 공개 라우트 ---
	// 클라이언트 IP 단위 레이트 제한을 적용한다.
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/posts", func(r chi.Router) {
			r.Get("/", postHandler.ListPosts)

			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", postHandler.GetPost)
				r.Get("/related", postHandler.GetRelated)
				r.Post("/like", postHandler.Like)
			})
		})

		r.Get("/api/search", postHandler.Search)
		r.Get("/api/categories", taxonomyHandler.ListCategories)
		r.Get("/api/tags", taxonomyHandler.ListTags)

		// 파일 다운로드는 공개 경로
		r.Get("/files/{id}", fileHandler.DownloadFile)
	})

	// --- 관리 라우트 ---
	// 관리자 토큰 인증 필수. 업로드에는 전용 레이트 제한을 추가한다.
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAdminAuthMiddleware(deps.AdminToken, deps.AdminUserID))

		r.Route("/admin/posts", func(r chi.Router) {
			r.Post("/", postHandler.CreatePost)

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", postHandler.UpdatePost)
				r.Post("/publish", postHandler.Publish)
				r.Post("/archive", postHandler.Archive)
			})
		})

		r.Route("/admin/categories", func(r chi.Router) {
			r.Post("/", taxonomyHandler.CreateCategory)
			r.Put("/{id}", taxonomyHandler.UpdateCategory)
		})

		r.Post("/admin/tags", taxonomyHandler.CreateTag)

		r.Route("/admin/files", func(r chi.Router) {
			r.With(deps.RateLimiter.UploadMiddleware()).Post("/", fileHandler.Upload)
			r.Get("/", fileHandler.ListFiles)
			r.Delete("/{id}", fileHandler.DeleteFile)
		})
	})

	return r
}
