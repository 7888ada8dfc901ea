package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sujin/chongmu/internal/middleware"
	"github.com/sujin/chongmu/internal/model"
	"github.com/sujin/chongmu/internal/upload"
)

// defaultFilesPerPage 는 파일 목록의 기본 조회 건수.
const defaultFilesPerPage = 50

// multipartMemoryLimit 은 멀티파트 파싱 시 메모리에 올리는 상한.
// 초과분은 임시 파일로 내려간다.
const multipartMemoryLimit = 4 << 20

// UploadServiceInterface 는 파일 핸들러가 필요로 하는 서비스 인터페이스.
type UploadServiceInterface interface {
	Upload(ctx context.Context, input upload.Input) (*model.UploadedFile, error)
	Delete(ctx context.Context, fileID, uploaderID string) error
	Download(ctx context.Context, fileID string) (*model.UploadedFile, io.ReadCloser, error)
	List(ctx context.Context, limit int) ([]*model.UploadedFile, error)
}

// UploadMetrics 는 파일 핸들러가 기록하는 메트릭의 부분 집합.
type UploadMetrics interface {
	RecordUploadSuccess(category string)
	RecordUploadFailure(reason string)
}

// FileHandler 는 파일 업로드·다운로드·삭제의 HTTP 핸들러.
type FileHandler struct {
	service UploadServiceInterface
	metrics UploadMetrics
}

// NewFileHandler 는 FileHandler 를 생성한다.
func NewFileHandler(service UploadServiceInterface, metrics UploadMetrics) *FileHandler {
	return &FileHandler{service: service, metrics: metrics}
}

// fileResponse 는 파일 메타데이터 응답.
type fileResponse struct {
	ID           string    `json:"id"`
	StorageKey   string    `json:"storage_key"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	StoragePath  string    `json:"storage_path"`
	Bucket       string    `json:"bucket"`
	Category     string    `json:"category"`
	Description  string    `json:"description,omitempty"`
	IsPublic     bool      `json:"is_public"`
	UploaderID   string    `json:"uploader_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func toFileResponse(f *model.UploadedFile) fileResponse {
	return fileResponse{
		ID:           f.ID,
		StorageKey:   f.StorageKey,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		StoragePath:  f.StoragePath,
		Bucket:       f.Bucket,
		Category:     string(f.Category),
		Description:  f.Description,
		IsPublic:     f.IsPublic,
		UploaderID:   f.UploaderID,
		CreatedAt:    f.CreatedAt,
	}
}

// Upload 는 멀티파트 폼의 파일을 업로드한다.
// POST /admin/files  (form fields: file, description, is_public)
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	uploaderID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("멀티파트 폼을 해석할 수 없습니다"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("file 필드가 필요합니다"))
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	isPublic, _ := strconv.ParseBool(r.FormValue("is_public"))

	uploaded, err := h.service.Upload(r.Context(), upload.Input{
		OriginalName: header.Filename,
		MimeType:     mimeType,
		Size:         header.Size,
		Content:      file,
		Description:  r.FormValue("description"),
		IsPublic:     isPublic,
		UploaderID:   uploaderID,
	})
	if err != nil {
		h.metrics.RecordUploadFailure(uploadFailureReason(err))
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordUploadSuccess(string(uploaded.Category))
	writeJSON(w, http.StatusCreated, toFileResponse(uploaded))
}

// uploadFailureReason 은 업로드 실패의 메트릭 라벨을 도출한다.
func uploadFailureReason(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case model.ErrCodeSizeExceeded:
			return "size_exceeded"
		case model.ErrCodeUnsupportedType:
			return "unsupported_type"
		case model.ErrCodeStoreFailure:
			return "store_failure"
		}
	}
	return "internal"
}

// ListFiles 는 파일 목록을 반환한다.
// GET /admin/files?limit=50
func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	limit := defaultFilesPerPage
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeAPIErrorResponse(w, http.StatusBadRequest,
				model.NewInvalidRequestError("limit 은 1 이상의 정수여야 합니다"))
			return
		}
		limit = parsed
	}

	files, err := h.service.List(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]fileResponse, len(files))
	for i, f := range files {
		results[i] = toFileResponse(f)
	}
	writeJSON(w, http.StatusOK, map[string][]fileResponse{"files": results})
}

// DeleteFile 은 업로더 본인의 파일을 삭제한다.
// DELETE /admin/files/:id
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	uploaderID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	fileID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), fileID, uploaderID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DownloadFile 은 파일 바이너리를 반환한다.
// GET /files/:id
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "id")

	file, reader, err := h.service.Download(r.Context(), fileID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Content-Disposition", contentDisposition(file))
	io.Copy(w, reader)
}

// contentDisposition 은 분류에 따라 inline/attachment 를 결정하고
// 한글 파일명을 RFC 5987 형식으로 인코딩한다.
func contentDisposition(file *model.UploadedFile) string {
	disposition := "attachment"
	if file.Category == model.FileCategoryImage {
		disposition = "inline"
	}

	return fmt.Sprintf("%s; filename*=UTF-8''%s", disposition, url.PathEscape(file.OriginalName))
}
