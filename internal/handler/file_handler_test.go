package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sujin/chongmu/internal/middleware"
	"github.com/sujin/chongmu/internal/model"
	"github.com/sujin/chongmu/internal/upload"
)

type mockUploadService struct {
	uploadFunc   func(ctx context.Context, input upload.Input) (*model.UploadedFile, error)
	deleteFunc   func(ctx context.Context, fileID, uploaderID string) error
	downloadFunc func(ctx context.Context, fileID string) (*model.UploadedFile, io.ReadCloser, error)
	listFunc     func(ctx context.Context, limit int) ([]*model.UploadedFile, error)
}

func (m *mockUploadService) Upload(ctx context.Context, input upload.Input) (*model.UploadedFile, error) {
	return m.uploadFunc(ctx, input)
}

func (m *mockUploadService) Delete(ctx context.Context, fileID, uploaderID string) error {
	return m.deleteFunc(ctx, fileID, uploaderID)
}

func (m *mockUploadService) Download(ctx context.Context, fileID string) (*model.UploadedFile, io.ReadCloser, error) {
	return m.downloadFunc(ctx, fileID)
}

func (m *mockUploadService) List(ctx context.Context, limit int) ([]*model.UploadedFile, error) {
	return m.listFunc(ctx, limit)
}

func testUploadedFile() *model.UploadedFile {
	return &model.UploadedFile{
		ID:           "f1",
		StorageKey:   "1717200000000_a1b2c3d4_임대차계약서.hwp",
		OriginalName: "임대차계약서.hwp",
		MimeType:     "application/x-hwp",
		Size:         2 << 20,
		StoragePath:  "2025/06/1717200000000_a1b2c3d4_임대차계약서.hwp",
		StorageID:    "665f0c0a2f8fb814c8a12345",
		Bucket:       "documents",
		Category:     model.FileCategoryDocument,
		UploaderID:   "admin",
		CreatedAt:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

// multipartRequest 는 file 필드를 가진 멀티파트 요청을 만든다.
func multipartRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("폼 파일 생성에 실패했습니다: %v", err)
	}
	part.Write(content)
	mw.WriteField("description", "계약 문서")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req.WithContext(middleware.ContextWithUserID(req.Context(), "admin"))
}

// TestUpload_Success 는 업로드 성공 응답과 메트릭을 검증한다.
func TestUpload_Success(t *testing.T) {
	svc := &mockUploadService{
		uploadFunc: func(ctx context.Context, input upload.Input) (*model.UploadedFile, error) {
			if input.UploaderID != "admin" {
				t.Errorf("uploader = %q, want admin", input.UploaderID)
			}
			if input.OriginalName != "임대차계약서.hwp" {
				t.Errorf("original name = %q", input.OriginalName)
			}
			return testUploadedFile(), nil
		},
	}
	metrics := &mockMetrics{}
	h := NewFileHandler(svc, metrics)

	w := httptest.NewRecorder()
	h.Upload(w, multipartRequest(t, "임대차계약서.hwp", []byte("hwp-bytes")))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if len(metrics.successes) != 1 || metrics.successes[0] != "DOCUMENT" {
		t.Errorf("success metrics = %v, want [DOCUMENT]", metrics.successes)
	}

	var resp fileResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Bucket != "documents" || resp.Category != "DOCUMENT" {
		t.Errorf("bucket = %q, category = %q", resp.Bucket, resp.Category)
	}
}

// TestUpload_SizeExceeded 는 크기 초과가 413 과 실패 메트릭이 되는지 검증한다.
func TestUpload_SizeExceeded(t *testing.T) {
	svc := &mockUploadService{
		uploadFunc: func(ctx context.Context, input upload.Input) (*model.UploadedFile, error) {
			return nil, model.NewSizeExceededError(10 << 20)
		},
	}
	metrics := &mockMetrics{}
	h := NewFileHandler(svc, metrics)

	w := httptest.NewRecorder()
	h.Upload(w, multipartRequest(t, "큰파일.pdf", []byte("pdf-bytes")))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
	if len(metrics.failures) != 1 || metrics.failures[0] != "size_exceeded" {
		t.Errorf("failure metrics = %v, want [size_exceeded]", metrics.failures)
	}
}

// TestUpload_Unauthenticated 는 인증 컨텍스트 없는 업로드에 401 을 검증한다.
func TestUpload_Unauthenticated(t *testing.T) {
	h := NewFileHandler(&mockUploadService{}, &mockMetrics{})

	req := httptest.NewRequest(http.MethodPost, "/admin/files", nil)
	w := httptest.NewRecorder()
	h.Upload(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

// TestDeleteFile_Success 는 삭제 성공에 204 를 검증한다.
func TestDeleteFile_Success(t *testing.T) {
	svc := &mockUploadService{
		deleteFunc: func(ctx context.Context, fileID, uploaderID string) error {
			if fileID != "f1" || uploaderID != "admin" {
				t.Errorf("Delete(%q, %q)", fileID, uploaderID)
			}
			return nil
		},
	}
	h := NewFileHandler(svc, &mockMetrics{})

	r := routeWithParam(http.MethodDelete, "/admin/files/{id}", h.DeleteFile)
	req := httptest.NewRequest(http.MethodDelete, "/admin/files/f1", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "admin"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

// TestDeleteFile_PartialFailure 는 부분 실패가 고유 코드로 노출되는지 검증한다.
func TestDeleteFile_PartialFailure(t *testing.T) {
	svc := &mockUploadService{
		deleteFunc: func(ctx context.Context, fileID, uploaderID string) error {
			return model.NewPartialDeleteError(fileID)
		},
	}
	h := NewFileHandler(svc, &mockMetrics{})

	r := routeWithParam(http.MethodDelete, "/admin/files/{id}", h.DeleteFile)
	req := httptest.NewRequest(http.MethodDelete, "/admin/files/f1", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "admin"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	var resp apiErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != model.ErrCodePartialDelete {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodePartialDelete)
	}
}

// TestDeleteFile_NotFoundOrForbidden 은 부재와 권한 없음이 같은 404 인지 검증한다.
func TestDeleteFile_NotFoundOrForbidden(t *testing.T) {
	svc := &mockUploadService{
		deleteFunc: func(ctx context.Context, fileID, uploaderID string) error {
			return model.NewNotFoundOrForbiddenError(fileID)
		},
	}
	h := NewFileHandler(svc, &mockMetrics{})

	r := routeWithParam(http.MethodDelete, "/admin/files/{id}", h.DeleteFile)
	req := httptest.NewRequest(http.MethodDelete, "/admin/files/other-user-file", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "admin"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// TestDownloadFile_SetsHeaders 는 다운로드 응답 헤더를 검증한다.
func TestDownloadFile_SetsHeaders(t *testing.T) {
	svc := &mockUploadService{
		downloadFunc: func(ctx context.Context, fileID string) (*model.UploadedFile, io.ReadCloser, error) {
			return testUploadedFile(), io.NopCloser(strings.NewReader("hwp-bytes")), nil
		},
	}
	h := NewFileHandler(svc, &mockMetrics{})

	r := chi.NewRouter()
	r.Get("/files/{id}", h.DownloadFile)
	req := httptest.NewRequest(http.MethodGet, "/files/f1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/x-hwp" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("Content-Disposition = %q, attachment 이어야 합니다", cd)
	}
	if w.Body.String() != "hwp-bytes" {
		t.Errorf("body = %q", w.Body.String())
	}
}

// TestListFiles_ReturnsFiles 는 파일 목록 응답을 검증한다.
func TestListFiles_ReturnsFiles(t *testing.T) {
	svc := &mockUploadService{
		listFunc: func(ctx context.Context, limit int) ([]*model.UploadedFile, error) {
			return []*model.UploadedFile{testUploadedFile()}, nil
		},
	}
	h := NewFileHandler(svc, &mockMetrics{})

	req := httptest.NewRequest(http.MethodGet, "/admin/files", nil)
	w := httptest.NewRecorder()
	h.ListFiles(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string][]fileResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp["files"]) != 1 {
		t.Errorf("files = %d건, want 1건", len(resp["files"]))
	}
}
