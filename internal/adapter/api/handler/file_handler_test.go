package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filehub/internal/adapter/api"
	"filehub/internal/adapter/repository"
	"filehub/internal/domain/entity"
	"filehub/internal/infrastructure/storage"
	"filehub/internal/usecase"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	store := repository.NewRecordStore(repository.NewMemoryFileRepository(), storage.NewMemoryStore(), time.Second)
	fileUseCase := usecase.NewFileUseCase(store, 0)
	h := NewFileHandler(fileUseCase)
	health := NewHealthHandler(fileUseCase)

	e := echo.New()
	e.Validator = api.NewValidator()

	e.GET("/health", health.CheckHealth)
	e.GET("/health/storage", health.CheckStorageHealth)
	e.POST("/api/upload", h.UploadFiles)
	e.GET("/api/files", h.ListFiles)
	e.POST("/api/files/batch-delete", h.BatchDelete)
	e.POST("/api/files/reconcile", h.Reconcile)
	e.DELETE("/api/files/delete-all", h.DeleteAll)
	e.DELETE("/api/files/delete-by-extension/:ext", h.DeleteByExtension)
	e.GET("/api/files/:id", h.GetFile)
	e.GET("/api/files/:id/content", h.DownloadFile)
	e.DELETE("/api/files/:id", h.DeleteFile)
	e.PUT("/api/files/:id/favorite", h.ToggleFavorite)

	return e
}

func doRequest(e *echo.Echo, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, e *echo.Echo, files map[string]string, order ...string) []*entity.FileRecord {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range order {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	rec := doRequest(e, http.MethodPost, "/api/upload", body, writer.FormDataContentType())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var records []*entity.FileRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	return records
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server is running")

	rec = doRequest(e, http.MethodGet, "/health/storage", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFileHandler_Upload(t *testing.T) {
	e := newTestServer(t)

	records := upload(t, e, map[string]string{"a.txt": "alpha", "b.txt": "bravo!"}, "a.txt", "b.txt")
	require.Len(t, records, 2)
	assert.Equal(t, "a.txt", records[0].Filename)
	assert.Equal(t, int64(5), records[0].Size)
	assert.Equal(t, "b.txt", records[1].Filename)
	assert.Equal(t, int64(6), records[1].Size)

	rec := doRequest(e, http.MethodGet, "/api/files/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	for _, field := range []string{"id", "filename", "storageKey", "size", "mimetype", "uploadDate", "favorite"} {
		assert.Contains(t, body, field)
	}
}

func TestFileHandler_UploadWithoutFiles(t *testing.T) {
	e := newTestServer(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("note", "hello"))
	require.NoError(t, writer.Close())

	rec := doRequest(e, http.MethodPost, "/api/upload", body, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", decode(t, rec)["code"])
}

func TestFileHandler_UploadMalformed(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodPost, "/api/upload", bytes.NewBufferString("{}"), echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MALFORMED_UPLOAD", decode(t, rec)["code"])
}

func TestFileHandler_ListFiles(t *testing.T) {
	e := newTestServer(t)
	upload(t, e, map[string]string{"Report.pdf": "1", "notes.txt": "22", "report-old.pdf": "333"},
		"Report.pdf", "notes.txt", "report-old.pdf")

	rec := doRequest(e, http.MethodGet, "/api/files?search=REPORT&sortBy=size&sortOrder=asc&page=1&limit=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result usecase.QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 2, result.TotalPages)
	assert.Equal(t, 1, result.CurrentPage)
	require.Len(t, result.Files, 1)
	assert.Equal(t, "Report.pdf", result.Files[0].Filename)

	rec = doRequest(e, http.MethodGet, "/api/files?page=9", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"files":[]`)
}

func TestFileHandler_GetFileErrors(t *testing.T) {
	e := newTestServer(t)

	rec := doRequest(e, http.MethodGet, "/api/files/42", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec)["code"])

	rec = doRequest(e, http.MethodGet, "/api/files/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFileHandler_Download(t *testing.T) {
	e := newTestServer(t)
	records := upload(t, e, map[string]string{"报告.txt": "hello bytes"}, "报告.txt")

	for _, target := range []string{
		fmt.Sprintf("/api/files/%d/content", records[0].ID),
		fmt.Sprintf("/api/files/%d?download=true", records[0].ID),
	} {
		rec := doRequest(e, http.MethodGet, target, nil, "")
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "hello bytes", rec.Body.String())
		assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentDisposition), "inline"))
		assert.Equal(t, records[0].Mimetype, rec.Header().Get(echo.HeaderContentType))
	}
}

func TestFileHandler_ToggleFavorite(t *testing.T) {
	e := newTestServer(t)
	upload(t, e, map[string]string{"a.txt": "a"}, "a.txt")

	rec := doRequest(e, http.MethodPut, "/api/files/1/favorite", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["favorite"])
	assert.NotEmpty(t, body["message"])

	rec = doRequest(e, http.MethodPut, "/api/files/1/favorite", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["favorite"])

	rec = doRequest(e, http.MethodPut, "/api/files/99/favorite", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFileHandler_DeleteFile(t *testing.T) {
	e := newTestServer(t)
	upload(t, e, map[string]string{"a.txt": "a"}, "a.txt")

	rec := doRequest(e, http.MethodDelete, "/api/files/1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["message"])

	rec = doRequest(e, http.MethodDelete, "/api/files/1", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/files/1/content", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFileHandler_BatchDelete(t *testing.T) {
	e := newTestServer(t)
	upload(t, e, map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"}, "a.txt", "b.txt", "c.txt")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantCount  float64
	}{
		{"absent ids", `{}`, http.StatusBadRequest, "EMPTY_SELECTION", 0},
		{"empty ids", `{"ids":[]}`, http.StatusBadRequest, "EMPTY_SELECTION", 0},
		{"too many ids", `{"ids":[` + strings.Repeat("999,", 1000) + `999]}`, http.StatusBadRequest, "VALIDATION_ERROR", 0},
		{"zero and negative ids", `{"ids":[0,-1]}`, http.StatusOK, "", 0},
		{"invalid json", `{"ids":`, http.StatusBadRequest, "BAD_REQUEST", 0},
		{"unknown id", `{"ids":[999]}`, http.StatusOK, "", 0},
		{"mixed", `{"ids":[1,3,999]}`, http.StatusOK, "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, http.MethodPost, "/api/files/batch-delete", bytes.NewBufferString(tt.body), echo.MIMEApplicationJSON)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			body := decode(t, rec)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
				return
			}
			assert.Equal(t, tt.wantCount, body["deletedCount"])
		})
	}

	rec := doRequest(e, http.MethodGet, "/api/files", nil, "")
	var result usecase.QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Files, 1)
	assert.Equal(t, "b.txt", result.Files[0].Filename)
}

func TestFileHandler_DeleteByExtension(t *testing.T) {
	e := newTestServer(t)
	upload(t, e, map[string]string{"a.PNG": "1", "b.txt": "2"}, "a.PNG", "b.txt")

	rec := doRequest(e, http.MethodDelete, "/api/files/delete-by-extension/png", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(1), body["deletedCount"])
	assert.Equal(t, "Deleted 1 .png files", body["message"])

	rec = doRequest(e, http.MethodDelete, "/api/files/delete-by-extension/png", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFileHandler_DeleteAll(t *testing.T) {
	e := newTestServer(t)
	upload(t, e, map[string]string{"a.txt": "a", "b.txt": "b"}, "a.txt", "b.txt")

	rec := doRequest(e, http.MethodDelete, "/api/files/delete-all", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/files", nil, "")
	var result usecase.QueryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 0, result.TotalCount)
	assert.Equal(t, 0, result.TotalPages)
}

func TestFileHandler_Reconcile(t *testing.T) {
	e := newTestServer(t)
	upload(t, e, map[string]string{"a.txt": "a"}, "a.txt")

	rec := doRequest(e, http.MethodPost, "/api/files/reconcile", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report usecase.ReconcileReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Empty(t, report.Adopted)
	assert.Empty(t, report.Dropped)
}
