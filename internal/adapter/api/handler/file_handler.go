package handler

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"filehub/internal/usecase"
	"filehub/pkg/errors"
	"filehub/pkg/logger"
	"filehub/pkg/response"
	"filehub/pkg/utils"
)

type FileHandler struct {
	fileUseCase *usecase.FileUseCase
}

func NewFileHandler(fileUseCase *usecase.FileUseCase) *FileHandler {
	return &FileHandler{
		fileUseCase: fileUseCase,
	}
}

// BatchDeleteRequest ids that match no record, zero and negative included, are skipped.
type BatchDeleteRequest struct {
	IDs []int64 `json:"ids" validate:"omitempty,max=1000"`
}

func (h *FileHandler) UploadFiles(c echo.Context) error {
	req := c.Request()
	logger.Debug("Upload request: %d bytes, %s", req.ContentLength, req.Header.Get(echo.HeaderContentType))

	records, err := h.fileUseCase.Upload(req.Context(), req.Body, req.Header.Get(echo.HeaderContentType))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, records)
}

func (h *FileHandler) ListFiles(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	result, err := h.fileUseCase.List(c.Request().Context(), usecase.QueryOptions{
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: strings.ToLower(c.QueryParam("sortOrder")),
		Page:      pagination.Page,
		Limit:     pagination.Limit,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *FileHandler) GetFile(c echo.Context) error {
	if utils.QueryBool(c, "download") {
		return h.DownloadFile(c)
	}

	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return response.Error(c, errors.BadRequest("Invalid file id", nil))
	}

	record, err := h.fileUseCase.GetOne(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, record)
}

func (h *FileHandler) DownloadFile(c echo.Context) error {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return response.Error(c, errors.BadRequest("Invalid file id", nil))
	}

	record, content, err := h.fileUseCase.OpenContent(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	defer content.Close()

	disposition := mime.FormatMediaType("inline", map[string]string{"filename": record.Filename})
	if disposition == "" {
		disposition = "inline"
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, disposition)
	header.Set(echo.HeaderContentLength, strconv.FormatInt(record.Size, 10))
	header.Set(echo.HeaderContentType, record.Mimetype)

	c.Response().WriteHeader(http.StatusOK)
	if _, err := io.Copy(c.Response(), content); err != nil {
		logger.Warn("Streaming file %d aborted: %v", id, err)
	}
	return nil
}

func (h *FileHandler) DeleteFile(c echo.Context) error {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return response.Error(c, errors.BadRequest("Invalid file id", nil))
	}

	if err := h.fileUseCase.DeleteOne(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}

	return response.Message(c, "File deleted successfully")
}

func (h *FileHandler) ToggleFavorite(c echo.Context) error {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		return response.Error(c, errors.BadRequest("Invalid file id", nil))
	}

	favorite, err := h.fileUseCase.ToggleFavorite(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, response.FavoriteResponse{
		Message:  "Favorite status updated",
		Favorite: favorite,
	})
}

func (h *FileHandler) BatchDelete(c echo.Context) error {
	var req BatchDeleteRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	deleted, err := h.fileUseCase.DeleteMany(c.Request().Context(), req.IDs)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Count(c, fmt.Sprintf("Deleted %d files", deleted), deleted)
}

func (h *FileHandler) DeleteAll(c echo.Context) error {
	if err := h.fileUseCase.DeleteAll(c.Request().Context()); err != nil {
		return response.Error(c, err)
	}

	return response.Message(c, "All files deleted successfully")
}

func (h *FileHandler) DeleteByExtension(c echo.Context) error {
	ext := strings.TrimPrefix(c.Param("ext"), ".")

	deleted, err := h.fileUseCase.DeleteByExtension(c.Request().Context(), ext)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Count(c, fmt.Sprintf("Deleted %d .%s files", deleted, strings.ToLower(ext)), deleted)
}

func (h *FileHandler) Reconcile(c echo.Context) error {
	report, err := h.fileUseCase.Reconcile(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, report)
}
