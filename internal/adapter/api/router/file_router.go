package router

import (
	"filehub/internal/adapter/api/handler"
	"filehub/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupFileRouter(e *echo.Echo, uploadLimiter *middleware.RateLimiter) {
	fileHandler := handler.GetFileHandler()

	api := e.Group("/api")

	if uploadLimiter != nil {
		api.POST("/upload", fileHandler.UploadFiles, uploadLimiter.RateLimitMiddleware())
	} else {
		api.POST("/upload", fileHandler.UploadFiles)
	}

	files := api.Group("/files")
	files.GET("", fileHandler.ListFiles)
	files.POST("/batch-delete", fileHandler.BatchDelete)
	files.POST("/reconcile", fileHandler.Reconcile)
	files.DELETE("/delete-all", fileHandler.DeleteAll)
	files.DELETE("/delete-by-extension/:ext", fileHandler.DeleteByExtension)

	files.GET("/:id", fileHandler.GetFile)
	files.GET("/:id/content", fileHandler.DownloadFile)
	files.DELETE("/:id", fileHandler.DeleteFile)
	files.PUT("/:id/favorite", fileHandler.ToggleFavorite)
}
