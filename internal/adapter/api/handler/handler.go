package handler

import (
	"filehub/internal/usecase"
)

var (
	fileHandler   *FileHandler
	healthHandler *HealthHandler
)

func Setup(fileUseCase *usecase.FileUseCase) {
	fileHandler = NewFileHandler(fileUseCase)
	healthHandler = NewHealthHandler(fileUseCase)
}

func GetFileHandler() *FileHandler {
	return fileHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}
