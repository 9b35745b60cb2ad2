package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"filehub/internal/adapter/api"
	"filehub/internal/adapter/api/handler"
	apimiddleware "filehub/internal/adapter/api/middleware"
	"filehub/internal/adapter/api/router"
	"filehub/internal/usecase"
	"filehub/pkg/config"
	"filehub/pkg/logger"
	"filehub/pkg/response"
)

const shutdownTimeout = 10 * time.Second

// NewServer builds the echo instance serving fileUseCase. Access logs go to accessLog.
func NewServer(cfg *config.Config, fileUseCase *usecase.FileUseCase, uploadLimiter *apimiddleware.RateLimiter, accessLog io.Writer) *echo.Echo {
	handler.Setup(fileUseCase)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Output: accessLog}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(apimiddleware.Metrics())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", (cfg.MaxUploadBytes+1023)/1024)))

	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if rerr := response.Error(c, err); rerr != nil {
			logger.Error("Failed to write error response: %v", rerr)
		}
	}

	router.Setup(e, uploadLimiter)
	return e
}

func LoggerOptions(cfg *config.Config) logger.Options {
	return logger.Options{
		Debug:      cfg.IsDevelopment(),
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}
}

// Serve runs the HTTP service until SIGINT or SIGTERM.
func Serve(cfg *config.Config) error {
	accessLog := logger.Setup(LoggerOptions(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := OpenRecordStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	fileUseCase := usecase.NewFileUseCase(store, cfg.DefaultPageSize)

	if cfg.ReconcileOnStart {
		report, err := fileUseCase.Reconcile(ctx)
		if err != nil {
			logger.Warn("Startup reconcile failed: %v", err)
		} else {
			logger.Info("Startup reconcile adopted %d files, dropped %d records", len(report.Adopted), len(report.Dropped))
		}
	}

	if cfg.ReconcileSchedule != "" {
		scheduler, err := StartReconcileScheduler(cfg.ReconcileSchedule, fileUseCase)
		if err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	var uploadLimiter *apimiddleware.RateLimiter
	if cfg.UploadRatePerMinute > 0 {
		uploadLimiter = apimiddleware.NewRateLimiter(cfg.UploadRatePerMinute)
		uploadLimiter.StartCleanup(ctx, time.Hour)
	}

	e := NewServer(cfg, fileUseCase, uploadLimiter, accessLog)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
