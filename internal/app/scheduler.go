package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"filehub/internal/usecase"
	"filehub/pkg/logger"
)

type Reconciler interface {
	Reconcile(ctx context.Context) (*usecase.ReconcileReport, error)
}

// StartReconcileScheduler runs reconciliation on a standard 5-field cron spec.
// The caller stops the returned scheduler.
func StartReconcileScheduler(spec string, reconciler Reconciler) (*cron.Cron, error) {
	scheduler := cron.New()

	_, err := scheduler.AddFunc(spec, func() {
		report, err := reconciler.Reconcile(context.Background())
		if err != nil {
			logger.Error("Scheduled reconcile failed: %v", err)
			return
		}
		logger.Debug("Scheduled reconcile adopted %d, dropped %d", len(report.Adopted), len(report.Dropped))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}

	scheduler.Start()
	logger.Info("Reconcile scheduled at %q", spec)
	return scheduler, nil
}
