package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filehub_files_uploaded_total",
		Help: "Number of files stored by uploads",
	})

	uploadedBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filehub_uploaded_bytes_total",
		Help: "Number of bytes stored by uploads",
	})

	// uploadFailuresTotal counts skipped files by the step that failed.
	uploadFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filehub_upload_failures_total",
			Help: "Number of uploaded files that could not be stored",
		},
		[]string{"stage"},
	)

	filesDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filehub_files_deleted_total",
			Help: "Number of files deleted",
		},
		[]string{"operation"},
	)

	reconcileChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filehub_reconcile_changes_total",
			Help: "Records adopted or dropped by reconciliation",
		},
		[]string{"action"},
	)
)
