package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	BulkImportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bulk_import_rows_total",
			Help: "Bulk student import rows by outcome",
		},
		[]string{"outcome"}, // successful|failed
	)

	UploadsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "image_uploads_saved_total",
			Help: "Image files written to the uploads directory",
		},
	)

	UploadsReleased = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "image_uploads_released_total",
			Help: "Uploaded image files deleted on a failed request",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(BulkImportRows)
	prometheus.MustRegister(UploadsSaved)
	prometheus.MustRegister(UploadsReleased)
}
