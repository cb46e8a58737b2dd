// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnswersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "midc_answers_total",
			Help: "Composed answers by mode, language and outcome",
		},
		[]string{"mode", "language", "outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "midc_stage_duration_seconds",
			Help:    "Duration of each answer pipeline stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	ModelCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "midc_model_calls_total",
			Help: "Generative model calls by purpose and status",
		},
		[]string{"purpose", "status"},
	)

	DocumentsSelected = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "midc_documents_selected",
			Help:    "Number of documents selected to ground one answer",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)

	SnapshotDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "midc_snapshot_documents",
			Help: "Documents held by the current knowledge snapshot",
		},
	)

	SnapshotRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "midc_snapshot_refresh_total",
			Help: "Knowledge snapshot refresh attempts by status",
		},
		[]string{"status"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "midc_http_requests_total",
			Help: "HTTP requests by path and status code",
		},
		[]string{"path", "status"},
	)
)
