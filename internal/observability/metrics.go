// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	DatasetsIngested prometheus.Counter
	SamplesStored    prometheus.Counter
	EventsStored     prometheus.Counter
	IngestErrors     *prometheus.CounterVec

	// Estimation metrics
	EstimatesComputed   *prometheus.CounterVec
	DegenerateEstimates *prometheus.CounterVec
	EstimateDuration    prometheus.Histogram
	EventsRetained      prometheus.Histogram
	LastSigma           *prometheus.GaugeVec
	LastRSquared        *prometheus.GaugeVec

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram
	ReportsGenerated  prometheus.Counter

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulPipeline  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "seismo_lab"
	}

	return &Metrics{
		// Ingestion metrics
		DatasetsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "datasets_ingested_total",
			Help:      "Total number of datasets ingested",
		}),
		SamplesStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "injection_samples_stored_total",
			Help:      "Total number of injection samples stored to database",
		}),
		EventsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "catalog_events_stored_total",
			Help:      "Total number of catalog events stored to database",
		}),
		IngestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "errors_total",
			Help:      "Total number of ingestion errors by stage",
		}, []string{"stage"}),

		// Estimation metrics
		EstimatesComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "estimation",
			Name:      "estimates_computed_total",
			Help:      "Total number of estimates computed by outcome",
		}, []string{"outcome"}),
		DegenerateEstimates: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "estimation",
			Name:      "degenerate_estimates_total",
			Help:      "Total number of degenerate estimates by reason",
		}, []string{"reason"}),
		EstimateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "estimation",
			Name:      "duration_seconds",
			Help:      "Estimate computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		EventsRetained: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "estimation",
			Name:      "events_retained",
			Help:      "Number of catalog events retained after filtering",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
		LastSigma: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "estimation",
			Name:      "last_sigma",
			Help:      "Most recent seismogenic index estimate by dataset",
		}, []string{"dataset"}),
		LastRSquared: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "estimation",
			Name:      "last_r_squared",
			Help:      "Most recent goodness of fit by dataset",
		}, []string{"dataset"}),

		// Pipeline metrics
		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		// Health metrics
		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion",
		}),
		LastSuccessfulPipeline: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordDatasetIngested records one ingested dataset with its row counts.
func RecordDatasetIngested(samples, events int) {
	DefaultMetrics.DatasetsIngested.Inc()
	DefaultMetrics.SamplesStored.Add(float64(samples))
	DefaultMetrics.EventsStored.Add(float64(events))
	DefaultMetrics.LastSuccessfulIngestion.SetToCurrentTime()
}

// RecordIngestError records an ingestion error for a stage.
func RecordIngestError(stage string) {
	DefaultMetrics.IngestErrors.WithLabelValues(stage).Inc()
}

// RecordEstimate records a completed estimate with its outcome, retained
// event count and computation duration.
func RecordEstimate(outcome string, eventsRetained int, seconds float64) {
	DefaultMetrics.EstimatesComputed.WithLabelValues(outcome).Inc()
	DefaultMetrics.EventsRetained.Observe(float64(eventsRetained))
	DefaultMetrics.EstimateDuration.Observe(seconds)
}

// RecordDegenerateEstimate records a degenerate estimate by reason code.
func RecordDegenerateEstimate(reason string) {
	DefaultMetrics.DegenerateEstimates.WithLabelValues(reason).Inc()
}

// UpdateEstimateGauges publishes the latest sigma and fit quality for a dataset.
func UpdateEstimateGauges(datasetID string, sigma, rSquared float64) {
	DefaultMetrics.LastSigma.WithLabelValues(datasetID).Set(sigma)
	DefaultMetrics.LastRSquared.WithLabelValues(datasetID).Set(rSquared)
}

// RecordPipelineRun records a pipeline run.
func RecordPipelineRun(status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PipelineDuration.Observe(durationSeconds)
	if status == "success" {
		DefaultMetrics.LastSuccessfulPipeline.SetToCurrentTime()
	}
}

// RecordReportGenerated increments the reports generated counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}
