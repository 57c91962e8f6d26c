package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the detection service
type Metrics struct {
	// Analysis metrics
	Analyses            *prometheus.CounterVec
	AnalysisErrors      *prometheus.CounterVec
	Confidence          *prometheus.HistogramVec
	DetectionDuration   prometheus.Histogram
	SegmentsDetected    prometheus.Histogram
	VoicemailIndicators prometheus.Histogram

	// Recording download metrics
	DownloadDuration prometheus.Histogram
	DownloadBytes    prometheus.Histogram

	// Batch metrics
	BatchRecords prometheus.Counter

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "amd_analyses_total",
			Help: "Total number of completed analyses by result",
		}, []string{"result"}),
		AnalysisErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "amd_analysis_errors_total",
			Help: "Total number of failed analyses by error kind",
		}, []string{"kind"}),
		Confidence: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "amd_confidence",
			Help:    "Confidence of completed analyses",
			Buckets: prometheus.LinearBuckets(0.5, 0.05, 10), // 0.50 to 0.95
		}, []string{"result"}),
		DetectionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "amd_detection_duration_seconds",
			Help:    "End to end analysis time including download and decode",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		}),
		SegmentsDetected: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "amd_segments_detected",
			Help:    "Number of speech segments found per recording",
			Buckets: prometheus.LinearBuckets(0, 2, 11),
		}),
		VoicemailIndicators: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "amd_voicemail_indicators",
			Help:    "Voicemail indicator count per scored recording",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		}),
		DownloadDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "amd_download_duration_seconds",
			Help:    "Time spent downloading recordings",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}),
		DownloadBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "amd_download_bytes",
			Help:    "Size of downloaded recordings in bytes",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 12), // 16KB to ~32MB
		}),
		BatchRecords: f.NewCounter(prometheus.CounterOpts{
			Name: "amd_batch_records_total",
			Help: "Total number of records processed by batch runs",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "amd_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "amd_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

// ObserveAnalysis records a completed analysis.
func (m *Metrics) ObserveAnalysis(result string, confidence float64, segments, indicators int, took time.Duration) {
	m.Analyses.WithLabelValues(result).Inc()
	m.Confidence.WithLabelValues(result).Observe(confidence)
	m.SegmentsDetected.Observe(float64(segments))
	m.VoicemailIndicators.Observe(float64(indicators))
	m.DetectionDuration.Observe(took.Seconds())
}

// ObserveError records a failed analysis.
func (m *Metrics) ObserveError(kind string) {
	m.AnalysisErrors.WithLabelValues(kind).Inc()
}

// ObserveDownload records a completed recording download.
func (m *Metrics) ObserveDownload(bytes int64, took time.Duration) {
	m.DownloadBytes.Observe(float64(bytes))
	m.DownloadDuration.Observe(took.Seconds())
}
