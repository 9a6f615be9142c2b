package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scoring module.
type Metrics struct {
	// Prediction outcomes by risk bucket and request kind
	Predictions *prometheus.CounterVec

	// End-to-end scoring latency by request kind
	ScoreLatency *prometheus.HistogramVec

	// Batch sizes seen by the batch endpoints
	BatchSize prometheus.Histogram

	// Records scored while trained feature columns had to be defaulted
	DefaultedFeatureRecords prometheus.Counter
}

// New creates a new Metrics instance with all scoring module metrics registered.
func New() *Metrics {
	return &Metrics{
		Predictions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskserve_scoring_predictions_total",
			Help: "Total scored records by risk bucket and request kind",
		}, []string{"bucket", "kind"}),

		ScoreLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "riskserve_scoring_duration_seconds",
			Help:    "Duration of scoring requests by request kind",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}),

		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskserve_scoring_batch_size",
			Help:    "Number of records per batch scoring request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),

		DefaultedFeatureRecords: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskserve_scoring_defaulted_feature_records_total",
			Help: "Records scored with at least one trained feature column defaulted to zero",
		}),
	}
}

// IncrementPrediction records one scored record's bucket.
func (m *Metrics) IncrementPrediction(bucket, kind string) {
	if m != nil {
		m.Predictions.WithLabelValues(bucket, kind).Inc()
	}
}

// ObserveScoreLatency records the duration of a scoring request.
func (m *Metrics) ObserveScoreLatency(kind string, d time.Duration) {
	if m != nil {
		m.ScoreLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// ObserveBatchSize records how many records a batch request carried.
func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}

// IncrementDefaultedFeatures records a scored record with missing trained columns.
func (m *Metrics) IncrementDefaultedFeatures() {
	if m != nil {
		m.DefaultedFeatureRecords.Inc()
	}
}
