package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for attendance, enrollment and recognition.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Attendance decisions by outcome ("MASUK", "PULANG" or a reason code)
	AttendanceDecisions *prometheus.CounterVec
	DecisionLatency     prometheus.Histogram

	Enrollments        *prometheus.CounterVec
	EnrolledEmployees  prometheus.Gauge
	RecognitionResults *prometheus.CounterVec

	CandidateCache *prometheus.CounterVec

	PublishFailures *prometheus.CounterVec
	StreamDrops     prometheus.Counter
}

// New registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers all metrics on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AttendanceDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_decisions_total",
			Help: "Attendance attempts by outcome",
		}, []string{"outcome"}),

		DecisionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "attendance_decision_duration_seconds",
			Help:    "Duration of an attendance decision including the storage transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		Enrollments: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "employee_enrollments_total",
			Help: "Face enrollments by result",
		}, []string{"result"}), // result: "created", "updated"

		EnrolledEmployees: factory.NewGauge(prometheus.GaugeOpts{
			Name: "employee_enrolled_count",
			Help: "Employees with a stored face encoding, as of the last candidate refresh",
		}),

		RecognitionResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "recognition_results_total",
			Help: "Face match attempts by result",
		}, []string{"result"}), // result: "matched", "unknown"

		CandidateCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "candidate_cache_lookups_total",
			Help: "Candidate cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"

		PublishFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_publish_failures_total",
			Help: "Committed events that could not be published, by sink",
		}, []string{"sink"}),

		StreamDrops: factory.NewCounter(prometheus.CounterOpts{
			Name: "attendance_stream_dropped_events_total",
			Help: "Events skipped because a stream subscriber was too slow",
		}),
	}
}

func (m *Metrics) IncrementDecision(outcome string) {
	if m != nil {
		m.AttendanceDecisions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveDecisionLatency(d time.Duration) {
	if m != nil {
		m.DecisionLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementEnrollment(created bool) {
	if m == nil {
		return
	}
	result := "updated"
	if created {
		result = "created"
	}
	m.Enrollments.WithLabelValues(result).Inc()
}

func (m *Metrics) SetEnrolledEmployees(n int) {
	if m != nil {
		m.EnrolledEmployees.Set(float64(n))
	}
}

func (m *Metrics) IncrementRecognition(matched bool) {
	if m == nil {
		return
	}
	result := "unknown"
	if matched {
		result = "matched"
	}
	m.RecognitionResults.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CandidateCache.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementPublishFailure(sink string) {
	if m != nil {
		m.PublishFailures.WithLabelValues(sink).Inc()
	}
}

func (m *Metrics) IncrementStreamDrop() {
	if m != nil {
		m.StreamDrops.Inc()
	}
}
