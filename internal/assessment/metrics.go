package assessment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the service's Prometheus collectors.
type Metrics struct {
	SessionsStarted     prometheus.Counter
	SessionsEnded       *prometheus.CounterVec
	Answers             *prometheus.CounterVec
	DegenerateItems     prometheus.Counter
	FinalStandardError  prometheus.Histogram
	QuestionsPerSession prometheus.Histogram
	PersistErrors       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "aiborg_cat_sessions_started_total",
			Help: "Assessment sessions started.",
		}),
		SessionsEnded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aiborg_cat_sessions_ended_total",
			Help: "Assessment sessions finalized, by end reason.",
		}, []string{"reason"}),
		Answers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aiborg_cat_answers_total",
			Help: "Answers recorded, by correctness.",
		}, []string{"correct"}),
		DegenerateItems: f.NewCounter(prometheus.CounterOpts{
			Name: "aiborg_cat_degenerate_item_parameters_total",
			Help: "Item parameters replaced with defaults during ability updates.",
		}),
		FinalStandardError: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "aiborg_cat_final_standard_error",
			Help:    "Standard error of the ability estimate at finalization.",
			Buckets: []float64{0.2, 0.25, 0.3, 0.35, 0.4, 0.5, 0.6, 0.8, 1.0},
		}),
		QuestionsPerSession: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "aiborg_cat_questions_per_session",
			Help:    "Questions answered per finalized session.",
			Buckets: prometheus.LinearBuckets(0, 5, 11),
		}),
		PersistErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "aiborg_cat_persist_errors_total",
			Help: "Failed writes to the response store, by operation.",
		}, []string{"op"}),
	}
}

// ObserveCompleted records a finalized session.
func (m *Metrics) ObserveCompleted(reason string, standardError float64, answered int) {
	m.SessionsEnded.WithLabelValues(reason).Inc()
	m.FinalStandardError.Observe(standardError)
	m.QuestionsPerSession.Observe(float64(answered))
}
