package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for appointment and patient mutations.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeNotFound = "not_found"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics exposes counters/histograms for scheduling traffic.
type Metrics struct {
	mutationsTotal  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careslot",
			Name:      "appointments_mutations_total",
			Help:      "Total patient and appointment mutations by outcome",
		}, []string{"operation", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "careslot",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.mutationsTotal, m.requestDuration)
	return m
}

func (m *Metrics) ObserveMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.mutationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, status).Observe(seconds)
}
