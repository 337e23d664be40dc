package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess            = "success"
	outcomeConflict           = "conflict"
	outcomeInvalid            = "invalid"
	outcomeInvalidCredentials = "invalid_credentials"
	outcomeError              = "error"
)

// Metrics counts authentication outcomes. A nil *Metrics records nothing.
type Metrics struct {
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	hashDuration  prometheus.Histogram
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credlog_registrations_total",
			Help: "Registration attempts by outcome.",
		}, []string{"outcome"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credlog_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		hashDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "credlog_password_hash_seconds",
			Help:    "Time spent deriving password hashes.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
	}
}

func (m *Metrics) registration(outcome string) {
	if m != nil {
		m.registrations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) login(outcome string) {
	if m != nil {
		m.logins.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) observeHash(d time.Duration) {
	if m != nil {
		m.hashDuration.Observe(d.Seconds())
	}
}
