package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CounterForTest exposes a single outcome counter to the external tests.
func CounterForTest(m *Metrics, family, outcome string) prometheus.Counter {
	if family == "logins" {
		return m.logins.WithLabelValues(outcome)
	}
	return m.registrations.WithLabelValues(outcome)
}

// SetClockForTest pins the report generation time.
func SetClockForTest(s *AuditService, now func() time.Time) {
	s.now = now
}
