package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AdmissionAllowedTotal *prometheus.CounterVec
	AdmissionDeniedTotal  *prometheus.CounterVec
	SuspiciousIPTotal     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		AdmissionAllowedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paygate_admission_allowed_total",
			Help: "Total number of payment submissions admitted past rate limiting",
		}, []string{"store"}),
		AdmissionDeniedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paygate_admission_denied_total",
			Help: "Total number of payment submissions denied by rate limiting",
		}, []string{"scope"}),
		SuspiciousIPTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paygate_suspicious_ip_total",
			Help: "Total number of requests observed from suspicious IP ranges (log-only signal)",
		}),
	}
}

func (m *Metrics) IncrementAllowed(store string) {
	m.AdmissionAllowedTotal.WithLabelValues(store).Inc()
}

func (m *Metrics) IncrementDenied(scope string) {
	m.AdmissionDeniedTotal.WithLabelValues(scope).Inc()
}

func (m *Metrics) IncrementSuspiciousIP() {
	m.SuspiciousIPTotal.Inc()
}
