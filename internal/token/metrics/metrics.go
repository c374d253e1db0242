package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Verified       prometheus.Counter
	VerifyFailures *prometheus.CounterVec
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Verified: f.NewCounter(prometheus.CounterOpts{
			Name: "realmbridge_tokens_verified_total",
			Help: "Total number of external tokens that passed verification",
		}),
		VerifyFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realmbridge_token_verification_failures_total",
			Help: "Total number of rejected external tokens by reason",
		}, []string{"reason"}),
	}
}

func (m *Metrics) IncVerified() {
	m.Verified.Inc()
}

func (m *Metrics) IncFailure(reason string) {
	m.VerifyFailures.WithLabelValues(reason).Inc()
}
