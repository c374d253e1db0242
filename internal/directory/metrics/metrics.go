package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SessionsOpened    prometheus.Counter
	SessionsRevoked   prometheus.Counter
	CredentialsIssued prometheus.Counter
	EmailsRewritten   prometheus.Counter
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionsOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "realmbridge_sessions_opened_total",
			Help: "Total number of sessions opened for bridged logins",
		}),
		SessionsRevoked: f.NewCounter(prometheus.CounterOpts{
			Name: "realmbridge_sessions_revoked_total",
			Help: "Total number of sessions revoked",
		}),
		CredentialsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "realmbridge_credentials_generated_total",
			Help: "Total number of API keys generated on first use",
		}),
		EmailsRewritten: f.NewCounter(prometheus.CounterOpts{
			Name: "realmbridge_user_emails_rewritten_total",
			Help: "Total number of user email addresses rewritten",
		}),
	}
}
