package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for realmbridge_migration_users_total.
const (
	ResultMigrated = "migrated"
	ResultSkipped  = "skipped"
	ResultFailed   = "failed"
)

type Metrics struct {
	Users    *prometheus.CounterVec
	Duration prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Users: f.NewCounterVec(prometheus.CounterOpts{
			Name: "realmbridge_migration_users_total",
			Help: "Users visited by domain migrations, by result",
		}, []string{"result"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "realmbridge_migration_duration_seconds",
			Help:    "Wall time of domain migrations",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 30, 120},
		}),
	}
}

func (m *Metrics) ObserveUser(result string) {
	m.Users.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveDuration(d time.Duration) {
	m.Duration.Observe(d.Seconds())
}
