package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TenantCreated     prometheus.Counter
	TenantDeactivated prometheus.Counter
	DomainAdded       prometheus.Counter
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TenantCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "realmbridge_tenants_created_total",
			Help: "Total number of tenants created",
		}),
		TenantDeactivated: f.NewCounter(prometheus.CounterOpts{
			Name: "realmbridge_tenants_deactivated_total",
			Help: "Total number of tenant deactivations that changed state",
		}),
		DomainAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "realmbridge_tenant_domains_added_total",
			Help: "Total number of allowed domains added to tenants",
		}),
	}
}
