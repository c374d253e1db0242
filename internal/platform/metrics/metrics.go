// Package metrics exports connection pool gauges for the backing stores.
package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

// Pools holds pool level metrics for Postgres and Redis.
type Pools struct {
	DBOpenConns     prometheus.Gauge
	DBInUseConns    prometheus.Gauge
	DBWaitCount     prometheus.Gauge
	RedisTotalConns prometheus.Gauge
	RedisIdleConns  prometheus.Gauge
	RedisHits       prometheus.Counter
	RedisMisses     prometheus.Counter
	RedisTimeouts   prometheus.Counter

	lastRedis *redis.PoolStats
}

func New() *Pools {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Pools {
	f := promauto.With(reg)
	return &Pools{
		DBOpenConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "realmbridge_db_open_conns",
			Help: "Open connections in the database pool",
		}),
		DBInUseConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "realmbridge_db_in_use_conns",
			Help: "Database connections currently in use",
		}),
		DBWaitCount: f.NewGauge(prometheus.GaugeOpts{
			Name: "realmbridge_db_wait_count",
			Help: "Total number of connections waited for",
		}),
		RedisTotalConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "realmbridge_redis_pool_total_conns",
			Help: "Number of total connections in the pool",
		}),
		RedisIdleConns: f.NewGauge(prometheus.GaugeOpts{
			Name: "realmbridge_redis_pool_idle_conns",
			Help: "Number of idle connections in the pool",
		}),
		RedisHits: f.NewCounter(prometheus.CounterOpts{
			Name: "realmbridge_redis_pool_hits_total",
			Help: "Number of times a connection was found in the pool",
		}),
		RedisMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "realmbridge_redis_pool_misses_total",
			Help: "Number of times a connection was not found in the pool",
		}),
		RedisTimeouts: f.NewCounter(prometheus.CounterOpts{
			Name: "realmbridge_redis_pool_timeouts_total",
			Help: "Number of times a connection was not obtained due to timeout",
		}),
	}
}

func (p *Pools) RecordDB(stats sql.DBStats) {
	if p == nil {
		return
	}
	p.DBOpenConns.Set(float64(stats.OpenConnections))
	p.DBInUseConns.Set(float64(stats.InUse))
	p.DBWaitCount.Set(float64(stats.WaitCount))
}

// RecordRedis sets the gauges and adds the counter deltas since the last call.
func (p *Pools) RecordRedis(stats *redis.PoolStats) {
	if p == nil || stats == nil {
		return
	}
	p.RedisTotalConns.Set(float64(stats.TotalConns))
	p.RedisIdleConns.Set(float64(stats.IdleConns))

	var last redis.PoolStats
	if p.lastRedis != nil {
		last = *p.lastRedis
	}
	if stats.Hits > last.Hits {
		p.RedisHits.Add(float64(stats.Hits - last.Hits))
	}
	if stats.Misses > last.Misses {
		p.RedisMisses.Add(float64(stats.Misses - last.Misses))
	}
	if stats.Timeouts > last.Timeouts {
		p.RedisTimeouts.Add(float64(stats.Timeouts - last.Timeouts))
	}
	snapshot := *stats
	p.lastRedis = &snapshot
}
