package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	poolTotalDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "db_pool", "total_conns"),
		"Connections currently open in the pool.", nil, nil)
	poolIdleDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "db_pool", "idle_conns"),
		"Idle connections in the pool.", nil, nil)
	poolAcquiredDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "db_pool", "acquired_conns"),
		"Connections currently checked out of the pool.", nil, nil)
	poolMaxDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "db_pool", "max_conns"),
		"Configured maximum pool size.", nil, nil)
	poolAcquireWaitDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "db_pool", "acquire_wait_seconds_total"),
		"Cumulative time spent waiting for a connection.", nil, nil)
)

// PoolCollector exports pgxpool statistics on every scrape.
type PoolCollector struct {
	stat func() *pgxpool.Stat
}

// NewPoolCollector reads stats through stat, which may return nil before the
// pool is open.
func NewPoolCollector(stat func() *pgxpool.Stat) *PoolCollector {
	return &PoolCollector{stat: stat}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- poolTotalDesc
	ch <- poolIdleDesc
	ch <- poolAcquiredDesc
	ch <- poolMaxDesc
	ch <- poolAcquireWaitDesc
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.stat()
	if s == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(poolTotalDesc, prometheus.GaugeValue, float64(s.TotalConns()))
	ch <- prometheus.MustNewConstMetric(poolIdleDesc, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(poolAcquiredDesc, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(poolMaxDesc, prometheus.GaugeValue, float64(s.MaxConns()))
	ch <- prometheus.MustNewConstMetric(poolAcquireWaitDesc, prometheus.CounterValue, s.AcquireDuration().Seconds())
}

// RegisterPool adds a PoolCollector to the default registry.
func RegisterPool(stat func() *pgxpool.Stat) error {
	return prometheus.Register(NewPoolCollector(stat))
}
