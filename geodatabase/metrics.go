package geodatabase

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "mgdb"

// metricsState holds the counters a DB accumulates across its lifetime.
// Mirrors the counters/gauges split the driver this package is modeled on
// uses internally, but surfaces them directly as a prometheus.Collector
// instead of routing through a private stats channel.
type metricsState struct {
	decodeSuccesses atomic.Uint64
	decodeFailures  atomic.Uint64
}

func (db *DB) metricsDecodeSuccess() { db.metrics().decodeSuccesses.Add(1) }
func (db *DB) metricsDecodeFailure() { db.metrics().decodeFailures.Add(1) }

func (db *DB) metrics() *metricsState {
	if db.stats == nil {
		db.stats = &metricsState{}
	}
	return db.stats
}

type collector struct {
	db *DB

	decodeSuccesses *prometheus.Desc
	decodeFailures  *prometheus.Desc
	tables          *prometheus.Desc
	rowCount        *prometheus.Desc
}

// newCollector returns a collector exporting db's decode and schema
// counters, labeled by the geodatabase file path.
func newCollector(db *DB) prometheus.Collector {
	labels := prometheus.Labels{"path": db.path}
	fqName := func(name string) string { return metricsNamespace + "_" + name }
	return &collector{
		db: db,
		decodeSuccesses: prometheus.NewDesc(fqName("geometry_decode_successes_total"),
			"Total ST_Geometry blobs decoded successfully.", nil, labels),
		decodeFailures: prometheus.NewDesc(fqName("geometry_decode_failures_total"),
			"Total ST_Geometry blobs that failed to decode.", nil, labels),
		tables: prometheus.NewDesc(fqName("tables"),
			"Number of tables discovered in the geodatabase.", nil, labels),
		rowCount: prometheus.NewDesc(fqName("table_row_count"),
			"Row count per table.", []string{"table"}, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.decodeSuccesses
	ch <- c.decodeFailures
	ch <- c.tables
	ch <- c.rowCount
}

// Collect implements prometheus.Collector.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	m := c.db.metrics()
	ch <- prometheus.MustNewConstMetric(c.decodeSuccesses, prometheus.CounterValue, float64(m.decodeSuccesses.Load()))
	ch <- prometheus.MustNewConstMetric(c.decodeFailures, prometheus.CounterValue, float64(m.decodeFailures.Load()))
	ch <- prometheus.MustNewConstMetric(c.tables, prometheus.GaugeValue, float64(len(c.db.tables)))
	for _, t := range c.db.tables {
		ch <- prometheus.MustNewConstMetric(c.rowCount, prometheus.GaugeValue, float64(t.RowCount), t.Name)
	}
}
