// Package metrics exposes Prometheus collectors for the directory health
// monitor. All metrics are optional; components accept a nil *Metrics and
// skip recording.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CollectionStats is the read-only view of the directory collection the
// gauge collectors sample from.
type CollectionStats interface {
	GoodDirs() []string
	FullDirs() []string
	ErroredDirs() []string
	NumFailures() int
	GoodDirsDiskUtilizationPercentage() int
}

// Metrics holds the check-cycle instruments recorded by the monitor service
type Metrics struct {
	checkDuration prometheus.Histogram
	checksTotal   prometheus.Counter
	changesTotal  prometheus.Counter
}

// New registers and returns the check-cycle metrics
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		checkDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "disk_monitor_check_duration_seconds",
			Help:    "Duration of one directory health check cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		checksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "disk_monitor_checks_total",
			Help: "Total number of completed check cycles.",
		}),
		changesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "disk_monitor_dir_set_changes_total",
			Help: "Total number of check cycles that changed the good directory set.",
		}),
	}
	for _, collector := range []prometheus.Collector{m.checkDuration, m.checksTotal, m.changesTotal} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveCheck records one completed check cycle
func (m *Metrics) ObserveCheck(duration time.Duration, changed bool) {
	if m == nil {
		return
	}
	m.checkDuration.Observe(duration.Seconds())
	m.checksTotal.Inc()
	if changed {
		m.changesTotal.Inc()
	}
}

// RegisterCollectionGauges registers gauges that sample the directory
// collection on every scrape.
func RegisterCollectionGauges(reg prometheus.Registerer, stats CollectionStats) error {
	collectors := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "disk_monitor_good_dirs",
			Help: "Number of directories currently usable for data placement.",
		}, func() float64 { return float64(len(stats.GoodDirs())) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "disk_monitor_full_dirs",
			Help: "Number of directories over a space threshold.",
		}, func() float64 { return float64(len(stats.FullDirs())) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "disk_monitor_errored_dirs",
			Help: "Number of directories failing validation for non-space reasons.",
		}, func() float64 { return float64(len(stats.ErroredDirs())) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "disk_monitor_good_dirs_utilization_percent",
			Help: "Total-space-weighted used percentage across the good directories.",
		}, func() float64 { return float64(stats.GoodDirsDiskUtilizationPercentage()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "disk_monitor_dir_failures_total",
			Help: "Cumulative count of good directories turning bad.",
		}, func() float64 { return float64(stats.NumFailures()) }),
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}
