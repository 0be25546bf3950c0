package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/relayguard/banhammer/module"
)

// JournalCollector collects the metrics of the ban journal.
type JournalCollector struct {
	writes   prometheus.Histogram
	failures prometheus.Counter
}

var _ module.JournalMetrics = (*JournalCollector)(nil)

func NewJournalCollector() *JournalCollector {
	return NewJournalCollectorWithRegisterer(prometheus.DefaultRegisterer)
}

func NewJournalCollectorWithRegisterer(registerer prometheus.Registerer) *JournalCollector {
	factory := promauto.With(registerer)
	return &JournalCollector{
		writes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemJournal,
			Name:      "write_seconds",
			Help:      "time spent persisting a ban notification",
			Buckets:   prometheus.DefBuckets,
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemJournal,
			Name:      "write_failures_total",
			Help:      "number of ban notifications that could not be persisted",
		}),
	}
}

func (c *JournalCollector) OnBanJournaled(duration time.Duration) {
	c.writes.Observe(duration.Seconds())
}

func (c *JournalCollector) OnJournalFailure() {
	c.failures.Inc()
}
