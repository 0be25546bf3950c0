package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/relayguard/banhammer/module"
)

// EngineCollector collects the metrics of the engine driving the banhammer.
type EngineCollector struct {
	received       prometheus.Counter
	dropped        prometheus.Counter
	queueLength    prometheus.Gauge
	processing     prometheus.Histogram
	decodeFailures *prometheus.CounterVec
}

var _ module.EngineMetrics = (*EngineCollector)(nil)

func NewEngineCollector() *EngineCollector {
	return NewEngineCollectorWithRegisterer(prometheus.DefaultRegisterer)
}

func NewEngineCollectorWithRegisterer(registerer prometheus.Registerer) *EngineCollector {
	factory := promauto.With(registerer)
	return &EngineCollector{
		received: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemEngine,
			Name:      "inputs_received_total",
			Help:      "number of inputs queued for processing",
		}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemEngine,
			Name:      "inputs_dropped_total",
			Help:      "number of inputs dropped because the inbound queue was full",
		}),
		queueLength: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemEngine,
			Name:      "input_queue_length",
			Help:      "current length of the inbound input queue",
		}),
		processing: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemEngine,
			Name:      "input_processing_seconds",
			Help:      "time spent processing a single input",
			Buckets:   []float64{.00001, .0001, .001, .01, .1},
		}),
		decodeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemEngine,
			Name:      "input_decode_failures_total",
			Help:      "number of messages that could not be decoded into an input, by source",
		}, []string{LabelSource}),
	}
}

func (c *EngineCollector) InputReceived() {
	c.received.Inc()
}

func (c *EngineCollector) InputDropped() {
	c.dropped.Inc()
}

func (c *EngineCollector) InputQueueLength(length int) {
	c.queueLength.Set(float64(length))
}

func (c *EngineCollector) InputProcessed(duration time.Duration) {
	c.processing.Observe(duration.Seconds())
}

func (c *EngineCollector) InputDecodeFailed(source string) {
	c.decodeFailures.WithLabelValues(source).Inc()
}
