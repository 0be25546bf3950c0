package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/relayguard/banhammer/module"
)

// BanhammerCollector collects the metrics of the banhammer core.
type BanhammerCollector struct {
	violations       *prometheus.CounterVec
	bans             *prometheus.CounterVec
	activeIdentities *prometheus.GaugeVec
	bannedIdentities *prometheus.GaugeVec
	decays           prometheus.Counter
	decayedEntries   prometheus.Counter
}

var _ module.BanhammerMetrics = (*BanhammerCollector)(nil)

// NewBanhammerCollector creates a collector registered with the default prometheus registerer.
func NewBanhammerCollector() *BanhammerCollector {
	return NewBanhammerCollectorWithRegisterer(prometheus.DefaultRegisterer)
}

// NewBanhammerCollectorWithRegisterer creates a collector registered with the given registerer.
func NewBanhammerCollectorWithRegisterer(registerer prometheus.Registerer) *BanhammerCollector {
	factory := promauto.With(registerer)
	return &BanhammerCollector{
		violations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemCore,
			Name:      "violations_total",
			Help:      "number of relayed transactions carrying an error, by violation kind",
		}, []string{LabelViolation}),

		bans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemCore,
			Name:      "bans_total",
			Help:      "number of identities banned, by axis and ban reason",
		}, []string{LabelAxis, LabelReason}),

		activeIdentities: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemCore,
			Name:      "active_identities",
			Help:      "number of tracked identities that are not banned, by axis",
		}, []string{LabelAxis}),

		bannedIdentities: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemCore,
			Name:      "banned_identities",
			Help:      "number of banned identities, by axis",
		}, []string{LabelAxis}),

		decays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemCore,
			Name:      "decays_total",
			Help:      "number of times the client ban progress was decayed",
		}),

		decayedEntries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceBanhammer,
			Subsystem: subsystemCore,
			Name:      "decayed_entries_total",
			Help:      "number of client entries reset by decays",
		}),
	}
}

func (c *BanhammerCollector) OnViolationObserved(kind string) {
	c.violations.WithLabelValues(kind).Inc()
}

func (c *BanhammerCollector) OnIdentityBanned(axis string, reason string) {
	c.bans.WithLabelValues(axis, reason).Inc()
}

func (c *BanhammerCollector) ActiveIdentities(axis string, count int) {
	c.activeIdentities.WithLabelValues(axis).Set(float64(count))
}

func (c *BanhammerCollector) BannedIdentities(axis string, count int) {
	c.bannedIdentities.WithLabelValues(axis).Set(float64(count))
}

func (c *BanhammerCollector) OnProgressDecayed(resetCount int) {
	c.decays.Inc()
	c.decayedEntries.Add(float64(resetCount))
}
