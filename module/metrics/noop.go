package metrics

import (
	"time"

	"github.com/relayguard/banhammer/module"
)

type NoopCollector struct{}

var (
	_ module.BanhammerMetrics = (*NoopCollector)(nil)
	_ module.EngineMetrics    = (*NoopCollector)(nil)
	_ module.JournalMetrics   = (*NoopCollector)(nil)
)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) OnViolationObserved(string)      {}
func (nc *NoopCollector) OnIdentityBanned(string, string) {}
func (nc *NoopCollector) ActiveIdentities(string, int)    {}
func (nc *NoopCollector) BannedIdentities(string, int)    {}
func (nc *NoopCollector) OnProgressDecayed(int)           {}
func (nc *NoopCollector) InputReceived()                  {}
func (nc *NoopCollector) InputDropped()                   {}
func (nc *NoopCollector) InputQueueLength(int)            {}
func (nc *NoopCollector) InputProcessed(time.Duration)    {}
func (nc *NoopCollector) InputDecodeFailed(string)        {}
func (nc *NoopCollector) OnBanJournaled(time.Duration)    {}
func (nc *NoopCollector) OnJournalFailure()               {}
