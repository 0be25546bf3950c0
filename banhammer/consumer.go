package banhammer

import (
	"sync"
	"time"

	"github.com/relayguard/banhammer/model/identity"
)

// Ban is the notification emitted when an identity crosses its threshold.
type Ban struct {
	Axis     identity.Axis
	Identity string
	Reason   Reason
	Progress Progress
	BannedAt time.Time
}

// BanConsumer consumes ban notifications.
// Implementations are called synchronously from the goroutine that processes inputs and must be
// non-blocking.
type BanConsumer interface {
	OnIdentityBanned(ban Ban)
}

// NoopConsumer ignores all notifications.
type NoopConsumer struct{}

var _ BanConsumer = (*NoopConsumer)(nil)

func (NoopConsumer) OnIdentityBanned(Ban) {}

// Distributor fans ban notifications out to all subscribed consumers.
type Distributor struct {
	mu        sync.RWMutex
	consumers []BanConsumer
}

var _ BanConsumer = (*Distributor)(nil)

func NewDistributor() *Distributor {
	return &Distributor{}
}

// AddConsumer subscribes c to all future notifications.
func (d *Distributor) AddConsumer(c BanConsumer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.consumers = append(d.consumers, c)
}

func (d *Distributor) OnIdentityBanned(ban Ban) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, c := range d.consumers {
		c.OnIdentityBanned(ban)
	}
}
