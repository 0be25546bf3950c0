package banhammer

import "time"

// Tick resets the progress of every active client once now reaches the next decay deadline, then
// moves the deadline forward by exactly one decay interval. It returns true if a reset happened.
//
// A single call resets at most once, however many intervals have passed since the previous call.
// Only the client table decays; sender and token progress keeps accumulating.
// now must come from a monotonic clock; Tick never reads the clock itself.
func (b *Banhammer) Tick(now time.Time) bool {
	if now.Before(b.nextCheck) {
		return false
	}

	for _, rec := range b.registry.clients {
		rec.Progress.reset()
	}
	b.nextCheck = b.nextCheck.Add(b.cfg.DecayInterval)

	b.metrics.OnProgressDecayed(len(b.registry.clients))
	b.log.Debug().
		Int("clients", len(b.registry.clients)).
		Time("next_check", b.nextCheck).
		Msg("client ban progress decayed")
	return true
}

// NextCheck returns the deadline of the next decay.
func (b *Banhammer) NextCheck() time.Time {
	return b.nextCheck
}
