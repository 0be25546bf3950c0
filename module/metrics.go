package module

import "time"

// BanhammerMetrics encapsulates the metrics collectors of the banhammer core.
type BanhammerMetrics interface {
	// OnViolationObserved is called for every input carrying an error, whether or not it leads to a ban.
	// Args:
	// - kind: the violation kind of the error
	OnViolationObserved(kind string)

	// OnIdentityBanned is called when an identity is moved into the ban list.
	// Args:
	// - axis: the identity axis (client, sender, token)
	// - reason: the ban reason kind
	OnIdentityBanned(axis string, reason string)

	// ActiveIdentities reports the number of active (not banned) identities on the given axis.
	ActiveIdentities(axis string, count int)

	// BannedIdentities reports the number of banned identities on the given axis.
	BannedIdentities(axis string, count int)

	// OnProgressDecayed is called on every decay with the number of client entries that were reset.
	OnProgressDecayed(resetCount int)
}

// EngineMetrics encapsulates the metrics collectors of the engine feeding the banhammer.
type EngineMetrics interface {
	// InputReceived is called when an input is queued for processing.
	InputReceived()

	// InputDropped is called when an input is dropped because the inbound queue is full.
	InputDropped()

	// InputQueueLength reports the length of the inbound queue.
	InputQueueLength(length int)

	// InputProcessed reports the time spent processing a single input.
	InputProcessed(duration time.Duration)

	// InputDecodeFailed is called when a message received from the given source could not be decoded.
	InputDecodeFailed(source string)
}

// JournalMetrics encapsulates the metrics collectors of the ban journal.
type JournalMetrics interface {
	// OnBanJournaled is called after a ban notification was persisted.
	OnBanJournaled(duration time.Duration)

	// OnJournalFailure is called when persisting a ban notification failed.
	OnJournalFailure()
}
