package engine

// Notifier informs a worker routine about the arrival of new work. Any number of Notify calls
// made while the worker is busy collapse into a single pending notification.
//
// Notifiers can be passed by value; copies share the same state.
type Notifier struct {
	notifier chan struct{} // capacity 1
}

func NewNotifier() Notifier {
	return Notifier{make(chan struct{}, 1)}
}

// Notify sends a notification without blocking. It is a no-op if a notification is already
// pending.
func (n Notifier) Notify() {
	select {
	case n.notifier <- struct{}{}:
	default:
	}
}

// Channel returns a channel for receiving notifications.
func (n Notifier) Channel() <-chan struct{} {
	return n.notifier
}
