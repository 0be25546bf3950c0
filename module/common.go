package module

import (
	"errors"

	"github.com/relayguard/banhammer/module/irrecoverable"
)

// ReadyDoneAware provides an interface to wait for module startup and shutdown.
// Modules implementing it support a single start-stop cycle.
type ReadyDoneAware interface {
	// Ready returns a channel that is closed once startup has completed.
	Ready() <-chan struct{}

	// Done returns a channel that is closed once shutdown has completed.
	Done() <-chan struct{}
}

// Startable is a module that is started with a signaler context and stops when the context is done.
type Startable interface {
	// Start starts the module. It must be called at most once.
	Start(irrecoverable.SignalerContext)
}

// ErrMultipleStartup is the panic value raised when a Startable is started twice.
var ErrMultipleStartup = errors.New("component may only be started once")
