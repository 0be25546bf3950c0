package irrecoverable

import (
	"context"
	"log"
	"runtime"
)

// Signaler forwards irrecoverable errors raised by a worker to whoever supervises it.
type Signaler struct {
	errors chan<- error
}

func NewSignaler(errors chan<- error) *Signaler {
	return &Signaler{errors}
}

// Throw hands err to the supervisor and terminates the calling goroutine.
// It replaces panic and log.Fatal inside workers started with a SignalerContext.
// Only the first error is delivered when the errors channel has a buffer of one.
func (s *Signaler) Throw(err error) {
	defer runtime.Goexit()
	select {
	case s.errors <- err:
	default:
	}
}

// SignalerContext is a context.Context that can also escalate irrecoverable errors.
// It can only be built through WithSignaler.
type SignalerContext interface {
	context.Context
	Throw(err error)
	sealed()
}

type signalerCtx struct {
	context.Context
	signaler *Signaler
}

func (sc signalerCtx) sealed() {}

func (sc signalerCtx) Throw(err error) {
	sc.signaler.Throw(err)
}

// WithSignaler attaches sig to ctx.
func WithSignaler(ctx context.Context, sig *Signaler) SignalerContext {
	return signalerCtx{ctx, sig}
}

// WithSignallerAndCancel returns a SignalerContext derived from ctx, its cancel function and the
// channel thrown errors are delivered on.
func WithSignallerAndCancel(ctx context.Context) (SignalerContext, context.CancelFunc, <-chan error) {
	parent, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	return WithSignaler(parent, NewSignaler(errCh)), cancel, errCh
}

// Throw escalates err through ctx if it is a SignalerContext, otherwise it exits the process.
func Throw(ctx context.Context, err error) {
	if sc, ok := ctx.(SignalerContext); ok {
		sc.Throw(err)
	}
	log.Fatalf("irrecoverable error signaler not found for context, unhandled irrecoverable error: %v", err)
}
