package component

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/relayguard/banhammer/module"
	"github.com/relayguard/banhammer/module/irrecoverable"
)

// Component can be started and stopped, and exposes channels that close when startup and
// shutdown have completed. Once Start has been called, the channel returned by Done must close
// eventually, whether because of a graceful shutdown or an irrecoverable error.
type Component interface {
	module.Startable
	module.ReadyDoneAware
}

type ComponentFactory func() (Component, error)

// OnError inspects an irrecoverable error thrown by a component and decides how RunComponent
// proceeds.
type OnError = func(err error) ErrorHandlingResult

type ErrorHandlingResult int

const (
	ErrorHandlingRestart ErrorHandlingResult = iota
	ErrorHandlingStop
)

// RunComponent starts the component built by componentFactory and supervises it until ctx is
// canceled or the component shuts down. Irrecoverable errors are passed to handler, which either
// restarts a fresh component or stops supervision.
// The returned error is either:
//   - the context error if ctx was canceled
//   - the last handled error if handler returned ErrorHandlingStop
//   - an error returned by componentFactory
func RunComponent(ctx context.Context, componentFactory ComponentFactory, handler OnError) error {
	var component Component
	var cancel context.CancelFunc
	var done <-chan struct{}
	var irrecoverableErr <-chan error

	start := func() error {
		var err error
		component, err = componentFactory()
		if err != nil {
			return err
		}

		var signalCtx irrecoverable.SignalerContext
		signalCtx, cancel, irrecoverableErr = irrecoverable.WithSignallerAndCancel(ctx)

		// Throw terminates the calling goroutine, so Start gets its own
		go component.Start(signalCtx)

		done = component.Done()
		return nil
	}

	stop := func() {
		cancel()
		<-done
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := start(); err != nil {
			return err
		}

		if err := waitError(irrecoverableErr, done); err != nil {
			stop()

			switch result := handler(err); result {
			case ErrorHandlingRestart:
				continue
			case ErrorHandlingStop:
				return err
			default:
				panic(fmt.Sprintf("invalid error handling result: %v", result))
			}
		} else if ctx.Err() != nil {
			stop()
			return ctx.Err()
		}

		cancel()
		return nil
	}
}

// waitError waits for either an error on errChan or for done to close.
// An error that raced with done is still returned.
func waitError(errChan <-chan error, done <-chan struct{}) error {
	select {
	case err := <-errChan:
		return err
	case <-done:
		select {
		case err := <-errChan:
			return err
		default:
		}
		return nil
	}
}

// ReadyFunc is called by a ComponentWorker to signal that it is ready.
type ReadyFunc func()

// ComponentWorker is a worker routine of a component. It must call ready once it is ready, and
// return once ctx is done. Irrecoverable errors are escalated through ctx.Throw.
type ComponentWorker func(ctx irrecoverable.SignalerContext, ready ReadyFunc)

// ComponentManagerBuilder builds a ComponentManager.
type ComponentManagerBuilder interface {
	// AddWorker adds a worker routine for the ComponentManager
	AddWorker(ComponentWorker) ComponentManagerBuilder

	// Build builds and returns a new ComponentManager instance
	Build() *ComponentManager
}

type componentManagerBuilderImpl struct {
	workers []ComponentWorker
}

func NewComponentManagerBuilder() ComponentManagerBuilder {
	return &componentManagerBuilderImpl{}
}

// AddWorker adds a worker. All workers run in parallel once the ComponentManager is started.
// Not concurrency safe.
func (c *componentManagerBuilderImpl) AddWorker(worker ComponentWorker) ComponentManagerBuilder {
	c.workers = append(c.workers, worker)
	return c
}

func (c *componentManagerBuilderImpl) Build() *ComponentManager {
	return &ComponentManager{
		started:        atomic.NewBool(false),
		ready:          make(chan struct{}),
		done:           make(chan struct{}),
		workersDone:    make(chan struct{}),
		shutdownSignal: make(chan struct{}),
		workers:        c.workers,
	}
}

var _ Component = (*ComponentManager)(nil)

// ComponentManager runs the worker routines of a component and implements the Component
// interface on their behalf.
//
// Ready closes once every worker has called its ReadyFunc. Done closes once every worker has
// returned. Shutdown is requested by canceling the context passed to Start. An error thrown by
// any worker shuts down all workers and is propagated to the parent context.
type ComponentManager struct {
	started        *atomic.Bool
	ready          chan struct{}
	done           chan struct{}
	workersDone    chan struct{}
	shutdownSignal chan struct{}

	workers []ComponentWorker
}

// Start launches all worker routines. It panics if called more than once.
func (c *ComponentManager) Start(parent irrecoverable.SignalerContext) {
	if !c.started.CompareAndSwap(false, true) {
		panic(module.ErrMultipleStartup)
	}

	signalerCtx, cancel, errChan := irrecoverable.WithSignallerAndCancel(parent)

	go func() {
		<-signalerCtx.Done()
		close(c.shutdownSignal)
	}()

	go func() {
		// done closes only after the error reached the parent, so a parent waiting on Done
		// always observes the thrown error first
		defer func() {
			<-c.workersDone
			cancel()
			close(c.done)
		}()

		if err := waitError(errChan, c.workersDone); err != nil {
			cancel()
			parent.Throw(err)
		}
	}()

	var workersReady sync.WaitGroup
	var workersDone sync.WaitGroup
	workersReady.Add(len(c.workers))
	workersDone.Add(len(c.workers))

	for _, worker := range c.workers {
		worker := worker
		go func() {
			defer workersDone.Done()
			var readyOnce sync.Once
			worker(signalerCtx, func() {
				readyOnce.Do(workersReady.Done)
			})
		}()
	}

	go func() {
		workersReady.Wait()
		close(c.ready)
	}()

	go func() {
		workersDone.Wait()
		close(c.workersDone)
	}()
}

// Ready returns a channel that closes once all workers are ready. It never closes if a worker
// returns before signaling readiness.
func (c *ComponentManager) Ready() <-chan struct{} {
	return c.ready
}

// Done returns a channel that closes once all workers have returned.
func (c *ComponentManager) Done() <-chan struct{} {
	return c.done
}

// ShutdownSignal returns a channel that closes when shutdown has commenced, either because the
// context was canceled or because a worker threw an error.
func (c *ComponentManager) ShutdownSignal() <-chan struct{} {
	return c.shutdownSignal
}
