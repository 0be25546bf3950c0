package banhammer

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	core "github.com/relayguard/banhammer/banhammer"
	"github.com/relayguard/banhammer/engine"
	"github.com/relayguard/banhammer/model/relayer"
	"github.com/relayguard/banhammer/module"
	"github.com/relayguard/banhammer/module/component"
	"github.com/relayguard/banhammer/module/irrecoverable"
	"github.com/relayguard/banhammer/utils/logging"
)

// DefaultQueueCapacity is the default capacity of the inbound input queue.
const DefaultQueueCapacity = 10_000

// Config configures the Engine.
type Config struct {
	// QueueCapacity is the maximum number of inputs waiting to be processed. Inputs submitted to a
	// full queue are dropped.
	QueueCapacity int `mapstructure:"queue-capacity" validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{QueueCapacity: DefaultQueueCapacity}
}

// Engine is a wrapper around the banhammer core. The Engine queues inbound inputs and runs the
// single worker routine that feeds them to the core and drives its decay clock. The core itself
// implements the actual ban logic and is never accessed from any other goroutine.
type Engine struct {
	log           zerolog.Logger
	metrics       module.EngineMetrics
	core          *core.Banhammer
	pendingInputs *engine.FifoQueue[*relayer.Input]
	inputNotifier engine.Notifier
	banList       *atomic.Pointer[core.BanList]
	banned        int

	// ticks overrides the decay ticker, nil uses a ticker at the decay interval
	ticks <-chan time.Time

	cm *component.ComponentManager
	component.Component
}

// Option configures optional parameters of the Engine.
type Option func(*Engine)

// WithTicks replaces the decay ticker with ticks. Every value received is passed to the core's
// Tick.
func WithTicks(ticks <-chan time.Time) Option {
	return func(e *Engine) {
		e.ticks = ticks
	}
}

// New creates an Engine owning hammer. hammer must not be used by the caller afterwards.
func New(log zerolog.Logger, metrics module.EngineMetrics, hammer *core.Banhammer, cfg Config, opts ...Option) (*Engine, error) {
	inputQueue, err := engine.NewFifoQueue(
		engine.WithCapacity[*relayer.Input](cfg.QueueCapacity),
		engine.WithLengthObserver[*relayer.Input](metrics.InputQueueLength),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue for inbound inputs: %w", err)
	}

	e := &Engine{
		log:           log.With().Str("engine", "banhammer").Logger(),
		metrics:       metrics,
		core:          hammer,
		pendingInputs: inputQueue,
		inputNotifier: engine.NewNotifier(),
		banList:       atomic.NewPointer(hammer.BanList()),
		banned:        hammer.BanList().Size(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.cm = component.NewComponentManagerBuilder().
		AddWorker(e.processInputsLoop).
		Build()
	e.Component = e.cm

	return e, nil
}

// Submit queues input for processing. It is safe for concurrent use and never blocks.
// Returns false if the queue is full and input was dropped.
func (e *Engine) Submit(input *relayer.Input) bool {
	if !e.pendingInputs.Push(input) {
		e.metrics.InputDropped()
		e.log.Warn().
			Str("client", input.Client.String()).
			Str("sender", input.Sender.String()).
			Msg("inbound queue full, dropping input")
		return false
	}
	e.metrics.InputReceived()
	e.inputNotifier.Notify()
	return true
}

// BanList returns the latest published ban list. It is safe for concurrent use.
// The returned value must not be modified.
func (e *Engine) BanList() *core.BanList {
	return e.banList.Load()
}

// processInputsLoop is the only routine touching the core. It processes queued inputs as they
// arrive and applies decay on every tick.
func (e *Engine) processInputsLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ticks := e.ticks
	if ticks == nil {
		ticker := time.NewTicker(e.core.Config().DecayInterval)
		defer ticker.Stop()
		ticks = ticker.C
	}
	ready()

	doneSignal := ctx.Done()
	newInputSignal := e.inputNotifier.Channel()
	for {
		select {
		case <-doneSignal:
			return
		case <-newInputSignal:
			err := e.processQueuedInputs(ctx) // no errors expected during normal operations
			if err != nil {
				ctx.Throw(err)
			}
		case now := <-ticks:
			if e.core.Tick(now) {
				e.log.Debug().Time("next_check", e.core.NextCheck()).Msg("applied decay")
			}
		}
	}
}

// processQueuedInputs processes inputs until the queue is empty or the engine is shutting down.
// No errors are expected during normal operation. All returned exceptions are symptoms of
// internal state corruption and should be fatal.
func (e *Engine) processQueuedInputs(ctx irrecoverable.SignalerContext) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		input, ok := e.pendingInputs.Pop()
		if !ok {
			return nil
		}

		start := time.Now()
		err := e.core.ReadInput(input)
		if err != nil {
			return fmt.Errorf("could not process input from client %s: %w", input.Client, err)
		}
		e.metrics.InputProcessed(time.Since(start))

		e.publishBanList(input)
	}
}

// publishBanList publishes a fresh snapshot of the ban list if the last input banned anything.
func (e *Engine) publishBanList(input *relayer.Input) {
	stats := e.core.Stats()
	banned := stats.BannedClients + stats.BannedSenders + stats.BannedTokens
	if banned == e.banned {
		return
	}
	e.banned = banned
	e.banList.Store(e.core.BanList())

	e.log.Info().
		Str("client", input.Client.String()).
		Str("sender", input.Sender.String()).
		Str("token", logging.Token(input.Token)).
		Int("banned", banned).
		Msg("published ban list")
}
