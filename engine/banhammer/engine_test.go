package banhammer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	core "github.com/relayguard/banhammer/banhammer"
	"github.com/relayguard/banhammer/engine/banhammer"
	"github.com/relayguard/banhammer/model/violation"
	"github.com/relayguard/banhammer/module/irrecoverable"
	"github.com/relayguard/banhammer/module/metrics"
	"github.com/relayguard/banhammer/utils/unittest"
)

// countingMetrics counts processed and dropped inputs.
type countingMetrics struct {
	*metrics.NoopCollector
	processed *atomic.Int64
	dropped   *atomic.Int64
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		NoopCollector: metrics.NewNoopCollector(),
		processed:     atomic.NewInt64(0),
		dropped:       atomic.NewInt64(0),
	}
}

func (m *countingMetrics) InputProcessed(time.Duration) { m.processed.Inc() }
func (m *countingMetrics) InputDropped()                { m.dropped.Inc() }

func newCore(t *testing.T, cfg core.Config) *core.Banhammer {
	hammer, err := core.New(unittest.Logger(), cfg, time.Now())
	require.NoError(t, err)
	return hammer
}

// startEngine starts e and returns a function that stops it and waits for shutdown.
func startEngine(t *testing.T, e *banhammer.Engine) func() {
	ctx, cancel := irrecoverable.NewMockSignalerContextWithCancel(t, context.Background())
	e.Start(ctx)
	unittest.RequireComponentsReadyBefore(t, time.Second, e)
	return func() {
		cancel()
		unittest.RequireComponentsDoneBefore(t, time.Second, e)
	}
}

func TestEngine_PublishesBans(t *testing.T) {
	m := newCountingMetrics()
	e, err := banhammer.New(unittest.Logger(), m, newCore(t, unittest.BanhammerConfigFixture(3, 0, 0)), banhammer.DefaultConfig())
	require.NoError(t, err)
	stop := startEngine(t, e)
	defer stop()

	require.Zero(t, e.BanList().Size())

	client := unittest.ClientFixture()
	for i := 0; i < 3; i++ {
		require.True(t, e.Submit(unittest.InputFixture(unittest.WithClient(client), unittest.WithError(violation.NewIncorrectNonce()))))
	}

	require.Eventually(t, func() bool {
		return e.BanList().IsClientBanned(client)
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(3), m.processed.Load())
	assert.Equal(t, core.IncorrectNonceReason(), e.BanList().Clients[client].Reason)
}

func TestEngine_DropsWhenFull(t *testing.T) {
	m := newCountingMetrics()
	e, err := banhammer.New(unittest.Logger(), m, newCore(t, unittest.BanhammerConfigFixture(1, 1, 1)), banhammer.Config{QueueCapacity: 2})
	require.NoError(t, err)

	// not started, so nothing drains the queue
	assert.True(t, e.Submit(unittest.InputFixture()))
	assert.True(t, e.Submit(unittest.InputFixture()))
	assert.False(t, e.Submit(unittest.InputFixture()))
	assert.Equal(t, int64(1), m.dropped.Load())

	stop := startEngine(t, e)
	defer stop()
	require.Eventually(t, func() bool {
		return m.processed.Load() == 2
	}, time.Second, 10*time.Millisecond)
}

func TestEngine_InvalidConfig(t *testing.T) {
	_, err := banhammer.New(unittest.Logger(), metrics.NewNoopCollector(), newCore(t, unittest.BanhammerConfigFixture(1, 1, 1)), banhammer.Config{})
	require.Error(t, err)
}

// TestEngine_Decay checks that ticks received by the worker decay client progress between inputs.
func TestEngine_Decay(t *testing.T) {
	m := newCountingMetrics()
	ticks := make(chan time.Time)
	e, err := banhammer.New(unittest.Logger(), m, newCore(t, unittest.BanhammerConfigFixture(2, 0, 0)), banhammer.DefaultConfig(), banhammer.WithTicks(ticks))
	require.NoError(t, err)
	stop := startEngine(t, e)
	defer stop()

	client := unittest.ClientFixture()
	nonce := func(expectProcessed int64) {
		require.True(t, e.Submit(unittest.InputFixture(unittest.WithClient(client), unittest.WithError(violation.NewIncorrectNonce()))))
		require.Eventually(t, func() bool {
			return m.processed.Load() == expectProcessed
		}, time.Second, 10*time.Millisecond)
	}

	nonce(1)
	// the worker receives the tick before handling any further input
	ticks <- time.Now().Add(time.Hour)
	nonce(2)
	assert.False(t, e.BanList().IsClientBanned(client), "decay must have reset the first error")

	nonce(3)
	require.Eventually(t, func() bool {
		return e.BanList().IsClientBanned(client)
	}, time.Second, 10*time.Millisecond)
}
