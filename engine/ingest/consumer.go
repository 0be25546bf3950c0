package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/relayguard/banhammer/module/component"
	"github.com/relayguard/banhammer/module/irrecoverable"
)

// Failed consume sessions are retried with an exponential backoff between these bounds. The
// backoff restarts after a session that ended without error.
const (
	consumeRetryMin = 300 * time.Millisecond
	consumeRetryMax = 30 * time.Second
)

// Config configures the Kafka consumer group feeding the engine.
type Config struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers" validate:"required_if=Enabled true"`
	Group   string   `mapstructure:"group" validate:"required_if=Enabled true"`
	Topic   string   `mapstructure:"topic" validate:"required_if=Enabled true"`
}

// SaramaConfig returns the sarama client configuration used by the consumer group.
func SaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_8_0_0
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	return cfg
}

// Consumer runs a Kafka consumer group session loop. sarama ends a session on every rebalance,
// so Consume is re-run until the component shuts down.
type Consumer struct {
	log     zerolog.Logger
	group   sarama.ConsumerGroup
	topic   string
	handler sarama.ConsumerGroupHandler

	component.Component
}

// NewConsumer connects a consumer group to the brokers of cfg.
func NewConsumer(log zerolog.Logger, cfg Config, handler sarama.ConsumerGroupHandler) (*Consumer, error) {
	if len(cfg.Brokers) == 0 || cfg.Group == "" || cfg.Topic == "" {
		return nil, errors.New("kafka brokers, group and topic are required")
	}
	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.Group, SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("could not create consumer group %s: %w", cfg.Group, err)
	}
	return NewConsumerWithGroup(log, group, cfg.Topic, handler), nil
}

// NewConsumerWithGroup wraps an existing consumer group. The Consumer takes ownership of group and
// closes it on shutdown.
func NewConsumerWithGroup(log zerolog.Logger, group sarama.ConsumerGroup, topic string, handler sarama.ConsumerGroupHandler) *Consumer {
	c := &Consumer{
		log:     log.With().Str("component", "kafka_consumer").Str("topic", topic).Logger(),
		group:   group,
		topic:   topic,
		handler: handler,
	}
	c.Component = component.NewComponentManagerBuilder().
		AddWorker(c.consumeLoop).
		AddWorker(c.errorLoop).
		Build()
	return c
}

func (c *Consumer) consumeLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()
	defer func() {
		if err := c.group.Close(); err != nil {
			c.log.Error().Err(err).Msg("could not close consumer group")
		}
	}()

	backoff := newBackoff()
	for {
		err := c.group.Consume(ctx, []string{c.topic}, c.handler)
		if errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return
		}

		var delay time.Duration
		if err != nil {
			delay, _ = backoff.Next()
			c.log.Warn().Err(err).Dur("retry_in", delay).Msg("consume session failed")
		} else {
			backoff = newBackoff()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// errorLoop logs the errors sarama reports outside of a consume session.
func (c *Consumer) errorLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()
	errs := c.group.Errors()
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			c.log.Warn().Err(err).Msg("consumer group error")
		}
	}
}

func newBackoff() retry.Backoff {
	// only fails for a non-positive base
	backoff, _ := retry.NewExponential(consumeRetryMin)
	return retry.WithCappedDuration(consumeRetryMax, backoff)
}
