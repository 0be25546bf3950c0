package banhammer

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/relayguard/banhammer/model/identity"
	"github.com/relayguard/banhammer/model/relayer"
	"github.com/relayguard/banhammer/module"
	"github.com/relayguard/banhammer/module/irrecoverable"
	"github.com/relayguard/banhammer/module/metrics"
)

// Banhammer tracks the identities taking part in relayed transactions and bans each identity whose
// accumulated violations cross the configured threshold.
//
// Every identity lives either in the active registry or in the ban list, never in both. A ban moves
// the identity's entry from the former into the latter and is permanent.
//
// Banhammer is not concurrency safe. It expects a single caller serializing ReadInput and Tick.
type Banhammer struct {
	log      zerolog.Logger
	metrics  module.BanhammerMetrics
	consumer BanConsumer
	now      func() time.Time

	cfg       Config
	nextCheck time.Time
	registry  *registry
	banList   *BanList
}

// Option configures optional dependencies of a Banhammer.
type Option func(*Banhammer)

// WithMetrics sets the metrics collector. Defaults to a noop collector.
func WithMetrics(m module.BanhammerMetrics) Option {
	return func(b *Banhammer) {
		b.metrics = m
	}
}

// WithBanConsumer sets the consumer notified of every new ban. Defaults to a NoopConsumer.
func WithBanConsumer(c BanConsumer) Option {
	return func(b *Banhammer) {
		b.consumer = c
	}
}

// WithClock sets the clock used to timestamp ban notifications. Defaults to time.Now.
// It has no influence on decay, which is driven by Tick only.
func WithClock(now func() time.Time) Option {
	return func(b *Banhammer) {
		b.now = now
	}
}

// New creates a Banhammer whose first decay is due one decay interval after start.
// Returns an error if cfg is invalid.
func New(log zerolog.Logger, cfg Config, start time.Time, opts ...Option) (*Banhammer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid banhammer config: %w", err)
	}

	b := &Banhammer{
		log:       log.With().Str("module", "banhammer").Logger(),
		metrics:   metrics.NewNoopCollector(),
		consumer:  NoopConsumer{},
		now:       time.Now,
		cfg:       cfg,
		nextCheck: start.Add(cfg.DecayInterval),
		registry:  newRegistry(),
		banList:   newBanList(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// ReadInput associates the identities of input with each other, records the input's error into the
// progress of every identity that is not banned yet, and bans the identities that cross their
// threshold. A single input may ban any subset of its client, sender and token.
//
// No errors are expected during normal operation. A returned error is an irrecoverable exception
// indicating a corrupted registry; the input is only partially applied in that case.
func (b *Banhammer) ReadInput(input *relayer.Input) error {
	b.associate(input)

	if input.Error != nil {
		b.metrics.OnViolationObserved(input.Error.Kind.String())
	}

	clientBanned, err := b.evaluateClient(input)
	if err != nil {
		return err
	}
	senderBanned, err := b.evaluateSender(input)
	if err != nil {
		return err
	}
	tokenBanned, err := b.evaluateToken(input)
	if err != nil {
		return err
	}

	if clientBanned || senderBanned || tokenBanned {
		reason, ok := reasonFor(input.Error)
		if !ok {
			return irrecoverable.NewExceptionf("ban triggered without a bannable error: %v", input.Error)
		}
		if clientBanned {
			b.banClient(input.Client, reason)
		}
		if senderBanned {
			b.banSender(input.Sender, reason)
		}
		if tokenBanned {
			b.banToken(*input.Token, reason)
		}
	}

	b.reportSizes()
	return nil
}

// associate updates the associations of each identity of input that is still active.
// Banned identities are frozen and do not get an active entry again.
func (b *Banhammer) associate(input *relayer.Input) {
	if !b.banList.IsClientBanned(input.Client) {
		b.registry.associateClient(input.Client, input.Sender, input.Token)
	}
	if !b.banList.IsSenderBanned(input.Sender) {
		b.registry.associateSender(input.Sender, input.Client, input.Token)
	}
	if input.Token != nil && !b.banList.IsTokenBanned(*input.Token) {
		b.registry.associateToken(*input.Token, input.Client, input.Sender)
	}
}

func (b *Banhammer) evaluateClient(input *relayer.Input) (bool, error) {
	if b.banList.IsClientBanned(input.Client) {
		return false, nil
	}
	rec, ok := b.registry.clients[input.Client]
	if !ok {
		return false, irrecoverable.NewExceptionf("active client %s missing from registry", input.Client)
	}
	return evaluate(&rec.Progress, b.cfg, input.HasToken(), input.Error), nil
}

func (b *Banhammer) evaluateSender(input *relayer.Input) (bool, error) {
	if b.banList.IsSenderBanned(input.Sender) {
		return false, nil
	}
	rec, ok := b.registry.senders[input.Sender]
	if !ok {
		return false, irrecoverable.NewExceptionf("active sender %s missing from registry", input.Sender)
	}
	return evaluate(&rec.Progress, b.cfg, input.HasToken(), input.Error), nil
}

func (b *Banhammer) evaluateToken(input *relayer.Input) (bool, error) {
	if input.Token == nil || b.banList.IsTokenBanned(*input.Token) {
		return false, nil
	}
	rec, ok := b.registry.tokens[*input.Token]
	if !ok {
		return false, irrecoverable.NewExceptionf("active token %s missing from registry", *input.Token)
	}
	return evaluate(&rec.Progress, b.cfg, true, input.Error), nil
}

// banClient moves client from the registry into the ban list.
// The caller must have checked that client has an active entry.
func (b *Banhammer) banClient(client identity.Client, reason Reason) {
	rec := b.registry.clients[client]
	delete(b.registry.clients, client)
	b.banList.Clients[client] = BannedClient{ClientRecord: *rec, Reason: reason}
	b.notify(identity.AxisClient, client.String(), reason, rec.Progress)
}

func (b *Banhammer) banSender(sender identity.Sender, reason Reason) {
	rec := b.registry.senders[sender]
	delete(b.registry.senders, sender)
	b.banList.Senders[sender] = BannedSender{SenderRecord: *rec, Reason: reason}
	b.notify(identity.AxisSender, sender.String(), reason, rec.Progress)
}

func (b *Banhammer) banToken(token identity.Token, reason Reason) {
	rec := b.registry.tokens[token]
	delete(b.registry.tokens, token)
	b.banList.Tokens[token] = BannedToken{TokenRecord: *rec, Reason: reason}
	b.notify(identity.AxisToken, token.String(), reason, rec.Progress)
}

func (b *Banhammer) notify(axis identity.Axis, id string, reason Reason, progress Progress) {
	b.log.Warn().
		Str("axis", axis.String()).
		Str("identity", id).
		Str("reason", reason.String()).
		Msg("identity banned")

	b.metrics.OnIdentityBanned(axis.String(), reason.Kind.String())
	b.consumer.OnIdentityBanned(Ban{
		Axis:     axis,
		Identity: id,
		Reason:   reason,
		Progress: progress.copy(),
		BannedAt: b.now(),
	})
}

func (b *Banhammer) reportSizes() {
	b.metrics.ActiveIdentities(identity.AxisClient.String(), len(b.registry.clients))
	b.metrics.ActiveIdentities(identity.AxisSender.String(), len(b.registry.senders))
	b.metrics.ActiveIdentities(identity.AxisToken.String(), len(b.registry.tokens))
	b.metrics.BannedIdentities(identity.AxisClient.String(), len(b.banList.Clients))
	b.metrics.BannedIdentities(identity.AxisSender.String(), len(b.banList.Senders))
	b.metrics.BannedIdentities(identity.AxisToken.String(), len(b.banList.Tokens))
}

// BanList returns a deep copy of the current ban list.
func (b *Banhammer) BanList() *BanList {
	return b.banList.Copy()
}

// Client returns a copy of the active registry entry of client.
// Returns false if client has never been seen or is banned.
func (b *Banhammer) Client(client identity.Client) (ClientRecord, bool) {
	rec, ok := b.registry.clients[client]
	if !ok {
		return ClientRecord{}, false
	}
	return rec.copy(), true
}

// Sender returns a copy of the active registry entry of sender.
func (b *Banhammer) Sender(sender identity.Sender) (SenderRecord, bool) {
	rec, ok := b.registry.senders[sender]
	if !ok {
		return SenderRecord{}, false
	}
	return rec.copy(), true
}

// Token returns a copy of the active registry entry of token.
func (b *Banhammer) Token(token identity.Token) (TokenRecord, bool) {
	rec, ok := b.registry.tokens[token]
	if !ok {
		return TokenRecord{}, false
	}
	return rec.copy(), true
}

// Stats summarizes the table sizes of a Banhammer.
type Stats struct {
	ActiveClients, ActiveSenders, ActiveTokens int
	BannedClients, BannedSenders, BannedTokens int
}

func (b *Banhammer) Stats() Stats {
	return Stats{
		ActiveClients: len(b.registry.clients),
		ActiveSenders: len(b.registry.senders),
		ActiveTokens:  len(b.registry.tokens),
		BannedClients: len(b.banList.Clients),
		BannedSenders: len(b.banList.Senders),
		BannedTokens:  len(b.banList.Tokens),
	}
}

// Config returns the configuration the Banhammer was created with.
func (b *Banhammer) Config() Config {
	return b.cfg
}
