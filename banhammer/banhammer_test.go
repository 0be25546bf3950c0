package banhammer_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/relayguard/banhammer/banhammer"
	"github.com/relayguard/banhammer/model/identity"
	"github.com/relayguard/banhammer/model/relayer"
	"github.com/relayguard/banhammer/model/violation"
	"github.com/relayguard/banhammer/utils/unittest"
)

// recordingConsumer keeps every ban notification it receives.
type recordingConsumer struct {
	mu   sync.Mutex
	bans []banhammer.Ban
}

func (r *recordingConsumer) OnIdentityBanned(ban banhammer.Ban) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bans = append(r.bans, ban)
}

func newBanhammer(t *testing.T, cfg banhammer.Config, opts ...banhammer.Option) *banhammer.Banhammer {
	b, err := banhammer.New(unittest.Logger(), cfg, time.Now(), opts...)
	require.NoError(t, err)
	return b
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := unittest.BanhammerConfigFixture(1, 1, 1)
	cfg.DecayInterval = 0

	_, err := banhammer.New(unittest.Logger(), cfg, time.Now())
	require.Error(t, err)
}

// TestReadInput_IncorrectNonceBansClient: with an incorrect nonce threshold of 3 and no token, the third
// incorrect nonce error from the same client bans it.
func TestReadInput_IncorrectNonceBansClient(t *testing.T) {
	consumer := &recordingConsumer{}
	b := newBanhammer(t, unittest.BanhammerConfigFixture(3, 0, 0), banhammer.WithBanConsumer(consumer))
	client := unittest.ClientFixture()

	for i := 0; i < 2; i++ {
		in := unittest.InputFixture(unittest.WithClient(client), unittest.WithError(violation.NewIncorrectNonce()))
		require.NoError(t, b.ReadInput(in))
		require.False(t, b.BanList().IsClientBanned(client), "client must not be banned after %d errors", i+1)
	}

	in := unittest.InputFixture(unittest.WithClient(client), unittest.WithError(violation.NewIncorrectNonce()))
	require.NoError(t, b.ReadInput(in))

	_, active := b.Client(client)
	assert.False(t, active, "banned client must leave the active registry")

	banned, ok := b.BanList().Clients[client]
	require.True(t, ok)
	assert.Equal(t, banhammer.IncorrectNonceReason(), banned.Reason)
	assert.Equal(t, uint32(3), banned.Progress.IncorrectNonce)
	assert.Len(t, banned.Senders, 3, "frozen entry keeps its associations")

	// each sender only saw a single error
	assert.Empty(t, b.BanList().Senders)

	require.Len(t, consumer.bans, 1)
	assert.Equal(t, identity.AxisClient, consumer.bans[0].Axis)
	assert.Equal(t, client.String(), consumer.bans[0].Identity)
	assert.Equal(t, banhammer.IncorrectNonceReason(), consumer.bans[0].Reason)
}

// TestReadInput_TokenMultiplier: with a token multiplier of 2 and a token on every input, six incorrect
// nonce errors are needed before the token and its client are banned.
func TestReadInput_TokenMultiplier(t *testing.T) {
	cfg := unittest.BanhammerConfigFixture(3, 0, 0)
	cfg.TokenMultiplier = 2
	b := newBanhammer(t, cfg)

	client := unittest.ClientFixture()
	sender := unittest.SenderFixture()
	token := unittest.TokenFixture()
	input := func() *relayer.Input {
		return unittest.InputFixture(
			unittest.WithClient(client),
			unittest.WithSender(sender),
			unittest.WithToken(token),
			unittest.WithError(violation.NewIncorrectNonce()),
		)
	}

	for i := 0; i < 5; i++ {
		require.NoError(t, b.ReadInput(input()))
		require.Zero(t, b.BanList().Size(), "nothing must be banned after %d errors", i+1)
	}

	require.NoError(t, b.ReadInput(input()))

	bans := b.BanList()
	assert.True(t, bans.IsTokenBanned(token))
	assert.True(t, bans.IsClientBanned(client))
	assert.True(t, bans.IsSenderBanned(sender), "all three axes cross the threshold on the same input")
	assert.Equal(t, []identity.Client{client}, bans.Tokens[token].Clients)
	assert.Equal(t, []identity.Sender{sender}, bans.Tokens[token].Senders)

	stats := b.Stats()
	assert.Equal(t, banhammer.Stats{BannedClients: 1, BannedSenders: 1, BannedTokens: 1}, stats)
}

// TestReadInput_BannedIdentityIsFrozen checks that inputs referencing a banned identity neither change
// its frozen entry nor recreate an active entry for it, while the other axes keep being tracked.
func TestReadInput_BannedIdentityIsFrozen(t *testing.T) {
	consumer := &recordingConsumer{}
	b := newBanhammer(t, unittest.BanhammerConfigFixture(0, 1, 0), banhammer.WithBanConsumer(consumer))
	client := unittest.ClientFixture()

	require.NoError(t, b.ReadInput(unittest.InputFixture(unittest.WithClient(client), unittest.WithError(violation.NewMaxGas()))))
	frozen := b.BanList().Clients[client]
	require.Equal(t, banhammer.MaxGasReason(), frozen.Reason)

	newSender := unittest.SenderFixture()
	require.NoError(t, b.ReadInput(unittest.InputFixture(
		unittest.WithClient(client),
		unittest.WithSender(newSender),
		unittest.WithToken(unittest.TokenFixture()),
		unittest.WithError(violation.NewRevert("reverted")),
	)))

	assert.Equal(t, frozen, b.BanList().Clients[client])
	_, active := b.Client(client)
	assert.False(t, active, "a banned client must never get an active entry again")

	rec, ok := b.Sender(newSender)
	require.True(t, ok, "the other axes of the input are still tracked")
	assert.Equal(t, []identity.Client{client}, rec.Clients)
	assert.Equal(t, []string{"reverted"}, rec.Progress.Reverts)

	// two bans for the first input (client and sender), none for the second
	assert.Len(t, consumer.bans, 2)
}

// TestReadInput_RevertUsesMaxGasCounter checks that a revert bans based on the max gas counter.
func TestReadInput_RevertUsesMaxGasCounter(t *testing.T) {
	b := newBanhammer(t, unittest.BanhammerConfigFixture(0, 10, 2))
	client := unittest.ClientFixture()
	sender := unittest.SenderFixture()
	in := func(v *violation.Violation) *relayer.Input {
		return unittest.InputFixture(unittest.WithClient(client), unittest.WithSender(sender), unittest.WithError(v))
	}

	for i := 0; i < 5; i++ {
		require.NoError(t, b.ReadInput(in(violation.NewRevert("reverted"))))
	}
	require.Zero(t, b.BanList().Size(), "reverts alone never ban")

	require.NoError(t, b.ReadInput(in(violation.NewMaxGas())))
	require.NoError(t, b.ReadInput(in(violation.NewMaxGas())))
	require.Zero(t, b.BanList().Size(), "max gas threshold not reached")

	require.NoError(t, b.ReadInput(in(violation.NewRevert("final"))))
	bans := b.BanList()
	require.True(t, bans.IsClientBanned(client))
	require.True(t, bans.IsSenderBanned(sender))
	assert.Equal(t, banhammer.RevertReason("final"), bans.Clients[client].Reason)
	assert.Len(t, bans.Clients[client].Progress.Reverts, 6)
}

// TestReadInput_NoErrorAndRelayerError checks that inputs without a bannable error only record associations.
func TestReadInput_NoErrorAndRelayerError(t *testing.T) {
	b := newBanhammer(t, unittest.BanhammerConfigFixture(1, 1, 1))
	client := unittest.ClientFixture()
	token := unittest.TokenFixture()

	require.NoError(t, b.ReadInput(unittest.InputFixture(unittest.WithClient(client), unittest.WithToken(token))))
	require.NoError(t, b.ReadInput(unittest.InputFixture(unittest.WithClient(client), unittest.WithError(violation.NewRelayer("rpc timeout")))))

	assert.Zero(t, b.BanList().Size())
	rec, ok := b.Client(client)
	require.True(t, ok)
	assert.True(t, rec.Progress.IsZero())
	assert.Len(t, rec.Senders, 2)
	assert.Equal(t, []identity.Token{token}, rec.Tokens)

	_, ok = b.Token(token)
	assert.True(t, ok)
	assert.Equal(t, 1, b.Stats().ActiveTokens, "token axis is only populated by inputs carrying a token")
}

// TestReadInput_LogsBan checks the operational notification names the identity and the reason.
func TestReadInput_LogsBan(t *testing.T) {
	var buf bytes.Buffer
	b, err := banhammer.New(unittest.LoggerWithWriter(&buf), unittest.BanhammerConfigFixture(1, 0, 0), time.Now())
	require.NoError(t, err)

	client := unittest.ClientFixture()
	require.NoError(t, b.ReadInput(unittest.InputFixture(unittest.WithClient(client), unittest.WithError(violation.NewIncorrectNonce()))))

	out := buf.String()
	assert.Contains(t, out, `"message":"identity banned"`)
	assert.Contains(t, out, `"identity":"`+client.String()+`"`)
	assert.Contains(t, out, `"reason":"incorrect_nonce"`)
}

// TestBanList_IsACopy checks that callers cannot mutate the ban list through the returned value.
func TestBanList_IsACopy(t *testing.T) {
	b := newBanhammer(t, unittest.BanhammerConfigFixture(1, 0, 0))
	client := unittest.ClientFixture()
	require.NoError(t, b.ReadInput(unittest.InputFixture(unittest.WithClient(client), unittest.WithError(violation.NewIncorrectNonce()))))

	list := b.BanList()
	entry := list.Clients[client]
	entry.Senders[0] = unittest.SenderFixture()
	delete(list.Clients, client)

	require.True(t, b.BanList().IsClientBanned(client))
	assert.NotEqual(t, entry.Senders[0], b.BanList().Clients[client].Senders[0])
}

func TestDistributor(t *testing.T) {
	d := banhammer.NewDistributor()
	first := &recordingConsumer{}
	second := &recordingConsumer{}
	d.AddConsumer(first)
	d.AddConsumer(second)

	ban := banhammer.Ban{Axis: identity.AxisToken, Identity: "t", Reason: banhammer.MaxGasReason()}
	d.OnIdentityBanned(ban)

	assert.Equal(t, []banhammer.Ban{ban}, first.bans)
	assert.Equal(t, []banhammer.Ban{ban}, second.bans)
}

// TestReadInput_Invariants runs arbitrary input streams and checks after every input that:
//   - no identity is both active and banned,
//   - banned entries never change once banned,
//   - an identity is banned exactly when its counter reaches the threshold.
func TestReadInput_Invariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := banhammer.Config{
			DecayInterval:           time.Hour,
			IncorrectNonceThreshold: rapid.Uint32Range(0, 4).Draw(t, "incorrectNonceThreshold"),
			MaxGasThreshold:         rapid.Uint32Range(0, 4).Draw(t, "maxGasThreshold"),
			RevertThreshold:         rapid.Uint32Range(0, 4).Draw(t, "revertThreshold"),
			TokenMultiplier:         rapid.Uint32Range(1, 3).Draw(t, "tokenMultiplier"),
		}
		b, err := banhammer.New(unittest.Logger(), cfg, time.Now())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		clients := []identity.Client{identity.MustParseClient("10.0.0.1"), identity.MustParseClient("10.0.0.2")}
		senders := []identity.Sender{identity.SenderFromBytes([]byte{1}), identity.SenderFromBytes([]byte{2})}
		tokens := []identity.Token{"a", "b"}
		errs := []*violation.Violation{
			nil,
			violation.NewIncorrectNonce(),
			violation.NewMaxGas(),
			violation.NewRevert("r"),
			violation.NewRelayer("internal"),
		}

		frozen := make(map[identity.Client]banhammer.BannedClient)
		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			in := &relayer.Input{
				Client: rapid.SampledFrom(clients).Draw(t, "client"),
				Sender: rapid.SampledFrom(senders).Draw(t, "sender"),
				Error:  rapid.SampledFrom(errs).Draw(t, "error"),
			}
			if rapid.Bool().Draw(t, "withToken") {
				token := rapid.SampledFrom(tokens).Draw(t, "token")
				in.Token = &token
			}

			before, wasActive := b.Client(in.Client)
			if err := b.ReadInput(in); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			bans := b.BanList()

			for _, c := range clients {
				_, active := b.Client(c)
				if active && bans.IsClientBanned(c) {
					t.Fatalf("client %s is both active and banned", c)
				}
			}
			for _, s := range senders {
				_, active := b.Sender(s)
				if active && bans.IsSenderBanned(s) {
					t.Fatalf("sender %s is both active and banned", s)
				}
			}
			for _, tok := range tokens {
				_, active := b.Token(tok)
				if active && bans.IsTokenBanned(tok) {
					t.Fatalf("token %s is both active and banned", tok)
				}
			}

			for c, entry := range frozen {
				if !assert.ObjectsAreEqual(entry, bans.Clients[c]) {
					t.Fatalf("banned client %s changed", c)
				}
			}

			if wasActive {
				expected := expectClientBan(cfg, before.Progress, in)
				if expected != bans.IsClientBanned(in.Client) {
					t.Fatalf("client ban mismatch: expected %v with progress %+v and input error %v", expected, before.Progress, in.Error)
				}
				if expected {
					frozen[in.Client] = bans.Clients[in.Client]
				}
			}
		}
	})
}

// expectClientBan computes whether an active client with the given progress is banned by in.
func expectClientBan(cfg banhammer.Config, p banhammer.Progress, in *relayer.Input) bool {
	if in.Error == nil {
		return false
	}
	threshold := func(base uint32) (uint32, bool) {
		if base == 0 {
			return 0, false
		}
		if in.Token != nil {
			return base * cfg.TokenMultiplier, true
		}
		return base, true
	}
	switch in.Error.Kind {
	case violation.IncorrectNonce:
		th, ok := threshold(cfg.IncorrectNonceThreshold)
		return ok && p.IncorrectNonce+1 >= th
	case violation.MaxGas:
		th, ok := threshold(cfg.MaxGasThreshold)
		return ok && p.MaxGas+1 >= th
	case violation.Revert:
		th, ok := threshold(cfg.RevertThreshold)
		return ok && p.MaxGas >= th
	}
	return false
}
