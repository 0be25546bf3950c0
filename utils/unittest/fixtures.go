package unittest

import (
	crand "crypto/rand"
	"fmt"
	"math/rand"
	"net/netip"
	"time"

	"github.com/relayguard/banhammer/banhammer"
	"github.com/relayguard/banhammer/model/identity"
	"github.com/relayguard/banhammer/model/relayer"
	"github.com/relayguard/banhammer/model/violation"
)

// ClientFixture returns a random IPv4 client.
func ClientFixture() identity.Client {
	var b [4]byte
	_, _ = crand.Read(b[:])
	return identity.ClientFromAddr(netip.AddrFrom4(b))
}

// SenderFixture returns a random sender account.
func SenderFixture() identity.Sender {
	b := make([]byte, 20)
	_, _ = crand.Read(b)
	return identity.SenderFromBytes(b)
}

// TokenFixture returns a random token.
func TokenFixture() identity.Token {
	return identity.Token(fmt.Sprintf("token-%016x", rand.Uint64()))
}

// InputFixture returns an input with a random client and sender, no token and no error.
func InputFixture(opts ...func(*relayer.Input)) *relayer.Input {
	in := &relayer.Input{
		Client: ClientFixture(),
		Sender: SenderFixture(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

func WithClient(client identity.Client) func(*relayer.Input) {
	return func(in *relayer.Input) {
		in.Client = client
	}
}

func WithSender(sender identity.Sender) func(*relayer.Input) {
	return func(in *relayer.Input) {
		in.Sender = sender
	}
}

func WithToken(token identity.Token) func(*relayer.Input) {
	return func(in *relayer.Input) {
		in.Token = &token
	}
}

func WithError(v *violation.Violation) func(*relayer.Input) {
	return func(in *relayer.Input) {
		in.Error = v
	}
}

// BanhammerConfigFixture returns a config with the given incorrect nonce, max gas and revert
// thresholds, a token multiplier of 1 and a one minute decay interval.
func BanhammerConfigFixture(incorrectNonce, maxGas, revert uint32) banhammer.Config {
	return banhammer.Config{
		DecayInterval:           time.Minute,
		IncorrectNonceThreshold: incorrectNonce,
		MaxGasThreshold:         maxGas,
		RevertThreshold:         revert,
		TokenMultiplier:         1,
	}
}
