package banhammer

import (
	"net/netip"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayguard/banhammer/model/identity"
	"github.com/relayguard/banhammer/model/relayer"
	"github.com/relayguard/banhammer/model/violation"
	"github.com/relayguard/banhammer/module/irrecoverable"
)

// TestEvaluate_MissingActiveEntry checks that an identity which is neither active nor banned is
// reported as an irrecoverable exception.
func TestEvaluate_MissingActiveEntry(t *testing.T) {
	b, err := New(zerolog.Nop(), Config{DecayInterval: time.Minute, IncorrectNonceThreshold: 1, TokenMultiplier: 1}, time.Now())
	require.NoError(t, err)

	token := identity.Token("t")
	in := &relayer.Input{
		Client: identity.ClientFromAddr(netip.MustParseAddr("192.0.2.1")),
		Sender: identity.SenderFromBytes([]byte{0xaa}),
		Token:  &token,
		Error:  violation.NewIncorrectNonce(),
	}

	_, err = b.evaluateClient(in)
	assert.True(t, irrecoverable.IsException(err))
	_, err = b.evaluateSender(in)
	assert.True(t, irrecoverable.IsException(err))
	_, err = b.evaluateToken(in)
	assert.True(t, irrecoverable.IsException(err))

	// ReadInput associates before evaluating, so the regular path never hits the exception
	require.NoError(t, b.ReadInput(in))
	assert.Equal(t, 3, b.BanList().Size())
}
