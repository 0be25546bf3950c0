package identity_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayguard/banhammer/model/identity"
)

// TestParseClient checks that both address families parse and that an IPv4-mapped IPv6
// address refers to the same client as its IPv4 form.
func TestParseClient(t *testing.T) {
	v4, err := identity.ParseClient("10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", v4.String())

	mapped, err := identity.ParseClient("::ffff:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, v4, mapped)

	v6, err := identity.ParseClient(" 2001:db8::1 ")
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddr("2001:db8::1"), v6.Addr())

	_, err = identity.ParseClient("not-an-ip")
	require.Error(t, err)
}

func TestParseSender(t *testing.T) {
	s, err := identity.ParseSender("0x00000000000000000000000000000000000000ff")
	require.NoError(t, err)
	assert.Equal(t, byte(0xff), s.Bytes()[19])

	noPrefix, err := identity.ParseSender("00000000000000000000000000000000000000ff")
	require.NoError(t, err)
	assert.Equal(t, s, noPrefix)

	_, err = identity.ParseSender("0x1234")
	require.Error(t, err)
}

// TestKeysAreComparable makes sure every identity type can be used as a map key.
func TestKeysAreComparable(t *testing.T) {
	clients := map[identity.Client]int{identity.MustParseClient("1.1.1.1"): 1}
	senders := map[identity.Sender]int{identity.SenderFromBytes([]byte{1}): 1}
	tokens := map[identity.Token]int{identity.Token("t"): 1}

	assert.Equal(t, 1, clients[identity.MustParseClient("1.1.1.1")])
	assert.Equal(t, 1, senders[identity.SenderFromBytes([]byte{1})])
	assert.Equal(t, 1, tokens["t"])
}
