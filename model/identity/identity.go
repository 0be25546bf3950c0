package identity

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Axis names one of the three independent dimensions an identity is tracked on.
type Axis string

const (
	AxisClient Axis = "client"
	AxisSender Axis = "sender"
	AxisToken  Axis = "token"
)

func (a Axis) String() string {
	return string(a)
}

// Client is the network address a transaction was submitted from.
type Client netip.Addr

// Sender is the account that signed a relayed transaction.
type Sender common.Address

// Token is an opaque access token presented alongside a transaction.
// Its internal representation is owned by the upstream decoder.
type Token string

// ClientFromAddr converts a parsed network address into a Client.
// IPv4-mapped IPv6 addresses are unmapped so that both notations
// refer to the same client.
func ClientFromAddr(addr netip.Addr) Client {
	return Client(addr.Unmap())
}

// ParseClient parses a textual IPv4 or IPv6 address.
func ParseClient(s string) (Client, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return Client{}, fmt.Errorf("invalid client address %q: %w", s, err)
	}
	return ClientFromAddr(addr), nil
}

// MustParseClient is like ParseClient but panics on malformed input. Intended for tests and constants.
func MustParseClient(s string) Client {
	c, err := ParseClient(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Client) Addr() netip.Addr {
	return netip.Addr(c)
}

func (c Client) IsValid() bool {
	return netip.Addr(c).IsValid()
}

func (c Client) String() string {
	return netip.Addr(c).String()
}

// ParseSender parses a hex encoded account address, with or without the 0x prefix.
func ParseSender(s string) (Sender, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return Sender{}, fmt.Errorf("invalid sender address %q", s)
	}
	return Sender(common.HexToAddress(s)), nil
}

// SenderFromBytes converts a raw 20 byte account into a Sender.
func SenderFromBytes(b []byte) Sender {
	return Sender(common.BytesToAddress(b))
}

func (s Sender) Address() common.Address {
	return common.Address(s)
}

func (s Sender) Bytes() []byte {
	return common.Address(s).Bytes()
}

// String returns the EIP-55 checksummed hex form.
func (s Sender) String() string {
	return common.Address(s).Hex()
}

func (t Token) String() string {
	return string(t)
}
