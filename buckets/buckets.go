// Package buckets holds the configuration of the leaky-bucket rate limiter that sits next to the
// banhammer. The rate limiter itself is not implemented: the configuration is loaded, validated and
// resolved, but nothing in the engine consults it yet.
package buckets

import (
	"github.com/relayguard/banhammer/model/identity"
)

// Config sizes a single bucket. All values are in the unit of the bucket (gas, errors, reverts or
// transactions).
type Config struct {
	BaseSize     uint64 `mapstructure:"base-size"`
	LeakRate     uint64 `mapstructure:"leak-rate"`
	OverflowSize uint64 `mapstructure:"overflow-size"`
	Retention    uint64 `mapstructure:"retention"`
}

// NamedConfig sizes the bucket of a specific error or revert message.
type NamedConfig struct {
	Name   string `mapstructure:"name" validate:"required"`
	Config `mapstructure:",squash"`
}

// BucketsConfig is the configuration of every bucket family.
type BucketsConfig struct {
	NearGas             Config `mapstructure:"near-gas"`
	EthGas              Config `mapstructure:"eth-gas"`
	FreeGas             Config `mapstructure:"free-gas"`
	DefaultRelayerError Config `mapstructure:"default-relayer-error"`
	DefaultEngineError  Config `mapstructure:"default-engine-error"`
	DefaultEVMRevert    Config `mapstructure:"default-evm-revert"`

	RelayerErrors []NamedConfig `mapstructure:"relayer-errors" validate:"unique=Name,dive"`
	EngineErrors  []NamedConfig `mapstructure:"engine-errors" validate:"unique=Name,dive"`
	EVMReverts    []NamedConfig `mapstructure:"evm-reverts" validate:"unique=Name,dive"`
}

// RelayerError returns the bucket configuration of the relayer error name, falling back to the
// default relayer error bucket.
func (c BucketsConfig) RelayerError(name string) Config {
	return lookup(c.RelayerErrors, name, c.DefaultRelayerError)
}

// EngineError returns the bucket configuration of the engine error name, falling back to the
// default engine error bucket.
func (c BucketsConfig) EngineError(name string) Config {
	return lookup(c.EngineErrors, name, c.DefaultEngineError)
}

// EVMRevert returns the bucket configuration of the revert message name, falling back to the
// default revert bucket.
func (c BucketsConfig) EVMRevert(name string) Config {
	return lookup(c.EVMReverts, name, c.DefaultEVMRevert)
}

// Len returns the number of buckets a rate limiter would keep per identity.
func (c BucketsConfig) Len() int {
	return 6 + len(c.RelayerErrors) + len(c.EngineErrors) + len(c.EVMReverts)
}

func lookup(named []NamedConfig, name string, fallback Config) Config {
	for _, n := range named {
		if n.Name == name {
			return n.Config
		}
	}
	return fallback
}

// Name identifies the buckets of a single identity.
type Name struct {
	Axis  identity.Axis
	Value string
}

func ClientName(c identity.Client) Name {
	return Name{Axis: identity.AxisClient, Value: c.String()}
}

func SenderName(s identity.Sender) Name {
	return Name{Axis: identity.AxisSender, Value: s.String()}
}

func TokenName(t identity.Token) Name {
	return Name{Axis: identity.AxisToken, Value: t.String()}
}
