package banhammer

import (
	"fmt"
	"time"
)

// Config holds the thresholds of the threshold policy and the decay interval.
//
// A zero base threshold disables bans for that violation kind; the corresponding counter is still
// tracked. When a token takes part in an event, each enabled threshold is multiplied by
// TokenMultiplier, which makes token holders more lenient to ban.
type Config struct {
	// DecayInterval is the time between two consecutive resets of the client progress counters.
	DecayInterval time.Duration `mapstructure:"timeframe" validate:"gt=0"`
	// IncorrectNonceThreshold is the number of incorrect nonce errors that bans an identity.
	IncorrectNonceThreshold uint32 `mapstructure:"incorrect-nonce-threshold"`
	// MaxGasThreshold is the number of gas ceiling errors that bans an identity.
	MaxGasThreshold uint32 `mapstructure:"max-gas-threshold"`
	// RevertThreshold is compared against the max gas counter on each revert.
	RevertThreshold uint32 `mapstructure:"revert-threshold"`
	// ExcessiveGasThreshold is kept for configuration compatibility. Nothing produces excessive gas
	// signals yet, so it never triggers a ban.
	ExcessiveGasThreshold uint32 `mapstructure:"excessive-gas-threshold"`
	// TokenMultiplier scales all thresholds when a token is present on the event.
	TokenMultiplier uint32 `mapstructure:"token-multiplier"`
}

// DefaultConfig returns a config with every ban disabled, a one minute decay interval and a
// neutral token multiplier.
func DefaultConfig() Config {
	return Config{
		DecayInterval:   time.Minute,
		TokenMultiplier: 1,
	}
}

// Validate returns an error if the config cannot drive the decay clock.
func (c Config) Validate() error {
	if c.DecayInterval <= 0 {
		return fmt.Errorf("decay interval must be positive, got: %s", c.DecayInterval)
	}
	return nil
}

// threshold returns the effective threshold for the given base threshold and whether the
// base is enabled at all.
func (c Config) threshold(base uint32, withToken bool) (uint32, bool) {
	if base == 0 {
		return 0, false
	}
	if withToken {
		return base * c.TokenMultiplier, true
	}
	return base, true
}
