package banhammer

import (
	"github.com/relayguard/banhammer/model/violation"
)

// evaluate records v into progress and decides whether the identity owning progress must be
// banned. withToken tells whether a token took part in the event, which scales the thresholds by
// the token multiplier.
//
// Revert bans compare the max gas counter, not the number of reverts, against the revert
// threshold. Relayer errors and events without an error never change progress.
func evaluate(progress *Progress, cfg Config, withToken bool, v *violation.Violation) bool {
	if v == nil {
		return false
	}

	switch v.Kind {
	case violation.IncorrectNonce:
		progress.IncorrectNonce++
		threshold, enabled := cfg.threshold(cfg.IncorrectNonceThreshold, withToken)
		return enabled && progress.IncorrectNonce >= threshold

	case violation.MaxGas:
		progress.MaxGas++
		threshold, enabled := cfg.threshold(cfg.MaxGasThreshold, withToken)
		return enabled && progress.MaxGas >= threshold

	case violation.Revert:
		progress.Reverts = append(progress.Reverts, v.Message)
		threshold, enabled := cfg.threshold(cfg.RevertThreshold, withToken)
		return enabled && progress.MaxGas >= threshold

	default:
		return false
	}
}
