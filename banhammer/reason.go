package banhammer

import (
	"fmt"

	"github.com/relayguard/banhammer/model/violation"
)

// ReasonKind enumerates why an identity was banned. The set is closed: the threshold policy only
// ever produces one of these.
type ReasonKind uint8

const (
	ReasonIncorrectNonce ReasonKind = iota + 1
	ReasonMaxGas
	ReasonRevert
	ReasonExcessiveGas
)

func (k ReasonKind) String() string {
	switch k {
	case ReasonIncorrectNonce:
		return "incorrect_nonce"
	case ReasonMaxGas:
		return "max_gas"
	case ReasonRevert:
		return "revert"
	case ReasonExcessiveGas:
		return "excessive_gas"
	default:
		return "unknown"
	}
}

// Reason records why an identity was banned. Message is set for ReasonRevert only,
// Count for ReasonExcessiveGas only.
type Reason struct {
	Kind    ReasonKind
	Message string
	Count   uint32
}

func IncorrectNonceReason() Reason {
	return Reason{Kind: ReasonIncorrectNonce}
}

func MaxGasReason() Reason {
	return Reason{Kind: ReasonMaxGas}
}

func RevertReason(msg string) Reason {
	return Reason{Kind: ReasonRevert, Message: msg}
}

func ExcessiveGasReason(count uint32) Reason {
	return Reason{Kind: ReasonExcessiveGas, Count: count}
}

// reasonFor maps a bannable violation onto the reason it bans with.
// ok is false for violations that never ban.
func reasonFor(v *violation.Violation) (Reason, bool) {
	if v == nil {
		return Reason{}, false
	}
	switch v.Kind {
	case violation.IncorrectNonce:
		return IncorrectNonceReason(), true
	case violation.MaxGas:
		return MaxGasReason(), true
	case violation.Revert:
		return RevertReason(v.Message), true
	default:
		return Reason{}, false
	}
}

func (r Reason) String() string {
	switch r.Kind {
	case ReasonRevert:
		return fmt.Sprintf("%s(%s)", r.Kind, r.Message)
	case ReasonExcessiveGas:
		return fmt.Sprintf("%s(%d)", r.Kind, r.Count)
	default:
		return r.Kind.String()
	}
}
