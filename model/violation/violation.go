package violation

import "fmt"

// Kind is the kind of error the relayer observed for a submitted transaction.
type Kind string

const (
	// IncorrectNonce is reported when the transaction nonce does not match the sender's account nonce.
	IncorrectNonce Kind = "incorrect_nonce"

	// MaxGas is reported when the transaction requests more gas than the relayer's gas ceiling.
	MaxGas Kind = "max_gas"

	// Revert is reported when the transaction executed and reverted. The revert message is carried along.
	Revert Kind = "revert"

	// Relayer is an internal relayer failure. It is never attributed to the submitter and never
	// contributes to a ban.
	Relayer Kind = "relayer"
)

func (k Kind) String() string {
	return string(k)
}

// Valid returns true if k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case IncorrectNonce, MaxGas, Revert, Relayer:
		return true
	}
	return false
}

// Bannable returns true for kinds that count towards a ban.
func (k Kind) Bannable() bool {
	return k == IncorrectNonce || k == MaxGas || k == Revert
}

// Violation is the error signal attached to a relayed transaction.
// Message is only meaningful for Revert and Relayer.
type Violation struct {
	Kind    Kind
	Message string
}

func NewIncorrectNonce() *Violation {
	return &Violation{Kind: IncorrectNonce}
}

func NewMaxGas() *Violation {
	return &Violation{Kind: MaxGas}
}

func NewRevert(msg string) *Violation {
	return &Violation{Kind: Revert, Message: msg}
}

func NewRelayer(msg string) *Violation {
	return &Violation{Kind: Relayer, Message: msg}
}

// Parse builds a violation from its wire kind and message.
func Parse(kind string, msg string) (*Violation, error) {
	k := Kind(kind)
	if !k.Valid() {
		return nil, fmt.Errorf("unknown violation kind: %q", kind)
	}
	return &Violation{Kind: k, Message: msg}, nil
}

func (v Violation) String() string {
	if v.Message == "" {
		return v.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", v.Kind, v.Message)
}
