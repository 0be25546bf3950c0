package banhammer

// Progress accumulates the violations of one identity since its last decay.
type Progress struct {
	IncorrectNonce uint32
	MaxGas         uint32
	ExcessiveGas   uint32
	// Reverts holds the revert messages in the order they were observed.
	Reverts []string
}

// reset clears all counters and revert messages.
func (p *Progress) reset() {
	p.IncorrectNonce = 0
	p.MaxGas = 0
	p.ExcessiveGas = 0
	p.Reverts = nil
}

// IsZero returns true if no violation has been recorded.
func (p Progress) IsZero() bool {
	return p.IncorrectNonce == 0 && p.MaxGas == 0 && p.ExcessiveGas == 0 && len(p.Reverts) == 0
}

func (p Progress) copy() Progress {
	cp := p
	if p.Reverts != nil {
		cp.Reverts = append([]string(nil), p.Reverts...)
	}
	return cp
}
