package violation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayguard/banhammer/model/violation"
)

func TestParse(t *testing.T) {
	v, err := violation.Parse("revert", "execution reverted")
	require.NoError(t, err)
	assert.Equal(t, violation.NewRevert("execution reverted"), v)
	assert.Equal(t, "revert(execution reverted)", v.String())

	_, err = violation.Parse("excessive_gas", "")
	require.Error(t, err, "excessive gas has no producing signal")
}

func TestBannable(t *testing.T) {
	assert.True(t, violation.IncorrectNonce.Bannable())
	assert.True(t, violation.MaxGas.Bannable())
	assert.True(t, violation.Revert.Bannable())
	assert.False(t, violation.Relayer.Bannable())
}
