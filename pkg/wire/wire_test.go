package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/smcompiler/pkg/expr"
	"github.com/luxfi/smcompiler/pkg/field"
	"github.com/luxfi/smcompiler/pkg/party"
	"github.com/luxfi/smcompiler/pkg/wire"
)

const testPrime = 3525679

func TestEnvelopeRoundTrips(t *testing.T) {
	q := field.NewModulus(testPrime)
	v := q.FromUint64(42)

	data, err := wire.Marshal(v.Bytes())
	require.NoError(t, err)

	raw, err := wire.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, v.Bytes(), raw)
}

func TestLabelsAreStableAndDistinct(t *testing.T) {
	secret := expr.NewSecret()
	op := expr.NewMult(expr.NewSecret(), expr.NewSecret())

	assert.Equal(t, secret.NodeID().String(), wire.SecretLabel(secret.NodeID()))
	assert.Equal(t, "alice_sent", wire.ReadyLabel(party.ID("alice")))
	assert.Equal(t, "final_share_alice", wire.FinalLabel(party.ID("alice")))

	dLabel := wire.BeaverMaskLabel(op.NodeID(), "d")
	eLabel := wire.BeaverMaskLabel(op.NodeID(), "e")
	assert.NotEqual(t, dLabel, eLabel)
}
