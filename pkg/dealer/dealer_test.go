package dealer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/smcompiler/pkg/dealer"
	"github.com/luxfi/smcompiler/pkg/expr"
	"github.com/luxfi/smcompiler/pkg/field"
)

const testPrime = 3525679

func TestRegisterIsIdempotentAndOrdered(t *testing.T) {
	d := dealer.New(field.NewModulus(testPrime))

	i0 := d.Register("alice")
	i1 := d.Register("bob")
	i0Again := d.Register("alice")

	assert.Equal(t, 0, i0)
	assert.Equal(t, 1, i1)
	assert.Equal(t, 0, i0Again, "re-registering the same participant must return its original index")
}

func TestRetrieveYieldsConsistentBeaverTriplet(t *testing.T) {
	q := field.NewModulus(testPrime)
	d := dealer.New(q)

	participants := []string{"alice", "bob", "carol"}
	for _, p := range participants {
		d.Register(p)
	}

	mulNode := expr.NewMult(expr.NewSecret(), expr.NewSecret())

	var aShares, bShares, cShares []field.Share
	for _, p := range participants {
		a, b, c, err := d.Retrieve(p, mulNode.NodeID())
		require.NoError(t, err)
		aShares = append(aShares, a)
		bShares = append(bShares, b)
		cShares = append(cShares, c)
	}

	a := field.Reconstruct(aShares)
	b := field.Reconstruct(bShares)
	c := field.Reconstruct(cShares)

	assert.True(t, a.Mul(b).Equal(c), "triplet must satisfy c = a*b")
}

func TestRetrieveMintsOncePerNode(t *testing.T) {
	q := field.NewModulus(testPrime)
	d := dealer.New(q)
	d.Register("alice")
	d.Register("bob")

	mulNode := expr.NewMult(expr.NewSecret(), expr.NewSecret())

	a1, b1, c1, err := d.Retrieve("alice", mulNode.NodeID())
	require.NoError(t, err)
	a2, b2, c2, err := d.Retrieve("alice", mulNode.NodeID())
	require.NoError(t, err)

	assert.True(t, a1.Element().Equal(a2.Element()), "repeated retrieval for the same node must return the same share")
	assert.True(t, b1.Element().Equal(b2.Element()))
	assert.True(t, c1.Element().Equal(c2.Element()))
}

func TestIndependentMultiplicationNodesGetIndependentTriplets(t *testing.T) {
	q := field.NewModulus(testPrime)
	d := dealer.New(q)
	d.Register("alice")

	first := expr.NewMult(expr.NewSecret(), expr.NewSecret())
	second := expr.NewMult(expr.NewSecret(), expr.NewSecret())

	a1, b1, c1, err := d.Retrieve("alice", first.NodeID())
	require.NoError(t, err)
	a2, b2, c2, err := d.Retrieve("alice", second.NodeID())
	require.NoError(t, err)

	// Vanishingly unlikely to collide for a real prime field; this is a
	// sanity check that distinct node identities are not coalesced.
	assert.False(t, a1.Element().Equal(a2.Element()) && b1.Element().Equal(b2.Element()) && c1.Element().Equal(c2.Element()))
}

func TestRetrieveRejectsUnregisteredParticipant(t *testing.T) {
	q := field.NewModulus(testPrime)
	d := dealer.New(q)
	d.Register("alice")

	mulNode := expr.NewMult(expr.NewSecret(), expr.NewSecret())
	_, _, _, err := d.Retrieve("mallory", mulNode.NodeID())
	assert.Error(t, err)
}
