package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/smcompiler/pkg/field"
)

// 22-bit prime, matching the reference workload's FIELD_Q (3525679).
const testPrime = 3525679

func TestShareReconstructRoundTrip(t *testing.T) {
	q := field.NewModulus(testPrime)

	for _, v := range []uint64{0, 1, 42, testPrime - 1, 1000000} {
		for _, n := range []int{2, 3, 5, 8} {
			shares, err := q.Share(q.FromUint64(v), n)
			require.NoError(t, err)
			assert.Len(t, shares, n)
			got := field.Reconstruct(shares)
			assert.Truef(t, got.Equal(q.FromUint64(v)), "v=%d n=%d: got %s", v, n, got)
		}
	}
}

func TestAdditiveHomomorphism(t *testing.T) {
	q := field.NewModulus(testPrime)
	x, y := q.FromUint64(17), q.FromUint64(25)

	sx, err := q.Share(x, 4)
	require.NoError(t, err)
	sy, err := q.Share(y, 4)
	require.NoError(t, err)

	summed := make([]field.Share, len(sx))
	for i := range sx {
		summed[i] = sx[i].Add(sy[i])
	}

	got := field.Reconstruct(summed)
	assert.True(t, got.Equal(q.FromUint64(17+25)))
}

func TestPublicScalarMultiplication(t *testing.T) {
	q := field.NewModulus(testPrime)
	x := q.FromUint64(19)
	k := q.FromUint64(6)

	sx, err := q.Share(x, 5)
	require.NoError(t, err)

	scaled := make([]field.Share, len(sx))
	for i := range sx {
		scaled[i] = sx[i].MulPublic(k)
	}

	got := field.Reconstruct(scaled)
	assert.True(t, got.Equal(q.FromUint64(19*6)))
}

func TestShareRejectsNonPositiveParticipantCount(t *testing.T) {
	q := field.NewModulus(testPrime)
	_, err := q.Share(q.FromUint64(1), 0)
	assert.Error(t, err)
}

func TestShareRejectsParticipantCountExceedingModulus(t *testing.T) {
	q := field.NewModulus(17)
	_, err := q.Share(q.FromUint64(1), 18)
	assert.Error(t, err)
}

func TestCanonicalEncodingRoundTrips(t *testing.T) {
	q := field.NewModulus(testPrime)
	e := q.FromUint64(123456)
	got := q.FromBytes(e.Bytes())
	assert.True(t, e.Equal(got))
	assert.Len(t, e.Bytes(), q.ByteLen())
}
