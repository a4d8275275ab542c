package party_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luxfi/smcompiler/pkg/party"
)

func TestContainsAndIndex(t *testing.T) {
	ids := party.IDSlice{"alice", "bob", "carol"}

	assert.True(t, ids.Contains("bob"))
	assert.False(t, ids.Contains("mallory"))
	assert.Equal(t, 1, ids.Index("bob"))
	assert.Equal(t, -1, ids.Index("mallory"))
}

func TestSortedDoesNotMutateOriginal(t *testing.T) {
	ids := party.IDSlice{"carol", "alice", "bob"}
	sorted := ids.Sorted()

	assert.Equal(t, party.IDSlice{"alice", "bob", "carol"}, sorted)
	assert.Equal(t, party.ID("carol"), ids[0], "Sorted must not mutate its receiver")
}
