// Package party defines participant identities, following the teacher's
// pkg/party convention (party.ID as a plain string newtype, sortable
// IDSlice) adapted from elliptic-curve threshold signing to the additive
// SMC protocol.
package party

import "sort"

// ID identifies one participant in a protocol session.
type ID string

// IDSlice is an ordered list of participant IDs. Index 0 is the
// aggregator (spec.md §3, "Protocol specification").
type IDSlice []ID

// Contains reports whether id appears in s.
func (s IDSlice) Contains(id ID) bool {
	for _, x := range s {
		if x == id {
			return true
		}
	}
	return false
}

// Index returns the position of id in s, or -1 if absent.
func (s IDSlice) Index(id ID) int {
	for i, x := range s {
		if x == id {
			return i
		}
	}
	return -1
}

// Sorted returns a sorted copy of s. The engine itself never sorts its
// configured participant list (order is significant: index 0 is the
// aggregator) — this is a convenience for callers that only need a
// canonical ordering, such as test fixtures.
func (s IDSlice) Sorted() IDSlice {
	out := make(IDSlice, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
