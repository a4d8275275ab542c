// Package hash derives session identifiers from a protocol specification,
// mirroring the teacher's round.Hash/SSID convention (SPEC_FULL.md §9).
// The participant engine publishes it before sharing so that every party
// can confirm it holds an identical protocol specification; it plays no
// part in the sharing or multiplication arithmetic.
package hash

import (
	"github.com/zeebo/blake3"

	"github.com/luxfi/smcompiler/pkg/party"
)

// SessionID derives a session identifier from the ordered participant list
// and the root expression's identity bytes.
func SessionID(participants party.IDSlice, rootID []byte) []byte {
	h := blake3.New()
	for _, id := range participants {
		_, _ = h.Write([]byte(id))
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write(rootID)
	sum := h.Sum(nil)
	return sum[:16]
}
