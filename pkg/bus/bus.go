// Package bus defines the message-bus contract the participant engine
// depends on (spec.md §6). The concrete production transport is an
// external collaborator's concern (spec.md §1, Non-goals); this package
// only fixes the interfaces. The in-memory reference implementation used
// by tests and the cmd/smcctl demo lives in internal/test.
package bus

import (
	"context"

	"github.com/luxfi/smcompiler/pkg/party"
)

// Bus is a private-inbox-plus-public-bulletin transport for one
// participant, satisfying spec.md §6's four required operations.
type Bus interface {
	// SendPrivate delivers bytes once to to's private inbox under label.
	SendPrivate(ctx context.Context, to party.ID, label string, data []byte) error
	// ReadPrivate blocks until a private message under label exists for
	// this bus's owning participant, then returns its bytes.
	ReadPrivate(ctx context.Context, label string) ([]byte, error)
	// Publish posts data on the public bulletin under (self, label).
	Publish(ctx context.Context, label string, data []byte) error
	// ReadPublic blocks until (from, label) exists on the public
	// bulletin, then returns its bytes.
	ReadPublic(ctx context.Context, from party.ID, label string) ([]byte, error)
}

// CostedBus is implemented by reference buses that track a cumulative
// communication-cost counter, the optional 5th bus operation from
// spec.md §6.
type CostedBus interface {
	Bus
	// BytesSent returns the cumulative number of payload bytes this
	// participant has sent across SendPrivate and Publish calls.
	BytesSent() uint64
}
