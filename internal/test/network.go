// Package test provides an in-memory multi-party network harness, modeled
// on the teacher's internal/test.Network/test.PartyIDs helpers, for
// exercising the participant engine end to end without a real bus
// transport (spec.md §1 treats the transport as an external collaborator;
// this harness is the reference stand-in used by this module's own tests).
package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/smcompiler/pkg/bus"
	"github.com/luxfi/smcompiler/pkg/party"
)

// pollInterval is how often a blocking read re-checks for a posted value.
// The spec's bus contract permits either polling or long-poll readers
// (spec.md §5); this reference implementation polls, favoring simplicity
// over latency since it only ever serves in-process tests and demos.
const pollInterval = time.Millisecond

// PartyIDs returns n canonically-named participant IDs, party-1..party-n,
// matching the shape of the teacher's test.PartyIDs(n) helper.
func PartyIDs(n int) party.IDSlice {
	ids := make(party.IDSlice, n)
	for i := 0; i < n; i++ {
		ids[i] = party.ID(fmt.Sprintf("party-%d", i+1))
	}
	return ids
}

// Network is a shared in-memory bus backing every participant in one
// simulated session.
type Network struct {
	mu        sync.Mutex
	private   map[party.ID]map[string][]byte // recipient -> label -> data
	public    map[party.ID]map[string][]byte // publisher -> label -> data
	bytesSent map[party.ID]uint64
}

// NewNetwork creates a Network pre-registered for the given participants.
func NewNetwork(ids party.IDSlice) *Network {
	n := &Network{
		private:   make(map[party.ID]map[string][]byte),
		public:    make(map[party.ID]map[string][]byte),
		bytesSent: make(map[party.ID]uint64),
	}
	for _, id := range ids {
		n.private[id] = make(map[string][]byte)
		n.public[id] = make(map[string][]byte)
	}
	return n
}

// Bus returns the bus.Bus view of the network for participant self.
func (n *Network) Bus(self party.ID) bus.Bus {
	return &memoryBus{net: n, self: self}
}

type memoryBus struct {
	net  *Network
	self party.ID
}

func (b *memoryBus) SendPrivate(ctx context.Context, to party.ID, label string, data []byte) error {
	n := b.net
	n.mu.Lock()
	defer n.mu.Unlock()
	inbox, ok := n.private[to]
	if !ok {
		return fmt.Errorf("bus: unknown recipient %q", to)
	}
	if _, exists := inbox[label]; exists {
		// at-most-once per (sender, recipient, label), spec.md §5.
		return fmt.Errorf("bus: duplicate private message to %q under %q", to, label)
	}
	inbox[label] = data
	n.bytesSent[b.self] += uint64(len(data))
	return nil
}

func (b *memoryBus) ReadPrivate(ctx context.Context, label string) ([]byte, error) {
	n := b.net
	for {
		n.mu.Lock()
		if data, ok := n.private[b.self][label]; ok {
			n.mu.Unlock()
			return data, nil
		}
		n.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("bus: read private %q: %w", label, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

func (b *memoryBus) Publish(ctx context.Context, label string, data []byte) error {
	n := b.net
	n.mu.Lock()
	defer n.mu.Unlock()
	board, ok := n.public[b.self]
	if !ok {
		return fmt.Errorf("bus: unknown publisher %q", b.self)
	}
	board[label] = data
	n.bytesSent[b.self] += uint64(len(data))
	return nil
}

func (b *memoryBus) ReadPublic(ctx context.Context, from party.ID, label string) ([]byte, error) {
	n := b.net
	for {
		n.mu.Lock()
		board, ok := n.public[from]
		if ok {
			if data, ok := board[label]; ok {
				n.mu.Unlock()
				return data, nil
			}
		}
		n.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("bus: read public (%q,%q): %w", from, label, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

func (b *memoryBus) BytesSent() uint64 {
	n := b.net
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.bytesSent[b.self]
}
