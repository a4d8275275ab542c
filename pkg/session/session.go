// Package session defines the protocol specification and state machine
// shared by every participant engine, modeled on the teacher's
// protocols/lss/config.Config (plain struct, Validate/Copy) and
// pkg/protocol/handler.go's linear round-advancement discipline
// (SPEC_FULL.md §4.4).
package session

import (
	"fmt"

	"github.com/luxfi/smcompiler/pkg/expr"
	"github.com/luxfi/smcompiler/pkg/hash"
	"github.com/luxfi/smcompiler/pkg/party"
)

// State is one stage of a participant's session lifecycle. Transitions
// are linear (spec.md §4.4.5): Init -> Sharing -> Barrier -> Evaluating ->
// Finalizing -> Done, with no backtracking.
type State int

const (
	Init State = iota
	Sharing
	Barrier
	Evaluating
	Finalizing
	Done
)

func (s State) String() string {
	switch s {
	case Init:
		return "INIT"
	case Sharing:
		return "SHARING"
	case Barrier:
		return "BARRIER"
	case Evaluating:
		return "EVALUATING"
	case Finalizing:
		return "FINALIZING"
	case Done:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// next returns the state that linearly follows s. Advance panics if called
// on Done, since there is no successor: callers are expected to stop
// driving the machine once it reaches Done (spec.md §4.4.5, "no
// backtracking").
func (s State) next() State {
	if s == Done {
		panic("session: no state follows Done")
	}
	return s + 1
}

// Advance moves cur one step forward in the linear state machine.
func Advance(cur State) State {
	return cur.next()
}

// Spec is the protocol specification agreed identically by every
// participant (spec.md §3, "Protocol specification"): a shared expression
// root and an ordered participant list whose index 0 is the aggregator.
type Spec struct {
	Root         expr.Expression `json:"-"`
	Participants party.IDSlice   `json:"participants"`
}

// Validate checks the structural preconditions a Spec must satisfy before
// a session can begin: a non-empty, duplicate-free participant list, and a
// non-nil expression root.
func (s Spec) Validate() error {
	if s.Root == nil {
		return fmt.Errorf("session: spec has no expression root")
	}
	if len(s.Participants) == 0 {
		return fmt.Errorf("session: spec has no participants")
	}
	seen := make(map[party.ID]bool, len(s.Participants))
	for _, id := range s.Participants {
		if seen[id] {
			return fmt.Errorf("session: duplicate participant id %q", id)
		}
		seen[id] = true
	}
	return nil
}

// Copy returns a shallow copy of s; the participant slice is duplicated so
// callers may mutate one copy without affecting the other, matching the
// teacher's config.Config.Copy convention.
func (s Spec) Copy() Spec {
	out := s
	out.Participants = append(party.IDSlice(nil), s.Participants...)
	return out
}

// Aggregator returns the designated aggregator: the participant at index
// 0 of the ordered list (spec.md §3).
func (s Spec) Aggregator() party.ID {
	return s.Participants[0]
}

// IsAggregator reports whether id occupies index 0 of the participant list.
func (s Spec) IsAggregator(id party.ID) bool {
	return len(s.Participants) > 0 && s.Participants[0] == id
}

// SessionID derives a stable identifier from s's participant list and
// expression root, used by Engine to confirm every participant is running
// from an identical Spec (invariant I2) before any shares are distributed.
func (s Spec) SessionID() []byte {
	root := s.Root.NodeID()
	return hash.SessionID(s.Participants, root[:])
}
