package session

import "fmt"

// ErrorKind classifies why a session aborted (spec.md §7).
type ErrorKind int

const (
	// TypeMismatch: arithmetic applied between incompatible representations.
	TypeMismatch ErrorKind = iota
	// UnboundSecret: a Secret was reached during evaluation for which this
	// participant has neither a local share nor a deliverable private
	// message, and no participant's input map claims ownership.
	UnboundSecret
	// DealerFailure: Beaver-triplet retrieval failed.
	DealerFailure
	// BusFailure: a transport error occurred on a bus read or write.
	BusFailure
	// ProtocolViolation: participants disagree on the protocol specification
	// (e.g. mismatched participant lists or expression identities), or this
	// participant is missing from its own Spec. Engine.Run checks the
	// former at the start of every session via SessionID agreement
	// (pkg/hash), rather than leaving it detectable only via divergent
	// final results.
	ProtocolViolation
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case UnboundSecret:
		return "UnboundSecret"
	case DealerFailure:
		return "DealerFailure"
	case BusFailure:
		return "BusFailure"
	case ProtocolViolation:
		return "ProtocolViolation"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a fatal session failure, tagged with the kind of failure so
// callers can distinguish programmer errors from transport errors without
// string-matching (spec.md §7's propagation policy: errors are surfaced,
// never swallowed, never retried).
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("session: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a *Error of the given kind, wrapping a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}
