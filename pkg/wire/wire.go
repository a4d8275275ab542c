// Package wire implements the label conventions and envelope encoding the
// participant engine uses to address the message bus (spec.md §6).
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/luxfi/smcompiler/pkg/expr"
	"github.com/luxfi/smcompiler/pkg/party"
)

// SecretLabel is the private-inbox label under which a Secret's share
// travels from its owner to a peer.
func SecretLabel(secret expr.ID) string {
	return secret.String()
}

// ReadyLabel is the public-bulletin label a participant publishes once it
// has finished distributing its secret shares (spec.md §4.4.2).
func ReadyLabel(id party.ID) string {
	return fmt.Sprintf("%s_sent", id)
}

// BeaverMaskLabel names the public label for one of the two masked Beaver
// operands (x-a or y-b) a participant publishes for multiplication node op.
func BeaverMaskLabel(op expr.ID, which string) string {
	return fmt.Sprintf("beaver:%s_%s", which, op)
}

// FinalLabel is the public-bulletin label a participant publishes its
// final reconstruction share under.
func FinalLabel(id party.ID) string {
	return fmt.Sprintf("final_share_%s", id)
}

// SessionLabel is the public-bulletin label a participant publishes its
// computed session.Spec.SessionID under, so peers can confirm before
// sharing begins that everyone loaded an identical protocol specification.
func SessionLabel(id party.ID) string {
	return fmt.Sprintf("session_%s", id)
}

// Envelope is the canonical wire format for every value this engine puts
// on the bus: a CBOR-wrapped payload of canonically-encoded field-element
// bytes, mirroring the teacher's pkg/protocol handler, which CBOR-encodes
// round message content for transport (SPEC_FULL.md §6).
type Envelope struct {
	// FieldElement is the canonical big-endian encoding of a single
	// field.Element or field.Share (spec.md §9's "canonical binary
	// encoding" design note).
	FieldElement []byte `cbor:"1,keyasint"`
}

// Marshal wraps raw field-element bytes in a CBOR envelope.
func Marshal(elementBytes []byte) ([]byte, error) {
	data, err := cbor.Marshal(Envelope{FieldElement: elementBytes})
	if err != nil {
		return nil, fmt.Errorf("wire: marshal envelope: %w", err)
	}
	return data, nil
}

// Unmarshal extracts the field-element bytes from a CBOR envelope.
func Unmarshal(data []byte) ([]byte, error) {
	var env Envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("wire: unmarshal envelope: %w", err)
	}
	return env.FieldElement, nil
}
