// Package expr implements the immutable arithmetic expression IR evaluated
// by the SMC protocol: a closed tagged variant of Scalar, Secret, AddOp,
// SubOp and MultOp nodes with constructor-assigned, structurally-independent
// identities (spec.md §3, §4.2, §9).
package expr

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/luxfi/smcompiler/pkg/field"
)

// idBytes is the byte length of a node identity, matching the reference
// implementation's 4-byte token (original_source/smcompiler/expression.py).
const idBytes = 4

// ID is a node's stable identity. Two independently constructed nodes never
// share an ID, even if structurally identical (invariant I1).
type ID [idBytes]byte

func newID() ID {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		// crypto/rand failing is not a condition this package can recover
		// from; every other invariant depends on identities existing.
		panic(fmt.Sprintf("expr: failed to generate node identity: %v", err))
	}
	return id
}

// String renders the identity as a routing-stable hex string, used directly
// as a bus label (spec.md §9, "Secret identity as routing key").
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Expression is the closed set of node kinds the evaluator matches on. It
// has no public methods beyond identity and String: all dispatch happens in
// the evaluator via a type switch, per spec.md §9's "tagged variant"
// design note.
type Expression interface {
	// NodeID returns this node's stable identity.
	NodeID() ID
	fmt.Stringer
}

// Scalar is a public field element.
type Scalar struct {
	id    ID
	Value field.Element
}

// NewScalar constructs a Scalar node carrying the public value v.
func NewScalar(v field.Element) *Scalar {
	return &Scalar{id: newID(), Value: v}
}

// NodeID implements Expression.
func (s *Scalar) NodeID() ID { return s.id }

func (s *Scalar) String() string { return fmt.Sprintf("Scalar(%s)", s.Value) }

// Secret is a private input. Every participant holds the identical Secret
// node (same identity, per I2); only the owning participant separately
// knows the cleartext value, supplied out-of-band to its engine (the
// owner's input map), never stored on the node itself — mirroring the
// reference's SMCParty.value_dict rather than a value carried on
// Expression (original_source/smcompiler/smc_party.py).
type Secret struct {
	id ID
}

// NewSecret constructs a Secret placeholder. Ownership of its cleartext
// value is established separately, by whichever participant's input map
// includes this node.
func NewSecret() *Secret {
	return &Secret{id: newID()}
}

// NodeID implements Expression.
func (s *Secret) NodeID() ID { return s.id }

func (s *Secret) String() string { return fmt.Sprintf("Secret(%s)", s.id) }

// ScalarOperandKind classifies which operands of a binary Op are Scalars,
// used to pick the evaluation branch for Add/Sub/Mult (spec.md §4.2).
type ScalarOperandKind int

const (
	// None means neither operand is a Scalar: both are secret-derived.
	None ScalarOperandKind = iota
	// LeftOnly means the left operand is a Scalar, the right is not.
	LeftOnly
	// RightOnly means the right operand is a Scalar, the left is not.
	RightOnly
	// Both means both operands are Scalars.
	Both
)

// Op is the shared shape of the three binary operators.
type Op struct {
	id   ID
	A, B Expression
}

// NodeID implements Expression.
func (o *Op) NodeID() ID { return o.id }

// Operands returns the left and right sub-expressions.
func (o *Op) Operands() (Expression, Expression) { return o.A, o.B }

// ScalarOperand classifies o's operands for the evaluator's branch
// selection (spec.md §4.2's scalar_operand(op)).
func (o *Op) ScalarOperand() ScalarOperandKind {
	_, aScalar := o.A.(*Scalar)
	_, bScalar := o.B.(*Scalar)
	switch {
	case aScalar && bScalar:
		return Both
	case aScalar:
		return LeftOnly
	case bScalar:
		return RightOnly
	default:
		return None
	}
}

func newOp(a, b Expression) Op {
	return Op{id: newID(), A: a, B: b}
}

// AddOp represents a+b.
type AddOp struct{ Op }

// NewAdd constructs an AddOp over a and b.
func NewAdd(a, b Expression) *AddOp { return &AddOp{newOp(a, b)} }

func (o *AddOp) String() string { return fmt.Sprintf("(%s + %s)", o.A, o.B) }

// SubOp represents a-b.
type SubOp struct{ Op }

// NewSub constructs a SubOp over a and b.
func NewSub(a, b Expression) *SubOp { return &SubOp{newOp(a, b)} }

func (o *SubOp) String() string { return fmt.Sprintf("(%s - %s)", o.A, o.B) }

// MultOp represents a*b.
type MultOp struct{ Op }

// NewMult constructs a MultOp over a and b. Each distinct MultOp node keys
// exactly one Beaver triplet (invariant I3) — constructing "the same"
// multiplication twice by calling NewMult again mints a second triplet,
// since identity is assigned at construction, never derived structurally.
func NewMult(a, b Expression) *MultOp { return &MultOp{newOp(a, b)} }

func (o *MultOp) String() string { return fmt.Sprintf("%s * %s", o.A, o.B) }
