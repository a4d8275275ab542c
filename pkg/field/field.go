// Package field implements modular arithmetic over a fixed prime field and
// n-of-n additive secret sharing over that field.
package field

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
)

// Modulus is the prime q that defines a field. It is a session-wide
// configuration constant: callers construct one Modulus and reuse it for
// every Element in a protocol session.
type Modulus struct {
	m *saferith.Modulus
	// byteLen is the minimum big-endian byte length needed to represent
	// any element of the field; used by the wire encoding.
	byteLen int
	// big is q itself as a math/big.Int, kept alongside the saferith
	// representation for callers that need ordinary integer arithmetic
	// on q (e.g. the trusted dealer's integer square-root bound).
	big *big.Int
}

// NewModulus builds a field Modulus from a prime q represented as a uint64.
// q must exceed every intermediate cleartext value the evaluated expression
// produces; overflow beyond q wraps silently (spec.md §3).
func NewModulus(q uint64) *Modulus {
	nat := new(saferith.Nat).SetUint64(q)
	mod := saferith.ModulusFromNat(nat)
	qBig := nat.Big()
	byteLen := (qBig.BitLen() + 7) / 8
	if byteLen == 0 {
		byteLen = 1
	}
	return &Modulus{m: mod, byteLen: byteLen, big: qBig}
}

// ByteLen returns the minimum big-endian byte length of an Element under
// this Modulus, used for canonical wire encoding (SPEC_FULL.md §6).
func (q *Modulus) ByteLen() int {
	return q.byteLen
}

// Big returns q as a math/big.Int, for callers (such as the trusted
// dealer) that need ordinary integer arithmetic on the modulus itself,
// e.g. computing an integer square-root bound.
func (q *Modulus) Big() *big.Int {
	return q.big
}

// Element is a single value in [0, q).
type Element struct {
	q *Modulus
	n *saferith.Nat
}

// Zero returns the additive identity of q.
func (q *Modulus) Zero() Element {
	return Element{q: q, n: new(saferith.Nat).SetUint64(0)}
}

// FromUint64 builds the Element representing v mod q.
func (q *Modulus) FromUint64(v uint64) Element {
	n := new(saferith.Nat).SetUint64(v)
	n.Mod(n, q.m)
	return Element{q: q, n: n}
}

// FromBytes decodes a canonical big-endian encoding of an Element.
func (q *Modulus) FromBytes(b []byte) Element {
	n := new(saferith.Nat).SetBytes(b)
	n.Mod(n, q.m)
	return Element{q: q, n: n}
}

// ElementFromBig builds the Element representing v mod q from a
// math/big.Int, for callers (such as the trusted dealer) that sample
// values using ordinary big-integer arithmetic.
func ElementFromBig(q *Modulus, v *big.Int) Element {
	n := new(saferith.Nat).SetBytes(v.Bytes())
	n.Mod(n, q.m)
	return Element{q: q, n: n}
}

// Random draws an Element uniformly from [0, q) using crypto/rand. Any
// uniform sampler is acceptable for the honest-but-curious model
// (spec.md §4.1).
func (q *Modulus) Random() (Element, error) {
	buf := make([]byte, q.byteLen+8) // oversample to reduce modulo bias
	if _, err := rand.Read(buf); err != nil {
		return Element{}, fmt.Errorf("field: random sample: %w", err)
	}
	return q.FromBytes(buf), nil
}

// Bytes returns the canonical big-endian encoding of e, left-padded to the
// modulus's byte length (SPEC_FULL.md §6, "canonical binary encoding").
func (e Element) Bytes() []byte {
	raw := e.n.Bytes()
	out := make([]byte, e.q.byteLen)
	copy(out[len(out)-len(raw):], raw)
	return out
}

// Uint64 returns e as a uint64. Only valid when q fits in 64 bits, which
// NewModulus guarantees.
func (e Element) Uint64() uint64 {
	big := e.n.Big()
	return big.Uint64()
}

// Add returns e+other mod q.
func (e Element) Add(other Element) Element {
	out := new(saferith.Nat)
	out.ModAdd(e.n, other.n, e.q.m)
	return Element{q: e.q, n: out}
}

// Sub returns e-other mod q.
func (e Element) Sub(other Element) Element {
	out := new(saferith.Nat)
	out.ModSub(e.n, other.n, e.q.m)
	return Element{q: e.q, n: out}
}

// Mul returns e*other mod q.
func (e Element) Mul(other Element) Element {
	out := new(saferith.Nat)
	out.ModMul(e.n, other.n, e.q.m)
	return Element{q: e.q, n: out}
}

// Equal reports whether e and other represent the same field value.
func (e Element) Equal(other Element) bool {
	return e.n.Eq(other.n) == 1
}

// String renders a debugging representation; never part of the wire format.
func (e Element) String() string {
	return fmt.Sprintf("%d", e.n.Big())
}

// Share is one additive term of a shared secret: a field Element that,
// together with n-1 others, reconstructs a value by summation mod q.
// It is a distinct named type so the compiler (not just convention)
// distinguishes "one term of a sharing" from "a bare field element".
type Share Element

// NewShare wraps a field Element as a Share.
func NewShare(e Element) Share {
	return Share(e)
}

// Element unwraps the underlying field Element.
func (s Share) Element() Element {
	return Element(s)
}

// Add returns s+other as shares (component-wise additive sharing is closed
// under addition, invariant I5).
func (s Share) Add(other Share) Share {
	return Share(Element(s).Add(Element(other)))
}

// Sub returns s-other as shares.
func (s Share) Sub(other Share) Share {
	return Share(Element(s).Sub(Element(other)))
}

// MulPublic returns s scaled by a public constant k: [v*k]_i = k*[v]_i.
// Multiplying a share by a public scalar is a strictly local operation.
func (s Share) MulPublic(k Element) Share {
	return Share(Element(s).Mul(k))
}

// String renders a debugging representation; never part of the wire format.
func (s Share) String() string {
	return Element(s).String()
}

// Share splits v into n additive shares over q: draws n-1 uniform random
// elements r1..r_{n-1} and sets r0 = v - sum(r1..r_{n-1}) mod q. The
// resulting ordered tuple reconstructs v by summation mod q (spec.md §4.1).
func (q *Modulus) Share(v Element, n int) ([]Share, error) {
	if n <= 0 {
		return nil, fmt.Errorf("field: cannot share among %d parties", n)
	}
	if big.NewInt(int64(n)).Cmp(q.big) > 0 {
		return nil, fmt.Errorf("field: cannot share among %d parties, exceeds modulus", n)
	}
	shares := make([]Share, n)
	acc := q.Zero()
	for i := 1; i < n; i++ {
		r, err := q.Random()
		if err != nil {
			return nil, err
		}
		shares[i] = Share(r)
		acc = acc.Add(r)
	}
	shares[0] = Share(v.Sub(acc))
	return shares, nil
}

// Reconstruct sums shares mod q to recover the shared value. Undefined
// when shares is empty: it then returns the Go zero value of Element,
// which is bound to no Modulus.
func Reconstruct(shares []Share) Element {
	if len(shares) == 0 {
		var zero Element
		return zero
	}
	acc := Element(shares[0])
	for _, s := range shares[1:] {
		acc = acc.Add(Element(s))
	}
	return acc
}
