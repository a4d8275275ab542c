// Package dealer implements the trusted third party that mints Beaver
// multiplication triplets, modeled on the teacher's
// protocols/lss/dealer.BootstrapDealer: a registration-ordered participant
// roster guarded by a single RWMutex, with per-key lazy minting cached
// behind a map (SPEC_FULL.md §4.3).
package dealer

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/luxfi/smcompiler/pkg/expr"
	"github.com/luxfi/smcompiler/pkg/field"
)

// Triplet is one Beaver triplet (a, b, c = a*b), already split into one
// additive share per registered participant.
type Triplet struct {
	A []field.Share
	B []field.Share
	C []field.Share
}

// Dealer mints and serves Beaver triplets for a fixed field and a roster of
// participants that grows only by registration, never by removal —
// matching BootstrapDealer's bootstrap-then-serve lifecycle.
type Dealer struct {
	mu       sync.RWMutex
	modulus  *field.Modulus
	index    map[string]int // participant key -> registration order
	roster   []string
	triplets map[expr.ID]*Triplet
}

// New creates a Dealer with no participants yet registered.
func New(modulus *field.Modulus) *Dealer {
	return &Dealer{
		modulus:  modulus,
		index:    make(map[string]int),
		triplets: make(map[expr.ID]*Triplet),
	}
}

// Register assigns participant a registration index if it has none yet,
// and returns its index. Registration order is what ties a participant to
// its position in each minted triplet's share slices.
func (d *Dealer) Register(participant string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i, ok := d.index[participant]; ok {
		return i
	}
	i := len(d.roster)
	d.index[participant] = i
	d.roster = append(d.roster, participant)
	return i
}

// Retrieve returns participant's shares of the Beaver triplet bound to the
// multiplication node op, minting the triplet on first request for that
// node (mint-once, under lock, SPEC_FULL.md §5). participant must already
// be registered.
func (d *Dealer) Retrieve(participant string, op expr.ID) (a, b, c field.Share, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i, ok := d.index[participant]
	if !ok {
		return field.Share{}, field.Share{}, field.Share{}, fmt.Errorf("dealer: participant %q not registered", participant)
	}

	t, ok := d.triplets[op]
	if !ok {
		t, err = d.mint(len(d.roster))
		if err != nil {
			return field.Share{}, field.Share{}, field.Share{}, fmt.Errorf("dealer: mint triplet for %s: %w", op, err)
		}
		d.triplets[op] = t
	}

	return t.A[i], t.B[i], t.C[i], nil
}

// mint samples fresh a, b below the field's integer square root, computes
// c = a*b, and splits all three additively across n participants — the
// same bound the original TrustedParamGenerator.generate uses to keep a*b
// from wrapping the modulus before reduction (original_source/handin/ttp.py).
func (d *Dealer) mint(n int) (*Triplet, error) {
	bound := sqrtFloor(d.modulus.Big())

	a, err := randBelow(bound)
	if err != nil {
		return nil, fmt.Errorf("sample a: %w", err)
	}
	b, err := randBelow(bound)
	if err != nil {
		return nil, fmt.Errorf("sample b: %w", err)
	}

	aElem := field.ElementFromBig(d.modulus, a)
	bElem := field.ElementFromBig(d.modulus, b)
	cElem := aElem.Mul(bElem)

	aShares, err := d.modulus.Share(aElem, n)
	if err != nil {
		return nil, fmt.Errorf("share a: %w", err)
	}
	bShares, err := d.modulus.Share(bElem, n)
	if err != nil {
		return nil, fmt.Errorf("share b: %w", err)
	}
	cShares, err := d.modulus.Share(cElem, n)
	if err != nil {
		return nil, fmt.Errorf("share c: %w", err)
	}

	return &Triplet{A: aShares, B: bShares, C: cShares}, nil
}

// sqrtFloor returns floor(sqrt(n)) for n >= 0.
func sqrtFloor(n *big.Int) *big.Int {
	return new(big.Int).Sqrt(n)
}

// randBelow returns a uniformly random integer in [0, bound).
func randBelow(bound *big.Int) (*big.Int, error) {
	if bound.Sign() <= 0 {
		return big.NewInt(0), nil
	}
	v, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return nil, err
	}
	return v, nil
}
