package session

import (
	"bytes"
	"context"

	"github.com/luxfi/smcompiler/pkg/bus"
	"github.com/luxfi/smcompiler/pkg/dealer"
	"github.com/luxfi/smcompiler/pkg/expr"
	"github.com/luxfi/smcompiler/pkg/field"
	"github.com/luxfi/smcompiler/pkg/party"
	"github.com/luxfi/smcompiler/pkg/wire"
)

// Engine drives one participant's side of a protocol session end to end:
// share distribution, the pre-evaluation barrier, recursive expression
// evaluation (including the Beaver multiplication protocol), and final
// reconstruction (spec.md §4.4). It plays the role the teacher's
// protocol.MultiHandler plays for round-based signing: the single object
// that advances this participant's State and owns its per-session maps.
type Engine struct {
	ID      party.ID
	Spec    Spec
	Modulus *field.Modulus
	Bus     bus.Bus
	Dealer  *dealer.Dealer

	// Inputs holds the cleartext values this participant owns, keyed by
	// the exact Secret node (shared, identity-stable, across every
	// participant's copy of the expression tree) it supplies a value for.
	Inputs map[*expr.Secret]field.Element

	state  State
	shares map[expr.ID]field.Share
}

// NewEngine constructs an Engine ready to Run. modulus, transport and d
// must be the same instances (or equivalent configuration) shared by
// every participant in the session.
func NewEngine(id party.ID, spec Spec, modulus *field.Modulus, transport bus.Bus, d *dealer.Dealer, inputs map[*expr.Secret]field.Element) *Engine {
	return &Engine{
		ID:      id,
		Spec:    spec,
		Modulus: modulus,
		Bus:     transport,
		Dealer:  d,
		Inputs:  inputs,
		state:   Init,
		shares:  make(map[expr.ID]field.Share),
	}
}

// State returns this engine's current position in the session lifecycle.
func (e *Engine) State() State {
	return e.state
}

// Run executes the full protocol for this participant and returns the
// reconstructed cleartext result (spec.md §4.4.4). Every participant
// that completes Run returns the same value.
func (e *Engine) Run(ctx context.Context) (field.Element, error) {
	if err := e.Spec.Validate(); err != nil {
		return field.Element{}, Errorf(ProtocolViolation, "invalid protocol spec: %w", err)
	}
	if e.Spec.Participants.Index(e.ID) < 0 {
		return field.Element{}, Errorf(ProtocolViolation, "participant %s is not in the protocol specification", e.ID)
	}
	if err := e.verifySessionAgreement(ctx); err != nil {
		return field.Element{}, err
	}

	e.state = Advance(e.state) // -> Sharing
	if err := e.shareSecrets(ctx); err != nil {
		return field.Element{}, err
	}
	if err := e.Bus.Publish(ctx, wire.ReadyLabel(e.ID), []byte{1}); err != nil {
		return field.Element{}, Errorf(BusFailure, "publish ready marker: %w", err)
	}

	e.state = Advance(e.state) // -> Barrier
	if err := e.awaitBarrier(ctx); err != nil {
		return field.Element{}, err
	}

	e.state = Advance(e.state) // -> Evaluating
	final, err := e.Evaluate(ctx, e.Spec.Root)
	if err != nil {
		return field.Element{}, err
	}
	if _, ok := e.Spec.Root.(*expr.Scalar); ok && !e.Spec.IsAggregator(e.ID) {
		// A bare Scalar root has no enclosing Add/Sub branch to gate it, so
		// only the aggregator contributes its value to the final sum.
		final = field.NewShare(e.Modulus.Zero())
	}

	e.state = Advance(e.state) // -> Finalizing
	result, err := e.finalize(ctx, final)
	if err != nil {
		return field.Element{}, err
	}

	e.state = Advance(e.state) // -> Done
	return result, nil
}

// verifySessionAgreement publishes this participant's SessionID and checks
// every peer's published SessionID matches, catching a mismatched or stale
// Spec before any shares are distributed (invariant I2).
func (e *Engine) verifySessionAgreement(ctx context.Context) error {
	mine := e.Spec.SessionID()
	data, err := wire.Marshal(mine)
	if err != nil {
		return Errorf(BusFailure, "encode session id: %w", err)
	}
	if err := e.Bus.Publish(ctx, wire.SessionLabel(e.ID), data); err != nil {
		return Errorf(BusFailure, "publish session id: %w", err)
	}

	for _, peer := range e.Spec.Participants {
		if peer == e.ID {
			continue
		}
		peerData, err := e.Bus.ReadPublic(ctx, peer, wire.SessionLabel(peer))
		if err != nil {
			return Errorf(BusFailure, "await session id from %s: %w", peer, err)
		}
		peerID, err := wire.Unmarshal(peerData)
		if err != nil {
			return Errorf(BusFailure, "decode session id from %s: %w", peer, err)
		}
		if !bytes.Equal(peerID, mine) {
			return Errorf(ProtocolViolation, "participant %s computed a different session id: specs diverge", peer)
		}
	}
	return nil
}

// shareSecrets implements spec.md §4.4.2: for every Secret this
// participant owns, split its value into n shares, keep this
// participant's own share locally, and send every other share to its
// recipient under a label derived from the Secret's identity.
func (e *Engine) shareSecrets(ctx context.Context) error {
	n := len(e.Spec.Participants)
	myIndex := e.Spec.Participants.Index(e.ID)

	for secret, value := range e.Inputs {
		shares, err := e.Modulus.Share(value, n)
		if err != nil {
			return Errorf(BusFailure, "share secret %s: %w", secret.NodeID(), err)
		}
		e.shares[secret.NodeID()] = shares[myIndex]

		for j, peer := range e.Spec.Participants {
			if j == myIndex {
				continue
			}
			data, err := wire.Marshal(shares[j].Element().Bytes())
			if err != nil {
				return Errorf(BusFailure, "encode share of %s: %w", secret.NodeID(), err)
			}
			if err := e.Bus.SendPrivate(ctx, peer, wire.SecretLabel(secret.NodeID()), data); err != nil {
				return Errorf(BusFailure, "send share of %s to %s: %w", secret.NodeID(), peer, err)
			}
		}
	}
	return nil
}

// awaitBarrier blocks until every other participant has published its
// ready marker, per spec.md §4.4.2: this prevents Evaluate's secret
// fetches from racing SendPrivate.
func (e *Engine) awaitBarrier(ctx context.Context) error {
	for _, peer := range e.Spec.Participants {
		if peer == e.ID {
			continue
		}
		if _, err := e.Bus.ReadPublic(ctx, peer, wire.ReadyLabel(peer)); err != nil {
			return Errorf(BusFailure, "await ready marker from %s: %w", peer, err)
		}
	}
	return nil
}

// Evaluate is the post-order tree walk of spec.md §4.4.3: it returns this
// participant's additive Share of node's cleartext value.
func (e *Engine) Evaluate(ctx context.Context, node expr.Expression) (field.Share, error) {
	switch n := node.(type) {
	case *expr.Scalar:
		// A scalar's value is public and identical at every participant
		// (the "sound rule" from spec.md §9): it always evaluates to its
		// full value, never split into shares. The enclosing Add/Sub
		// branch below is what restricts a public constant to being
		// added exactly once across all parties.
		return field.NewShare(n.Value), nil
	case *expr.Secret:
		return e.secretShare(ctx, n)
	case *expr.AddOp:
		return e.evalAddSub(ctx, &n.Op, true)
	case *expr.SubOp:
		return e.evalAddSub(ctx, &n.Op, false)
	case *expr.MultOp:
		return e.evalMult(ctx, n)
	default:
		return field.Share{}, Errorf(TypeMismatch, "unrecognized expression node %T", node)
	}
}

// secretShare returns n's Share, fetching it from the private bus on
// first access and caching it thereafter (spec.md §4.4.3, "Secret(s)").
func (e *Engine) secretShare(ctx context.Context, n *expr.Secret) (field.Share, error) {
	if s, ok := e.shares[n.NodeID()]; ok {
		return s, nil
	}
	data, err := e.Bus.ReadPrivate(ctx, wire.SecretLabel(n.NodeID()))
	if err != nil {
		return field.Share{}, Errorf(UnboundSecret, "secret %s has no deliverable share for %s: %w", n.NodeID(), e.ID, err)
	}
	raw, err := wire.Unmarshal(data)
	if err != nil {
		return field.Share{}, Errorf(BusFailure, "decode share of secret %s: %w", n.NodeID(), err)
	}
	share := field.NewShare(e.Modulus.FromBytes(raw))
	e.shares[n.NodeID()] = share
	return share, nil
}

// evalAddSub implements spec.md §4.4.3's AddOp/SubOp case. add selects
// between + and -.
func (e *Engine) evalAddSub(ctx context.Context, op *expr.Op, add bool) (field.Share, error) {
	x, err := e.Evaluate(ctx, op.A)
	if err != nil {
		return field.Share{}, err
	}
	y, err := e.Evaluate(ctx, op.B)
	if err != nil {
		return field.Share{}, err
	}

	combine := func(x, y field.Share) field.Share {
		if add {
			return x.Add(y)
		}
		return x.Sub(y)
	}

	kind := op.ScalarOperand()
	if kind == expr.None || e.Spec.IsAggregator(e.ID) {
		return combine(x, y), nil
	}
	switch kind {
	case expr.Both:
		return field.NewShare(e.Modulus.Zero()), nil
	case expr.LeftOnly:
		// the secret operand is on the right; non-aggregators pass it
		// through untouched.
		return y, nil
	case expr.RightOnly:
		return x, nil
	default:
		return field.Share{}, Errorf(TypeMismatch, "unrecognized scalar operand kind %v", kind)
	}
}

// evalMult implements spec.md §4.4.3's MultOp case: local scalar
// multiplication when either operand is public, otherwise the Beaver
// protocol.
func (e *Engine) evalMult(ctx context.Context, node *expr.MultOp) (field.Share, error) {
	x, err := e.Evaluate(ctx, node.A)
	if err != nil {
		return field.Share{}, err
	}
	y, err := e.Evaluate(ctx, node.B)
	if err != nil {
		return field.Share{}, err
	}

	if node.ScalarOperand() != expr.None {
		// [v*k]_i = k*[v]_i, purely local; the scalar side is already a
		// full value at every participant (see the Scalar case above).
		return field.NewShare(x.Element().Mul(y.Element())), nil
	}
	return e.beaverMultiply(ctx, node, x, y)
}

// beaverMultiply implements the Beaver-triplet multiplication protocol of
// spec.md §4.4.3: mask both secret operands against a fresh triplet,
// reveal the masks publicly, and locally recombine into a share of the
// product, with the aggregator alone contributing the public −d·e
// correction term.
func (e *Engine) beaverMultiply(ctx context.Context, node *expr.MultOp, x, y field.Share) (field.Share, error) {
	opID := node.NodeID()

	a, b, c, err := e.Dealer.Retrieve(string(e.ID), opID)
	if err != nil {
		return field.Share{}, Errorf(DealerFailure, "retrieve beaver triplet for %s: %w", opID, err)
	}

	dShare := x.Sub(a)
	eShare := y.Sub(b)

	if err := e.publish(ctx, wire.BeaverMaskLabel(opID, "d"), dShare.Element()); err != nil {
		return field.Share{}, err
	}
	if err := e.publish(ctx, wire.BeaverMaskLabel(opID, "e"), eShare.Element()); err != nil {
		return field.Share{}, err
	}

	dSum := dShare.Element()
	eSum := eShare.Element()
	for _, peer := range e.Spec.Participants {
		if peer == e.ID {
			continue
		}
		peerD, err := e.readPublicElement(ctx, peer, wire.BeaverMaskLabel(opID, "d"))
		if err != nil {
			return field.Share{}, err
		}
		peerE, err := e.readPublicElement(ctx, peer, wire.BeaverMaskLabel(opID, "e"))
		if err != nil {
			return field.Share{}, err
		}
		dSum = dSum.Add(peerD)
		eSum = eSum.Add(peerE)
	}

	z := c.Add(x.MulPublic(eSum)).Add(y.MulPublic(dSum))
	if e.Spec.IsAggregator(e.ID) {
		z = z.Sub(field.NewShare(dSum.Mul(eSum)))
	}
	return z, nil
}

// finalize implements spec.md §4.4.4: publish this participant's final
// share, collect every peer's, and reconstruct the cleartext result.
func (e *Engine) finalize(ctx context.Context, mine field.Share) (field.Element, error) {
	if err := e.publish(ctx, wire.FinalLabel(e.ID), mine.Element()); err != nil {
		return field.Element{}, err
	}

	shares := []field.Share{mine}
	for _, peer := range e.Spec.Participants {
		if peer == e.ID {
			continue
		}
		elem, err := e.readPublicElement(ctx, peer, wire.FinalLabel(peer))
		if err != nil {
			return field.Element{}, err
		}
		shares = append(shares, field.NewShare(elem))
	}
	return field.Reconstruct(shares), nil
}

func (e *Engine) publish(ctx context.Context, label string, v field.Element) error {
	data, err := wire.Marshal(v.Bytes())
	if err != nil {
		return Errorf(BusFailure, "encode value for %s: %w", label, err)
	}
	if err := e.Bus.Publish(ctx, label, data); err != nil {
		return Errorf(BusFailure, "publish %s: %w", label, err)
	}
	return nil
}

func (e *Engine) readPublicElement(ctx context.Context, from party.ID, label string) (field.Element, error) {
	data, err := e.Bus.ReadPublic(ctx, from, label)
	if err != nil {
		return field.Element{}, Errorf(BusFailure, "read public %s from %s: %w", label, from, err)
	}
	raw, err := wire.Unmarshal(data)
	if err != nil {
		return field.Element{}, Errorf(BusFailure, "decode %s from %s: %w", label, from, err)
	}
	return e.Modulus.FromBytes(raw), nil
}
