package expr

// Secrets returns every distinct Secret node reachable from root, in
// first-encountered order. The engine does not call it: a Secret with no
// owner surfaces only as an UnboundSecret error when its share is read.
func Secrets(root Expression) []*Secret {
	seen := make(map[ID]bool)
	var out []*Secret
	var walk func(Expression)
	walk = func(e Expression) {
		switch n := e.(type) {
		case *Scalar:
			return
		case *Secret:
			if !seen[n.NodeID()] {
				seen[n.NodeID()] = true
				out = append(out, n)
			}
		case *AddOp:
			walk(n.A)
			walk(n.B)
		case *SubOp:
			walk(n.A)
			walk(n.B)
		case *MultOp:
			walk(n.A)
			walk(n.B)
		}
	}
	walk(root)
	return out
}
