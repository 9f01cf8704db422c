package ast

// Equal reports whether two trees have the same shape and text.
func Equal(a, b Node) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case *Atom:
		b, ok := b.(*Atom)
		return ok && a.Text == b.Text
	case *Variable:
		b, ok := b.(*Variable)
		return ok && a.Text == b.Text
	case *Fact:
		b, ok := b.(*Fact)
		if !ok || b == nil || a == nil {
			return ok && a == b
		}
		if a.Name != b.Name || len(a.Args) != len(b.Args) {
			return false
		}
		for idx := range a.Args {
			if !Equal(a.Args[idx], b.Args[idx]) {
				return false
			}
		}
		return true
	case *Rule:
		b, ok := b.(*Rule)
		return ok && Equal(a.Head, b.Head) && Equal(a.Body, b.Body)
	case *And:
		b, ok := b.(*And)
		return ok && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case *Or:
		b, ok := b.(*Or)
		return ok && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case *Neg:
		b, ok := b.(*Neg)
		return ok && Equal(a.Operand, b.Operand)
	case *Query:
		b, ok := b.(*Query)
		return ok && Equal(a.Fact, b.Fact)
	default:
		return false
	}
}

// Statement renders a parsed statement so that it can be fed back to the
// lexer; bare facts get their terminator.
func Statement(n Node) string {
	if f, ok := n.(*Fact); ok {
		return f.String() + "."
	}
	return n.String()
}
