package ast

import (
	pp "github.com/vilterp/factlog/pkg/prettyprint"
)

// Node is one of *Atom, *Variable, *Fact, *Rule, *And, *Or, *Neg, *Query.
// Trees are never shared; whoever receives a node owns it.
type Node interface {
	Format() pp.Doc
	String() string
	node()
}

// Atom

type Atom struct {
	Text string
}

var _ Node = &Atom{}

func NewAtom(text string) *Atom {
	return &Atom{Text: text}
}

func (a *Atom) Format() pp.Doc { return pp.Text(a.Text) }
func (a *Atom) String() string { return a.Format().String() }
func (*Atom) node()            {}

// Variable

type Variable struct {
	Text string
}

var _ Node = &Variable{}

func NewVariable(text string) *Variable {
	return &Variable{Text: text}
}

func (v *Variable) Format() pp.Doc { return pp.Text(v.Text) }
func (v *Variable) String() string { return v.Format().String() }
func (*Variable) node()            {}

// Fact is a predicate application. Args holds *Atom and *Variable nodes in
// position order; a zero-arity fact has no args.
type Fact struct {
	Name string
	Args []Node
}

var _ Node = &Fact{}

func NewFact(name string, args ...Node) *Fact {
	return &Fact{
		Name: name,
		Args: args,
	}
}

func (f *Fact) Arity() int {
	return len(f.Args)
}

func (f *Fact) Format() pp.Doc {
	if len(f.Args) == 0 {
		return pp.Text(f.Name)
	}
	argDocs := make([]pp.Doc, len(f.Args))
	for idx, arg := range f.Args {
		argDocs[idx] = arg.Format()
	}
	return pp.Seq(pp.Text(f.Name), pp.Parens(pp.Join(argDocs, pp.CommaSpace)))
}

func (f *Fact) String() string { return f.Format().String() }
func (*Fact) node()            {}

// Rule: Head holds if Body does. Rules are stored, never evaluated.
type Rule struct {
	Head *Fact
	Body Node
}

var _ Node = &Rule{}

func NewRule(head *Fact, body Node) *Rule {
	return &Rule{
		Head: head,
		Body: body,
	}
}

func (r *Rule) Format() pp.Doc {
	return pp.Seq(r.Head.Format(), pp.Text(" :- "), r.Body.Format(), pp.Text("."))
}

func (r *Rule) String() string { return r.Format().String() }
func (*Rule) node()            {}

// And

type And struct {
	Left, Right Node
}

var _ Node = &And{}

func NewAnd(l, r Node) *And {
	return &And{Left: l, Right: r}
}

func (a *And) Format() pp.Doc { return pp.Infix(a.Left.Format(), "∧", a.Right.Format()) }
func (a *And) String() string { return a.Format().String() }
func (*And) node()            {}

// Or

type Or struct {
	Left, Right Node
}

var _ Node = &Or{}

func NewOr(l, r Node) *Or {
	return &Or{Left: l, Right: r}
}

func (o *Or) Format() pp.Doc { return pp.Infix(o.Left.Format(), "∨", o.Right.Format()) }
func (o *Or) String() string { return o.Format().String() }
func (*Or) node()            {}

// Neg

type Neg struct {
	Operand Node
}

var _ Node = &Neg{}

func NewNeg(operand Node) *Neg {
	return &Neg{Operand: operand}
}

func (n *Neg) Format() pp.Doc { return pp.Seq(pp.Text("¬"), n.Operand.Format()) }
func (n *Neg) String() string { return n.Format().String() }
func (*Neg) node()            {}

// Query asks whether some stored fact matches Fact.
type Query struct {
	Fact *Fact
}

var _ Node = &Query{}

func NewQuery(fact *Fact) *Query {
	return &Query{Fact: fact}
}

func (q *Query) Format() pp.Doc {
	return pp.Seq(pp.Text("?"), q.Fact.Format(), pp.Text("."))
}

func (q *Query) String() string { return q.Format().String() }
func (*Query) node()            {}
