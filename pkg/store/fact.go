package store

import (
	"fmt"

	"github.com/vilterp/factlog/pkg/ast"
	pp "github.com/vilterp/factlog/pkg/prettyprint"
)

type TermKind byte

const (
	AtomTerm TermKind = iota
	VariableTerm
)

// Term is one argument of a stored fact.
type Term struct {
	Kind TermKind `json:"kind"`
	Text string   `json:"text"`
}

func Atom(text string) Term {
	return Term{Kind: AtomTerm, Text: text}
}

func Variable(text string) Term {
	return Term{Kind: VariableTerm, Text: text}
}

func (t Term) IsVariable() bool {
	return t.Kind == VariableTerm
}

func (t Term) String() string {
	return t.Text
}

// StoredFact is a fact as held by the store. It is never modified after it
// has been added.
type StoredFact struct {
	Predicate string `json:"predicate"`
	Args      []Term `json:"args"`
}

func NewStoredFact(predicate string, args ...Term) *StoredFact {
	return &StoredFact{
		Predicate: predicate,
		Args:      args,
	}
}

func (sf *StoredFact) Arity() int {
	return len(sf.Args)
}

func (sf *StoredFact) Format() pp.Doc {
	if len(sf.Args) == 0 {
		return pp.Text(sf.Predicate)
	}
	argDocs := make([]pp.Doc, len(sf.Args))
	for idx, arg := range sf.Args {
		argDocs[idx] = pp.Text(arg.Text)
	}
	return pp.Seq(pp.Text(sf.Predicate), pp.Parens(pp.Join(argDocs, pp.CommaSpace)))
}

func (sf *StoredFact) String() string {
	return sf.Format().String()
}

// Matches reports whether candidate and query have the same arity and every
// pair of arguments is compatible. Atoms must have equal text; a variable on
// either side matches anything. Variables are never bound, so two uses of
// the same variable name are not related.
func Matches(candidate, query *StoredFact) bool {
	if candidate.Arity() != query.Arity() {
		return false
	}
	for idx, c := range candidate.Args {
		q := query.Args[idx]
		if c.IsVariable() || q.IsVariable() {
			continue
		}
		if c.Text != q.Text {
			return false
		}
	}
	return true
}

// FromFact converts a parsed fact. Every argument must be an atom or a
// variable.
func FromFact(node ast.Node) (*StoredFact, error) {
	return convertFact("add fact", node)
}

func convertFact(op string, node ast.Node) (*StoredFact, error) {
	fact, ok := node.(*ast.Fact)
	if !ok || fact == nil {
		return nil, &StoreError{Op: op, Reason: fmt.Sprintf("expected a fact; got %T", node)}
	}
	var args []Term
	for idx, arg := range fact.Args {
		switch arg := arg.(type) {
		case *ast.Atom:
			args = append(args, Atom(arg.Text))
		case *ast.Variable:
			args = append(args, Variable(arg.Text))
		default:
			return nil, &StoreError{
				Op:     op,
				Reason: fmt.Sprintf("not a valid argument at position %d: %T", idx, arg),
			}
		}
	}
	return NewStoredFact(fact.Name, args...), nil
}
