package factlog

import (
	"fmt"
	"strings"

	"github.com/vilterp/factlog/pkg/ast"
	"github.com/vilterp/factlog/pkg/store"
)

type ResultKind int

const (
	Asserted ResultKind = iota
	RuleStored
	Answered
)

func (k ResultKind) String() string {
	switch k {
	case Asserted:
		return "asserted"
	case RuleStored:
		return "rule_stored"
	case Answered:
		return "answered"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the outcome of one statement. Query and Match are only set for
// answered queries; Match is nil when nothing matched.
type Result struct {
	Kind      ResultKind
	Statement ast.Node
	Query     *store.StoredFact
	Match     *store.StoredFact
}

func (r *Result) Satisfiable() bool {
	return r.Match != nil
}

func (r *Result) String() string {
	switch r.Kind {
	case Asserted:
		return "ok"
	case RuleStored:
		return "rule stored"
	case Answered:
		if r.Match == nil {
			return "not satisfiable"
		}
		return fmt.Sprintf("satisfiable, bound to %s", r.Match)
	default:
		return r.Kind.String()
	}
}

const helpText = `statements end with '.'
  likes(mary, tom).          assert a fact
  ?likes(mary, X).           ask whether a matching fact exists
  happy(X) :- rich(X) ∧ ¬sad(X) ∨ lucky.
                             store a rule (∧ and, ∨ or, ¬ not)
\h	help
\f	list facts
\r	list rules
exit	quit`

// Command runs a backslash command. ok is false if line isn't one.
func (s *Session) Command(line string) (out string, ok bool) {
	switch strings.TrimSpace(line) {
	case `\h`:
		return helpText, true
	case `\f`:
		if s.store.Len() == 0 {
			return "no facts", true
		}
		return s.store.Format().String(), true
	case `\r`:
		if len(s.rules) == 0 {
			return "no rules", true
		}
		return s.FormatRules().String(), true
	default:
		return "", false
	}
}
