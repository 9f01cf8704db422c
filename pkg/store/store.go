package store

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"github.com/vilterp/factlog/pkg/ast"
	pp "github.com/vilterp/factlog/pkg/prettyprint"
)

type Options struct {
	// StrictArity rejects facts whose arity differs from the facts already
	// stored under the same predicate name.
	StrictArity bool
	// Journal, if set, records every stored fact and is replayed by New.
	Journal Journal
}

// Store maps predicate names to their facts, in insertion order. It is not
// safe for concurrent use.
type Store struct {
	opts    Options
	facts   map[string][]*StoredFact
	count   int
	queries []*StoredFact
}

func New(opts Options) (*Store, error) {
	s := &Store{
		opts:  opts,
		facts: map[string][]*StoredFact{},
	}
	if opts.Journal == nil {
		return s, nil
	}
	if err := opts.Journal.Replay(s.insert); err != nil {
		return nil, errors.Wrap(err, "replaying journal")
	}
	return s, nil
}

// AddFact stores a parsed *ast.Fact.
func (s *Store) AddFact(node ast.Node) error {
	sf, err := FromFact(node)
	if err != nil {
		return err
	}
	return s.Insert(sf)
}

// Insert stores an already converted fact.
func (s *Store) Insert(sf *StoredFact) error {
	if err := s.checkArity(sf); err != nil {
		return err
	}
	if s.opts.Journal != nil {
		if err := s.opts.Journal.Append(sf); err != nil {
			return errors.Wrap(err, "writing journal")
		}
	}
	return s.insert(sf)
}

// insert stores sf without checking it. Replayed facts were accepted when
// they were first written, whatever the arity setting is now.
func (s *Store) insert(sf *StoredFact) error {
	s.facts[sf.Predicate] = append(s.facts[sf.Predicate], sf)
	s.count++
	return nil
}

func (s *Store) checkArity(sf *StoredFact) error {
	if !s.opts.StrictArity {
		return nil
	}
	existing := s.facts[sf.Predicate]
	if len(existing) == 0 || existing[0].Arity() == sf.Arity() {
		return nil
	}
	mismatch := &arityMismatch{Predicate: sf.Predicate, Wanted: existing[0].Arity(), Got: sf.Arity()}
	return &StoreError{Op: "add fact", Reason: mismatch.Error()}
}

// AddQuery converts a parsed *ast.Query and pushes it on the pending query
// stack.
func (s *Store) AddQuery(node ast.Node) error {
	query, ok := node.(*ast.Query)
	if !ok || query == nil {
		return &StoreError{Op: "add query", Reason: "expected a query; got " + typeName(node)}
	}
	sf, err := convertFact("add query", query.Fact)
	if err != nil {
		return err
	}
	s.queries = append(s.queries, sf)
	return nil
}

// PopQuery takes the most recently added query off the stack.
func (s *Store) PopQuery() (*StoredFact, bool) {
	if len(s.queries) == 0 {
		return nil, false
	}
	last := s.queries[len(s.queries)-1]
	s.queries = s.queries[:len(s.queries)-1]
	return last, true
}

func (s *Store) PendingQueries() int {
	return len(s.queries)
}

// QueryFact returns the first fact, in insertion order, that matches query;
// nil if there is none.
func (s *Store) QueryFact(query *StoredFact) *StoredFact {
	for _, candidate := range s.facts[query.Predicate] {
		if Matches(candidate, query) {
			return candidate
		}
	}
	return nil
}

// Predicates returns every predicate name that has facts, sorted.
func (s *Store) Predicates() []string {
	names := make([]string, 0, len(s.facts))
	for name := range s.facts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Facts returns the facts stored under name, in insertion order.
func (s *Store) Facts(name string) []*StoredFact {
	return s.facts[name]
}

// Len is the total number of stored facts.
func (s *Store) Len() int {
	return s.count
}

// Format lists all facts grouped by predicate.
func (s *Store) Format() pp.Doc {
	var groups []pp.Doc
	for _, name := range s.Predicates() {
		facts := s.facts[name]
		lines := make([]pp.Doc, len(facts))
		for idx, fact := range facts {
			lines[idx] = pp.Seq(fact.Format(), pp.Text("."))
		}
		groups = append(groups, pp.Seq(
			pp.Textf("%s:", name), pp.Newline,
			pp.Nest(2, pp.Lines(lines)),
		))
	}
	return pp.Lines(groups)
}

func (s *Store) Close() error {
	if s.opts.Journal == nil {
		return nil
	}
	return s.opts.Journal.Close()
}

func typeName(node ast.Node) string {
	if node == nil {
		return "nothing"
	}
	return fmt.Sprintf("%T", node)
}
