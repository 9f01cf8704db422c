package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vilterp/factlog/pkg/ast"
	"github.com/vilterp/factlog/pkg/parse"
)

func mustParse(t *testing.T, input string) ast.Node {
	t.Helper()
	node, err := parse.Statement(input)
	require.NoError(t, err)
	return node
}

func newStore(t *testing.T, opts Options) *Store {
	t.Helper()
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func TestAddFact(t *testing.T) {
	s := newStore(t, Options{})
	require.NoError(t, s.AddFact(mustParse(t, "likes(mary,tom).")))

	facts := s.Facts("likes")
	require.Len(t, facts, 1)
	require.Equal(t, NewStoredFact("likes", Atom("mary"), Atom("tom")), facts[0])
	require.Equal(t, 2, facts[0].Arity())
	require.Equal(t, "likes(mary, tom)", facts[0].String())
}

func TestAddFactErrors(t *testing.T) {
	s := newStore(t, Options{})
	cases := []ast.Node{
		ast.NewQuery(ast.NewFact("p")),
		ast.NewAtom("p"),
		ast.NewFact("p", ast.NewFact("q")),
		ast.NewFact("p", ast.NewAtom("a"), ast.NewNeg(ast.NewFact("q"))),
		nil,
	}
	for idx, node := range cases {
		err := s.AddFact(node)
		if _, ok := err.(*StoreError); !ok {
			t.Fatalf("case %d: expected *StoreError; got %#v", idx, err)
		}
	}
	require.Equal(t, 0, s.Len())
}

func TestQuery(t *testing.T) {
	s := newStore(t, Options{})
	for _, stmt := range []string{
		"likes(mary,tom).",
		"likes(tom,jerry).",
		"likes(X,cheese).",
		"rains.",
	} {
		require.NoError(t, s.AddFact(mustParse(t, stmt)))
	}

	cases := []struct {
		query string
		match string // empty for no match
	}{
		{"?likes(mary,X).", "likes(mary, tom)"},
		{"?likes(A,B).", "likes(mary, tom)"},
		{"?likes(tom,X).", "likes(tom, jerry)"},
		{"?likes(jerry,cheese).", "likes(X, cheese)"},
		{"?likes(mary,jerry).", ""},
		{"?likes(mary).", ""},
		{"?hates(mary,tom).", ""},
		{"?rains.", "rains"},
		{"?rains(X).", ""},
	}

	for idx, testCase := range cases {
		require.NoError(t, s.AddQuery(mustParse(t, testCase.query)))
		require.Equal(t, 1, s.PendingQueries())
		query, ok := s.PopQuery()
		require.True(t, ok)
		require.Equal(t, 0, s.PendingQueries())

		match := s.QueryFact(query)
		if testCase.match == "" {
			if match != nil {
				t.Fatalf("case %d: %s: expected no match; got %s", idx, testCase.query, match)
			}
			continue
		}
		if match == nil {
			t.Fatalf("case %d: %s: expected %s; got no match", idx, testCase.query, testCase.match)
		}
		if match.String() != testCase.match {
			t.Fatalf("case %d: %s: expected %s; got %s", idx, testCase.query, testCase.match, match)
		}
	}
}

func TestQueryStack(t *testing.T) {
	s := newStore(t, Options{})
	_, ok := s.PopQuery()
	require.False(t, ok)

	require.NoError(t, s.AddQuery(mustParse(t, "?a.")))
	require.NoError(t, s.AddQuery(mustParse(t, "?b.")))
	last, _ := s.PopQuery()
	require.Equal(t, "b", last.Predicate)
	first, _ := s.PopQuery()
	require.Equal(t, "a", first.Predicate)

	err := s.AddQuery(mustParse(t, "a."))
	_, isStoreErr := err.(*StoreError)
	require.True(t, isStoreErr)
	err = s.AddQuery(&ast.Query{Fact: ast.NewFact("p", ast.NewNeg(ast.NewFact("q")))})
	_, isStoreErr = err.(*StoreError)
	require.True(t, isStoreErr)
	require.Equal(t, 0, s.PendingQueries())
}

func TestMatches(t *testing.T) {
	cases := []struct {
		candidate, query *StoredFact
		matches          bool
	}{
		{NewStoredFact("p", Atom("a")), NewStoredFact("p", Atom("a")), true},
		{NewStoredFact("p", Atom("a")), NewStoredFact("p", Atom("b")), false},
		{NewStoredFact("p", Atom("a")), NewStoredFact("p", Variable("X")), true},
		{NewStoredFact("p", Variable("X")), NewStoredFact("p", Atom("a")), true},
		{NewStoredFact("p", Variable("X")), NewStoredFact("p", Variable("Y")), true},
		// no binding: X is not required to be the same on both positions
		{NewStoredFact("p", Atom("a"), Atom("b")), NewStoredFact("p", Variable("X"), Variable("X")), true},
		{NewStoredFact("p", Atom("a")), NewStoredFact("p", Atom("a"), Atom("b")), false},
		{NewStoredFact("p"), NewStoredFact("p"), true},
	}
	for idx, testCase := range cases {
		if actual := Matches(testCase.candidate, testCase.query); actual != testCase.matches {
			t.Fatalf("case %d: Matches(%s, %s): expected %v", idx, testCase.candidate, testCase.query, testCase.matches)
		}
		// symmetric for these shapes
		if actual := Matches(testCase.query, testCase.candidate); actual != testCase.matches {
			t.Fatalf("case %d: Matches(%s, %s): expected %v", idx, testCase.query, testCase.candidate, testCase.matches)
		}
	}
}

func TestReflexive(t *testing.T) {
	s := newStore(t, Options{})
	for _, stmt := range []string{"p(a, X, b).", "q.", "r(Y).", "p(c, d, e)."} {
		node := mustParse(t, stmt)
		require.NoError(t, s.AddFact(node))
		sf, err := FromFact(node)
		require.NoError(t, err)
		match := s.QueryFact(sf)
		require.NotNil(t, match)
		require.True(t, Matches(match, sf))
	}
}

func TestArity(t *testing.T) {
	permissive := newStore(t, Options{})
	require.NoError(t, permissive.AddFact(mustParse(t, "p(a).")))
	require.NoError(t, permissive.AddFact(mustParse(t, "p(a, b).")))
	require.Len(t, permissive.Facts("p"), 2)

	strict := newStore(t, Options{StrictArity: true})
	require.NoError(t, strict.AddFact(mustParse(t, "p(a).")))
	err := strict.AddFact(mustParse(t, "p(a, b)."))
	storeErr, ok := err.(*StoreError)
	require.True(t, ok)
	require.Contains(t, storeErr.Error(), "size of arguments does not match")
	require.NoError(t, strict.AddFact(mustParse(t, "p(b).")))
	require.NoError(t, strict.AddFact(mustParse(t, "q(a, b).")))
	require.Equal(t, 3, strict.Len())
}

func TestListing(t *testing.T) {
	s := newStore(t, Options{})
	for _, stmt := range []string{"likes(mary,tom).", "rains.", "likes(tom,X)."} {
		require.NoError(t, s.AddFact(mustParse(t, stmt)))
	}
	require.Equal(t, []string{"likes", "rains"}, s.Predicates())
	require.Equal(t, `likes:
  likes(mary, tom).
  likes(tom, X).
rains:
  rains.`, s.Format().String())
}

func TestJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.db")

	journal, err := OpenBoltJournal(path)
	require.NoError(t, err)
	s := newStore(t, Options{Journal: journal})
	for _, stmt := range []string{"likes(mary,tom).", "rains.", "likes(tom,X)."} {
		require.NoError(t, s.AddFact(mustParse(t, stmt)))
	}
	n, err := journal.Len()
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, s.Close())

	reopened, err := OpenBoltJournal(path)
	require.NoError(t, err)
	restored := newStore(t, Options{Journal: reopened})
	defer restored.Close()

	require.Equal(t, 3, restored.Len())
	require.Equal(t, s.Facts("likes"), restored.Facts("likes"))
	require.Equal(t, s.Facts("rains"), restored.Facts("rains"))

	match := restored.QueryFact(NewStoredFact("likes", Atom("tom"), Atom("jerry")))
	require.NotNil(t, match)
	require.Equal(t, "likes(tom, X)", match.String())
}

func TestJournalReopenStrict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facts.db")

	journal, err := OpenBoltJournal(path)
	require.NoError(t, err)
	s := newStore(t, Options{Journal: journal})
	require.NoError(t, s.AddFact(mustParse(t, "p(a).")))
	require.NoError(t, s.AddFact(mustParse(t, "p(a, b).")))
	require.NoError(t, s.Close())

	// facts written under the permissive setting still load
	reopened, err := OpenBoltJournal(path)
	require.NoError(t, err)
	strict := newStore(t, Options{StrictArity: true, Journal: reopened})
	defer strict.Close()
	require.Equal(t, 2, strict.Len())

	// new facts are checked against the first stored arity
	_, ok := strict.AddFact(mustParse(t, "p(a, b, c).")).(*StoreError)
	require.True(t, ok)
	require.NoError(t, strict.AddFact(mustParse(t, "p(c).")))
	require.Equal(t, 3, strict.Len())
}
