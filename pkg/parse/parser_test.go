package parse

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vilterp/factlog/pkg/ast"
	"github.com/vilterp/factlog/pkg/lexer"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	a = ast.NewAtom
	v = ast.NewVariable
	f = ast.NewFact
)

func TestParse(t *testing.T) {
	cases := []struct {
		in  string
		out []ast.Node
	}{
		{
			"likes(mary,tom).",
			[]ast.Node{f("likes", a("mary"), a("tom"))},
		},
		{
			"?likes(mary,X).",
			[]ast.Node{ast.NewQuery(f("likes", a("mary"), v("X")))},
		},
		{
			"rains.",
			[]ast.Node{f("rains")},
		},
		{
			"p(a). ?p(B). q.",
			[]ast.Node{f("p", a("a")), ast.NewQuery(f("p", v("B"))), f("q")},
		},
		{
			"happy(X) :- rich(X) ∧ ¬sad(X) ∨ lucky.",
			[]ast.Node{ast.NewRule(
				f("happy", v("X")),
				ast.NewOr(
					ast.NewAnd(f("rich", v("X")), ast.NewNeg(f("sad", v("X")))),
					f("lucky"),
				),
			)},
		},
		{
			"a :- ¬¬b.",
			[]ast.Node{ast.NewRule(f("a"), ast.NewNeg(ast.NewNeg(f("b"))))},
		},
		{
			"a :- ¬(b ∨ c) ∧ d.",
			[]ast.Node{ast.NewRule(f("a"), ast.NewAnd(ast.NewNeg(ast.NewOr(f("b"), f("c"))), f("d")))},
		},
		{
			"a :- b ∨ c ∨ d.",
			[]ast.Node{ast.NewRule(f("a"), ast.NewOr(ast.NewOr(f("b"), f("c")), f("d")))},
		},
		{
			"a :- b ∧ (c ∨ d).",
			[]ast.Node{ast.NewRule(f("a"), ast.NewAnd(f("b"), ast.NewOr(f("c"), f("d"))))},
		},
		// names that don't start lowercase are variables
		{
			"p(Ωmega, ωmega, Tom).",
			[]ast.Node{f("p", v("Ωmega"), a("ωmega"), v("Tom"))},
		},
	}

	for idx, testCase := range cases {
		lex := lexer.NewLexer(lexer.Lenient)
		require.NoError(t, lex.Consume(testCase.in))
		p := NewParser()
		if err := p.Parse(lex); err != nil {
			t.Fatalf("case %d: %q: unexpected error: %v", idx, testCase.in, err)
		}
		actual := p.Drain()
		if diff := cmp.Diff(testCase.out, actual); diff != "" {
			t.Fatalf("case %d: %q: mismatch (-want +got):\n%s\ngot:\n%s", idx, testCase.in, diff, spew.Sdump(actual))
		}
		if Pending(lex) {
			t.Fatalf("case %d: tokens left over: %v", idx, lex.Tokens())
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		in     string
		reason string
		token  *lexer.Token
	}{
		{"likes(mary tom).", ReasonExpectedClose, tok(lexer.NameTok("tom"))},
		{"(a).", ReasonExpectedName, tok(lexer.Tok(lexer.Bopen))},
		{".", ReasonExpectedName, tok(lexer.Tok(lexer.EOL))},
		{"p(a) q.", ReasonExpectedTerminator, tok(lexer.NameTok("q"))},
		{"p : q.", ReasonExpectedTerminator, tok(lexer.Tok(lexer.Separator))},
		{"p().", ReasonExpectedArgument, tok(lexer.Tok(lexer.Bclose))},
		{"p(a,).", ReasonExpectedArgument, tok(lexer.Tok(lexer.Bclose))},
		{"a :- b c.", ReasonExpectedRuleEnd, tok(lexer.NameTok("c"))},
		{"a :- ∧ b.", ReasonUnexpectedToken, tok(lexer.Tok(lexer.And))},
		{"a :- (b ∧ c.", ReasonExpectedClose, tok(lexer.Tok(lexer.EOL))},
		{"?p :- q.", ReasonExpectedQueryEnd, tok(lexer.Tok(lexer.Arrow))},
		{"a :- .", ReasonUnexpectedToken, tok(lexer.Tok(lexer.EOL))},
		// no terminator yet, but nothing could make these valid
		{"p(a) q", ReasonExpectedTerminator, tok(lexer.NameTok("q"))},
		{")))", ReasonExpectedName, tok(lexer.Tok(lexer.Bclose))},
		{"likes(mary tom", ReasonExpectedClose, tok(lexer.NameTok("tom"))},
		{"ok. a :- ∨", ReasonUnexpectedToken, tok(lexer.Tok(lexer.Or))},
	}

	for idx, testCase := range cases {
		lex := lexer.NewLexer(lexer.Lenient)
		require.NoError(t, lex.Consume(testCase.in))
		p := NewParser()
		err := p.Parse(lex)
		parseErr, ok := err.(*ParseError)
		if !ok {
			t.Fatalf("case %d: %q: expected *ParseError; got %#v", idx, testCase.in, err)
		}
		require.Equal(t, testCase.reason, parseErr.Reason, "case %d", idx)
		require.Equal(t, testCase.token, parseErr.Token, "case %d", idx)
		require.False(t, parseErr.Incomplete(), "case %d", idx)

		// the caller can always recover by clearing both buffers
		lex.Reset()
		p.Reset()
		require.NoError(t, lex.Consume("ok."))
		require.NoError(t, p.Parse(lex))
		require.Len(t, p.Drain(), 1)
	}
}

func tok(t lexer.Token) *lexer.Token {
	return &t
}

func TestIncremental(t *testing.T) {
	lex := lexer.NewLexer(lexer.Lenient)
	p := NewParser()

	require.NoError(t, lex.Consume("likes(mary,"))
	require.NoError(t, p.Parse(lex))
	require.True(t, Pending(lex))
	require.Equal(t, 0, p.Len())

	require.NoError(t, lex.Consume("tom). likes(tom,"))
	require.NoError(t, p.Parse(lex))
	require.True(t, Pending(lex))
	require.Equal(t, 1, p.Len())

	require.NoError(t, lex.Consume("X)."))
	require.NoError(t, p.Parse(lex))
	require.False(t, Pending(lex))

	stmts := p.Drain()
	require.Len(t, stmts, 2)
	require.True(t, ast.Equal(f("likes", a("mary"), a("tom")), stmts[0]))
	require.True(t, ast.Equal(f("likes", a("tom"), v("X")), stmts[1]))
	require.Equal(t, 0, p.Len())
}

func TestFinishIncomplete(t *testing.T) {
	lex := lexer.NewLexer(lexer.Lenient)
	p := NewParser()
	require.NoError(t, lex.Consume("likes(mary,tom"))

	require.NoError(t, p.Parse(lex))
	err := p.Finish(lex)
	parseErr, ok := err.(*ParseError)
	require.True(t, ok, "expected *ParseError; got %#v", err)
	require.True(t, parseErr.Incomplete())
	require.Equal(t, ReasonEndOfInput, parseErr.Reason)

	lex.Reset()
	p.Reset()
	require.NoError(t, p.Finish(lex))

	for idx, in := range []string{"a :- b ∧", "?p(X", "rains"} {
		lex.Reset()
		p.Reset()
		require.NoError(t, lex.Consume(in))
		require.NoError(t, p.Parse(lex), "case %d", idx)
		err := p.Finish(lex)
		parseErr, ok := err.(*ParseError)
		require.True(t, ok, "case %d: expected *ParseError; got %#v", idx, err)
		require.True(t, parseErr.Incomplete(), "case %d", idx)
	}
}

func TestFinishMalformed(t *testing.T) {
	// Finish on a lexer that Parse never saw still tells malformed from
	// unfinished input.
	lex := lexer.NewLexer(lexer.Lenient)
	require.NoError(t, lex.Consume("p(a) q"))
	err := NewParser().Finish(lex)
	parseErr, ok := err.(*ParseError)
	require.True(t, ok, "expected *ParseError; got %#v", err)
	require.Equal(t, ReasonExpectedTerminator, parseErr.Reason)
	require.False(t, parseErr.Incomplete())
}

func TestStatement(t *testing.T) {
	stmt, err := Statement("likes(mary,tom).")
	require.NoError(t, err)
	require.True(t, ast.Equal(f("likes", a("mary"), a("tom")), stmt))

	_, err = Statement("likes(mary,tom")
	require.Error(t, err)
	require.True(t, err.(*ParseError).Incomplete())

	_, err = Statement("p. q.")
	require.Equal(t, ReasonStatementCount, err.(*ParseError).Reason)
}

func TestRoundTrip(t *testing.T) {
	stmts := []ast.Node{
		f("likes", a("mary"), v("X")),
		f("rains"),
		ast.NewQuery(f("likes", v("Who"), a("tom"))),
		ast.NewRule(
			f("h", v("X")),
			ast.NewOr(
				ast.NewAnd(ast.NewAnd(f("a"), f("b")), f("c")),
				ast.NewNeg(ast.NewAnd(f("d", a("x")), ast.NewNeg(ast.NewNeg(f("e"))))),
			),
		),
		ast.NewRule(f("h"), ast.NewAnd(f("a"), ast.NewAnd(f("b"), f("c")))),
	}
	for idx, stmt := range stmts {
		text := ast.Statement(stmt)
		reparsed, err := Statement(text)
		if err != nil {
			t.Fatalf("case %d: reparsing %q: %v", idx, text, err)
		}
		if diff := cmp.Diff(stmt, reparsed); diff != "" {
			t.Fatalf("case %d: %q: (-want +got):\n%s", idx, text, diff)
		}
	}

	exprs := []ast.Node{
		f("a"),
		ast.NewAnd(f("a"), f("b", v("X"))),
		ast.NewOr(f("a"), ast.NewOr(f("b"), f("c"))),
		ast.NewNeg(ast.NewOr(f("a"), f("b"))),
		ast.NewAnd(ast.NewNeg(f("a")), ast.NewOr(ast.NewNeg(ast.NewNeg(f("b"))), f("c"))),
	}
	for idx, expr := range exprs {
		text := expr.String()
		reparsed, err := Expr(text)
		if err != nil {
			t.Fatalf("case %d: reparsing %q: %v", idx, text, err)
		}
		if !ast.Equal(expr, reparsed) {
			t.Fatalf("case %d: %q: expected %s; got %s", idx, text, expr, reparsed)
		}
	}

	_, err := Expr("a ∧ b)")
	require.Equal(t, ReasonTrailingTokens, err.(*ParseError).Reason)
}
