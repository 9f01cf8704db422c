package parse

import (
	"unicode"
	"unicode/utf8"

	"github.com/vilterp/factlog/pkg/ast"
	"github.com/vilterp/factlog/pkg/lexer"
)

// Grammar:
//
//	command   := '?' fact EOL | fact EOL | fact ARROW expr EOL
//	fact      := NAME ( '(' argList ')' )?
//	argList   := NAME ( ',' argList )?
//	expr      := conj ( OR conj )*
//	conj      := term ( AND term )*
//	term      := NOT term | '(' expr ')' | fact

// Parser turns the tokens in a lexer into one AST node per statement.
// Statements that haven't been terminated yet stay in the lexer until more
// input arrives.
type Parser struct {
	buffer []ast.Node
}

func NewParser() *Parser {
	return &Parser{}
}

// Parse parses every complete statement in lex. Whatever is left over must be
// the start of a valid statement; if it can't be, Parse reports the error now
// rather than waiting for a terminator. On error the lexer and the parser are
// left mid-statement; callers should Reset both.
func (p *Parser) Parse(lex *lexer.Lexer) error {
	for lex.IndexOf(lexer.EOL) >= 0 {
		stmt, err := parseCommand(lex)
		if err != nil {
			return err
		}
		p.buffer = append(p.buffer, stmt)
	}
	if err := checkPrefix(lex); err != nil && err.Reason != ReasonEndOfInput {
		return err
	}
	return nil
}

// checkPrefix parses a copy of the unterminated tokens in lex. Running out of
// tokens is the only failure a valid prefix can produce.
func checkPrefix(lex *lexer.Lexer) *ParseError {
	if !Pending(lex) {
		return nil
	}
	if _, err := parseCommand(lex.Clone()); err != nil {
		return err.(*ParseError)
	}
	return nil
}

// Pending reports whether lex holds the beginning of a statement.
func Pending(lex *lexer.Lexer) bool {
	return lex.Len() > 0
}

// Finish is called at end of input. It fails if an unterminated statement
// remains in lex.
func (p *Parser) Finish(lex *lexer.Lexer) error {
	if err := p.Parse(lex); err != nil {
		return err
	}
	err := checkPrefix(lex)
	if err == nil {
		return nil
	}
	err.incomplete = err.Reason == ReasonEndOfInput
	return err
}

// Drain hands the parsed statements to the caller, oldest first.
func (p *Parser) Drain() []ast.Node {
	out := p.buffer
	p.buffer = nil
	return out
}

func (p *Parser) Len() int {
	return len(p.buffer)
}

func (p *Parser) Reset() {
	p.buffer = nil
}

func parseCommand(lex *lexer.Lexer) (ast.Node, error) {
	if tok, ok := lex.Peek(); ok && tok.Kind == lexer.Exists {
		lex.Pop()
		fact, err := parseFact(lex)
		if err != nil {
			return nil, err
		}
		if err := expect(lex, lexer.EOL, ReasonExpectedQueryEnd); err != nil {
			return nil, err
		}
		return ast.NewQuery(fact), nil
	}

	fact, err := parseFact(lex)
	if err != nil {
		return nil, err
	}
	tok, ok := lex.Pop()
	if !ok {
		return nil, newParseError(ReasonEndOfInput, nil)
	}
	switch tok.Kind {
	case lexer.EOL:
		return fact, nil
	case lexer.Arrow:
		body, err := parseExpr(lex)
		if err != nil {
			return nil, err
		}
		if err := expect(lex, lexer.EOL, ReasonExpectedRuleEnd); err != nil {
			return nil, err
		}
		return ast.NewRule(fact, body), nil
	default:
		return nil, newParseError(ReasonExpectedTerminator, &tok)
	}
}

func parseFact(lex *lexer.Lexer) (*ast.Fact, error) {
	tok, ok := lex.Pop()
	if !ok {
		return nil, newParseError(ReasonEndOfInput, nil)
	}
	if tok.Kind != lexer.Name {
		return nil, newParseError(ReasonExpectedName, &tok)
	}
	fact := ast.NewFact(tok.Text)

	if next, ok := lex.Peek(); !ok || next.Kind != lexer.Bopen {
		return fact, nil
	}
	lex.Pop()
	args, err := parseArgList(lex)
	if err != nil {
		return nil, err
	}
	if err := expect(lex, lexer.Bclose, ReasonExpectedClose); err != nil {
		return nil, err
	}
	fact.Args = args
	return fact, nil
}

func parseArgList(lex *lexer.Lexer) ([]ast.Node, error) {
	var args []ast.Node
	for {
		tok, ok := lex.Pop()
		if !ok {
			return nil, newParseError(ReasonEndOfInput, nil)
		}
		if tok.Kind != lexer.Name {
			return nil, newParseError(ReasonExpectedArgument, &tok)
		}
		args = append(args, atomOrVar(tok.Text))

		if next, ok := lex.Peek(); !ok || next.Kind != lexer.Delim {
			return args, nil
		}
		lex.Pop()
	}
}

// atomOrVar classifies a name by its first rune: lowercase names are atoms,
// everything else is a variable.
func atomOrVar(name string) ast.Node {
	first, _ := utf8.DecodeRuneInString(name)
	if unicode.IsLower(first) {
		return ast.NewAtom(name)
	}
	return ast.NewVariable(name)
}

func parseExpr(lex *lexer.Lexer) (ast.Node, error) {
	lh, err := parseConj(lex)
	if err != nil {
		return nil, err
	}
	for {
		if tok, ok := lex.Peek(); !ok || tok.Kind != lexer.Or {
			return lh, nil
		}
		lex.Pop()
		rh, err := parseConj(lex)
		if err != nil {
			return nil, err
		}
		lh = ast.NewOr(lh, rh)
	}
}

func parseConj(lex *lexer.Lexer) (ast.Node, error) {
	lh, err := parseTerm(lex)
	if err != nil {
		return nil, err
	}
	for {
		if tok, ok := lex.Peek(); !ok || tok.Kind != lexer.And {
			return lh, nil
		}
		lex.Pop()
		rh, err := parseTerm(lex)
		if err != nil {
			return nil, err
		}
		lh = ast.NewAnd(lh, rh)
	}
}

func parseTerm(lex *lexer.Lexer) (ast.Node, error) {
	tok, ok := lex.Peek()
	if !ok {
		return nil, newParseError(ReasonEndOfInput, nil)
	}
	switch tok.Kind {
	case lexer.Neg:
		lex.Pop()
		operand, err := parseTerm(lex)
		if err != nil {
			return nil, err
		}
		return ast.NewNeg(operand), nil
	case lexer.Bopen:
		lex.Pop()
		inner, err := parseExpr(lex)
		if err != nil {
			return nil, err
		}
		if err := expect(lex, lexer.Bclose, ReasonExpectedClose); err != nil {
			return nil, err
		}
		return inner, nil
	case lexer.Name:
		return parseFact(lex)
	default:
		lex.Pop()
		return nil, newParseError(ReasonUnexpectedToken, &tok)
	}
}

func expect(lex *lexer.Lexer, kind lexer.Kind, reason string) error {
	tok, ok := lex.Pop()
	if !ok {
		return newParseError(ReasonEndOfInput, nil)
	}
	if tok.Kind != kind {
		return newParseError(reason, &tok)
	}
	return nil
}
