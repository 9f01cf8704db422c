package parse

import (
	"github.com/vilterp/factlog/pkg/ast"
	"github.com/vilterp/factlog/pkg/lexer"
)

// Statement parses exactly one terminated statement.
func Statement(input string) (ast.Node, error) {
	lex := lexer.NewLexer(lexer.Lenient)
	if err := lex.Consume(input); err != nil {
		return nil, err
	}
	p := NewParser()
	if err := p.Finish(lex); err != nil {
		return nil, err
	}
	stmts := p.Drain()
	if len(stmts) != 1 {
		return nil, newParseError(ReasonStatementCount, nil)
	}
	return stmts[0], nil
}

// Expr parses a bare rule body, such as "a ∧ ¬(b ∨ c)".
func Expr(input string) (ast.Node, error) {
	lex := lexer.NewLexer(lexer.Lenient)
	if err := lex.Consume(input); err != nil {
		return nil, err
	}
	expr, err := parseExpr(lex)
	if err != nil {
		return nil, err
	}
	if tok, ok := lex.Peek(); ok {
		return nil, newParseError(ReasonTrailingTokens, &tok)
	}
	return expr, nil
}
