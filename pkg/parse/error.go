package parse

import (
	"fmt"

	"github.com/vilterp/factlog/pkg/lexer"
)

// Reasons carried by ParseError.
const (
	ReasonExpectedName       = "expected name parsing fact"
	ReasonExpectedArgument   = "expected argument name"
	ReasonExpectedClose      = "expected closing ')'"
	ReasonExpectedTerminator = "expected '.' or ':-' after fact"
	ReasonExpectedRuleEnd    = "expected '.' after rule body"
	ReasonExpectedQueryEnd   = "expected '.' after query"
	ReasonUnexpectedToken    = "unexpected token parsing term"
	ReasonTrailingTokens     = "unexpected token after expression"
	ReasonEndOfInput         = "unexpected end of input"
	ReasonStatementCount     = "expected exactly one statement"
)

// ParseError reports a grammar violation. Token is the offending token; it is
// nil when input ran out.
type ParseError struct {
	Reason string
	Token  *lexer.Token

	incomplete bool
}

func newParseError(reason string, tok *lexer.Token) *ParseError {
	return &ParseError{
		Reason: reason,
		Token:  tok,
	}
}

func (e *ParseError) Error() string {
	if e.Token == nil {
		return fmt.Sprintf("parse error: %s", e.Reason)
	}
	return fmt.Sprintf("parse error: %s; got %s", e.Reason, e.Token)
}

// Incomplete reports whether the statement was well formed so far and only
// lacked its terminator.
func (e *ParseError) Incomplete() bool {
	return e.incomplete
}
