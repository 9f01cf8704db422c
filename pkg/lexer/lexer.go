package lexer

import (
	"fmt"
	"unicode"
)

type Mode int

const (
	// Lenient drops characters it doesn't recognize.
	Lenient Mode = iota
	// Strict rejects the whole input on the first unrecognized character.
	Strict
)

// LexError is only returned in Strict mode.
type LexError struct {
	Pos  int // rune offset into the consumed text
	Char rune
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error: unexpected character %q at offset %d", e.Char, e.Pos)
}

// Lexer accumulates tokens across calls to Consume, so a statement can be
// fed to it one line at a time. Tokens come back out oldest first.
type Lexer struct {
	mode   Mode
	buffer []Token
}

func NewLexer(mode Mode) *Lexer {
	return &Lexer{
		mode: mode,
	}
}

// Clone returns a lexer holding a copy of the buffer, so it can be popped
// without disturbing l.
func (l *Lexer) Clone() *Lexer {
	return &Lexer{
		mode:   l.mode,
		buffer: l.Tokens(),
	}
}

// Consume tokenizes text and appends the result to the buffer. In Strict mode
// nothing is appended if an error is returned.
func (l *Lexer) Consume(text string) error {
	runes := []rune(text)
	var out []Token

	for idx := 0; idx < len(runes); idx++ {
		c := runes[idx]
		switch c {
		case '(':
			out = append(out, Tok(Bopen))
		case ')':
			out = append(out, Tok(Bclose))
		case AndGlyph:
			out = append(out, Tok(And))
		case OrGlyph:
			out = append(out, Tok(Or))
		case NegGlyph:
			out = append(out, Tok(Neg))
		case '.':
			out = append(out, Tok(EOL))
		case ',':
			out = append(out, Tok(Delim))
		case '?':
			out = append(out, Tok(Exists))
		case ':':
			if idx+1 < len(runes) && runes[idx+1] == '-' {
				out = append(out, Tok(Arrow))
				idx++
			} else {
				out = append(out, Tok(Separator))
			}
		default:
			if unicode.IsSpace(c) {
				continue
			}
			if isNameRune(c) {
				end := idx + 1
				for end < len(runes) && isNameRune(runes[end]) {
					end++
				}
				out = append(out, NameTok(string(runes[idx:end])))
				idx = end - 1
				continue
			}
			if l.mode == Strict {
				return &LexError{Pos: idx, Char: c}
			}
		}
	}

	l.buffer = append(l.buffer, out...)
	return nil
}

// Pop removes and returns the oldest token.
func (l *Lexer) Pop() (Token, bool) {
	if len(l.buffer) == 0 {
		return Token{}, false
	}
	tok := l.buffer[0]
	l.buffer = l.buffer[1:]
	return tok, true
}

// Peek returns the token Pop would return, without removing it.
func (l *Lexer) Peek() (Token, bool) {
	if len(l.buffer) == 0 {
		return Token{}, false
	}
	return l.buffer[0], true
}

func (l *Lexer) Len() int {
	return len(l.buffer)
}

// Tokens returns a copy of the buffer in pop order.
func (l *Lexer) Tokens() []Token {
	out := make([]Token, len(l.buffer))
	copy(out, l.buffer)
	return out
}

// IndexOf returns the position of the first token of kind k, or -1.
func (l *Lexer) IndexOf(k Kind) int {
	for idx, tok := range l.buffer {
		if tok.Kind == k {
			return idx
		}
	}
	return -1
}

func (l *Lexer) Reset() {
	l.buffer = nil
}

// isNameRune accepts cased letters only; letters without case, such as CJK
// ideographs, are not part of names.
func isNameRune(c rune) bool {
	return unicode.IsUpper(c) || unicode.IsLower(c)
}
