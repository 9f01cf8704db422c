package lexer

import "fmt"

type Kind int

const (
	Bopen Kind = iota
	Bclose
	And
	Or
	Neg
	Arrow
	Separator
	Delim
	EOL
	Exists
	Name
)

// Glyphs for the logical connectives.
const (
	AndGlyph = '∧'
	OrGlyph  = '∨'
	NegGlyph = '¬'
)

var kindNames = map[Kind]string{
	Bopen:     "Bopen",
	Bclose:    "Bclose",
	And:       "And",
	Or:        "Or",
	Neg:       "Neg",
	Arrow:     "Arrow",
	Separator: "Separator",
	Delim:     "Delim",
	EOL:       "EOL",
	Exists:    "Exists",
	Name:      "Name",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical token. Text is only set for Name tokens.
type Token struct {
	Kind Kind
	Text string
}

func Tok(k Kind) Token {
	return Token{Kind: k}
}

func NameTok(text string) Token {
	return Token{Kind: Name, Text: text}
}

func (t Token) String() string {
	if t.Kind == Name {
		return fmt.Sprintf("Name(%q)", t.Text)
	}
	return t.Kind.String()
}

// Source returns the input text that produces the token.
func (t Token) Source() string {
	switch t.Kind {
	case Bopen:
		return "("
	case Bclose:
		return ")"
	case And:
		return string(AndGlyph)
	case Or:
		return string(OrGlyph)
	case Neg:
		return string(NegGlyph)
	case Arrow:
		return ":-"
	case Separator:
		return ":"
	case Delim:
		return ","
	case EOL:
		return "."
	case Exists:
		return "?"
	default:
		return t.Text
	}
}
