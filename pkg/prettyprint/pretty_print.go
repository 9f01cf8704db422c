package prettyprint

import (
	"bytes"
	"fmt"
	"strings"
)

// Loosely based on http://homepages.inf.ed.ac.uk/wadler/papers/prettier/prettier.pdf,
// minus the layout search: every doc has exactly one rendering.

type Doc interface {
	// String returns the rendered text.
	String() string
	// Debug returns a representation of the doc tree.
	Debug() string
}

// Text

type text struct {
	str string
}

var _ Doc = &text{}

func Text(s string) Doc {
	return &text{
		str: s,
	}
}

func Textf(format string, args ...interface{}) Doc {
	return Text(fmt.Sprintf(format, args...))
}

func (s *text) String() string {
	return s.str
}

func (s *text) Debug() string {
	return fmt.Sprintf("Text(%#v)", s.str)
}

// Nest indents every line of the inner doc.

type nest struct {
	doc    Doc
	nestBy int
}

func Nest(by int, d Doc) Doc {
	return &nest{
		doc:    d,
		nestBy: by,
	}
}

func (n *nest) String() string {
	indent := strings.Repeat(" ", n.nestBy)
	lines := strings.Split(n.doc.String(), "\n")
	buf := bytes.NewBufferString("")
	for idx, line := range lines {
		if idx > 0 {
			buf.WriteString("\n")
		}
		if line != "" {
			buf.WriteString(indent)
		}
		buf.WriteString(line)
	}
	return buf.String()
}

func (n *nest) Debug() string {
	return fmt.Sprintf("Nest(%d, %s)", n.nestBy, n.doc.Debug())
}

// Empty

type empty struct{}

var Empty Doc = &empty{}

func (empty) String() string {
	return ""
}

func (empty) Debug() string {
	return "Empty"
}

// Seq

type concat struct {
	docs []Doc
}

func Seq(docs ...Doc) Doc {
	return &concat{
		docs: docs,
	}
}

func (c *concat) String() string {
	buf := bytes.NewBufferString("")
	for _, doc := range c.docs {
		buf.WriteString(doc.String())
	}
	return buf.String()
}

func (c *concat) Debug() string {
	docStrs := make([]string, len(c.docs))
	for idx := range c.docs {
		docStrs[idx] = c.docs[idx].Debug()
	}
	return fmt.Sprintf("Seq(%s)", strings.Join(docStrs, ", "))
}

// Newline

type newline struct{}

var Newline Doc = &newline{}

func (newline) String() string {
	return "\n"
}

func (newline) Debug() string {
	return "Newline"
}

// Combinators

func Join(docs []Doc, sep Doc) Doc {
	var out []Doc
	for idx, doc := range docs {
		if idx > 0 {
			out = append(out, sep)
		}
		out = append(out, doc)
	}
	return Seq(out...)
}

// Parens wraps d in round brackets.
func Parens(d Doc) Doc {
	return Seq(Text("("), d, Text(")"))
}

// Infix renders "(l op r)".
func Infix(l Doc, op string, r Doc) Doc {
	return Parens(Seq(l, Textf(" %s ", op), r))
}

// Lines puts each doc on its own line.
func Lines(docs []Doc) Doc {
	return Join(docs, Newline)
}

var CommaSpace = Text(", ")
