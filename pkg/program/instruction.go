package program

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goliatone/go-markup/pkg/escape"
)

// Instruction is one primitive step of a Program. The set is closed:
// WriteLiteral, WriteExpr, If and For.
type Instruction interface {
	exec(w io.Writer, s *Scope) error
	list(b *strings.Builder, depth int)
}

// WriteLiteral writes text known at lowering time. Escaping, if any, was
// applied before the instruction was created.
type WriteLiteral struct {
	Text string
}

// WriteExpr renders Expr at run time, escaping the output when Escape says so.
type WriteExpr struct {
	Expr   Renderable
	Escape escape.Mode
}

// If runs Then when Cond holds and Else, when present, otherwise. A nil Else
// means nothing runs on a false condition.
type If struct {
	Cond Condition
	Then Program
	Else *Program
}

// For runs Body once per item of Iterable, binding each item with Pattern.
type For struct {
	Pattern  Pattern
	Iterable Iterable
	Body     Program
}

func (i WriteLiteral) exec(w io.Writer, _ *Scope) error {
	_, err := io.WriteString(w, i.Text)
	return err
}

func (i WriteExpr) exec(w io.Writer, s *Scope) error {
	if i.Escape == escape.Escape {
		return i.Expr.RenderTo(escape.NewWriter(w), s)
	}
	return i.Expr.RenderTo(w, s)
}

func (i If) exec(w io.Writer, s *Scope) error {
	inner := s.Child()
	ok, err := i.Cond.Test(inner)
	if err != nil {
		return err
	}
	if ok {
		return i.Then.Exec(w, inner)
	}
	if i.Else != nil {
		return i.Else.Exec(w, s.Child())
	}
	return nil
}

func (i For) exec(w io.Writer, s *Scope) error {
	return i.Iterable.Each(s, func(key, value any) error {
		inner := s.Child()
		if err := i.Pattern.Bind(inner, key, value); err != nil {
			return err
		}
		return i.Body.Exec(w, inner)
	})
}

func (i WriteLiteral) list(b *strings.Builder, depth int) {
	line(b, depth, "write "+strconv.Quote(i.Text))
}

func (i WriteExpr) list(b *strings.Builder, depth int) {
	line(b, depth, fmt.Sprintf("expr %s %s", i.Escape, describe(i.Expr)))
}

func (i If) list(b *strings.Builder, depth int) {
	line(b, depth, "if "+describe(i.Cond))
	i.Then.list(b, depth+1)
	if i.Else != nil {
		line(b, depth, "else")
		i.Else.list(b, depth+1)
	}
	line(b, depth, "end")
}

func (i For) list(b *strings.Builder, depth int) {
	line(b, depth, fmt.Sprintf("for %s in %s", describe(i.Pattern), describe(i.Iterable)))
	i.Body.list(b, depth+1)
	line(b, depth, "end")
}

func line(b *strings.Builder, depth int, text string) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(text)
	b.WriteByte('\n')
}

func describe(fragment any) string {
	if s, ok := fragment.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("<%T>", fragment)
}
