package program

import (
	"io"
	"strings"
)

// Program is an ordered instruction sequence. Output order always equals
// instruction order.
type Program []Instruction

// Exec runs every instruction in order against w and returns the first error.
func (p Program) Exec(w io.Writer, s *Scope) error {
	if s == nil {
		s = NewScope(nil)
	}
	for _, instr := range p {
		if err := instr.exec(w, s); err != nil {
			return err
		}
	}
	return nil
}

// Literals concatenates the text of the top-level WriteLiteral instructions.
func (p Program) Literals() string {
	var b strings.Builder
	for _, instr := range p {
		if lit, ok := instr.(WriteLiteral); ok {
			b.WriteString(lit.Text)
		}
	}
	return b.String()
}

// String lists the program one instruction per line, nesting branch and loop
// bodies.
func (p Program) String() string {
	var b strings.Builder
	p.list(&b, 0)
	return b.String()
}

func (p Program) list(b *strings.Builder, depth int) {
	for _, instr := range p {
		instr.list(b, depth)
	}
}
