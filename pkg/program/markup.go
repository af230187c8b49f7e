package program

import (
	"io"
	"slices"
	"strings"
)

// Markup is a reified, runnable program bound to a named output sink. It is
// immutable and safe for concurrent use; each Render call gets its own scope.
type Markup struct {
	sink    string
	program Program
}

// NewMarkup wraps p. The sink name only labels listings.
func NewMarkup(sink string, p Program) *Markup {
	return &Markup{sink: sink, program: p}
}

// Sink returns the name of the output parameter the program writes to.
func (m *Markup) Sink() string {
	return m.sink
}

// Program returns a copy of the instruction sequence.
func (m *Markup) Program() Program {
	return slices.Clone(m.program)
}

// Render runs the program with a root scope over data.
func (m *Markup) Render(w io.Writer, data map[string]any) error {
	return m.program.Exec(w, NewScope(data))
}

// RenderString renders into a string. On failure the partial output is
// discarded.
func (m *Markup) RenderString(data map[string]any) (string, error) {
	var b strings.Builder
	if err := m.Render(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderTo lets a compiled template be spliced into another one. It runs in a
// nested child of s so its bindings stay local; nesting past MaxNesting fails
// with ErrNestingTooDeep.
func (m *Markup) RenderTo(w io.Writer, s *Scope) error {
	inner, err := s.Nested()
	if err != nil {
		return err
	}
	return m.program.Exec(w, inner)
}

// String lists the program.
func (m *Markup) String() string {
	var b strings.Builder
	b.WriteString("markup(")
	b.WriteString(m.sink)
	b.WriteString(") {\n")
	m.program.list(&b, 1)
	b.WriteString("}\n")
	return b.String()
}
