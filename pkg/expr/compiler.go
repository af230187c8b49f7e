package expr

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goliatone/go-markup/pkg/escape"
	"github.com/goliatone/go-markup/pkg/program"
)

// Compiler is the default Language. It is stateless and safe for concurrent
// use.
type Compiler struct{}

// New returns the default expression language.
func New() *Compiler { return &Compiler{} }

var (
	_ Language = (*Compiler)(nil)
	_ Analyzer = (*Compiler)(nil)
)

// Expr compiles a value expression for a splice.
func (c *Compiler) Expr(src string) (program.Renderable, error) {
	node, err := parseValueSource(src)
	if err != nil {
		return nil, err
	}
	return &Value{src: src, node: node}, nil
}

// Cond compiles a condition or a `let name = value` pattern match.
func (c *Compiler) Cond(src string) (program.Condition, error) {
	node, err := parseCondSource(src)
	if err != nil {
		return nil, err
	}
	return &Condition{src: src, node: node}, nil
}

// Pattern compiles a loop pattern: `item`, `key, value` or `_`.
func (c *Compiler) Pattern(src string) (program.Pattern, error) {
	names, err := parsePatternSource(src)
	if err != nil {
		return nil, err
	}
	return &Pattern{src: src, names: names}, nil
}

// Iterable compiles the value a loop iterates over.
func (c *Compiler) Iterable(src string) (program.Iterable, error) {
	node, err := parseValueSource(src)
	if err != nil {
		return nil, err
	}
	return &Value{src: src, node: node}, nil
}

// Reads returns the sorted root variables src reads. Unparseable sources read
// nothing.
func (c *Compiler) Reads(src string) []string {
	seen := map[string]struct{}{}
	add := func(name string) {
		if name != "" {
			seen[name] = struct{}{}
		}
	}
	if node, err := parseCondSource(src); err == nil {
		node.reads(add)
	} else if value, err := parseValueSource(src); err == nil {
		value.reads(add)
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PatternBinds returns the names a loop pattern introduces.
func (c *Compiler) PatternBinds(src string) []string {
	names, err := parsePatternSource(src)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name != "_" {
			out = append(out, name)
		}
	}
	return out
}

// CondBinds returns the name a `let` condition introduces, if any.
func (c *Compiler) CondBinds(src string) []string {
	node, err := parseCondSource(src)
	if err != nil {
		return nil
	}
	if bound, ok := node.(condLet); ok {
		return []string{bound.name}
	}
	return nil
}

// Value is a compiled value expression. It renders as a splice and iterates
// as a loop source.
type Value struct {
	src  string
	node valueNode
}

// Eval returns the value in s.
func (v *Value) Eval(s *program.Scope) (any, error) {
	return v.node.value(s)
}

// RenderTo writes the value as text. Values that are themselves renderable,
// such as compiled templates passed in as data, render in place.
func (v *Value) RenderTo(w io.Writer, s *program.Scope) error {
	value, err := v.node.value(s)
	if err != nil {
		return err
	}
	if r, ok := value.(program.Renderable); ok {
		return r.RenderTo(w, s)
	}
	return Format(w, value)
}

// Each iterates over the value.
func (v *Value) Each(s *program.Scope, yield func(key, value any) error) error {
	value, err := v.node.value(s)
	if err != nil {
		return err
	}
	if err := Iterate(value, yield); err != nil {
		return fmt.Errorf("expr: iterate %q: %w", v.src, err)
	}
	return nil
}

func (v *Value) String() string { return v.src }

// Condition is a compiled condition.
type Condition struct {
	src  string
	node condNode
}

// Test evaluates the condition, binding `let` names into s.
func (c *Condition) Test(s *program.Scope) (bool, error) {
	return c.node.eval(s)
}

func (c *Condition) String() string { return c.src }

// Pattern is a compiled loop pattern.
type Pattern struct {
	src   string
	names []string
}

// Bind assigns the item to the pattern's names. A single name receives the
// value; two names receive the key and the value.
func (p *Pattern) Bind(s *program.Scope, key, value any) error {
	switch len(p.names) {
	case 1:
		bindName(s, p.names[0], value)
	case 2:
		bindName(s, p.names[0], key)
		bindName(s, p.names[1], value)
	}
	return nil
}

func (p *Pattern) String() string { return p.src }

func bindName(s *program.Scope, name string, value any) {
	if name == "_" {
		return
	}
	s.Set(name, value)
}

// Sanitized wraps a Renderable so its output passes through escape.Sanitize.
// The result is meant to be spliced with escape.PassThru.
func Sanitized(inner program.Renderable) program.Renderable {
	return sanitized{inner: inner}
}

type sanitized struct {
	inner program.Renderable
}

func (s sanitized) RenderTo(w io.Writer, scope *program.Scope) error {
	var buf strings.Builder
	if err := s.inner.RenderTo(&buf, scope); err != nil {
		return err
	}
	if out := escape.Sanitize(buf.String()); out != "" {
		_, err := io.WriteString(w, out)
		return err
	}
	return nil
}

func (s sanitized) String() string {
	return "sanitize(" + describe(s.inner) + ")"
}

func describe(fragment any) string {
	if s, ok := fragment.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("<%T>", fragment)
}
