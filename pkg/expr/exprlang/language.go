// Package exprlang implements expr.Language with expr-lang/expr, giving
// fragments arithmetic, builtins (`len`, `filter`, `upper`) and optional
// chaining (`user?.name ?? "anonymous"`).
//
// Expressions run against the flattened scope. Unknown identifiers evaluate
// to nil. Loop patterns use the default expression language.
package exprlang

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	markupexpr "github.com/goliatone/go-markup/pkg/expr"
	"github.com/goliatone/go-markup/pkg/program"
)

// Option configures the language.
type Option func(*config)

type config struct {
	options []expr.Option
}

// WithOptions appends expr-lang compile options, such as expr.Function or
// expr.Operator, to every compiled fragment.
func WithOptions(options ...expr.Option) Option {
	return func(cfg *config) {
		cfg.options = append(cfg.options, options...)
	}
}

// Language compiles fragments into expr-lang programs.
type Language struct {
	options  []expr.Option
	fallback *markupexpr.Compiler
}

var _ markupexpr.Language = (*Language)(nil)

// New constructs a Language.
func New(options ...Option) *Language {
	cfg := &config{}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	return &Language{
		options:  cfg.options,
		fallback: markupexpr.New(),
	}
}

// Expr compiles a value expression.
func (l *Language) Expr(src string) (program.Renderable, error) {
	compiled, err := l.compile(src)
	if err != nil {
		return nil, err
	}
	return &value{src: src, program: compiled}, nil
}

// Cond compiles a boolean expression. `let` conditions use the default
// language.
func (l *Language) Cond(src string) (program.Condition, error) {
	if isLet(src) {
		return l.fallback.Cond(src)
	}
	compiled, err := l.compile(src, expr.AsBool())
	if err != nil {
		return nil, err
	}
	return &condition{src: src, program: compiled}, nil
}

// Pattern delegates to the default language.
func (l *Language) Pattern(src string) (program.Pattern, error) {
	return l.fallback.Pattern(src)
}

// Iterable compiles an expression whose result is iterated like a default
// language iterable.
func (l *Language) Iterable(src string) (program.Iterable, error) {
	compiled, err := l.compile(src)
	if err != nil {
		return nil, err
	}
	return &value{src: src, program: compiled}, nil
}

func (l *Language) compile(src string, extra ...expr.Option) (*vm.Program, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.New("exprlang: empty expression")
	}
	options := make([]expr.Option, 0, len(l.options)+len(extra)+1)
	options = append(options, expr.AllowUndefinedVariables())
	options = append(options, l.options...)
	options = append(options, extra...)

	compiled, err := expr.Compile(src, options...)
	if err != nil {
		return nil, fmt.Errorf("exprlang: compile %q: %w", src, err)
	}
	return compiled, nil
}

type value struct {
	src     string
	program *vm.Program
}

func (v *value) eval(s *program.Scope) (any, error) {
	out, err := expr.Run(v.program, s.Flatten())
	if err != nil {
		return nil, fmt.Errorf("exprlang: run %q: %w", v.src, err)
	}
	return out, nil
}

func (v *value) RenderTo(w io.Writer, s *program.Scope) error {
	out, err := v.eval(s)
	if err != nil {
		return err
	}
	if nested, ok := out.(program.Renderable); ok {
		return nested.RenderTo(w, s)
	}
	return markupexpr.Format(w, out)
}

func (v *value) Each(s *program.Scope, yield func(key, item any) error) error {
	out, err := v.eval(s)
	if err != nil {
		return err
	}
	if err := markupexpr.Iterate(out, yield); err != nil {
		return fmt.Errorf("exprlang: iterate %q: %w", v.src, err)
	}
	return nil
}

func (v *value) String() string { return v.src }

type condition struct {
	src     string
	program *vm.Program
}

func (c *condition) Test(s *program.Scope) (bool, error) {
	out, err := expr.Run(c.program, s.Flatten())
	if err != nil {
		return false, fmt.Errorf("exprlang: run %q: %w", c.src, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

func (c *condition) String() string { return c.src }
