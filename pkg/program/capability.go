package program

import "io"

// Renderable writes a runtime value as text. Escaping is not its concern: the
// program hands it an escaping writer when the write asks for it.
type Renderable interface {
	RenderTo(w io.Writer, s *Scope) error
}

// Condition decides an If instruction. The scope it receives is the one the
// then-arm runs in, so pattern-match conditions may bind names into it.
type Condition interface {
	Test(s *Scope) (bool, error)
}

// Pattern binds one iteration item into the loop body scope.
type Pattern interface {
	Bind(s *Scope, key, value any) error
}

// Iterable yields items in iteration order. Each must stop and return the
// error as soon as yield fails.
type Iterable interface {
	Each(s *Scope, yield func(key, value any) error) error
}

// RenderFunc adapts a function into a Renderable.
type RenderFunc func(w io.Writer, s *Scope) error

// RenderTo delegates to the underlying function.
func (fn RenderFunc) RenderTo(w io.Writer, s *Scope) error { return fn(w, s) }

// ConditionFunc adapts a function into a Condition.
type ConditionFunc func(s *Scope) (bool, error)

// Test delegates to the underlying function.
func (fn ConditionFunc) Test(s *Scope) (bool, error) { return fn(s) }

// PatternFunc adapts a function into a Pattern.
type PatternFunc func(s *Scope, key, value any) error

// Bind delegates to the underlying function.
func (fn PatternFunc) Bind(s *Scope, key, value any) error { return fn(s, key, value) }

// IterableFunc adapts a function into an Iterable.
type IterableFunc func(s *Scope, yield func(key, value any) error) error

// Each delegates to the underlying function.
func (fn IterableFunc) Each(s *Scope, yield func(key, value any) error) error { return fn(s, yield) }
