package program

import (
	"errors"
	"fmt"
	"sort"
)

// MaxNesting bounds how many compiled templates may render inside one another.
const MaxNesting = 64

// ErrNestingTooDeep is returned when spliced templates nest past MaxNesting,
// typically because a template splices itself.
var ErrNestingTooDeep = errors.New("program: templates nested too deeply")

// Scope is the runtime variable environment of a program. Loop patterns and
// pattern-match conditions bind names into a child scope, so bindings made
// inside a branch or loop body never leak into the enclosing scope.
type Scope struct {
	parent *Scope
	data   map[string]any
	locals map[string]any
	depth  int
}

// NewScope returns a root scope reading from data. The map is never mutated.
func NewScope(data map[string]any) *Scope {
	return &Scope{data: data}
}

// Child returns an empty scope that falls back to s for lookups.
func (s *Scope) Child() *Scope {
	child := &Scope{parent: s}
	if s != nil {
		child.depth = s.depth
	}
	return child
}

// Nested returns a child scope one template level below s.
func (s *Scope) Nested() (*Scope, error) {
	child := s.Child()
	child.depth++
	if child.depth > MaxNesting {
		return nil, fmt.Errorf("%w: limit %d", ErrNestingTooDeep, MaxNesting)
	}
	return child, nil
}

// Set binds name in s, shadowing any binding in a parent scope.
func (s *Scope) Set(name string, value any) {
	if s.locals == nil {
		s.locals = make(map[string]any)
	}
	s.locals[name] = value
}

// Lookup resolves name, walking up the scope chain.
func (s *Scope) Lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.locals[name]; ok {
			return v, true
		}
		if v, ok := cur.data[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Flatten returns every visible binding in a fresh map, inner scopes winning.
func (s *Scope) Flatten() map[string]any {
	var chain []*Scope
	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	out := make(map[string]any)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].data {
			out[k] = v
		}
		for k, v := range chain[i].locals {
			out[k] = v
		}
	}
	return out
}

// Names lists the visible binding names in sorted order.
func (s *Scope) Names() []string {
	flat := s.Flatten()
	names := make([]string, 0, len(flat))
	for name := range flat {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
