package expr

import (
	"fmt"

	"github.com/goliatone/go-markup/pkg/program"
)

type valueNode interface {
	value(s *program.Scope) (any, error)
	reads(add func(string))
}

type pathNode struct {
	path string
}

func (n pathNode) value(s *program.Scope) (any, error) {
	v, _ := lookup(s, n.path)
	return v, nil
}

func (n pathNode) reads(add func(string)) {
	add(rootOf(n.path))
}

type literalNode struct {
	literal any
}

func (n literalNode) value(*program.Scope) (any, error) {
	return n.literal, nil
}

func (n literalNode) reads(func(string)) {}

type listNode struct {
	items []valueNode
}

func (n listNode) value(s *program.Scope) (any, error) {
	out := make([]any, 0, len(n.items))
	for _, item := range n.items {
		v, err := item.value(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (n listNode) reads(add func(string)) {
	for _, item := range n.items {
		item.reads(add)
	}
}

type condNode interface {
	eval(s *program.Scope) (bool, error)
	reads(add func(string))
}

type condOr struct {
	left  condNode
	right condNode
}

func (n condOr) eval(s *program.Scope) (bool, error) {
	ok, err := n.left.eval(s)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return n.right.eval(s)
}

func (n condOr) reads(add func(string)) {
	n.left.reads(add)
	n.right.reads(add)
}

type condAnd struct {
	left  condNode
	right condNode
}

func (n condAnd) eval(s *program.Scope) (bool, error) {
	ok, err := n.left.eval(s)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return n.right.eval(s)
}

func (n condAnd) reads(add func(string)) {
	n.left.reads(add)
	n.right.reads(add)
}

type condNot struct {
	inner condNode
}

func (n condNot) eval(s *program.Scope) (bool, error) {
	ok, err := n.inner.eval(s)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n condNot) reads(add func(string)) {
	n.inner.reads(add)
}

type condTruthy struct {
	value valueNode
}

func (n condTruthy) eval(s *program.Scope) (bool, error) {
	v, err := n.value.value(s)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

func (n condTruthy) reads(add func(string)) {
	n.value.reads(add)
}

type condCompare struct {
	left  valueNode
	op    tokenKind
	right valueNode
}

func (n condCompare) eval(s *program.Scope) (bool, error) {
	left, err := n.left.value(s)
	if err != nil {
		return false, err
	}
	right, err := n.right.value(s)
	if err != nil {
		return false, err
	}

	switch n.op {
	case tokenEq:
		return equal(left, right), nil
	case tokenNeq:
		return !equal(left, right), nil
	default:
		cmp, ok := order(left, right)
		if !ok {
			return false, fmt.Errorf("expr: cannot order %T and %T", left, right)
		}
		switch n.op {
		case tokenLt:
			return cmp < 0, nil
		case tokenLte:
			return cmp <= 0, nil
		case tokenGt:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	}
}

func (n condCompare) reads(add func(string)) {
	n.left.reads(add)
	n.right.reads(add)
}

// condLet holds when the value is present, binding it for the then-arm.
type condLet struct {
	name  string
	value valueNode
}

func (n condLet) eval(s *program.Scope) (bool, error) {
	v, err := n.value.value(s)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	s.Set(n.name, v)
	return true, nil
}

func (n condLet) reads(add func(string)) {
	n.value.reads(add)
}
