package render

import "github.com/goliatone/go-markup/pkg/program"

// EmitIf appends a conditional with no else arm. then is a fully lowered body,
// usually the instructions of a fork; an empty body is legal.
func (r *Renderer) EmitIf(cond program.Condition, then program.Program) {
	r.push(program.If{Cond: cond, Then: nonNil(then)})
}

// EmitIfElse appends a conditional with both arms.
func (r *Renderer) EmitIfElse(cond program.Condition, then, els program.Program) {
	els = nonNil(els)
	r.push(program.If{Cond: cond, Then: nonNil(then), Else: &els})
}

// EmitFor appends a loop running body once per item of iterable, in iteration
// order, against the enclosing scope's sink.
func (r *Renderer) EmitFor(pattern program.Pattern, iterable program.Iterable, body program.Program) {
	r.push(program.For{Pattern: pattern, Iterable: iterable, Body: nonNil(body)})
}

func nonNil(p program.Program) program.Program {
	if p == nil {
		return program.Program{}
	}
	return p
}
