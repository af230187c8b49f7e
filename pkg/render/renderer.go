package render

import (
	"github.com/goliatone/go-markup/pkg/escape"
	"github.com/goliatone/go-markup/pkg/program"
)

// Renderer accumulates the instructions of one lexical scope.
type Renderer struct {
	sink     string
	instrs   program.Program
	consumed bool
}

// New returns an empty Renderer.
func New(options ...Option) *Renderer {
	cfg := &config{sink: DefaultSink}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	return &Renderer{sink: cfg.sink}
}

// Fork returns an empty Renderer writing to the same sink. The fork shares no
// instructions with r.
func (r *Renderer) Fork() *Renderer {
	r.live()
	return &Renderer{sink: r.sink}
}

// Sink returns the output sink name.
func (r *Renderer) Sink() string {
	return r.sink
}

// Len reports how many instructions have been appended so far.
func (r *Renderer) Len() int {
	return len(r.instrs)
}

// IntoProgram consumes r and returns a standalone runnable program.
func (r *Renderer) IntoProgram() *program.Markup {
	return program.NewMarkup(r.sink, r.take())
}

// IntoInstructions consumes r and returns its raw instruction sequence, ready
// for PushInstructions or for use as a branch or loop body.
func (r *Renderer) IntoInstructions() program.Program {
	return r.take()
}

// PushInstructions appends a previously reified instruction sequence.
func (r *Renderer) PushInstructions(p program.Program) {
	r.live()
	r.instrs = append(r.instrs, p...)
}

// WriteLiteral appends text verbatim. The caller has already escaped it if
// that was needed.
func (r *Renderer) WriteLiteral(text string) {
	r.push(program.WriteLiteral{Text: text})
}

// Text appends text, escaping it first when mode is escape.Escape.
func (r *Renderer) Text(text string, mode escape.Mode) {
	r.WriteLiteral(escape.Apply(mode, text))
}

// Splice appends a runtime expression. Its output is escaped while it is
// written when mode is escape.Escape.
func (r *Renderer) Splice(expr program.Renderable, mode escape.Mode) {
	r.push(program.WriteExpr{Expr: expr, Escape: mode})
}

// ElementOpenStart writes `<name`.
func (r *Renderer) ElementOpenStart(name string) {
	r.WriteLiteral("<")
	r.WriteLiteral(name)
}

// AttributeStart writes ` name="`.
func (r *Renderer) AttributeStart(name string) {
	r.WriteLiteral(" ")
	r.WriteLiteral(name)
	r.WriteLiteral(`="`)
}

// AttributeEmpty writes ` name`.
func (r *Renderer) AttributeEmpty(name string) {
	r.WriteLiteral(" ")
	r.WriteLiteral(name)
}

// AttributeEnd closes an attribute value.
func (r *Renderer) AttributeEnd() {
	r.WriteLiteral(`"`)
}

// ElementOpenEnd writes `>`.
func (r *Renderer) ElementOpenEnd() {
	r.WriteLiteral(">")
}

// ElementClose writes `</name>`.
func (r *Renderer) ElementClose(name string) {
	r.WriteLiteral("</")
	r.WriteLiteral(name)
	r.WriteLiteral(">")
}

func (r *Renderer) push(instr program.Instruction) {
	r.live()
	r.instrs = append(r.instrs, instr)
}

func (r *Renderer) take() program.Program {
	r.live()
	r.consumed = true
	instrs := r.instrs
	r.instrs = nil
	if instrs == nil {
		instrs = program.Program{}
	}
	return instrs
}

func (r *Renderer) live() {
	if r.consumed {
		panic(ErrConsumed)
	}
}
