// Package program defines the output program produced by lowering a template:
// an ordered list of primitive instructions that, executed against an
// io.Writer, reproduce the document text. Execution stops at the first error
// and returns it unchanged; output written before the failing instruction is
// not rolled back.
//
// Expressions, conditions, loop patterns and iterables are opaque to this
// package. They reach it through the Renderable, Condition, Pattern and
// Iterable capabilities, implemented by an expression language such as
// pkg/expr.
package program
