// Package render implements the builder a lowering pass drives while walking
// one lexical scope of a template: the body, a branch arm or a loop body.
//
// A Renderer accumulates program instructions in document order. Nested scopes
// are lowered with a Fork, reified with IntoInstructions and handed back to the
// parent through EmitIf, EmitIfElse or EmitFor. A Renderer is single use:
// after IntoProgram or IntoInstructions every further call panics with
// ErrConsumed.
package render
