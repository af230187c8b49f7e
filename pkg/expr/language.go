package expr

import "github.com/goliatone/go-markup/pkg/program"

// Language compiles fragment sources into program capabilities.
// Implementations report malformed sources at compile time.
type Language interface {
	Expr(src string) (program.Renderable, error)
	Cond(src string) (program.Condition, error)
	Pattern(src string) (program.Pattern, error)
	Iterable(src string) (program.Iterable, error)
}

// Analyzer is implemented by languages able to report which root variables a
// fragment reads and which names a loop pattern or a pattern-match condition
// binds.
type Analyzer interface {
	Reads(src string) []string
	PatternBinds(src string) []string
	CondBinds(src string) []string
}
