package lower

import (
	"sort"

	"github.com/goliatone/go-markup/pkg/ast"
	"github.com/goliatone/go-markup/pkg/expr"
)

// FreeVariables returns, sorted, the root names nodes read that no
// enclosing loop pattern or pattern-match condition binds. These are the
// names the caller has to supply as data.
func FreeVariables(nodes []ast.Node, analyzer expr.Analyzer) []string {
	free := make(map[string]struct{})
	collect(nodes, analyzer, nil, free)

	names := make([]string, 0, len(free))
	for name := range free {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collect(nodes []ast.Node, a expr.Analyzer, bound map[string]struct{}, free map[string]struct{}) {
	read := func(src string) {
		for _, name := range a.Reads(src) {
			if _, ok := bound[name]; !ok {
				free[name] = struct{}{}
			}
		}
	}

	for _, node := range nodes {
		switch n := node.(type) {
		case ast.Element:
			for _, attr := range n.Attrs {
				if attr.Toggle != "" {
					read(attr.Toggle)
				}
				collect(attr.Value, a, bound, free)
			}
			collect(n.Children, a, bound, free)
		case ast.Splice:
			read(n.Expr)
		case ast.If:
			read(n.Cond)
			collect(n.Then, a, extend(bound, a.CondBinds(n.Cond)), free)
			collect(n.Else, a, bound, free)
		case ast.For:
			read(n.Iterable)
			collect(n.Body, a, extend(bound, a.PatternBinds(n.Pattern)), free)
		}
	}
}

func extend(bound map[string]struct{}, names []string) map[string]struct{} {
	if len(names) == 0 {
		return bound
	}
	out := make(map[string]struct{}, len(bound)+len(names))
	for name := range bound {
		out[name] = struct{}{}
	}
	for _, name := range names {
		out[name] = struct{}{}
	}
	return out
}
