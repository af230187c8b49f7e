package exprlang

import (
	"sort"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	markupexpr "github.com/goliatone/go-markup/pkg/expr"
)

var _ markupexpr.Analyzer = (*Language)(nil)

// Reads returns the sorted root variables src reads. Names declared with
// `let` inside the expression and called functions are not reported.
// `let` conditions are analyzed by the default language.
func (l *Language) Reads(src string) []string {
	if isLet(src) {
		return l.fallback.Reads(src)
	}
	tree, err := parser.Parse(src)
	if err != nil {
		return nil
	}

	v := &rootCollector{
		reads:    map[string]struct{}{},
		declared: map[string]struct{}{},
		called:   map[string]struct{}{},
	}
	ast.Walk(&tree.Node, v)

	out := make([]string, 0, len(v.reads))
	for name := range v.reads {
		if _, ok := v.declared[name]; ok {
			continue
		}
		if _, ok := v.called[name]; ok {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PatternBinds delegates to the default language, which parses patterns.
func (l *Language) PatternBinds(src string) []string {
	return l.fallback.PatternBinds(src)
}

// CondBinds reports the name a `let` condition binds.
func (l *Language) CondBinds(src string) []string {
	if isLet(src) {
		return l.fallback.CondBinds(src)
	}
	return nil
}

type rootCollector struct {
	reads    map[string]struct{}
	declared map[string]struct{}
	called   map[string]struct{}
}

func (c *rootCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if n.Value != "" && !strings.HasPrefix(n.Value, "$") {
			c.reads[n.Value] = struct{}{}
		}
	case *ast.VariableDeclaratorNode:
		c.declared[n.Name] = struct{}{}
	case *ast.CallNode:
		if callee, ok := n.Callee.(*ast.IdentifierNode); ok {
			c.called[callee.Value] = struct{}{}
		}
	}
}

// isLet reports a `let name = value` pattern-match condition. A `let` followed
// by `;` is an expr-lang variable declaration instead.
func isLet(src string) bool {
	fields := strings.Fields(src)
	return len(fields) > 0 && fields[0] == "let" && !strings.Contains(src, ";")
}
