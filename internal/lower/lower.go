// Package lower walks an ast tree and drives a render.Renderer, turning each
// node into builder calls. Control nodes are lowered into forked renderers
// whose instructions become the arms and bodies of If and For.
package lower

import (
	"fmt"

	"github.com/goliatone/go-markup/pkg/ast"
	"github.com/goliatone/go-markup/pkg/escape"
	"github.com/goliatone/go-markup/pkg/expr"
	"github.com/goliatone/go-markup/pkg/program"
	"github.com/goliatone/go-markup/pkg/render"
)

// Lower appends the instructions for nodes to r, compiling fragments with
// lang. The first fragment error stops lowering; r is left partially built.
func Lower(r *render.Renderer, nodes []ast.Node, lang expr.Language) error {
	for _, node := range nodes {
		if err := lowerNode(r, node, lang); err != nil {
			return err
		}
	}
	return nil
}

func lowerNode(r *render.Renderer, node ast.Node, lang expr.Language) error {
	switch n := node.(type) {
	case ast.Literal:
		r.Text(n.Value, modeOf(n.Raw))
		return nil
	case ast.Element:
		return lowerElement(r, n, lang)
	case ast.Splice:
		return lowerSplice(r, n, lang)
	case ast.If:
		return lowerIf(r, n, lang)
	case ast.For:
		return lowerFor(r, n, lang)
	default:
		return fmt.Errorf("lower: %w: %T", ast.ErrUnknownNode, node)
	}
}

func lowerElement(r *render.Renderer, el ast.Element, lang expr.Language) error {
	r.ElementOpenStart(el.Name)
	for _, attr := range el.Attrs {
		if err := lowerAttribute(r, attr, lang); err != nil {
			return fmt.Errorf("lower: <%s>: %w", el.Name, err)
		}
	}
	r.ElementOpenEnd()
	if el.Void {
		return nil
	}
	if err := Lower(r, el.Children, lang); err != nil {
		return err
	}
	r.ElementClose(el.Name)
	return nil
}

func lowerAttribute(r *render.Renderer, attr ast.Attribute, lang expr.Language) error {
	if attr.Toggle == "" {
		return writeAttribute(r, attr, lang)
	}

	cond, err := lang.Cond(attr.Toggle)
	if err != nil {
		return fmt.Errorf("lower: toggle %s %q: %w", attr.Name, attr.Toggle, err)
	}
	child := r.Fork()
	if err := writeAttribute(child, attr, lang); err != nil {
		return err
	}
	r.EmitIf(cond, child.IntoInstructions())
	return nil
}

func writeAttribute(r *render.Renderer, attr ast.Attribute, lang expr.Language) error {
	if attr.Value == nil {
		r.AttributeEmpty(attr.Name)
		return nil
	}
	r.AttributeStart(attr.Name)
	if err := Lower(r, attr.Value, lang); err != nil {
		return err
	}
	r.AttributeEnd()
	return nil
}

func lowerSplice(r *render.Renderer, n ast.Splice, lang expr.Language) error {
	value, err := lang.Expr(n.Expr)
	if err != nil {
		return fmt.Errorf("lower: splice %q: %w", n.Expr, err)
	}
	if n.Sanitize {
		r.Splice(expr.Sanitized(value), escape.PassThru)
		return nil
	}
	r.Splice(value, modeOf(n.Raw))
	return nil
}

func lowerIf(r *render.Renderer, n ast.If, lang expr.Language) error {
	cond, err := lang.Cond(n.Cond)
	if err != nil {
		return fmt.Errorf("lower: if %q: %w", n.Cond, err)
	}
	then, err := lowerScope(r, n.Then, lang)
	if err != nil {
		return err
	}
	if n.Else == nil {
		r.EmitIf(cond, then)
		return nil
	}
	els, err := lowerScope(r, n.Else, lang)
	if err != nil {
		return err
	}
	r.EmitIfElse(cond, then, els)
	return nil
}

func lowerFor(r *render.Renderer, n ast.For, lang expr.Language) error {
	pattern, err := lang.Pattern(n.Pattern)
	if err != nil {
		return fmt.Errorf("lower: for pattern %q: %w", n.Pattern, err)
	}
	iterable, err := lang.Iterable(n.Iterable)
	if err != nil {
		return fmt.Errorf("lower: for iterable %q: %w", n.Iterable, err)
	}
	body, err := lowerScope(r, n.Body, lang)
	if err != nil {
		return err
	}
	r.EmitFor(pattern, iterable, body)
	return nil
}

func lowerScope(r *render.Renderer, nodes []ast.Node, lang expr.Language) (program.Program, error) {
	child := r.Fork()
	if err := Lower(child, nodes, lang); err != nil {
		return nil, err
	}
	return child.IntoInstructions(), nil
}

func modeOf(raw bool) escape.Mode {
	if raw {
		return escape.PassThru
	}
	return escape.Escape
}
