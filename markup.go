package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-markup/internal/lower"
	"github.com/goliatone/go-markup/pkg/ast"
	"github.com/goliatone/go-markup/pkg/expr"
	"github.com/goliatone/go-markup/pkg/program"
	"github.com/goliatone/go-markup/pkg/render"
)

// Template is a compiled template.
type Template struct {
	name    string
	markup  *program.Markup
	globals map[string]any
	free    []string
}

// Compile lowers nodes into a Template named name.
func Compile(name string, nodes []ast.Node, options ...Option) (*Template, error) {
	cfg := newConfig(options)

	var renderOpts []render.Option
	if cfg.sink != "" {
		renderOpts = append(renderOpts, render.WithSink(cfg.sink))
	}
	r := render.New(renderOpts...)
	if err := lower.Lower(r, nodes, cfg.language); err != nil {
		return nil, fmt.Errorf("markup: compile %s: %w", name, err)
	}

	tpl := &Template{
		name:    name,
		markup:  r.IntoProgram(),
		globals: cfg.globals,
	}
	if t := themeGlobal(cfg.theme); t != nil {
		if tpl.globals == nil {
			tpl.globals = make(map[string]any, 1)
		}
		tpl.globals["theme"] = t
	}
	if analyzer, ok := cfg.language.(expr.Analyzer); ok {
		tpl.free = lower.FreeVariables(nodes, analyzer)
	}
	return tpl, nil
}

// CompileDocument compiles a decoded template document.
func CompileDocument(doc ast.Document, options ...Option) (*Template, error) {
	return Compile(doc.Name, doc.Nodes, options...)
}

// Parse decodes a JSON or YAML template document and compiles it.
func Parse(data []byte, source string, options ...Option) (*Template, error) {
	doc, err := ast.Decode(data, source)
	if err != nil {
		return nil, err
	}
	return CompileDocument(doc, options...)
}

// Name returns the template name.
func (t *Template) Name() string {
	return t.name
}

// Program returns the compiled program. It can be spliced into other
// templates as a value.
func (t *Template) Program() *program.Markup {
	return t.markup
}

// FreeVariables lists the root names the template reads from its data. It is
// nil when the expression language cannot analyze fragments.
func (t *Template) FreeVariables() []string {
	return append([]string(nil), t.free...)
}

// Execute renders the template into w. Writing stops at the first error,
// which is returned unchanged.
func (t *Template) Execute(w io.Writer, data map[string]any) error {
	return t.markup.Render(w, t.merge(data))
}

// ExecuteString renders the template into a string.
func (t *Template) ExecuteString(data map[string]any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (t *Template) merge(data map[string]any) map[string]any {
	if len(t.globals) == 0 {
		return data
	}
	out := make(map[string]any, len(t.globals)+len(data))
	for key, value := range t.globals {
		out[key] = value
	}
	for key, value := range data {
		out[key] = value
	}
	return out
}
