// Package scaffold builds a starting template for an HTML form from the
// request body of an OpenAPI operation. The generated tree prefills controls
// from a `values` map (configurable) and uses only expressions every bundled
// expression language understands.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-markup/pkg/ast"
)

// ErrOperationNotFound is returned when the document has no operation with
// the requested id.
var ErrOperationNotFound = errors.New("scaffold: operation not found")

// Option configures Form.
type Option func(*config)

type config struct {
	valuesRoot   string
	submitLabel  string
	externalRefs bool
	validate     bool
}

// WithValuesRoot sets the variable controls are prefilled from. An empty
// root disables prefilling.
func WithValuesRoot(root string) Option {
	return func(cfg *config) {
		cfg.valuesRoot = strings.TrimSpace(root)
	}
}

// WithSubmitLabel sets the submit button text.
func WithSubmitLabel(label string) Option {
	return func(cfg *config) {
		if label = strings.TrimSpace(label); label != "" {
			cfg.submitLabel = label
		}
	}
}

// WithExternalRefs lets the loader follow references to other documents.
func WithExternalRefs(enabled bool) Option {
	return func(cfg *config) {
		cfg.externalRefs = enabled
	}
}

// WithValidation validates the document before building the form.
func WithValidation(enabled bool) Option {
	return func(cfg *config) {
		cfg.validate = enabled
	}
}

// Form loads an OpenAPI document and returns a template tree for the
// operation identified by operationID. Operations without an id match
// `method:path`, e.g. `post:/users`.
func Form(ctx context.Context, raw []byte, operationID string, options ...Option) ([]ast.Node, error) {
	cfg := config{valuesRoot: "values", submitLabel: "Submit"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if len(raw) == 0 {
		return nil, errors.New("scaffold: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: cfg.externalRefs,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("scaffold: load document: %w", err)
	}
	if cfg.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("scaffold: validate: %w", err)
		}
	}

	method, path, op := findOperation(spec, operationID)
	if op == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	schema := requestSchema(op.RequestBody)
	if schema == nil || len(schema.Properties) == 0 {
		return nil, fmt.Errorf("scaffold: operation %q has no object request body", operationID)
	}

	b := builder{cfg: cfg, required: make(map[string]bool, len(schema.Required))}
	for _, name := range schema.Required {
		b.required[name] = true
	}
	return b.form(method, path, op, schema), nil
}

func findOperation(spec *openapi3.T, operationID string) (string, string, *openapi3.Operation) {
	if spec.Paths == nil {
		return "", "", nil
	}
	paths := spec.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			if id == operationID {
				return method, path, op
			}
		}
	}
	return "", "", nil
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/x-www-form-urlencoded", "multipart/form-data", "application/json"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

type builder struct {
	cfg      config
	required map[string]bool
}

func (b builder) form(method, path string, op *openapi3.Operation, schema *openapi3.Schema) []ast.Node {
	formMethod := "post"
	if method == "GET" {
		formMethod = "get"
	}

	var children []ast.Node
	if title := strings.TrimSpace(op.Summary); title != "" {
		children = append(children, element("h2", nil, ast.Text(title)))
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
			continue
		}
		children = append(children, b.field(name, ref.Value))
	}

	children = append(children, element("button",
		[]ast.Attribute{attr("type", "submit")},
		ast.Text(b.cfg.submitLabel),
	))

	return []ast.Node{element("form",
		[]ast.Attribute{attr("method", formMethod), attr("action", path)},
		children...,
	)}
}

func (b builder) field(name string, schema *openapi3.Schema) ast.Node {
	label := strings.TrimSpace(schema.Title)
	if label == "" {
		label = name
	}

	children := []ast.Node{
		element("label", []ast.Attribute{attr("for", name)}, ast.Text(label)),
		b.control(name, schema),
	}
	if desc := strings.TrimSpace(schema.Description); desc != "" {
		children = append(children, element("p", []ast.Attribute{attr("class", "hint")}, ast.Text(desc)))
	}
	return element("div", []ast.Attribute{attr("class", "field")}, children...)
}

func (b builder) control(name string, schema *openapi3.Schema) ast.Node {
	attrs := []ast.Attribute{attr("id", name), attr("name", name)}
	if b.required[name] {
		attrs = append(attrs, ast.Attribute{Name: "required"})
	}
	value := b.valueExpr(name)

	switch {
	case len(schema.Enum) > 0:
		options := make([]ast.Node, 0, len(schema.Enum))
		for _, item := range schema.Enum {
			text := fmt.Sprint(item)
			optAttrs := []ast.Attribute{attr("value", text)}
			if value != "" {
				optAttrs = append(optAttrs, ast.Attribute{
					Name:   "selected",
					Toggle: value + " == " + strconv.Quote(text),
				})
			}
			options = append(options, element("option", optAttrs, ast.Text(text)))
		}
		return element("select", attrs, options...)
	case schema.Type.Is("boolean"):
		attrs = append(attrs, attr("type", "checkbox"), attr("value", "true"))
		if value != "" {
			attrs = append(attrs, ast.Attribute{Name: "checked", Toggle: value})
		}
		return voidElement("input", attrs)
	case schema.Type.Is("string") && (schema.Format == "textarea" || longText(schema)):
		var children []ast.Node
		if value != "" {
			children = append(children, ast.Splice{Expr: value})
		}
		return element("textarea", attrs, children...)
	}

	attrs = append(attrs, attr("type", inputType(schema)))
	if schema.Type.Is("number") {
		attrs = append(attrs, attr("step", "any"))
	}
	if schema.Min != nil {
		attrs = append(attrs, attr("min", strconv.FormatFloat(*schema.Min, 'f', -1, 64)))
	}
	if schema.Max != nil {
		attrs = append(attrs, attr("max", strconv.FormatFloat(*schema.Max, 'f', -1, 64)))
	}
	if schema.MaxLength != nil {
		attrs = append(attrs, attr("maxlength", strconv.FormatUint(*schema.MaxLength, 10)))
	}
	if value != "" {
		attrs = append(attrs, ast.Attribute{Name: "value", Value: []ast.Node{ast.Splice{Expr: value}}})
	}
	return voidElement("input", attrs)
}

// valueExpr returns the expression reading the field's current value, or ""
// when the name cannot be addressed as a path segment.
func (b builder) valueExpr(name string) string {
	if b.cfg.valuesRoot == "" || !isIdentifier(name) {
		return ""
	}
	return b.cfg.valuesRoot + "." + name
}

func inputType(schema *openapi3.Schema) string {
	if schema.Type.Is("integer") || schema.Type.Is("number") {
		return "number"
	}
	switch schema.Format {
	case "email":
		return "email"
	case "password":
		return "password"
	case "date":
		return "date"
	case "date-time":
		return "datetime-local"
	case "uri", "url":
		return "url"
	default:
		return "text"
	}
}

func longText(schema *openapi3.Schema) bool {
	return schema.MaxLength != nil && *schema.MaxLength > 255
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func attr(name, value string) ast.Attribute {
	return ast.Attribute{Name: name, Value: []ast.Node{ast.Text(value)}}
}

func element(name string, attrs []ast.Attribute, children ...ast.Node) ast.Element {
	return ast.Element{Name: name, Attrs: attrs, Children: children}
}

func voidElement(name string, attrs []ast.Attribute) ast.Element {
	return ast.Element{Name: name, Attrs: attrs, Void: true}
}
