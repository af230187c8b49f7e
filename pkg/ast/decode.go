package ast

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-markup/pkg/escape"
)

// ErrUnknownNode is returned when a document node sets no known kind key.
var ErrUnknownNode = errors.New("ast: unknown node kind")

// Document is a named template tree.
type Document struct {
	Name   string
	Source string
	Nodes  []Node
}

type documentFile struct {
	Name  string     `json:"name" yaml:"name"`
	Nodes []nodeFile `json:"nodes" yaml:"nodes"`
}

type nodeFile struct {
	Text *string `json:"text" yaml:"text"`
	Raw  *string `json:"raw" yaml:"raw"`

	Element  string     `json:"element" yaml:"element"`
	Void     *bool      `json:"void" yaml:"void"`
	Attrs    []attrFile `json:"attrs" yaml:"attrs"`
	Children []nodeFile `json:"children" yaml:"children"`

	Splice   string `json:"splice" yaml:"splice"`
	Mode     string `json:"mode" yaml:"mode"`
	Sanitize bool   `json:"sanitize" yaml:"sanitize"`

	If   string      `json:"if" yaml:"if"`
	Then []nodeFile  `json:"then" yaml:"then"`
	Else *[]nodeFile `json:"else" yaml:"else"`

	For string     `json:"for" yaml:"for"`
	In  string     `json:"in" yaml:"in"`
	Do  []nodeFile `json:"do" yaml:"do"`
}

type attrFile struct {
	Name   string     `json:"name" yaml:"name"`
	Value  *attrValue `json:"value" yaml:"value"`
	Toggle string     `json:"toggle" yaml:"toggle"`
}

// attrValue accepts either a plain string or a list of nodes.
type attrValue struct {
	nodes []nodeFile
}

func (v *attrValue) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		v.nodes = []nodeFile{{Text: &text}}
		return nil
	}
	v.nodes = []nodeFile{}
	return json.Unmarshal(data, &v.nodes)
}

func (v *attrValue) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		text := value.Value
		v.nodes = []nodeFile{{Text: &text}}
		return nil
	}
	v.nodes = []nodeFile{}
	return value.Decode(&v.nodes)
}

// Decode parses a JSON or YAML template document. source names the document
// in errors and is the fallback name when the document does not set one.
func Decode(data []byte, source string) (Document, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, fmt.Errorf("ast: file %s is empty", source)
	}

	var doc documentFile
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentFile{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("ast: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}

	nodes, err := convertNodes(doc.Nodes, "nodes")
	if err != nil {
		return Document{}, fmt.Errorf("ast: %s: %w", source, err)
	}

	name := strings.TrimSpace(doc.Name)
	if name == "" {
		name = source
	}
	return Document{Name: name, Source: source, Nodes: nodes}, nil
}

func convertNodes(raw []nodeFile, path string) ([]Node, error) {
	if raw == nil {
		return nil, nil
	}
	out := make([]Node, 0, len(raw))
	for idx, item := range raw {
		node, err := convertNode(item, fmt.Sprintf("%s[%d]", path, idx))
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func convertNode(raw nodeFile, path string) (Node, error) {
	kinds := raw.kinds()
	switch len(kinds) {
	case 0:
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownNode)
	case 1:
	default:
		return nil, fmt.Errorf("%s: node sets more than one kind: %s", path, strings.Join(kinds, ", "))
	}

	switch kinds[0] {
	case "text":
		return Literal{Value: *raw.Text}, nil
	case "raw":
		return Literal{Value: *raw.Raw, Raw: true}, nil
	case "element":
		return convertElement(raw, path)
	case "splice":
		mode, ok := escape.ParseMode(raw.Mode)
		if !ok {
			return nil, fmt.Errorf("%s: unknown escape mode %q", path, raw.Mode)
		}
		return Splice{Expr: raw.Splice, Raw: mode == escape.PassThru, Sanitize: raw.Sanitize}, nil
	case "if":
		then, err := convertNodes(raw.Then, path+".then")
		if err != nil {
			return nil, err
		}
		node := If{Cond: raw.If, Then: then}
		if raw.Else != nil {
			els, err := convertNodes(*raw.Else, path+".else")
			if err != nil {
				return nil, err
			}
			if els == nil {
				els = []Node{}
			}
			node.Else = els
		}
		return node, nil
	default:
		if strings.TrimSpace(raw.In) == "" {
			return nil, fmt.Errorf("%s: for %q needs an `in` iterable", path, raw.For)
		}
		body, err := convertNodes(raw.Do, path+".do")
		if err != nil {
			return nil, err
		}
		return For{Pattern: raw.For, Iterable: raw.In, Body: body}, nil
	}
}

func convertElement(raw nodeFile, path string) (Node, error) {
	name := strings.TrimSpace(raw.Element)
	if !validName(name) {
		return nil, fmt.Errorf("%s: invalid element name %q", path, raw.Element)
	}
	void := IsVoid(strings.ToLower(name))
	if raw.Void != nil {
		void = *raw.Void
	}
	if void && len(raw.Children) > 0 {
		return nil, fmt.Errorf("%s: void element %q cannot have children", path, name)
	}

	el := Element{Name: name, Void: void}
	for idx, attr := range raw.Attrs {
		attrPath := fmt.Sprintf("%s.attrs[%d]", path, idx)
		attrName := strings.TrimSpace(attr.Name)
		if !validName(attrName) {
			return nil, fmt.Errorf("%s: invalid attribute name %q", attrPath, attr.Name)
		}
		out := Attribute{Name: attrName, Toggle: strings.TrimSpace(attr.Toggle)}
		if attr.Value != nil {
			value, err := convertNodes(attr.Value.nodes, attrPath+".value")
			if err != nil {
				return nil, err
			}
			if value == nil {
				value = []Node{}
			}
			out.Value = value
		}
		el.Attrs = append(el.Attrs, out)
	}

	children, err := convertNodes(raw.Children, path+".children")
	if err != nil {
		return nil, err
	}
	el.Children = children
	return el, nil
}

func (raw nodeFile) kinds() []string {
	var kinds []string
	if raw.Text != nil {
		kinds = append(kinds, "text")
	}
	if raw.Raw != nil {
		kinds = append(kinds, "raw")
	}
	if raw.Element != "" {
		kinds = append(kinds, "element")
	}
	if raw.Splice != "" {
		kinds = append(kinds, "splice")
	}
	if raw.If != "" {
		kinds = append(kinds, "if")
	}
	if raw.For != "" {
		kinds = append(kinds, "for")
	}
	return kinds
}

// validName accepts tag and attribute names that are safe to write verbatim.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == ':', r == '.', r == '@':
		default:
			return false
		}
	}
	return true
}
