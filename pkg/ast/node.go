package ast

// Node is one of Literal, Element, Splice, If or For.
type Node interface {
	isNode()
}

// Literal is text known when the template is compiled.
type Literal struct {
	Value string
	// Raw writes Value as is instead of escaping it.
	Raw bool
}

// Element is a tag with attributes and children. Void elements have no
// children and no closing tag.
type Element struct {
	Name     string
	Attrs    []Attribute
	Children []Node
	Void     bool
}

// Attribute belongs to an Element. A nil Value renders the bare name
// (`disabled`); a non-nil Value renders name="...". When Toggle is set the
// attribute is only rendered while the condition holds.
type Attribute struct {
	Name   string
	Value  []Node
	Toggle string
}

// Splice renders the value of an expression.
type Splice struct {
	Expr string
	// Raw writes the value without escaping it.
	Raw bool
	// Sanitize runs the value through an HTML sanitizer and writes the
	// result without escaping.
	Sanitize bool
}

// If renders Then when Cond holds and Else otherwise. A nil Else means there
// is no else arm.
type If struct {
	Cond string
	Then []Node
	Else []Node
}

// For renders Body once per item of Iterable, binding Pattern.
type For struct {
	Pattern  string
	Iterable string
	Body     []Node
}

func (Literal) isNode() {}
func (Element) isNode() {}
func (Splice) isNode()  {}
func (If) isNode()      {}
func (For) isNode()     {}

// Text returns an escaped literal.
func Text(value string) Literal { return Literal{Value: value} }

// Raw returns a literal written as is.
func Raw(value string) Literal { return Literal{Value: value, Raw: true} }

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "source": {}, "track": {}, "wbr": {},
}

// IsVoid reports whether name is an HTML void element.
func IsVoid(name string) bool {
	_, ok := voidElements[name]
	return ok
}
