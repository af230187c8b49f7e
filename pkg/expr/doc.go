// Package expr is the default expression language for templates. It turns
// the opaque fragments carried by template nodes into the capabilities a
// program runs: values for splices, conditions for branches, patterns and
// iterables for loops.
//
// Values are dot paths (`user.name`, `items.0`), string, number, boolean and
// null literals, or list literals (`[1, 2, "three"]`). Conditions compose
// values with `==`, `!=`, `<`, `<=`, `>`, `>=`, `&&`, `||`, `!` and
// parentheses; a bare value is tested for truthiness. `let name = path` is a
// pattern-match condition: it holds when path resolves to a non-null value
// and binds that value to name for the then-arm. Loop patterns are `item`,
// `key, value` or `_`.
//
// Lookups are forgiving: a missing path is null rather than an error.
package expr
