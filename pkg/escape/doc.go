// Package escape holds the escaping policy applied to every piece of text a
// template emits. A Mode travels with each write rather than being set per
// document, so one template can mix trusted markup and escaped user values.
//
// PassThru is reserved for content the lowering stage knows to be safe: tag
// and attribute names, literal template text, and HTML that went through
// Sanitize. Splicing user-controlled values with PassThru is an injection risk
// that callers prevent by picking the mode at each call site.
package escape
