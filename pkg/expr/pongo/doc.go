// Package pongo implements expr.Language on top of pongo2, so template
// fragments can use Django-style expressions and filters
// (`user.name|title`, `items|length > 0 and not hidden`).
//
// Splices and conditions are compiled to pongo2 templates with autoescaping
// turned off: escaping stays with the program's per-write escape mode, so a
// value is never escaped twice. Loop patterns, iterables and `let` conditions
// use the default expression language.
package pongo
