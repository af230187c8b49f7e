package pongo

import (
	"sort"
	"strings"

	"github.com/goliatone/go-markup/pkg/expr"
)

var _ expr.Analyzer = (*Language)(nil)

var keywords = map[string]struct{}{
	"and": {}, "or": {}, "not": {}, "in": {}, "is": {},
	"true": {}, "false": {}, "True": {}, "False": {},
	"none": {}, "None": {}, "nil": {},
}

// Reads returns the sorted root variables a pongo2 expression reads. Filter
// names and quoted strings are skipped; filter arguments that name variables
// are reported. `let` conditions are analyzed by the default language.
func (l *Language) Reads(src string) []string {
	if isLet(src) {
		return l.fallback.Reads(src)
	}

	seen := map[string]struct{}{}
	afterPipe := false
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"' || c == '\'':
			j := i + 1
			for j < len(src) && src[j] != c {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			i = j + 1
			afterPipe = false
		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && (isIdentPart(src[j]) || src[j] == '.') {
				j++
			}
			i = j
			afterPipe = false
		case isIdentStart(c):
			j := i
			for j < len(src) && (isIdentPart(src[j]) || src[j] == '.') {
				j++
			}
			if !afterPipe {
				root := src[i:j]
				if k := strings.IndexByte(root, '.'); k >= 0 {
					root = root[:k]
				}
				if _, kw := keywords[root]; !kw && root != "" {
					seen[root] = struct{}{}
				}
			}
			i = j
			afterPipe = false
		case c == '|':
			afterPipe = true
			i++
		case c == ' ' || c == '\t':
			i++
		default:
			afterPipe = false
			i++
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
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

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
