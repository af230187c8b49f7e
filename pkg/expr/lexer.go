package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenLt
	tokenLte
	tokenGt
	tokenGte
	tokenAnd
	tokenOr
	tokenNot
	tokenAssign
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenComma
	tokenLet
)

type token struct {
	kind tokenKind
	raw  string
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '[', ']', ',', '!', '=', '<', '>', '&', '|':
		return true
	}
	return false
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	next := func() byte {
		if i >= len(input) {
			return 0
		}
		return input[i]
	}

	consume := func() byte {
		if i >= len(input) {
			return 0
		}
		ch := input[i]
		i++
		return ch
	}

	emit := func(kind tokenKind, raw string) {
		tokens = append(tokens, token{kind: kind, raw: raw})
	}

	for i < len(input) {
		ch := next()
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}

		switch ch {
		case '(':
			consume()
			emit(tokenLParen, "(")
			continue
		case ')':
			consume()
			emit(tokenRParen, ")")
			continue
		case '[':
			consume()
			emit(tokenLBracket, "[")
			continue
		case ']':
			consume()
			emit(tokenRBracket, "]")
			continue
		case ',':
			consume()
			emit(tokenComma, ",")
			continue
		case '!':
			consume()
			if next() == '=' {
				consume()
				emit(tokenNeq, "!=")
				continue
			}
			emit(tokenNot, "!")
			continue
		case '=':
			consume()
			if next() == '=' {
				consume()
				emit(tokenEq, "==")
				continue
			}
			emit(tokenAssign, "=")
			continue
		case '<':
			consume()
			if next() == '=' {
				consume()
				emit(tokenLte, "<=")
				continue
			}
			emit(tokenLt, "<")
			continue
		case '>':
			consume()
			if next() == '=' {
				consume()
				emit(tokenGte, ">=")
				continue
			}
			emit(tokenGt, ">")
			continue
		case '&':
			consume()
			if next() != '&' {
				return nil, fmt.Errorf("expr: unexpected '&'; use '&&'")
			}
			consume()
			emit(tokenAnd, "&&")
			continue
		case '|':
			consume()
			if next() != '|' {
				return nil, fmt.Errorf("expr: unexpected '|'; use '||'")
			}
			consume()
			emit(tokenOr, "||")
			continue
		case '"', '\'':
			quote := consume()
			start := i
			escaped := false
			for i < len(input) {
				c := consume()
				if escaped {
					escaped = false
					continue
				}
				if c == '\\' {
					escaped = true
					continue
				}
				if c == quote {
					body := input[start : i-1]
					if quote == '\'' {
						// strconv.Unquote only accepts single-character rune literals.
						body = strings.ReplaceAll(strings.ReplaceAll(body, `\'`, `'`), `"`, `\"`)
					}
					value, err := strconv.Unquote(`"` + body + `"`)
					if err != nil {
						return nil, fmt.Errorf("expr: invalid string literal: %w", err)
					}
					emit(tokenString, value)
					goto nextToken
				}
			}
			return nil, errors.New("expr: unterminated string literal")
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			raw := input[start:i]
			switch strings.ToLower(raw) {
			case "true", "false":
				emit(tokenBool, strings.ToLower(raw))
			case "null", "nil":
				emit(tokenNull, "null")
			case "let":
				emit(tokenLet, "let")
			case "and":
				emit(tokenAnd, "&&")
			case "or":
				emit(tokenOr, "||")
			case "not":
				emit(tokenNot, "!")
			default:
				if looksLikeNumber(raw) {
					emit(tokenNumber, raw)
				} else {
					emit(tokenIdentifier, raw)
				}
			}
		}

	nextToken:
		continue
	}

	return tokens, nil
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+'
}
