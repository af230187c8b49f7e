package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type tokenStream struct {
	tokens []token
	pos    int
}

func (s *tokenStream) done() bool {
	return s.pos >= len(s.tokens)
}

func (s *tokenStream) peek() (token, bool) {
	if s.done() {
		return token{}, false
	}
	return s.tokens[s.pos], true
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.done() || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if s.done() || s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *tokenStream) expectEnd() error {
	if tok, ok := s.peek(); ok {
		return fmt.Errorf("expr: unexpected token %q", tok.raw)
	}
	return nil
}

func newStream(src string) (*tokenStream, error) {
	tokens, err := tokenize(strings.TrimSpace(src))
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, errors.New("expr: empty expression")
	}
	return &tokenStream{tokens: tokens}, nil
}

func parseValueSource(src string) (valueNode, error) {
	stream, err := newStream(src)
	if err != nil {
		return nil, err
	}
	node, err := parseValue(stream)
	if err != nil {
		return nil, err
	}
	if err := stream.expectEnd(); err != nil {
		return nil, err
	}
	return node, nil
}

func parseCondSource(src string) (condNode, error) {
	stream, err := newStream(src)
	if err != nil {
		return nil, err
	}
	if stream.match(tokenLet) {
		return parseLet(stream)
	}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if err := stream.expectEnd(); err != nil {
		return nil, err
	}
	return node, nil
}

func parseLet(stream *tokenStream) (condNode, error) {
	name, ok := stream.consume(tokenIdentifier)
	if !ok || !isName(name.raw) {
		return nil, errors.New("expr: let expects a variable name")
	}
	if !stream.match(tokenAssign) {
		return nil, fmt.Errorf("expr: let %s expects '='", name.raw)
	}
	value, err := parseValue(stream)
	if err != nil {
		return nil, err
	}
	if err := stream.expectEnd(); err != nil {
		return nil, err
	}
	return condLet{name: name.raw, value: value}, nil
}

func parseOr(stream *tokenStream) (condNode, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = condOr{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (condNode, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = condAnd{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (condNode, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return condNot{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (condNode, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("expr: missing closing ')'")
		}
		return inner, nil
	}

	left, err := parseValue(stream)
	if err != nil {
		return nil, err
	}

	tok, ok := stream.peek()
	if !ok {
		return condTruthy{value: left}, nil
	}
	switch tok.kind {
	case tokenEq, tokenNeq, tokenLt, tokenLte, tokenGt, tokenGte:
		stream.pos++
		right, err := parseValue(stream)
		if err != nil {
			return nil, err
		}
		return condCompare{left: left, op: tok.kind, right: right}, nil
	default:
		return condTruthy{value: left}, nil
	}
}

func parseValue(stream *tokenStream) (valueNode, error) {
	tok, ok := stream.peek()
	if !ok {
		return nil, errors.New("expr: missing value")
	}
	stream.pos++

	switch tok.kind {
	case tokenIdentifier:
		return pathNode{path: tok.raw}, nil
	case tokenString:
		return literalNode{literal: tok.raw}, nil
	case tokenBool:
		return literalNode{literal: tok.raw == "true"}, nil
	case tokenNull:
		return literalNode{literal: nil}, nil
	case tokenNumber:
		if n, err := strconv.Atoi(tok.raw); err == nil {
			return literalNode{literal: n}, nil
		}
		f, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("expr: invalid number literal %q", tok.raw)
		}
		return literalNode{literal: f}, nil
	case tokenLBracket:
		var items []valueNode
		if stream.match(tokenRBracket) {
			return listNode{}, nil
		}
		for {
			item, err := parseValue(stream)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if stream.match(tokenComma) {
				continue
			}
			if stream.match(tokenRBracket) {
				return listNode{items: items}, nil
			}
			return nil, errors.New("expr: missing closing ']'")
		}
	default:
		return nil, fmt.Errorf("expr: expected value, got %q", tok.raw)
	}
}

func parsePatternSource(src string) ([]string, error) {
	stream, err := newStream(src)
	if err != nil {
		return nil, err
	}
	var names []string
	for {
		tok, ok := stream.consume(tokenIdentifier)
		if !ok || !isName(tok.raw) {
			return nil, fmt.Errorf("expr: invalid loop pattern %q", src)
		}
		names = append(names, tok.raw)
		if !stream.match(tokenComma) {
			break
		}
	}
	if err := stream.expectEnd(); err != nil {
		return nil, err
	}
	if len(names) > 2 {
		return nil, fmt.Errorf("expr: loop pattern %q binds more than two names", src)
	}
	return names, nil
}

func isName(raw string) bool {
	if raw == "" || strings.Contains(raw, ".") {
		return false
	}
	for i, r := range raw {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
