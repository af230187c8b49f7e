package program

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-markup/pkg/escape"
	"github.com/goliatone/go-markup/pkg/testsupport"
)

type constant string

func (c constant) RenderTo(w io.Writer, _ *Scope) error {
	_, err := io.WriteString(w, string(c))
	return err
}

func (c constant) String() string { return fmt.Sprintf("%q", string(c)) }

func variable(name string) Renderable {
	return RenderFunc(func(w io.Writer, s *Scope) error {
		v, _ := s.Lookup(name)
		_, err := fmt.Fprint(w, v)
		return err
	})
}

func always(ok bool) Condition {
	return ConditionFunc(func(*Scope) (bool, error) { return ok, nil })
}

func bindValue(name string) Pattern {
	return PatternFunc(func(s *Scope, _, value any) error {
		s.Set(name, value)
		return nil
	})
}

func values(items ...any) Iterable {
	return IterableFunc(func(_ *Scope, yield func(key, value any) error) error {
		for i, item := range items {
			if err := yield(i, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func TestExecEscapesSplicedExpressions(t *testing.T) {
	t.Parallel()

	prog := Program{
		WriteLiteral{Text: "<p>"},
		WriteExpr{Expr: constant("Hi & bye"), Escape: escape.Escape},
		WriteLiteral{Text: "</p>"},
	}

	var b strings.Builder
	if err := prog.Exec(&b, nil); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got := b.String(); got != "<p>Hi &amp; bye</p>" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestExecPassThruLeavesExpressionOutput(t *testing.T) {
	t.Parallel()

	prog := Program{WriteExpr{Expr: constant("<b>bold</b>"), Escape: escape.PassThru}}

	var b strings.Builder
	if err := prog.Exec(&b, nil); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got := b.String(); got != "<b>bold</b>" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestExecStopsAtFirstFailedWrite(t *testing.T) {
	t.Parallel()

	prog := Program{
		WriteLiteral{Text: "a"},
		WriteLiteral{Text: "b"},
		WriteLiteral{Text: "c"},
		WriteLiteral{Text: "d"},
	}

	for failAt := 1; failAt <= len(prog); failAt++ {
		sink := &testsupport.FailingWriter{FailAt: failAt}
		err := prog.Exec(sink, nil)
		if !errors.Is(err, testsupport.ErrSinkClosed) {
			t.Fatalf("failAt %d: expected sink error, got %v", failAt, err)
		}
		if got := len(sink.Writes); got != failAt-1 {
			t.Fatalf("failAt %d: %d successful writes, want %d", failAt, got, failAt-1)
		}
		if sink.Calls() != failAt {
			t.Fatalf("failAt %d: writer called %d times after failure", failAt, sink.Calls())
		}
	}
}

func TestExecReturnsRenderErrorsVerbatim(t *testing.T) {
	t.Parallel()

	boom := errors.New("render failed")
	prog := Program{
		WriteLiteral{Text: "before"},
		WriteExpr{Expr: RenderFunc(func(io.Writer, *Scope) error { return boom })},
		WriteLiteral{Text: "after"},
	}

	sink := &testsupport.RecordingWriter{}
	if err := prog.Exec(sink, nil); err != boom {
		t.Fatalf("expected the render error itself, got %v", err)
	}
	if len(sink.Writes) != 1 || sink.Writes[0] != "before" {
		t.Fatalf("unexpected writes %v", sink.Writes)
	}
}

func TestIfWithoutElseWritesNothingOnFalse(t *testing.T) {
	t.Parallel()

	prog := Program{If{Cond: always(false), Then: Program{WriteLiteral{Text: "x"}}}}

	var b strings.Builder
	if err := prog.Exec(&b, nil); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("expected no output, got %q", b.String())
	}
}

func TestIfWithEmptyThenIsLegal(t *testing.T) {
	t.Parallel()

	prog := Program{If{Cond: always(true), Then: Program{}}}

	var b strings.Builder
	if err := prog.Exec(&b, nil); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if b.Len() != 0 {
		t.Fatalf("expected no output, got %q", b.String())
	}
}

func TestIfElseSelectsArm(t *testing.T) {
	t.Parallel()

	els := Program{WriteLiteral{Text: "no"}}
	for _, tc := range []struct {
		cond bool
		want string
	}{
		{cond: true, want: "yes"},
		{cond: false, want: "no"},
	} {
		prog := Program{If{Cond: always(tc.cond), Then: Program{WriteLiteral{Text: "yes"}}, Else: &els}}
		var b strings.Builder
		if err := prog.Exec(&b, nil); err != nil {
			t.Fatalf("exec: %v", err)
		}
		if b.String() != tc.want {
			t.Fatalf("cond %v: got %q want %q", tc.cond, b.String(), tc.want)
		}
	}
}

func TestConditionBindingsStayInThenArm(t *testing.T) {
	t.Parallel()

	bind := ConditionFunc(func(s *Scope) (bool, error) {
		s.Set("who", "inner")
		return true, nil
	})
	prog := Program{
		If{Cond: bind, Then: Program{WriteExpr{Expr: variable("who")}}},
		WriteLiteral{Text: "|"},
		WriteExpr{Expr: variable("who")},
	}

	var b strings.Builder
	if err := prog.Exec(&b, NewScope(map[string]any{"who": "outer"})); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got := b.String(); got != "inner|outer" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestForRunsBodyPerItemInOrder(t *testing.T) {
	t.Parallel()

	prog := Program{For{
		Pattern:  bindValue("x"),
		Iterable: values(1, 2),
		Body:     Program{WriteExpr{Expr: variable("x"), Escape: escape.PassThru}},
	}}

	var b strings.Builder
	if err := prog.Exec(&b, nil); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if got := b.String(); got != "12" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestForStopsOnBodyFailure(t *testing.T) {
	t.Parallel()

	prog := Program{For{
		Pattern:  bindValue("x"),
		Iterable: values("a", "b", "c"),
		Body:     Program{WriteExpr{Expr: variable("x")}},
	}}

	sink := &testsupport.FailingWriter{FailAt: 2}
	if err := prog.Exec(sink, nil); !errors.Is(err, testsupport.ErrSinkClosed) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if sink.String() != "a" {
		t.Fatalf("unexpected partial output %q", sink.String())
	}
}

func TestMarkupRenderAndListing(t *testing.T) {
	t.Parallel()

	els := Program{WriteLiteral{Text: "none"}}
	m := NewMarkup("w", Program{
		WriteLiteral{Text: "<ul>"},
		If{
			Cond: always(true),
			Then: Program{WriteExpr{Expr: constant("item"), Escape: escape.Escape}},
			Else: &els,
		},
		WriteLiteral{Text: "</ul>"},
	})

	out, err := m.RenderString(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "<ul>item</ul>" {
		t.Fatalf("unexpected output %q", out)
	}

	want := strings.Join([]string{
		"markup(w) {",
		`  write "<ul>"`,
		"  if <program.ConditionFunc>",
		`    expr escape "item"`,
		"  else",
		`    write "none"`,
		"  end",
		`  write "</ul>"`,
		"}",
		"",
	}, "\n")
	if diff := testsupport.CompareGolden(want, m.String()); diff != "" {
		t.Fatalf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkupProgramReturnsCopy(t *testing.T) {
	t.Parallel()

	m := NewMarkup("w", Program{WriteLiteral{Text: "a"}})
	p := m.Program()
	p[0] = WriteLiteral{Text: "b"}

	out, err := m.RenderString(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "a" {
		t.Fatalf("markup mutated through Program(): %q", out)
	}
}

func TestScopeShadowingAndFlatten(t *testing.T) {
	t.Parallel()

	data := map[string]any{"a": 1, "b": 2}
	root := NewScope(data)
	child := root.Child()
	child.Set("b", 3)
	child.Set("c", 4)

	if v, _ := child.Lookup("b"); v != 3 {
		t.Fatalf("expected shadowed b=3, got %v", v)
	}
	if v, _ := root.Lookup("b"); v != 2 {
		t.Fatalf("root b changed: %v", v)
	}
	if _, ok := root.Lookup("c"); ok {
		t.Fatalf("child binding leaked into root")
	}
	if _, ok := data["c"]; ok {
		t.Fatalf("caller data mutated")
	}

	flat := child.Flatten()
	if flat["a"] != 1 || flat["b"] != 3 || flat["c"] != 4 {
		t.Fatalf("unexpected flatten result %v", flat)
	}
	if got := strings.Join(child.Names(), ","); got != "a,b,c" {
		t.Fatalf("unexpected names %q", got)
	}
}

func TestSelfSplicingMarkupStopsAtNestingLimit(t *testing.T) {
	t.Parallel()

	var m *Markup
	m = NewMarkup("w", Program{
		WriteLiteral{Text: "x"},
		WriteExpr{Expr: RenderFunc(func(w io.Writer, s *Scope) error {
			return m.RenderTo(w, s)
		}), Escape: escape.PassThru},
	})

	var b strings.Builder
	err := m.Render(&b, nil)
	if !errors.Is(err, ErrNestingTooDeep) {
		t.Fatalf("expected ErrNestingTooDeep, got %v", err)
	}
	if got := b.String(); got != strings.Repeat("x", MaxNesting+1) {
		t.Fatalf("unexpected output length %d", len(got))
	}
}

func TestNestedScopeKeepsDepthAcrossChildren(t *testing.T) {
	t.Parallel()

	s := NewScope(nil)
	for i := 0; i < MaxNesting; i++ {
		next, err := s.Child().Nested()
		if err != nil {
			t.Fatalf("level %d: %v", i+1, err)
		}
		s = next
	}
	if _, err := s.Child().Nested(); !errors.Is(err, ErrNestingTooDeep) {
		t.Fatalf("expected ErrNestingTooDeep past the limit, got %v", err)
	}
}
