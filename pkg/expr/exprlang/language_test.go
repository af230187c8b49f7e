package exprlang

import (
	"errors"
	"strings"
	"testing"

	"github.com/expr-lang/expr"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-markup/pkg/escape"
	markupexpr "github.com/goliatone/go-markup/pkg/expr"
	"github.com/goliatone/go-markup/pkg/program"
)

func TestExprRendersValues(t *testing.T) {
	t.Parallel()

	lang := New()
	data := map[string]any{
		"price": 12,
		"qty":   3,
		"user":  map[string]any{"name": "ada"},
		"tags":  []string{"go", "html"},
	}

	cases := []struct {
		src  string
		want string
	}{
		{src: "price * qty", want: "36"},
		{src: "upper(user.name)", want: "ADA"},
		{src: `user?.email ?? "none"`, want: "none"},
		{src: `join(tags, ", ")`, want: "go, html"},
		{src: "missing", want: ""},
		{src: `"<" + user.name + ">"`, want: "&lt;ada&gt;"},
	}

	for _, tc := range cases {
		value, err := lang.Expr(tc.src)
		if err != nil {
			t.Fatalf("Expr(%q) returned error: %v", tc.src, err)
		}
		got, err := program.NewMarkup("w", program.Program{
			program.WriteExpr{Expr: value, Escape: escape.Escape},
		}).RenderString(data)
		if err != nil {
			t.Fatalf("render %q returned error: %v", tc.src, err)
		}
		if got != tc.want {
			t.Fatalf("render %q = %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestCondAndLet(t *testing.T) {
	t.Parallel()

	lang := New()
	isAdmin, err := lang.Cond(`user.role == "admin" && len(user.perms) > 1`)
	if err != nil {
		t.Fatalf("Cond returned error: %v", err)
	}
	let, err := lang.Cond("let perms = user.perms")
	if err != nil {
		t.Fatalf("Cond returned error: %v", err)
	}
	count, err := lang.Expr("len(perms)")
	if err != nil {
		t.Fatalf("Expr returned error: %v", err)
	}

	m := program.NewMarkup("w", program.Program{
		program.If{Cond: isAdmin, Then: program.Program{program.WriteLiteral{Text: "admin;"}}},
		program.If{Cond: let, Then: program.Program{program.WriteExpr{Expr: count, Escape: escape.Escape}}},
	})

	got, err := m.RenderString(map[string]any{
		"user": map[string]any{"role": "admin", "perms": []string{"read", "write"}},
	})
	if err != nil {
		t.Fatalf("RenderString returned error: %v", err)
	}
	if diff := cmp.Diff("admin;2", got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestIterableUsesExpressionResults(t *testing.T) {
	t.Parallel()

	lang := New()
	pattern, err := lang.Pattern("n")
	if err != nil {
		t.Fatalf("Pattern returned error: %v", err)
	}
	iterable, err := lang.Iterable("filter(nums, # % 2 == 0)")
	if err != nil {
		t.Fatalf("Iterable returned error: %v", err)
	}
	item, err := lang.Expr("n * 10")
	if err != nil {
		t.Fatalf("Expr returned error: %v", err)
	}

	m := program.NewMarkup("w", program.Program{
		program.For{Pattern: pattern, Iterable: iterable, Body: program.Program{
			program.WriteExpr{Expr: item, Escape: escape.Escape},
			program.WriteLiteral{Text: " "},
		}},
	})
	got, err := m.RenderString(map[string]any{"nums": []int{1, 2, 3, 4}})
	if err != nil {
		t.Fatalf("RenderString returned error: %v", err)
	}
	if got != "20 40 " {
		t.Fatalf("got %q, want %q", got, "20 40 ")
	}
}

func TestIterableRejectsScalars(t *testing.T) {
	t.Parallel()

	iterable, err := New().Iterable(`"text"`)
	if err != nil {
		t.Fatalf("Iterable returned error: %v", err)
	}
	err = iterable.Each(program.NewScope(nil), func(any, any) error { return nil })
	if !errors.Is(err, markupexpr.ErrNotIterable) {
		t.Fatalf("expected ErrNotIterable, got %v", err)
	}
}

func TestCustomFunctions(t *testing.T) {
	t.Parallel()

	lang := New(WithOptions(expr.Function("slug", func(params ...any) (any, error) {
		s, _ := params[0].(string)
		return strings.ReplaceAll(strings.ToLower(s), " ", "-"), nil
	})))

	value, err := lang.Expr("slug(title)")
	if err != nil {
		t.Fatalf("Expr returned error: %v", err)
	}
	var b strings.Builder
	if err := value.RenderTo(&b, program.NewScope(map[string]any{"title": "Hello World"})); err != nil {
		t.Fatalf("RenderTo returned error: %v", err)
	}
	if b.String() != "hello-world" {
		t.Fatalf("got %q, want hello-world", b.String())
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	lang := New()
	if _, err := lang.Expr(""); err == nil {
		t.Fatalf("expected error for empty expression")
	}
	if _, err := lang.Cond("a +"); err == nil {
		t.Fatalf("expected compile error")
	}
	if _, err := lang.Cond(`"text"`); err == nil {
		t.Fatalf("expected non-boolean condition to be rejected")
	}

	value, err := lang.Expr("1 / zero")
	if err != nil {
		t.Fatalf("Expr returned error: %v", err)
	}
	err = value.RenderTo(&strings.Builder{}, program.NewScope(map[string]any{"zero": "x"}))
	if err == nil {
		t.Fatalf("expected runtime error")
	}
}

func TestAnalyzerReportsRootReads(t *testing.T) {
	t.Parallel()

	lang := New()
	cases := []struct {
		src  string
		want []string
	}{
		{src: "user.name", want: []string{"user"}},
		{src: `upper(user.name) + suffix`, want: []string{"suffix", "user"}},
		{src: "filter(items, .price > floor)", want: []string{"floor", "items"}},
		{src: "let total = price * qty; total + tax", want: []string{"price", "qty", "tax"}},
		{src: "money(amount)", want: []string{"amount"}},
		{src: `$env.user`, want: []string{}},
		{src: "let p = post.author", want: []string{"post"}},
		{src: "a +", want: nil},
	}

	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, lang.Reads(tc.src)); diff != "" {
			t.Fatalf("Reads(%q) mismatch (-want +got):\n%s", tc.src, diff)
		}
	}

	if diff := cmp.Diff([]string{"p"}, lang.CondBinds("let p = post.author")); diff != "" {
		t.Fatalf("CondBinds mismatch (-want +got):\n%s", diff)
	}
	if got := lang.CondBinds("a > 1"); got != nil {
		t.Fatalf("expected no bindings, got %v", got)
	}
	if diff := cmp.Diff([]string{"k", "v"}, lang.PatternBinds("k, v")); diff != "" {
		t.Fatalf("PatternBinds mismatch (-want +got):\n%s", diff)
	}
}
