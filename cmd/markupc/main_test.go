package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	markup "github.com/goliatone/go-markup"
	"github.com/goliatone/go-markup/internal/prompt"
	"github.com/goliatone/go-markup/pkg/testsupport"
)

func TestSelectLanguage(t *testing.T) {
	t.Parallel()

	for _, engine := range []string{"", "default", "pongo2", "Expr"} {
		if _, err := selectLanguage(engine, ""); err != nil {
			t.Fatalf("selectLanguage(%q) returned error: %v", engine, err)
		}
	}
	if _, err := selectLanguage("jinja", ""); err == nil {
		t.Fatalf("expected unknown engine error")
	}
}

func TestLoadDataAndNodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.yaml")
	if err := os.WriteFile(dataPath, []byte("user:\n  name: Ada\ntags: [go]\n"), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	tplPath := filepath.Join(dir, "hello.yaml")
	if err := os.WriteFile(tplPath, []byte("nodes:\n  - splice: user.name\n"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	data, err := loadData(dataPath)
	if err != nil {
		t.Fatalf("loadData returned error: %v", err)
	}
	want := map[string]any{
		"user": map[string]any{"name": "Ada"},
		"tags": []any{"go"},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	name, nodes, err := loadNodes(context.Background(), tplPath, "", "")
	if err != nil {
		t.Fatalf("loadNodes returned error: %v", err)
	}
	if name != "hello.yaml" || len(nodes) != 1 {
		t.Fatalf("unexpected template %q with %d nodes", name, len(nodes))
	}

	if _, _, err := loadNodes(context.Background(), "", "", ""); err == nil {
		t.Fatalf("expected missing template error")
	}
	if _, _, err := loadNodes(context.Background(), "", "api.yaml", ""); err == nil {
		t.Fatalf("expected missing operation error")
	}
}

func TestDumpListingMatchesGolden(t *testing.T) {
	t.Parallel()

	name, nodes, err := loadNodes(context.Background(), filepath.Join("testdata", "greeting.yaml"), "", "")
	if err != nil {
		t.Fatalf("loadNodes returned error: %v", err)
	}
	tpl, err := markup.Compile(name, nodes)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	var b strings.Builder
	if err := writeListing(&b, tpl); err != nil {
		t.Fatalf("writeListing returned error: %v", err)
	}

	golden := filepath.Join("testdata", "greeting.dump.golden")
	if testsupport.WriteMaybeGolden(t, golden, []byte(b.String())) {
		return
	}
	want := testsupport.MustReadGoldenString(t, golden)
	if diff := testsupport.CompareGolden(want, b.String()); diff != "" {
		t.Fatalf("listing mismatch (-want +got):\n%s", diff)
	}
}

type confirmDriver struct {
	answer bool
	err    error
	asked  int
}

func (d *confirmDriver) Input(context.Context, prompt.InputConfig) (string, error) {
	return "", errors.New("unexpected input prompt")
}

func (d *confirmDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	d.asked++
	return d.answer, d.err
}

func TestConfirmOverwrite(t *testing.T) {
	t.Parallel()

	existing := filepath.Join(t.TempDir(), "out.html")
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}
	terminalErr := errors.New("terminal gone")

	cases := []struct {
		name    string
		output  string
		driver  *confirmDriver
		wantErr error
		asked   int
	}{
		{name: "stdout", output: "", driver: &confirmDriver{}, asked: 0},
		{name: "new file", output: filepath.Join(t.TempDir(), "new.html"), driver: &confirmDriver{}, asked: 0},
		{name: "accepted", output: existing, driver: &confirmDriver{answer: true}, asked: 1},
		{name: "declined", output: existing, driver: &confirmDriver{}, wantErr: errOutputKept, asked: 1},
		{name: "aborted", output: existing, driver: &confirmDriver{err: prompt.ErrAborted}, wantErr: prompt.ErrAborted, asked: 1},
		{name: "terminal failure", output: existing, driver: &confirmDriver{err: terminalErr}, wantErr: terminalErr, asked: 1},
	}

	for _, tc := range cases {
		err := confirmOverwrite(context.Background(), tc.driver, tc.output)
		switch {
		case tc.wantErr == nil && err != nil:
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		case tc.wantErr != nil && !errors.Is(err, tc.wantErr):
			t.Fatalf("%s: got error %v, want %v", tc.name, err, tc.wantErr)
		}
		if tc.wantErr == terminalErr && errors.Is(err, errOutputKept) {
			t.Fatalf("%s: terminal failure reported as a declined overwrite", tc.name)
		}
		if tc.driver.asked != tc.asked {
			t.Fatalf("%s: asked %d times, want %d", tc.name, tc.driver.asked, tc.asked)
		}
	}
}
