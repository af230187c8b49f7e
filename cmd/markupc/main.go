package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	markup "github.com/goliatone/go-markup"
	"github.com/goliatone/go-markup/internal/prompt"
	"github.com/goliatone/go-markup/pkg/ast"
	"github.com/goliatone/go-markup/pkg/expr"
	"github.com/goliatone/go-markup/pkg/expr/exprlang"
	"github.com/goliatone/go-markup/pkg/expr/pongo"
	"github.com/goliatone/go-markup/pkg/scaffold"
)

func main() {
	templatePath := flag.String("template", "", "template document (YAML or JSON)")
	dataPath := flag.String("data", "", "data file (YAML or JSON)")
	output := flag.String("output", "", "output file (stdout if empty)")
	dump := flag.Bool("dump", false, "print the compiled program instead of rendering")
	engine := flag.String("engine", "default", "expression language: default, pongo2 or expr")
	includes := flag.String("includes", "", "directory pongo2 fragments may include templates from")
	interactive := flag.Bool("interactive", false, "prompt for template variables missing from the data")
	openapiPath := flag.String("openapi", "", "OpenAPI document to scaffold a form template from")
	operation := flag.String("operation", "", "operation ID to scaffold (with -openapi)")
	flag.Parse()

	ctx := context.Background()

	name, nodes, err := loadNodes(ctx, *templatePath, *openapiPath, *operation)
	if err != nil {
		log.Fatalf("Failed to load template: %v", err)
	}

	lang, err := selectLanguage(*engine, *includes)
	if err != nil {
		log.Fatalf("Failed to configure engine: %v", err)
	}

	tpl, err := markup.Compile(name, nodes, markup.WithLanguage(lang))
	if err != nil {
		log.Fatalf("Failed to compile template: %v", err)
	}

	if *dump {
		if err := writeListing(os.Stdout, tpl); err != nil {
			log.Fatalf("Failed to dump program: %v", err)
		}
		return
	}

	data, err := loadData(*dataPath)
	if err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}

	if *interactive {
		driver := prompt.NewSurveyDriver()
		data, err = prompt.Fill(ctx, driver, tpl.FreeVariables(), data)
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				log.Printf("Aborted")
				os.Exit(1)
			}
			log.Fatalf("Failed to read input: %v", err)
		}
		if err := confirmOverwrite(ctx, driver, *output); err != nil {
			switch {
			case errors.Is(err, errOutputKept):
				log.Printf("Output left untouched")
				os.Exit(1)
			case errors.Is(err, prompt.ErrAborted):
				log.Printf("Aborted")
				os.Exit(1)
			default:
				log.Fatalf("Failed to read input: %v", err)
			}
		}
	}

	if err := execute(tpl, data, *output); err != nil {
		log.Fatalf("Failed to render template: %v", err)
	}
	if *output != "" {
		fmt.Printf("Template written to %s\n", *output)
	}
}

func loadNodes(ctx context.Context, templatePath, openapiPath, operation string) (string, []ast.Node, error) {
	if openapiPath != "" {
		if strings.TrimSpace(operation) == "" {
			return "", nil, errors.New("-operation is required with -openapi")
		}
		raw, err := os.ReadFile(openapiPath)
		if err != nil {
			return "", nil, err
		}
		nodes, err := scaffold.Form(ctx, raw, operation)
		if err != nil {
			return "", nil, err
		}
		return operation, nodes, nil
	}

	if strings.TrimSpace(templatePath) == "" {
		return "", nil, errors.New("-template or -openapi is required")
	}
	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return "", nil, err
	}
	doc, err := ast.Decode(raw, filepath.Base(templatePath))
	if err != nil {
		return "", nil, err
	}
	return doc.Name, doc.Nodes, nil
}

func selectLanguage(engine, includes string) (expr.Language, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", "default":
		return expr.New(), nil
	case "pongo2", "django":
		lang, err := pongo.New(pongo.WithBaseDir(includes))
		if err != nil {
			return nil, err
		}
		return lang, nil
	case "expr":
		return exprlang.New(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}

func loadData(path string) (map[string]any, error) {
	if strings.TrimSpace(path) == "" {
		return map[string]any{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return data, nil
}

// errOutputKept reports that the user declined to overwrite the output file.
var errOutputKept = errors.New("output left untouched")

func confirmOverwrite(ctx context.Context, driver prompt.Driver, output string) error {
	if output == "" {
		return nil
	}
	if _, err := os.Stat(output); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	ok, err := driver.Confirm(ctx, prompt.ConfirmConfig{
		Message: fmt.Sprintf("Overwrite %s?", output),
		Default: false,
	})
	if err != nil {
		return fmt.Errorf("confirm overwrite of %s: %w", output, err)
	}
	if !ok {
		return errOutputKept
	}
	return nil
}

// writeListing prints the compiled program, one instruction per line.
func writeListing(w io.Writer, tpl *markup.Template) error {
	_, err := io.WriteString(w, tpl.Program().String())
	return err
}

func execute(tpl *markup.Template, data map[string]any, output string) error {
	var dst io.Writer = os.Stdout
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return err
		}
		defer file.Close()
		dst = file
	}

	w := bufio.NewWriter(dst)
	if err := tpl.Execute(w, data); err != nil {
		return err
	}
	if output == "" {
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return w.Flush()
}
