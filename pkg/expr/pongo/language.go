package pongo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-markup/pkg/expr"
	"github.com/goliatone/go-markup/pkg/program"
)

// Option configures the pongo2 language before construction.
type Option func(*config)

type config struct {
	baseDir    string
	templates  fs.FS
	filters    map[string]func(input any, param any) (any, error)
	globalData map[string]any
}

// WithBaseDir lets fragments include templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS lets fragments include templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithFilter registers a filter available to every fragment. pongo2 keeps
// filters globally, so a later registration under the same name replaces it.
func WithFilter(name string, fn func(input any, param any) (any, error)) Option {
	return func(cfg *config) {
		name = strings.TrimSpace(name)
		if name == "" || fn == nil {
			return
		}
		if cfg.filters == nil {
			cfg.filters = make(map[string]func(input any, param any) (any, error))
		}
		cfg.filters[name] = fn
	}
}

// WithGlobalData seeds values visible to every fragment.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// Language compiles fragments with a pongo2 template set.
type Language struct {
	set      *pongo2.TemplateSet
	fallback *expr.Compiler
}

var _ expr.Language = (*Language)(nil)

// New constructs a Language using the provided options.
func New(options ...Option) (*Language, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" || cfg.templates == nil {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("pongo: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	set := pongo2.NewSet("markup", loaders...)
	set.Globals = contextFrom(cfg.globalData)

	registerDefaultFilters()
	for name, fn := range cfg.filters {
		if err := registerFilter(name, fn); err != nil {
			return nil, err
		}
	}

	return &Language{set: set, fallback: expr.New()}, nil
}

// Expr compiles a pongo2 variable expression, filters included.
func (l *Language) Expr(src string) (program.Renderable, error) {
	tpl, err := l.compile(src, "{{ "+src+" }}")
	if err != nil {
		return nil, err
	}
	return &fragment{src: src, tpl: tpl}, nil
}

// Cond compiles a pongo2 if-expression. `let` conditions use the default
// language so they can bind names.
func (l *Language) Cond(src string) (program.Condition, error) {
	if isLet(src) {
		return l.fallback.Cond(src)
	}
	tpl, err := l.compile(src, "{% if "+src+" %}1{% endif %}")
	if err != nil {
		return nil, err
	}
	return &condition{src: src, tpl: tpl}, nil
}

// Pattern delegates to the default language.
func (l *Language) Pattern(src string) (program.Pattern, error) {
	return l.fallback.Pattern(src)
}

// Iterable delegates to the default language.
func (l *Language) Iterable(src string) (program.Iterable, error) {
	return l.fallback.Iterable(src)
}

func (l *Language) compile(src, body string) (*pongo2.Template, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.New("pongo: empty expression")
	}
	tpl, err := l.set.FromString("{% autoescape off %}" + body + "{% endautoescape %}")
	if err != nil {
		return nil, fmt.Errorf("pongo: compile %q: %w", src, err)
	}
	return tpl, nil
}

type fragment struct {
	src string
	tpl *pongo2.Template
}

func (f *fragment) RenderTo(w io.Writer, s *program.Scope) error {
	return f.tpl.ExecuteWriter(contextFrom(s.Flatten()), w)
}

func (f *fragment) String() string { return f.src }

type condition struct {
	src string
	tpl *pongo2.Template
}

func (c *condition) Test(s *program.Scope) (bool, error) {
	out, err := c.tpl.Execute(contextFrom(s.Flatten()))
	if err != nil {
		return false, err
	}
	return out == "1", nil
}

func (c *condition) String() string { return c.src }

func isLet(src string) bool {
	fields := strings.Fields(src)
	return len(fields) > 0 && fields[0] == "let"
}

// contextFrom drops keys pongo2 would reject as identifiers, such as flattened
// dotted keys.
func contextFrom(values map[string]any) pongo2.Context {
	out := make(pongo2.Context, len(values))
	for key, value := range values {
		key = strings.TrimSpace(key)
		if !isIdentifier(key) {
			continue
		}
		out[key] = value
	}
	return out
}

func isIdentifier(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

var (
	filterMu      sync.Mutex
	defaultFilter sync.Once
)

func registerFilter(name string, fn func(input any, param any) (any, error)) error {
	filterMu.Lock()
	defer filterMu.Unlock()
	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
	register := pongo2.RegisterFilter
	if pongo2.FilterExists(name) {
		register = pongo2.ReplaceFilter
	}
	if err := register(name, filter); err != nil {
		return fmt.Errorf("pongo: register filter %q: %w", name, err)
	}
	return nil
}

func registerDefaultFilters() {
	defaultFilter.Do(func() {
		filterMu.Lock()
		defer filterMu.Unlock()
		if !pongo2.FilterExists("trim") {
			_ = pongo2.RegisterFilter("trim", filterTrim)
		}
		if !pongo2.FilterExists("lowerfirst") {
			_ = pongo2.RegisterFilter("lowerfirst", filterLowerFirst)
		}
	})
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func filterLowerFirst(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	t := in.String()

	for i, r := range t {
		if strings.ContainsRune(" \t\n\r", r) {
			continue
		}
		size := utf8.RuneLen(r)
		return pongo2.AsValue(t[:i] + strings.ToLower(string(r)) + t[i+size:]), nil
	}
	return pongo2.AsValue(t), nil
}
