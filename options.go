package markup

import (
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-markup/pkg/expr"
)

// Option configures template compilation.
type Option func(*config)

type config struct {
	language expr.Language
	sink     string
	globals  map[string]any
	theme    *theme.RendererConfig
}

func newConfig(options []Option) config {
	cfg := config{language: expr.New()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithLanguage selects the expression language fragments are compiled with.
// The default language is expr.New().
func WithLanguage(language expr.Language) Option {
	return func(cfg *config) {
		if language != nil {
			cfg.language = language
		}
	}
}

// WithSink names the writer the compiled program renders into. It only shows
// up in program listings.
func WithSink(name string) Option {
	return func(cfg *config) {
		cfg.sink = strings.TrimSpace(name)
	}
}

// WithGlobals seeds values visible to every execution. Execution data takes
// precedence over globals with the same name.
func WithGlobals(values map[string]any) Option {
	return func(cfg *config) {
		if len(values) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(values))
		}
		for key, value := range values {
			cfg.globals[key] = value
		}
	}
}

// WithTheme exposes a resolved go-theme configuration to templates as the
// `theme` global (name, variant, tokens, css_vars, css_vars_style, partials).
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}
