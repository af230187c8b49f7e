package render

import "strings"

// DefaultSink names the writer parameter of reified programs.
const DefaultSink = "w"

// Option configures a Renderer at construction time.
type Option func(*config)

type config struct {
	sink string
}

// WithSink overrides the output sink name shared by the Renderer and its forks.
func WithSink(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.sink = trimmed
		}
	}
}
