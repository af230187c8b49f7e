package escape

import (
	"io"
	"strings"
)

// Mode selects whether emitted text is HTML-escaped.
type Mode int

const (
	// PassThru writes text unchanged.
	PassThru Mode = iota
	// Escape replaces the structural characters & < > " with entities.
	Escape
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case PassThru:
		return "passthru"
	case Escape:
		return "escape"
	default:
		return "unknown"
	}
}

// ParseMode converts a textual mode ("escape", "passthru", "raw") into a Mode.
// An empty string yields Escape.
func ParseMode(raw string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "escape", "escaped":
		return Escape, true
	case "passthru", "pass-thru", "raw":
		return PassThru, true
	default:
		return Escape, false
	}
}

var replacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// String escapes text for use as element content or a quoted attribute value.
// Applying it twice double-escapes; callers escape each value exactly once.
func String(text string) string {
	return replacer.Replace(text)
}

// Apply returns text transformed according to mode.
func Apply(mode Mode, text string) string {
	if mode == Escape {
		return String(text)
	}
	return text
}

// Writer escapes everything written through it before forwarding to the
// wrapped writer.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w in an escaping Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write escapes p in runs, so text without structural characters reaches the
// underlying writer in a single call. The returned count is in terms of p.
func (e *Writer) Write(p []byte) (int, error) {
	start := 0
	for i, b := range p {
		entity := entityFor(b)
		if entity == "" {
			continue
		}
		if start < i {
			if _, err := e.w.Write(p[start:i]); err != nil {
				return start, err
			}
		}
		if _, err := io.WriteString(e.w, entity); err != nil {
			return i, err
		}
		start = i + 1
	}
	if start < len(p) {
		if _, err := e.w.Write(p[start:]); err != nil {
			return start, err
		}
	}
	return len(p), nil
}

// WriteString implements io.StringWriter.
func (e *Writer) WriteString(s string) (int, error) {
	return e.Write([]byte(s))
}

func entityFor(b byte) string {
	switch b {
	case '&':
		return "&amp;"
	case '<':
		return "&lt;"
	case '>':
		return "&gt;"
	case '"':
		return "&quot;"
	default:
		return ""
	}
}
