package expr

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-markup/pkg/program"
)

// ErrNotIterable is returned when a loop iterates over a value that is not a
// list, map or non-negative integer.
var ErrNotIterable = errors.New("expr: value is not iterable")

func rootOf(path string) string {
	if idx := strings.IndexByte(path, '.'); idx >= 0 {
		return path[:idx]
	}
	return path
}

// lookup resolves a dot path against the scope. An exact binding for the
// whole dotted path wins over traversal.
func lookup(s *program.Scope, path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	if v, ok := s.Lookup(path); ok {
		return v, true
	}

	parts := strings.Split(path, ".")
	current, ok := s.Lookup(parts[0])
	if !ok {
		return nil, false
	}
	for _, part := range parts[1:] {
		if part == "" {
			return nil, false
		}
		current, ok = field(current, part)
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func field(container any, key string) (any, bool) {
	switch typed := container.(type) {
	case map[string]any:
		v, ok := typed[key]
		return v, ok
	case map[string]string:
		v, ok := typed[key]
		return v, ok
	case []any:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(typed) {
			return nil, false
		}
		return typed[idx], true
	}

	rv := reflect.ValueOf(container)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		f := rv.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, key)
		})
		if !f.IsValid() || !f.CanInterface() {
			return nil, false
		}
		return f.Interface(), true
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	default:
		return nil, false
	}
}

func truthy(value any) bool {
	if value == nil {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case float32:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}

func coerceBool(value any) bool {
	if v, ok := value.(string); ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return truthy(value)
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func isNumber(value any) bool {
	switch value.(type) {
	case float64, float32, int, int64, int32, uint, uint64:
		return true
	}
	return false
}

func coerceString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}

// equal compares loosely: a boolean or number on either side decides how the
// other side is coerced, otherwise values compare as text.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	_, aBool := a.(bool)
	_, bBool := b.(bool)
	if aBool || bBool {
		return coerceBool(a) == coerceBool(b)
	}
	if isNumber(a) || isNumber(b) {
		x, okA := coerceNumber(a)
		y, okB := coerceNumber(b)
		if okA && okB {
			return x == y
		}
		return false
	}
	return coerceString(a) == coerceString(b)
}

func order(a, b any) (int, bool) {
	if isNumber(a) || isNumber(b) {
		x, okA := coerceNumber(a)
		y, okB := coerceNumber(b)
		if !okA || !okB {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		default:
			return 0, true
		}
	}
	sa, okA := a.(string)
	sb, okB := b.(string)
	if !okA || !okB {
		return 0, false
	}
	return strings.Compare(sa, sb), true
}

// Format writes value as template text: nil renders as nothing, numbers
// without exponent noise, everything else through fmt.
func Format(w io.Writer, value any) error {
	var text string
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		text = v
	case []byte:
		_, err := w.Write(v)
		return err
	case fmt.Stringer:
		text = v.String()
	case bool:
		text = strconv.FormatBool(v)
	case int:
		text = strconv.Itoa(v)
	case int64:
		text = strconv.FormatInt(v, 10)
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		text = strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		text = fmt.Sprint(v)
	}
	if text == "" {
		return nil
	}
	_, err := io.WriteString(w, text)
	return err
}

// Iterate yields the items of value in iteration order. Lists yield their
// index as key, maps their keys in sorted order, integers count from zero.
// A nil value yields nothing.
func Iterate(value any, yield func(key, value any) error) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []any:
		for i, item := range v {
			if err := yield(i, item); err != nil {
				return err
			}
		}
		return nil
	case int:
		if v < 0 {
			return fmt.Errorf("%w: negative count %d", ErrNotIterable, v)
		}
		for i := 0; i < v; i++ {
			if err := yield(i, i); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := yield(i, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			a, b := keys[i].Interface(), keys[j].Interface()
			if cmp, ok := order(a, b); ok {
				return cmp < 0
			}
			return fmt.Sprint(a) < fmt.Sprint(b)
		})
		for _, key := range keys {
			if err := yield(key.Interface(), rv.MapIndex(key).Interface()); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrNotIterable, value)
	}
}
