package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Fill asks for every name in names that data does not define and returns a
// copy of data with the answers. Blank answers leave the name undefined.
func Fill(ctx context.Context, d Driver, names []string, data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data)+len(names))
	for key, value := range data {
		out[key] = value
	}

	for _, name := range names {
		if _, ok := out[name]; ok {
			continue
		}
		answer, err := d.Input(ctx, InputConfig{
			Message: fmt.Sprintf("Value for %s:", name),
			Help:    "Numbers and true/false are typed. Separate list items with commas.",
		})
		if err != nil {
			return nil, err
		}
		if value := Coerce(answer); value != nil {
			out[name] = value
		}
	}
	return out, nil
}

// Coerce turns a typed answer into a template value: blank is nil, true and
// false are booleans, numbers are int or float64, comma separated answers are
// lists of coerced items, anything else is the trimmed string.
func Coerce(answer string) any {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}
	if strings.Contains(answer, ",") {
		parts := strings.Split(answer, ",")
		items := make([]any, 0, len(parts))
		for _, part := range parts {
			if item := Coerce(part); item != nil {
				items = append(items, item)
			}
		}
		return items
	}
	switch answer {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(answer); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(answer, 64); err == nil {
		return f
	}
	return answer
}
