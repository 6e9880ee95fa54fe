package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error is a validation failure carrying per-field messages.
type Error struct {
	Fields map[string]string
}

// Error renders the field messages in a stable order.
func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, e.Fields[name])
	}
	return strings.Join(parts, "; ")
}
