package internal

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Column is the part of a column definition the repositories depend on.
type Column struct {
	Type     string
	Nullable bool
}

// SchemaError lists how a table differs from the expected layout.
type SchemaError struct {
	Table      string
	Missing    []string
	Mismatched []string
	// MissingIndex names the list index when it is absent.
	MissingIndex string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s schema validation failed:", e.Table)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "\n  missing columns: %s", strings.Join(e.Missing, ", "))
	}
	for _, m := range e.Mismatched {
		fmt.Fprintf(&b, "\n  - %s", m)
	}
	if e.MissingIndex != "" {
		fmt.Fprintf(&b, "\n  missing index: %s", e.MissingIndex)
	}
	return b.String()
}

// CompareColumns checks actual against want. Types are compared
// case-insensitively. The result is nil when nothing differs, otherwise a
// *SchemaError with names in sorted order.
func CompareColumns(table string, want, actual map[string]Column) *SchemaError {
	e := &SchemaError{Table: table}

	for _, name := range slices.Sorted(maps.Keys(want)) {
		w := want[name]
		a, ok := actual[name]
		if !ok {
			e.Missing = append(e.Missing, name)
			continue
		}
		if !strings.EqualFold(a.Type, w.Type) {
			e.Mismatched = append(e.Mismatched,
				fmt.Sprintf("%s: expected %s, got %s", name, w.Type, strings.ToLower(a.Type)))
		}
		if a.Nullable != w.Nullable {
			e.Mismatched = append(e.Mismatched,
				fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", name, w.Nullable, a.Nullable))
		}
	}

	if len(e.Missing) == 0 && len(e.Mismatched) == 0 {
		return nil
	}
	return e
}

// ListIndexName is the name of the (created_at, id) index backing List.
func ListIndexName(table string) string {
	return "idx_" + table + "_list"
}
