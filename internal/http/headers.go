package http

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Headers is an immutable, case-insensitive, multi-valued header table.
//
// Names iterate in case-insensitive order and keep the casing they were
// supplied with. A Headers value is never mutated after construction, so it is
// safe to share between goroutines.
type Headers struct {
	names  []string            // sorted, original casing
	values map[string][]string // keyed by lower-cased name
}

// emptyHeaders is returned whenever a table would have no entries.
var emptyHeaders = &Headers{values: map[string][]string{}}

// EmptyHeaders returns the canonical empty table.
func EmptyHeaders() *Headers {
	return emptyHeaders
}

// KeepAll is a header filter that keeps every value.
func KeepAll(name, value string) bool {
	return true
}

// NewHeaders builds a table from source, keeping only the values for which
// filter returns true. Kept values are trimmed and a name whose values are all
// filtered out is dropped.
//
// Names that are equal ignoring case are rejected with ErrDuplicateHeader, but
// only when both of them keep at least one value after filtering.
func NewHeaders(source map[string][]string, filter func(name, value string) bool) (*Headers, error) {
	if filter == nil {
		return nil, fmt.Errorf("%w: filter", ErrNilArgument)
	}

	names := make([]string, 0, len(source))
	for name := range source {
		names = append(names, name)
	}
	sortNames(names)

	h := &Headers{values: make(map[string][]string, len(names))}
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: header name cannot be empty", ErrInvalidArgument)
		}

		var kept []string
		for _, value := range source[name] {
			if filter(name, value) {
				kept = append(kept, strings.TrimSpace(value))
			}
		}
		if len(kept) == 0 {
			continue
		}

		key := strings.ToLower(name)
		if _, ok := h.values[key]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHeader, name)
		}
		h.values[key] = kept
		h.names = append(h.names, name)
	}

	if len(h.names) == 0 {
		return emptyHeaders, nil
	}
	return h, nil
}

// sortNames orders names case-insensitively, falling back to a byte
// comparison so the order is total.
func sortNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
}

// AllValues returns the values stored for name, or an empty slice.
func (h *Headers) AllValues(name string) []string {
	values, ok := h.values[strings.ToLower(name)]
	if !ok {
		return []string{}
	}
	return slices.Clone(values)
}

// FirstValue returns the first value stored for name.
func (h *Headers) FirstValue(name string) (string, bool) {
	values := h.values[strings.ToLower(name)]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// FirstValueAsInt64 parses the first value stored for name as a base 10
// integer. The boolean is false when there is no value.
func (h *Headers) FirstValueAsInt64(name string) (int64, bool, error) {
	value, ok := h.FirstValue(name)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("header %q: %w", name, err)
	}
	return n, true, nil
}

// Names returns the header names in table order.
func (h *Headers) Names() []string {
	return slices.Clone(h.names)
}

// Len returns the number of distinct names.
func (h *Headers) Len() int {
	return len(h.names)
}

// Map returns a copy of the table keyed by the stored names.
func (h *Headers) Map() map[string][]string {
	m := make(map[string][]string, len(h.names))
	for _, name := range h.names {
		m[name] = slices.Clone(h.values[strings.ToLower(name)])
	}
	return m
}

// Equal reports whether both tables hold the same names and values.
// Names are compared ignoring case.
func (h *Headers) Equal(other *Headers) bool {
	if h == other {
		return true
	}
	if other == nil || len(h.names) != len(other.names) {
		return false
	}
	for key, values := range h.values {
		if !slices.Equal(values, other.values[key]) {
			return false
		}
	}
	return true
}

// String renders one "name: value" line per value in table order.
func (h *Headers) String() string {
	var sb strings.Builder
	for _, name := range h.names {
		for _, value := range h.values[strings.ToLower(name)] {
			sb.WriteString(name)
			sb.WriteString(": ")
			sb.WriteString(value)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
