// Package listview implements the shared filter/sort pipeline used by the
// tabular list endpoints. Every screen (bills, customers, inventory, rental
// orders) goes through the same code path so substring matching and tie-break
// behavior cannot drift between entities.
package listview

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Direction selects sort order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// ParseDirection maps the "dir" query parameter to a Direction.
// Anything other than "desc" sorts ascending.
func ParseDirection(raw string) Direction {
	if strings.EqualFold(raw, "desc") {
		return Descending
	}
	return Ascending
}

// Column describes how one logical column of a record type is filtered and
// ordered. Exactly one of Text or Enum should be set; Less overrides the
// default lexicographic ordering (used for numeric and date columns).
type Column[T any] struct {
	Text func(T) string
	Enum func(T) string
	Less func(a, b T) bool
}

// Query carries the active filter and sort state for one evaluation.
type Query struct {
	Filters map[string]string
	SortBy  string
	Dir     Direction
}

// View evaluates queries against an in-memory collection.
type View[T any] struct {
	columns map[string]Column[T]
	folder  cases.Caser
}

// New builds a View over the given column set.
func New[T any](columns map[string]Column[T]) *View[T] {
	return &View[T]{columns: columns, folder: cases.Fold()}
}

// Apply filters then sorts base and returns a fresh slice; base is never
// mutated. Filters are AND-conjoined: text columns match by case-insensitive
// substring, enum columns by exact value. The sort is stable, so records with
// equal keys keep the relative order they had after filtering. Evaluation is
// deterministic: the same base and query always produce the same result.
func (v *View[T]) Apply(base []T, q Query) []T {
	out := make([]T, 0, len(base))
	for _, rec := range base {
		if v.matches(rec, q.Filters) {
			out = append(out, rec)
		}
	}

	col, ok := v.columns[q.SortBy]
	if !ok {
		return out
	}
	less := v.lessFunc(col)
	if less == nil {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Dir == Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func (v *View[T]) matches(rec T, filters map[string]string) bool {
	for name, want := range filters {
		if want == "" {
			continue
		}
		col, ok := v.columns[name]
		if !ok {
			continue
		}
		switch {
		case col.Enum != nil:
			if col.Enum(rec) != want {
				return false
			}
		case col.Text != nil:
			if !strings.Contains(v.folder.String(col.Text(rec)), v.folder.String(want)) {
				return false
			}
		}
	}
	return true
}

func (v *View[T]) lessFunc(col Column[T]) func(a, b T) bool {
	if col.Less != nil {
		return col.Less
	}
	key := col.Text
	if key == nil {
		key = col.Enum
	}
	if key == nil {
		return nil
	}
	return func(a, b T) bool {
		return v.folder.String(key(a)) < v.folder.String(key(b))
	}
}
