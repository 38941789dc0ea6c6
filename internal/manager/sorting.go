package manager

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// normalizeCriterion folds a sort token so "Name", " name " and "NAME" match.
func normalizeCriterion(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// sortedByKey orders items by ID first and then stable-sorts them by cmpFn,
// so ties keep ID order and the result is deterministic.
func sortedByKey[T any](items []T, id func(T) string, cmpFn func(a, b T) int) []T {
	slices.SortFunc(items, func(a, b T) int {
		return strings.Compare(id(a), id(b))
	})
	slices.SortStableFunc(items, cmpFn)
	return items
}

func byString[T any](key func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return strings.Compare(key(a), key(b))
	}
}

func byTime[T any](key func(T) time.Time) func(a, b T) int {
	return func(a, b T) int {
		return key(a).Compare(key(b))
	}
}

func byFloat[T any](key func(T) float64) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// containsFold reports whether any field contains keyword, ignoring case.
func containsFold(keyword string, fields ...string) bool {
	needle := strings.ToLower(keyword)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// sortedValues returns the map values ordered by ID.
func sortedValues[T any](m map[string]T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
