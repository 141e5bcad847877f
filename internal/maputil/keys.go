// Package maputil provides helpers for deterministic map iteration.
package maputil

import (
	"cmp"
	"slices"
)

// SortedKeys returns the keys of m in ascending order.
// A nil or empty map yields an empty, non-nil slice.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
