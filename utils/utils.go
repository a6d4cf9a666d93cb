// Package utils implements generic helper functions shared across the
// module.
package utils

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// GetKeys returns the keys of the input map.
// Order is not guaranteed.
func GetKeys[K constraints.Ordered, V any](m map[K]V) (keys []K) {
	keys = make([]K, len(m))
	var i int
	for key := range m {
		keys[i] = key
		i++
	}
	return
}

// GetSortedKeys returns the sorted keys of a map.
func GetSortedKeys[K constraints.Ordered, V any](m map[K]V) (keys []K) {
	keys = GetKeys(m)
	SortSlice(keys)
	return
}

// SortSlice sorts a slice in place.
func SortSlice[V constraints.Ordered](s []V) {
	sort.Slice(s, func(i, j int) bool {
		return s[i] < s[j]
	})
}

// MaxAbs returns the maximum absolute value in the slice, or 0 if empty.
func MaxAbs[V constraints.Float](s []V) (max V) {
	for _, v := range s {
		if v < 0 {
			v = -v
		}
		if v > max {
			max = v
		}
	}
	return
}
