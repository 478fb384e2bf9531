// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

var _ SortedEnumerable[string, int] = (*SortedKeyIndex[string, int])(nil)

// SortedKeyIndex is a HashIndex whose keys are kept in comparator order.
// Values and Counts enumerate in key order.
type SortedKeyIndex[K comparable, V any] struct {
	multiValue[K, V]
	sorted *sortedBuckets[K]
}

// NewSortedKeyIndex returns a SortedKeyIndex keyed by extract and ordered
// by compare. Use Ordered for the natural order of a builtin key type.
func NewSortedKeyIndex[K comparable, V any](name string, extract func(V) K, compare func(a, b K) int, opts ...IndexOption) *SortedKeyIndex[K, V] {
	b := newSortedBuckets(compare)
	return &SortedKeyIndex[K, V]{
		multiValue: multiValue[K, V]{
			indexBase: indexBase[V]{name: name},
			keys:      single(extract),
			buckets:   b,
			opts:      buildIndexOptions(opts),
		},
		sorted: b,
	}
}

// Keys returns every key, including keys whose bucket has emptied, in
// comparator order.
func (x *SortedKeyIndex[K, V]) Keys() []K {
	var out []K
	x.read(func() { out = x.sorted.keys() })
	return out
}
