// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

var (
	_ Enumerable[string, int] = (*FilteredIndex[string, int])(nil)
	_ Enumerable[string, int] = (*FilteredMultiIndex[string, int])(nil)
	_ Enumerable[string, int] = (*PartialIndex[string, int])(nil)
)

// FilteredIndex is a HashIndex over the values that currently satisfy a
// predicate. The predicate is re-evaluated on every update.
type FilteredIndex[K comparable, V any] struct {
	multiValue[K, V]
}

// NewFilteredIndex returns a FilteredIndex keyed by extract, holding only
// values for which filter returns true.
func NewFilteredIndex[K comparable, V any](name string, extract func(V) K, filter func(V) bool, opts ...IndexOption) *FilteredIndex[K, V] {
	return &FilteredIndex[K, V]{multiValue[K, V]{
		indexBase: indexBase[V]{name: name},
		keys:      single(extract),
		filter:    func(_ K, v V) bool { return filter(v) },
		buckets:   newHashBuckets[K](),
		opts:      buildIndexOptions(opts),
	}}
}

// FilteredMultiIndex files a value under each of its keys for which the
// keyed predicate holds, so inclusion can differ per relation.
type FilteredMultiIndex[K comparable, V any] struct {
	multiValue[K, V]
}

// NewFilteredMultiIndex returns a FilteredMultiIndex.
func NewFilteredMultiIndex[K comparable, V any](name string, extract func(V) []K, filter func(K, V) bool, opts ...IndexOption) *FilteredMultiIndex[K, V] {
	return &FilteredMultiIndex[K, V]{multiValue[K, V]{
		indexBase: indexBase[V]{name: name},
		keys:      extract,
		filter:    filter,
		buckets:   newHashBuckets[K](),
		opts:      buildIndexOptions(opts),
	}}
}

// PartialIndex files a value under every key of its key array while one
// value-level predicate holds.
type PartialIndex[K comparable, V any] struct {
	multiValue[K, V]
}

// NewPartialIndex returns a PartialIndex.
func NewPartialIndex[K comparable, V any](name string, extract func(V) []K, filter func(V) bool, opts ...IndexOption) *PartialIndex[K, V] {
	return &PartialIndex[K, V]{multiValue[K, V]{
		indexBase: indexBase[V]{name: name},
		keys:      extract,
		filter:    func(_ K, v V) bool { return filter(v) },
		buckets:   newHashBuckets[K](),
		opts:      buildIndexOptions(opts),
	}}
}
