// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

var (
	_ Enumerable[string, int] = (*HashIndex[string, int])(nil)
	_ Enumerable[string, int] = (*MultiIndex[string, int])(nil)
)

// HashIndex maps one key per value to the set of slots holding it.
type HashIndex[K comparable, V any] struct {
	multiValue[K, V]
}

// NewHashIndex returns a HashIndex keyed by extract.
func NewHashIndex[K comparable, V any](name string, extract func(V) K, opts ...IndexOption) *HashIndex[K, V] {
	return &HashIndex[K, V]{multiValue[K, V]{
		indexBase: indexBase[V]{name: name},
		keys:      single(extract),
		buckets:   newHashBuckets[K](),
		opts:      buildIndexOptions(opts),
	}}
}

// MultiIndex files each value under every key extract returns; use it for
// tags and other many-to-many relations.
type MultiIndex[K comparable, V any] struct {
	multiValue[K, V]
}

// NewMultiIndex returns a MultiIndex keyed by extract.
func NewMultiIndex[K comparable, V any](name string, extract func(V) []K, opts ...IndexOption) *MultiIndex[K, V] {
	return &MultiIndex[K, V]{multiValue[K, V]{
		indexBase: indexBase[V]{name: name},
		keys:      extract,
		buckets:   newHashBuckets[K](),
		opts:      buildIndexOptions(opts),
	}}
}
