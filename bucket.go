// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

import (
	"github.com/benbjohnson/immutable"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// slotSet is the set of slots stored under one key.
type slotSet map[int]struct{}

func (s slotSet) sorted() []int {
	out := make([]int, 0, len(s))
	for slot := range s {
		out = append(out, slot)
	}
	slices.Sort(out)
	return out
}

// Ordered returns the natural three-way comparator for an ordered type.
func Ordered[K constraints.Ordered]() func(a, b K) int {
	return func(a, b K) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
}

// comparer adapts a comparator function to immutable.Comparer.
type comparer[K any] func(a, b K) int

func (c comparer[K]) Compare(a, b K) int { return c(a, b) }

// bucketMap maps keys to slot sets. The hash implementation has no key
// order; the sorted implementation iterates in comparator order.
type bucketMap[K comparable] interface {
	get(k K) (slotSet, bool)
	put(k K, s slotSet)
	del(k K)
	len() int
	each(fn func(k K, s slotSet) bool)
	reset()
	// ordered reports whether each visits keys in comparator order.
	ordered() bool
}

type hashBuckets[K comparable] struct {
	m map[K]slotSet
}

func newHashBuckets[K comparable]() *hashBuckets[K] {
	return &hashBuckets[K]{m: make(map[K]slotSet)}
}

func (b *hashBuckets[K]) get(k K) (slotSet, bool) { s, ok := b.m[k]; return s, ok }
func (b *hashBuckets[K]) put(k K, s slotSet)      { b.m[k] = s }
func (b *hashBuckets[K]) del(k K)                 { delete(b.m, k) }
func (b *hashBuckets[K]) len() int                { return len(b.m) }
func (b *hashBuckets[K]) reset()                  { b.m = make(map[K]slotSet) }
func (b *hashBuckets[K]) ordered() bool           { return false }

func (b *hashBuckets[K]) each(fn func(K, slotSet) bool) {
	for k, s := range b.m {
		if !fn(k, s) {
			return
		}
	}
}

// sortedBuckets keeps buckets in an immutable sorted map. Slot sets are
// mutated in place, so the map itself only changes when a key is added or
// dropped.
type sortedBuckets[K comparable] struct {
	cmp comparer[K]
	m   *immutable.SortedMap[K, slotSet]
}

func newSortedBuckets[K comparable](cmp func(a, b K) int) *sortedBuckets[K] {
	b := &sortedBuckets[K]{cmp: comparer[K](cmp)}
	b.reset()
	return b
}

func (b *sortedBuckets[K]) get(k K) (slotSet, bool) { return b.m.Get(k) }
func (b *sortedBuckets[K]) put(k K, s slotSet)      { b.m = b.m.Set(k, s) }
func (b *sortedBuckets[K]) del(k K)                 { b.m = b.m.Delete(k) }
func (b *sortedBuckets[K]) len() int                { return b.m.Len() }
func (b *sortedBuckets[K]) reset()                  { b.m = immutable.NewSortedMap[K, slotSet](b.cmp) }
func (b *sortedBuckets[K]) ordered() bool           { return true }

func (b *sortedBuckets[K]) each(fn func(K, slotSet) bool) {
	itr := b.m.Iterator()
	for !itr.Done() {
		k, s, ok := itr.Next()
		if !ok || !fn(k, s) {
			return
		}
	}
}

// keys returns every key in comparator order.
func (b *sortedBuckets[K]) keys() []K {
	out := make([]K, 0, b.m.Len())
	b.each(func(k K, _ slotSet) bool {
		out = append(out, k)
		return true
	})
	return out
}
