// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

import (
	"iter"

	"github.com/benbjohnson/immutable"
)

// deadSlot marks a key whose value was removed.
const deadSlot = -1

// sortedSlots is a slotMap over an immutable sorted map. Removed keys are
// kept with deadSlot until the map is rebuilt.
type sortedSlots[K comparable] struct {
	cmp  comparer[K]
	m    *immutable.SortedMap[K, int]
	dead int
}

func (s *sortedSlots[K]) get(k K) (int, bool) {
	slot, ok := s.m.Get(k)
	if !ok || slot == deadSlot {
		return -1, false
	}
	return slot, true
}

func (s *sortedSlots[K]) set(k K, slot int) {
	if prev, ok := s.m.Get(k); ok && prev == deadSlot {
		s.dead--
	}
	s.m = s.m.Set(k, slot)
}

func (s *sortedSlots[K]) remove(k K) {
	if prev, ok := s.m.Get(k); ok && prev != deadSlot {
		s.m = s.m.Set(k, deadSlot)
		s.dead++
	}
}

func (s *sortedSlots[K]) each(fn func(K, int) bool) {
	itr := s.m.Iterator()
	for !itr.Done() {
		k, slot, ok := itr.Next()
		if !ok {
			return
		}
		if slot == deadSlot {
			continue
		}
		if !fn(k, slot) {
			return
		}
	}
}

func (s *sortedSlots[K]) len() int { return s.m.Len() - s.dead }

func (s *sortedSlots[K]) reset() {
	s.m = immutable.NewSortedMap[K, int](s.cmp)
	s.dead = 0
}

// SortedUniqueIndex is a UniqueIndex whose keys are kept in comparator
// order. Removing a value leaves its key behind as a dead entry instead of
// rebalancing the map; Pack rebuilds once dead entries pile up.
type SortedUniqueIndex[K comparable, V any] struct {
	uniqueEngine[K, V]
	sorted *sortedSlots[K]
}

// NewSortedUniqueIndex returns a SortedUniqueIndex keyed by extract and
// ordered by compare.
func NewSortedUniqueIndex[K comparable, V any](name string, extract func(V) K, compare func(a, b K) int) *SortedUniqueIndex[K, V] {
	s := &sortedSlots[K]{cmp: comparer[K](compare)}
	s.reset()
	return &SortedUniqueIndex[K, V]{
		uniqueEngine: uniqueEngine[K, V]{
			indexBase: indexBase[V]{name: name},
			extract:   extract,
			slots:     s,
		},
		sorted: s,
	}
}

// Values yields every value reachable by key, in key order.
func (x *SortedUniqueIndex[K, V]) Values() iter.Seq[V] {
	return x.seq(x.collect)
}

// Dead returns the number of dead entries.
func (x *SortedUniqueIndex[K, V]) Dead() int {
	var n int
	x.read(func() { n = x.sorted.dead })
	return n
}

// Live returns the number of keys that resolve to a slot.
func (x *SortedUniqueIndex[K, V]) Live() int { return x.Len() }

// Pack rebuilds the index when dead entries exceed a tenth of the live
// ones, and reports whether it did.
func (x *SortedUniqueIndex[K, V]) Pack() bool {
	src := x.source()
	if src == nil {
		return false
	}
	src.Lock()
	defer src.Unlock()
	if x.sorted.dead*10 <= x.sorted.len() || x.sorted.dead == 0 {
		return false
	}
	x.Reindex(src)
	return true
}
