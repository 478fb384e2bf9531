// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

import (
	"iter"

	"golang.org/x/exp/slices"
)

var (
	_ Single[string, int] = (*UniqueIndex[string, int])(nil)
	_ Single[string, int] = (*SortedUniqueIndex[string, int])(nil)

	_ primaryIndex[string, int] = (*UniqueIndex[string, int])(nil)
	_ primaryIndex[string, int] = (*SortedUniqueIndex[string, int])(nil)
)

// uniqueIndex is satisfied by the unique index types whatever their key
// type.
type uniqueIndex interface {
	isUnique()
}

// primaryIndex is a unique index usable as a Manager's primary. Its
// unexported methods run under a lock the caller already holds.
type primaryIndex[K comparable, V any] interface {
	Single[K, V]
	uniqueIndex
	lookup(k K) (int, bool)
	keyOf(v V) K
}

// slotMap maps each key to one slot.
type slotMap[K comparable] interface {
	get(k K) (int, bool)
	set(k K, slot int)
	remove(k K)
	// each visits live entries only.
	each(fn func(k K, slot int) bool)
	len() int
	reset()
}

type hashSlots[K comparable] struct {
	m map[K]int
}

func (h *hashSlots[K]) get(k K) (int, bool) { s, ok := h.m[k]; return s, ok }
func (h *hashSlots[K]) set(k K, slot int)   { h.m[k] = slot }
func (h *hashSlots[K]) remove(k K)          { delete(h.m, k) }
func (h *hashSlots[K]) len() int            { return len(h.m) }
func (h *hashSlots[K]) reset()              { h.m = make(map[K]int) }

func (h *hashSlots[K]) each(fn func(K, int) bool) {
	for k, s := range h.m {
		if !fn(k, s) {
			return
		}
	}
}

// uniqueEngine is the engine behind UniqueIndex and SortedUniqueIndex.
type uniqueEngine[K comparable, V any] struct {
	indexBase[V]
	extract func(V) K
	slots   slotMap[K]
}

func (x *uniqueEngine[K, V]) isUnique() {}

func (x *uniqueEngine[K, V]) Reindex(src Source[V]) {
	x.bind(src)
	x.slots.reset()
	forEachLive(src, func(slot int, v V) {
		x.slots.set(x.extract(v), slot)
	})
}

// ApplyValue points the key of v at slot, replacing whatever slot the key
// held before.
func (x *uniqueEngine[K, V]) ApplyValue(v V, slot int) {
	x.slots.set(x.extract(v), slot)
}

// RemoveValue retracts the key of v only while it still points at slot.
func (x *uniqueEngine[K, V]) RemoveValue(v V, slot int) {
	k := x.extract(v)
	if cur, ok := x.slots.get(k); ok && cur == slot {
		x.slots.remove(k)
	}
}

func (x *uniqueEngine[K, V]) lookup(k K) (int, bool) { return x.slots.get(k) }
func (x *uniqueEngine[K, V]) keyOf(v V) K            { return x.extract(v) }

func (x *uniqueEngine[K, V]) TryGetIndex(v V) (int, bool) {
	return x.TryGetKeyIndex(x.extract(v))
}

func (x *uniqueEngine[K, V]) TryGetKeyIndex(k K) (slot int, ok bool) {
	x.read(func() { slot, ok = x.slots.get(k) })
	if !ok {
		slot = -1
	}
	return slot, ok
}

func (x *uniqueEngine[K, V]) TryGetValue(k K) (v V, ok bool) {
	x.read(func() {
		var slot int
		if slot, ok = x.slots.get(k); ok {
			v, ok = x.at(slot)
		}
	})
	return v, ok
}

func (x *uniqueEngine[K, V]) Get(k K) V {
	v, _ := x.TryGetValue(k)
	return v
}

func (x *uniqueEngine[K, V]) GetKey(v V) K { return x.extract(v) }

// Len returns the number of keys that resolve to a slot.
func (x *uniqueEngine[K, V]) Len() int {
	var n int
	x.read(func() { n = x.slots.len() })
	return n
}

func (x *uniqueEngine[K, V]) Keys() []K {
	var out []K
	x.read(func() {
		out = make([]K, 0, x.slots.len())
		x.slots.each(func(k K, _ int) bool {
			out = append(out, k)
			return true
		})
	})
	return out
}

func (x *uniqueEngine[K, V]) collect() []int {
	out := make([]int, 0, x.slots.len())
	x.slots.each(func(_ K, slot int) bool {
		out = append(out, slot)
		return true
	})
	return out
}

// UniqueIndex maps each key to exactly one slot. A later value with the
// same key takes the key over.
type UniqueIndex[K comparable, V any] struct {
	uniqueEngine[K, V]
}

// NewUniqueIndex returns a UniqueIndex keyed by extract.
func NewUniqueIndex[K comparable, V any](name string, extract func(V) K) *UniqueIndex[K, V] {
	return &UniqueIndex[K, V]{uniqueEngine[K, V]{
		indexBase: indexBase[V]{name: name},
		extract:   extract,
		slots:     &hashSlots[K]{m: make(map[K]int)},
	}}
}

// Values yields every value reachable by key, in slot order.
func (x *UniqueIndex[K, V]) Values() iter.Seq[V] {
	return x.seq(func() []int {
		out := x.collect()
		slices.Sort(out)
		return out
	})
}
