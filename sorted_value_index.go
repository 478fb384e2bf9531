// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

import (
	"iter"

	"github.com/google/btree"
	"golang.org/x/exp/slices"
)

var _ SortedValues[string, int] = (*SortedValueIndex[string, int])(nil)

const (
	// noSlot marks that no removal is in progress.
	noSlot = -1
	// probeSlot stands for the bound of a Range query inside the tree.
	probeSlot = -2

	btreeDegree = 8
)

// SortedValue is the ordered content of one SortedValueIndex bucket at the
// time it was taken. Between reads the bucket when it is iterated.
type SortedValue[V any] struct {
	Min V
	Max V

	n       int
	between func(from, to int) iter.Seq[V]
}

// Len returns the number of values in the bucket.
func (s SortedValue[V]) Len() int { return s.n }

// Between yields the values at ordered positions from through to,
// inclusive. Positions outside the bucket are ignored.
func (s SortedValue[V]) Between(from, to int) iter.Seq[V] {
	if s.between == nil {
		return func(func(V) bool) {}
	}
	return s.between(from, to)
}

// SortedValueIndex maps each key to its slots ordered by a comparator over
// the values themselves. Equal values are ordered by slot.
//
// The comparator is applied to values read back from the store at
// comparison time. While a slot is being removed its cell is already a
// tombstone (or, for a replacement, already holds the new value), so the
// index remembers the value passed to RemoveValue and compares that in its
// place. The remembered value is also used for any other tombstone met
// during a comparison.
type SortedValueIndex[K comparable, V any] struct {
	indexBase[V]
	extract func(V) K
	compare func(a, b V) int
	opts    indexOptions

	keys     map[K]*btree.BTreeG[int]
	freelist *btree.FreeListG[int]

	lastRemoved V
	removing    int
	probe       V
}

// NewSortedValueIndex returns a SortedValueIndex keyed by extract with
// buckets ordered by compare.
func NewSortedValueIndex[K comparable, V any](name string, extract func(V) K, compare func(a, b V) int, opts ...IndexOption) *SortedValueIndex[K, V] {
	return &SortedValueIndex[K, V]{
		indexBase: indexBase[V]{name: name},
		extract:   extract,
		compare:   compare,
		opts:      buildIndexOptions(opts),
		keys:      make(map[K]*btree.BTreeG[int]),
		freelist:  btree.NewFreeListG[int](btree.DefaultFreeListSize),
		removing:  noSlot,
	}
}

func (x *SortedValueIndex[K, V]) deref(slot int) V {
	switch slot {
	case probeSlot:
		return x.probe
	case x.removing:
		return x.lastRemoved
	}
	v, ok := x.at(slot)
	if !ok {
		return x.lastRemoved
	}
	return v
}

func (x *SortedValueIndex[K, V]) less(a, b int) bool {
	if a == b {
		return false
	}
	if c := x.compare(x.deref(a), x.deref(b)); c != 0 {
		return c < 0
	}
	return a < b
}

func (x *SortedValueIndex[K, V]) bucket(k K) *btree.BTreeG[int] {
	t, ok := x.keys[k]
	if !ok {
		t = btree.NewWithFreeListG[int](btreeDegree, x.less, x.freelist)
		x.keys[k] = t
	}
	return t
}

func (x *SortedValueIndex[K, V]) Reindex(src Source[V]) {
	x.bind(src)
	x.keys = make(map[K]*btree.BTreeG[int])
	x.removing = noSlot
	forEachLive(src, func(slot int, v V) {
		x.bucket(x.extract(v)).ReplaceOrInsert(slot)
	})
}

func (x *SortedValueIndex[K, V]) ApplyValue(v V, slot int) {
	x.bucket(x.extract(v)).ReplaceOrInsert(slot)
}

func (x *SortedValueIndex[K, V]) RemoveValue(v V, slot int) {
	k := x.extract(v)
	t, ok := x.keys[k]
	if !ok {
		return
	}
	x.lastRemoved = v
	x.removing = slot
	t.Delete(slot)
	x.removing = noSlot
	if x.opts.pruneEmpty && t.Len() == 0 {
		delete(x.keys, k)
	}
}

func ascendSlots(t *btree.BTreeG[int]) []int {
	out := make([]int, 0, t.Len())
	t.Ascend(func(slot int) bool {
		out = append(out, slot)
		return true
	})
	return out
}

// Slots returns the slots under k in value order.
func (x *SortedValueIndex[K, V]) Slots(k K) []int {
	var out []int
	x.read(func() {
		if t, ok := x.keys[k]; ok {
			out = ascendSlots(t)
		}
	})
	return out
}

// Get yields the values under k in value order.
func (x *SortedValueIndex[K, V]) Get(k K) iter.Seq[V] {
	return x.seq(func() []int {
		if t, ok := x.keys[k]; ok {
			return ascendSlots(t)
		}
		return nil
	})
}

func (x *SortedValueIndex[K, V]) Count(k K) int {
	var n int
	x.read(func() {
		if t, ok := x.keys[k]; ok {
			n = t.Len()
		}
	})
	return n
}

func (x *SortedValueIndex[K, V]) Counts() iter.Seq2[K, int] {
	return func(yield func(K, int) bool) {
		var counts []keyCount[K]
		x.read(func() {
			counts = make([]keyCount[K], 0, len(x.keys))
			for k, t := range x.keys {
				counts = append(counts, keyCount[K]{k, t.Len()})
			}
		})
		for _, c := range counts {
			if !yield(c.k, c.n) {
				return
			}
		}
	}
}

// Values yields every indexed value in slot order.
func (x *SortedValueIndex[K, V]) Values() iter.Seq[V] {
	return x.seq(func() []int {
		var out []int
		for _, t := range x.keys {
			out = append(out, ascendSlots(t)...)
		}
		slices.Sort(out)
		return out
	})
}

// Sorted returns the minimum, maximum and size of the bucket under k. A
// missing or empty bucket yields a zero SortedValue.
func (x *SortedValueIndex[K, V]) Sorted(k K) SortedValue[V] {
	var sv SortedValue[V]
	x.read(func() {
		t, ok := x.keys[k]
		if !ok || t.Len() == 0 {
			return
		}
		lo, _ := t.Min()
		hi, _ := t.Max()
		sv.Min, _ = x.at(lo)
		sv.Max, _ = x.at(hi)
		sv.n = t.Len()
		sv.between = func(from, to int) iter.Seq[V] { return x.between(k, from, to) }
	})
	return sv
}

func (x *SortedValueIndex[K, V]) between(k K, from, to int) iter.Seq[V] {
	return x.seq(func() []int {
		t, ok := x.keys[k]
		if !ok || to < from {
			return nil
		}
		var out []int
		pos := 0
		t.Ascend(func(slot int) bool {
			if pos > to {
				return false
			}
			if pos >= from {
				out = append(out, slot)
			}
			pos++
			return true
		})
		return out
	})
}

// Range yields the values under k that compare between from and to,
// inclusive, in value order.
func (x *SortedValueIndex[K, V]) Range(k K, from, to V) iter.Seq[V] {
	return x.seq(func() []int {
		t, ok := x.keys[k]
		if !ok {
			return nil
		}
		var out []int
		x.probe = from
		t.AscendGreaterOrEqual(probeSlot, func(slot int) bool {
			if x.compare(x.deref(slot), to) > 0 {
				return false
			}
			out = append(out, slot)
			return true
		})
		return out
	})
}
