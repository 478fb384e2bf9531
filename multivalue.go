// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

import (
	"iter"

	"golang.org/x/exp/slices"
)

// IndexOption configures a multi-value index.
type IndexOption func(*indexOptions)

type indexOptions struct {
	pruneEmpty bool
}

// OptPruneEmpty drops a bucket as soon as its last slot is removed. By
// default empty buckets are kept: they cost little and keep Counts stable
// for keys that come and go.
func OptPruneEmpty() IndexOption {
	return func(o *indexOptions) { o.pruneEmpty = true }
}

func buildIndexOptions(opts []IndexOption) indexOptions {
	var o indexOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// multiValue is the engine behind the hash, multi-key, sorted-key and
// filtered indexes: every key maps to a set of slots.
type multiValue[K comparable, V any] struct {
	indexBase[V]
	keys    func(V) []K
	filter  func(K, V) bool // nil means every value is indexed
	buckets bucketMap[K]
	opts    indexOptions
}

func (x *multiValue[K, V]) Reindex(src Source[V]) {
	x.bind(src)
	x.buckets.reset()
	forEachLive(src, func(slot int, v V) {
		for _, k := range x.keys(v) {
			if x.filter != nil && !x.filter(k, v) {
				continue
			}
			x.add(k, slot)
		}
	})
}

func (x *multiValue[K, V]) add(k K, slot int) {
	set, ok := x.buckets.get(k)
	if !ok {
		set = make(slotSet)
		x.buckets.put(k, set)
	}
	set[slot] = struct{}{}
}

func (x *multiValue[K, V]) drop(k K, set slotSet, slot int) {
	delete(set, slot)
	if x.opts.pruneEmpty && len(set) == 0 {
		x.buckets.del(k)
	}
}

// ApplyValue adds slot under each key of v. For filtered indexes a key seen
// for the first time is only created when the filter passes; an existing
// bucket gains the slot on pass and loses it on failure, so a value moves
// in and out of the index as it is updated in place.
func (x *multiValue[K, V]) ApplyValue(v V, slot int) {
	for _, k := range x.keys(v) {
		if x.filter == nil {
			x.add(k, slot)
			continue
		}
		pass := x.filter(k, v)
		set, ok := x.buckets.get(k)
		switch {
		case !ok && pass:
			x.buckets.put(k, slotSet{slot: {}})
		case ok && pass:
			set[slot] = struct{}{}
		case ok:
			x.drop(k, set, slot)
		}
	}
}

func (x *multiValue[K, V]) RemoveValue(v V, slot int) {
	for _, k := range x.keys(v) {
		if set, ok := x.buckets.get(k); ok {
			x.drop(k, set, slot)
		}
	}
}

func (x *multiValue[K, V]) Slots(k K) []int {
	var out []int
	x.read(func() {
		if set, ok := x.buckets.get(k); ok {
			out = set.sorted()
		}
	})
	return out
}

func (x *multiValue[K, V]) Get(k K) iter.Seq[V] {
	return x.seq(func() []int {
		if set, ok := x.buckets.get(k); ok {
			return set.sorted()
		}
		return nil
	})
}

func (x *multiValue[K, V]) Count(k K) int {
	var n int
	x.read(func() {
		if set, ok := x.buckets.get(k); ok {
			n = len(set)
		}
	})
	return n
}

// Counts yields a snapshot of every key and its slot count, taken when
// iteration starts.
func (x *multiValue[K, V]) Counts() iter.Seq2[K, int] {
	return func(yield func(K, int) bool) {
		var counts []keyCount[K]
		x.read(func() {
			counts = make([]keyCount[K], 0, x.buckets.len())
			x.buckets.each(func(k K, s slotSet) bool {
				counts = append(counts, keyCount[K]{k, len(s)})
				return true
			})
		})
		for _, c := range counts {
			if !yield(c.k, c.n) {
				return
			}
		}
	}
}

// Values yields each indexed value once. Key-ordered indexes go bucket by
// bucket and yield a slot filed under several keys at its first key; the
// others yield in slot order.
func (x *multiValue[K, V]) Values() iter.Seq[V] {
	return x.seq(func() []int {
		seen := make(map[int]struct{})
		var out []int
		x.buckets.each(func(_ K, s slotSet) bool {
			for _, slot := range s.sorted() {
				if _, ok := seen[slot]; ok {
					continue
				}
				seen[slot] = struct{}{}
				out = append(out, slot)
			}
			return true
		})
		if !x.buckets.ordered() {
			slices.Sort(out)
		}
		return out
	})
}

type keyCount[K any] struct {
	k K
	n int
}

func single[K, V any](extract func(V) K) func(V) []K {
	return func(v V) []K { return []K{extract(v)} }
}
