// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

import (
	"iter"
	"sync"
	"sync/atomic"
)

// references is the set of subscribers holding an index. It has its own
// lock; reference counting never touches the store lock.
type references struct {
	mu     sync.Mutex
	owners map[Subscriber]struct{}
}

func (r *references) add(kind Reference, owner Subscriber) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owners == nil {
		r.owners = make(map[Subscriber]struct{})
	}
	switch kind {
	case ReferenceRelease:
		delete(r.owners, owner)
	default:
		r.owners[owner] = struct{}{}
	}
	return len(r.owners)
}

func (r *references) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.owners)
}

// indexBase carries what every index has in common: its name, the source
// it was last rebuilt from, and its subscribers. The source is published
// atomically because lookups load it before they take its lock.
type indexBase[V any] struct {
	name string
	src  atomic.Pointer[Source[V]]
	refs references
}

func (b *indexBase[V]) Name() string { return b.name }

func (b *indexBase[V]) AddReference(kind Reference, owner Subscriber) int {
	return b.refs.add(kind, owner)
}

func (b *indexBase[V]) ReferenceCount() int { return b.refs.count() }

// bind makes src the source later reads lock and dereference.
func (b *indexBase[V]) bind(src Source[V]) { b.src.Store(&src) }

// source returns the bound source, or nil before the first Reindex.
func (b *indexBase[V]) source() Source[V] {
	if p := b.src.Load(); p != nil {
		return *p
	}
	return nil
}

// read runs fn under the source lock. Before the first Reindex there is
// nothing to read and fn is not run.
func (b *indexBase[V]) read(fn func()) {
	src := b.source()
	if src == nil {
		return
	}
	src.Lock()
	defer src.Unlock()
	fn()
}

// at dereferences slot without locking.
func (b *indexBase[V]) at(slot int) (V, bool) {
	src := b.source()
	if src == nil {
		var zero V
		return zero, false
	}
	return src.At(slot)
}

// seq yields the values at the slots returned by collect. Slots are
// collected under the lock when iteration starts; each value is then read
// under the lock on its own step, and slots freed in between are skipped.
func (b *indexBase[V]) seq(collect func() []int) iter.Seq[V] {
	return func(yield func(V) bool) {
		var slots []int
		b.read(func() { slots = collect() })
		for _, slot := range slots {
			var v V
			var ok bool
			b.read(func() { v, ok = b.at(slot) })
			if !ok {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// forEachLive calls fn for every live slot of src in slot order.
func forEachLive[V any](src Source[V], fn func(slot int, v V)) {
	for i, n := 0, src.Len(); i < n; i++ {
		if v, ok := src.At(i); ok {
			fn(i, v)
		}
	}
}
