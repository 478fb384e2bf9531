// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package slots

import "iter"

// Change describes one mutation of an Observable store. A change with
// neither an old nor a new value, at slot -1, asks subscribers to rebuild
// everything.
type Change[V any] struct {
	Old    V
	HasOld bool
	New    V
	HasNew bool
	Slot   int
}

// IsReset reports whether c is the rebuild-everything signal.
func (c Change[V]) IsReset() bool {
	return !c.HasOld && !c.HasNew
}

// Handler receives changes synchronously, after the store cell is updated
// and before the mutating call returns.
type Handler[V any] func(Change[V])

// Observable wraps a Store and reports every mutation to its handler.
type Observable[V any] struct {
	store   *Store[V]
	handler Handler[V]
}

// NewObservable wraps store. A nil store is replaced by an empty one.
func NewObservable[V any](store *Store[V]) *Observable[V] {
	if store == nil {
		store = NewStore[V](0)
	}
	return &Observable[V]{store: store}
}

// Subscribe installs h as the single change handler, replacing any previous
// one. A nil handler stops notification.
func (o *Observable[V]) Subscribe(h Handler[V]) {
	o.handler = h
}

func (o *Observable[V]) emit(c Change[V]) {
	if o.handler != nil {
		o.handler(c)
	}
}

func (o *Observable[V]) Len() int              { return o.store.Len() }
func (o *Observable[V]) Live() int             { return o.store.Live() }
func (o *Observable[V]) Free() int             { return o.store.Free() }
func (o *Observable[V]) At(slot int) (V, bool) { return o.store.At(slot) }
func (o *Observable[V]) All() iter.Seq2[int, V] {
	return o.store.All()
}

// Append stores v and emits (none, v, slot).
func (o *Observable[V]) Append(v V) int {
	slot := o.store.Append(v)
	o.emit(Change[V]{New: v, HasNew: true, Slot: slot})
	return slot
}

// Set overwrites slot and emits (previous, v, slot).
func (o *Observable[V]) Set(slot int, v V) error {
	prev, hadPrev, err := o.store.Set(slot, v)
	if err != nil {
		return err
	}
	o.emit(Change[V]{Old: prev, HasOld: hadPrev, New: v, HasNew: true, Slot: slot})
	return nil
}

// RemoveAt frees slot and emits (previous, none, slot). Nothing is emitted
// when slot was already free.
func (o *Observable[V]) RemoveAt(slot int) error {
	prev, removed, err := o.store.RemoveAt(slot)
	if err != nil || !removed {
		return err
	}
	o.emit(Change[V]{Old: prev, HasOld: true, Slot: slot})
	return nil
}

// Clear empties the store and emits the reset signal.
func (o *Observable[V]) Clear() {
	o.store.Clear()
	o.emit(Change[V]{Slot: -1})
}

func (o *Observable[V]) Insert(i int, v V) error    { return o.store.Insert(i, v) }
func (o *Observable[V]) IndexOf(v V) (int, error)   { return o.store.IndexOf(v) }
func (o *Observable[V]) Contains(v V) (bool, error) { return o.store.Contains(v) }
