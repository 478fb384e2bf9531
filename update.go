// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

import (
	"github.com/featurebasedb/indexedlist/errors"
)

// UpdateHelper is a cursor over one slot of a Manager, resolved through the
// primary index. Every method runs its lookup and its mutation under one
// hold of the Manager's lock.
type UpdateHelper[K comparable, V any] struct {
	m    *Manager[K, V]
	slot int
}

// Update returns a cursor at slot. Pass -1 for no current slot.
func (m *Manager[K, V]) Update(slot int) *UpdateHelper[K, V] {
	return &UpdateHelper[K, V]{m: m, slot: slot}
}

// Slot returns the cursor's slot, or -1.
func (h *UpdateHelper[K, V]) Slot() int { return h.slot }

// Value returns the value at the cursor.
func (h *UpdateHelper[K, V]) Value() (V, bool) {
	if h.slot < 0 {
		var zero V
		return zero, false
	}
	return h.m.At(h.slot)
}

// Key returns the primary key of the value at the cursor.
func (h *UpdateHelper[K, V]) Key() (K, bool) {
	v, ok := h.Value()
	p := h.m.Primary()
	if !ok || p == nil {
		var zero K
		return zero, false
	}
	return p.GetKey(v), true
}

// lookup resolves v's primary key. The lock must be held.
func (h *UpdateHelper[K, V]) lookup(v V) (int, bool) {
	p := h.m.primary
	if p == nil {
		return -1, false
	}
	return p.lookup(p.keyOf(v))
}

// FindValue moves the cursor to the slot holding v's primary key.
func (h *UpdateHelper[K, V]) FindValue(v V) bool {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	slot, ok := h.lookup(v)
	h.slot = slot
	if !ok {
		h.slot = -1
	}
	return ok
}

// FindKey moves the cursor to the slot holding k.
func (h *UpdateHelper[K, V]) FindKey(k K) bool {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	h.slot = -1
	if h.m.primary == nil {
		return false
	}
	slot, ok := h.m.primary.lookup(k)
	if ok {
		h.slot = slot
	}
	return ok
}

// apply stores v unless its key is already present, and overwrites the
// existing slot when replace is set. It reports whether v was appended.
func (h *UpdateHelper[K, V]) apply(v V, replace bool) (bool, error) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if slot, ok := h.lookup(v); ok {
		h.slot = slot
		if replace {
			return false, h.m.setLocked(slot, v)
		}
		return false, nil
	}
	h.slot = h.m.appendLocked(v)
	return true, nil
}

// ApplyValue appends v when its key is not found and otherwise leaves the
// stored value alone. The cursor ends on v's slot.
func (h *UpdateHelper[K, V]) ApplyValue(v V) bool {
	inserted, _ := h.apply(v, false)
	return inserted
}

// ApplyValueWithReplace is ApplyValue that overwrites an existing value.
func (h *UpdateHelper[K, V]) ApplyValueWithReplace(v V) (bool, error) {
	return h.apply(v, true)
}

// RemoveValue frees the slot under the cursor and unsets the cursor.
func (h *UpdateHelper[K, V]) RemoveValue() error {
	if h.slot < 0 {
		return nil
	}
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if err := h.m.removeLocked(h.slot); err != nil {
		return err
	}
	h.slot = -1
	return nil
}

// RemoveValueOf frees the slot holding v's primary key, if any.
func (h *UpdateHelper[K, V]) RemoveValueOf(v V) (bool, error) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	slot, ok := h.lookup(v)
	if !ok {
		h.slot = -1
		return false, nil
	}
	if err := h.m.removeLocked(slot); err != nil {
		h.slot = slot
		return false, err
	}
	h.slot = -1
	return true, nil
}

// ActionHelper is an UpdateHelper that calls back for every value it
// appends. The callback runs after the lock is released and never for a
// value that replaced or matched an existing one.
type ActionHelper[K comparable, V any] struct {
	*UpdateHelper[K, V]
	onNew func(V)
}

// UpdateAction returns an ActionHelper at slot calling onNew.
func (m *Manager[K, V]) UpdateAction(onNew func(V), slot int) (*ActionHelper[K, V], error) {
	if onNew == nil {
		return nil, errors.New(ErrNilCallback, "nil new-value callback")
	}
	return &ActionHelper[K, V]{UpdateHelper: m.Update(slot), onNew: onNew}, nil
}

func (h *ActionHelper[K, V]) ApplyValue(v V) bool {
	inserted, _ := h.apply(v, false)
	if inserted {
		h.onNew(v)
	}
	return inserted
}

func (h *ActionHelper[K, V]) ApplyValueWithReplace(v V) (bool, error) {
	inserted, err := h.apply(v, true)
	if err != nil {
		return false, err
	}
	if inserted {
		h.onNew(v)
	}
	return inserted, nil
}
