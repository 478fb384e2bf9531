// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package slots implements a slot-recycling backing store. Each value lives
// at an integer slot that stays stable for the value's lifetime; removed
// slots are tombstoned and handed out again, most recently freed first.
package slots

import (
	"iter"

	"github.com/featurebasedb/indexedlist/errors"
)

const (
	ErrSlotOutOfRange errors.Code = "SlotOutOfRange"
	ErrUnsupported    errors.Code = "Unsupported"
)

// cell is one position of the store. A cell with ok == false is a tombstone.
type cell[V any] struct {
	v  V
	ok bool
}

// Store is an indexable sequence with O(1) slot reuse. It is not safe for
// concurrent use; callers serialize access.
type Store[V any] struct {
	cells []cell[V]
	free  []int // LIFO
	live  int
}

// NewStore returns an empty store with room for capacity values.
func NewStore[V any](capacity int) *Store[V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Store[V]{cells: make([]cell[V], 0, capacity)}
}

// NewStoreFrom returns a store holding values at slots 0..len(values)-1.
func NewStoreFrom[V any](values []V) *Store[V] {
	s := NewStore[V](len(values))
	for _, v := range values {
		s.cells = append(s.cells, cell[V]{v: v, ok: true})
	}
	s.live = len(values)
	return s
}

// Len returns the number of cells, live or free.
func (s *Store[V]) Len() int { return len(s.cells) }

// Live returns the number of live cells.
func (s *Store[V]) Live() int { return s.live }

// Free returns the number of slots waiting for reuse.
func (s *Store[V]) Free() int { return len(s.free) }

// next reserves a slot, popping the free-list before growing the store. The
// reserved cell stays a tombstone until it is written.
func (s *Store[V]) next() int {
	if n := len(s.free); n > 0 {
		slot := s.free[n-1]
		s.free = s.free[:n-1]
		return slot
	}
	s.cells = append(s.cells, cell[V]{})
	return len(s.cells) - 1
}

// Append stores v and returns its slot.
func (s *Store[V]) Append(v V) int {
	slot := s.next()
	s.cells[slot] = cell[V]{v: v, ok: true}
	s.live++
	return slot
}

// At returns the value at slot and whether the slot is live.
func (s *Store[V]) At(slot int) (V, bool) {
	if slot < 0 || slot >= len(s.cells) {
		var zero V
		return zero, false
	}
	c := s.cells[slot]
	return c.v, c.ok
}

// Set overwrites the value at slot and returns the previous value, if any.
// Writing a free slot takes it off the free-list.
func (s *Store[V]) Set(slot int, v V) (prev V, hadPrev bool, err error) {
	if slot < 0 || slot >= len(s.cells) {
		return prev, false, errors.Newf(ErrSlotOutOfRange, "slot %d out of range [0,%d)", slot, len(s.cells))
	}
	c := s.cells[slot]
	if !c.ok {
		s.unfree(slot)
		s.live++
	}
	s.cells[slot] = cell[V]{v: v, ok: true}
	return c.v, c.ok, nil
}

// RemoveAt tombstones slot and pushes it onto the free-list. Removing a slot
// that is already free does nothing and reports false.
func (s *Store[V]) RemoveAt(slot int) (prev V, removed bool, err error) {
	if slot < 0 || slot >= len(s.cells) {
		return prev, false, errors.Newf(ErrSlotOutOfRange, "slot %d out of range [0,%d)", slot, len(s.cells))
	}
	c := s.cells[slot]
	if !c.ok {
		return prev, false, nil
	}
	s.cells[slot] = cell[V]{}
	s.free = append(s.free, slot)
	s.live--
	return c.v, true, nil
}

// Clear drops every cell and the free-list.
func (s *Store[V]) Clear() {
	s.cells = nil
	s.free = nil
	s.live = 0
}

// All yields live slots and their values in slot order.
func (s *Store[V]) All() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		for i := 0; i < len(s.cells); i++ {
			if c := s.cells[i]; c.ok && !yield(i, c.v) {
				return
			}
		}
	}
}

// Insert is not supported: positional insertion would shift slot identities.
func (s *Store[V]) Insert(int, V) error {
	return errors.New(ErrUnsupported, "slots: positional insert is not supported")
}

// IndexOf is not supported: look values up through an index instead.
func (s *Store[V]) IndexOf(V) (int, error) {
	return -1, errors.New(ErrUnsupported, "slots: linear search is not supported")
}

// Contains is not supported: look values up through an index instead.
func (s *Store[V]) Contains(V) (bool, error) {
	return false, errors.New(ErrUnsupported, "slots: linear search is not supported")
}

// unfree removes slot from the free-list. Reviving a free slot through Set
// is rare, so a linear scan is fine.
func (s *Store[V]) unfree(slot int) {
	for i := len(s.free) - 1; i >= 0; i-- {
		if s.free[i] == slot {
			s.free = append(s.free[:i], s.free[i+1:]...)
			return
		}
	}
}
