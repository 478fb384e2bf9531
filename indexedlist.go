// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package indexedlist is an in-memory container with incrementally
// maintained secondary indexes.
//
// A Manager owns one slot store (see package slots) and an ordered list of
// indexes. Every mutation of the store produces exactly one change, and the
// Manager applies that change to the primary index and then to every
// secondary index before the mutating call returns. Indexes only ever hold
// slot numbers; values are read back through the store.
//
// The first index attached to a Manager must be a unique index
// (UniqueIndex or SortedUniqueIndex). It becomes the primary and resolves
// values and keys to slots for the update helpers.
package indexedlist

import (
	"iter"
	"sync"

	"github.com/featurebasedb/indexedlist/errors"
	"github.com/featurebasedb/indexedlist/slots"
	"github.com/google/uuid"
)

const (
	ErrSlotOutOfRange               = slots.ErrSlotOutOfRange
	ErrUnsupported                  = slots.ErrUnsupported
	ErrPrimaryNotUnique errors.Code = "PrimaryNotUnique"
	ErrNilCallback      errors.Code = "NilCallback"
	ErrNilIndex         errors.Code = "NilIndex"
	ErrKeyTypeMismatch  errors.Code = "KeyTypeMismatch"
	ErrIndexNotFound    errors.Code = "IndexNotFound"
	ErrIndexExists      errors.Code = "IndexExists"
	ErrNotCompactable   errors.Code = "NotCompactable"
	ErrInvalidConfig    errors.Code = "InvalidConfig"
)

// Reference is the kind of a reference count change.
type Reference int8

const (
	ReferenceNone    Reference = 0
	ReferenceAdd     Reference = 1
	ReferenceRelease Reference = -1
)

// Subscriber identifies one consumer sharing an index.
type Subscriber string

// NewSubscriber returns a fresh, unique Subscriber.
func NewSubscriber() Subscriber {
	return Subscriber(uuid.New().String())
}

// Source is the view of the backing store an index reads through. The
// Locker guards the store and every index mapping built over it.
type Source[V any] interface {
	sync.Locker
	Len() int
	At(slot int) (V, bool)
}

// Index is implemented by every index algorithm.
//
// Reindex, ApplyValue and RemoveValue expect the caller to hold the
// source's lock; the Manager does this for every change it fans out. All
// read methods take the lock themselves.
type Index[V any] interface {
	Name() string

	// Reindex discards the mapping and rebuilds it from every live slot
	// of src. The index keeps reading values through src afterwards.
	Reindex(src Source[V])

	// ApplyValue incorporates v, now stored at slot.
	ApplyValue(v V, slot int)

	// RemoveValue retracts slot from the key(s) v maps to. A value whose
	// keys are not indexed is ignored.
	RemoveValue(v V, slot int)

	// AddReference adds or releases owner and returns the number of
	// owners left. Any kind other than ReferenceRelease adds.
	AddReference(kind Reference, owner Subscriber) int
	ReferenceCount() int

	// Values yields every indexed value once, in index order.
	Values() iter.Seq[V]
}

// Single is the lookup surface of unique indexes.
type Single[K comparable, V any] interface {
	Index[V]
	TryGetIndex(v V) (int, bool)
	TryGetKeyIndex(k K) (int, bool)
	TryGetValue(k K) (V, bool)
	// Get returns the value for k, or the zero value.
	Get(k K) V
	GetKey(v V) K
	Keys() []K
}

// Enumerable is the lookup surface of multi-value indexes.
type Enumerable[K comparable, V any] interface {
	Index[V]
	// Slots returns the slots indexed under k in ascending order.
	Slots(k K) []int
	Get(k K) iter.Seq[V]
	Count(k K) int
	// Counts yields every key with the number of slots under it.
	Counts() iter.Seq2[K, int]
}

// SortedEnumerable is an Enumerable whose keys are ordered.
type SortedEnumerable[K comparable, V any] interface {
	Enumerable[K, V]
	Keys() []K
}

// SortedValues is an Enumerable whose buckets are ordered by value.
type SortedValues[K comparable, V any] interface {
	Enumerable[K, V]
	Sorted(k K) SortedValue[V]
	Range(k K, from, to V) iter.Seq[V]
}

// storeReader is the read side of slots.Store and slots.Observable.
type storeReader[V any] interface {
	Len() int
	At(slot int) (V, bool)
}

// lockedSource pairs a store with the lock that guards it.
type lockedSource[V any] struct {
	*sync.Mutex
	r storeReader[V]
}

func (s *lockedSource[V]) Len() int              { return s.r.Len() }
func (s *lockedSource[V]) At(slot int) (V, bool) { return s.r.At(slot) }

// NewSource returns a Source over store guarded by its own mutex, for
// using indexes without a Manager.
func NewSource[V any](store *slots.Store[V]) Source[V] {
	return &lockedSource[V]{Mutex: &sync.Mutex{}, r: store}
}
