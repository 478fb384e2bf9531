// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

import (
	"reflect"

	"github.com/featurebasedb/indexedlist/errors"
)

// AsSingle returns the unique-key lookup surface of idx for keys of type K.
// It fails with ErrKeyTypeMismatch when idx is not a unique index keyed by
// K.
func AsSingle[K comparable, V any](idx Index[V]) (Single[K, V], error) {
	if idx == nil {
		return nil, errors.New(ErrNilIndex, "nil index")
	}
	s, ok := idx.(Single[K, V])
	if !ok {
		return nil, mismatch[K](idx.Name(), "unique")
	}
	return s, nil
}

// AsEnumerable returns the multi-value lookup surface of idx for keys of
// type K.
func AsEnumerable[K comparable, V any](idx Index[V]) (Enumerable[K, V], error) {
	if idx == nil {
		return nil, errors.New(ErrNilIndex, "nil index")
	}
	e, ok := idx.(Enumerable[K, V])
	if !ok {
		return nil, mismatch[K](idx.Name(), "multi-value")
	}
	return e, nil
}

// AsSortedEnumerable is AsEnumerable for indexes with ordered keys.
func AsSortedEnumerable[K comparable, V any](idx Index[V]) (SortedEnumerable[K, V], error) {
	if idx == nil {
		return nil, errors.New(ErrNilIndex, "nil index")
	}
	e, ok := idx.(SortedEnumerable[K, V])
	if !ok {
		return nil, mismatch[K](idx.Name(), "sorted-key")
	}
	return e, nil
}

// AsSortedValues is AsEnumerable for indexes with value-ordered buckets.
func AsSortedValues[K comparable, V any](idx Index[V]) (SortedValues[K, V], error) {
	if idx == nil {
		return nil, errors.New(ErrNilIndex, "nil index")
	}
	s, ok := idx.(SortedValues[K, V])
	if !ok {
		return nil, mismatch[K](idx.Name(), "sorted-value")
	}
	return s, nil
}

func mismatch[K any](name, kind string) error {
	return errors.Newf(ErrKeyTypeMismatch, "index %q is not a %s index keyed by %s", name, kind, reflect.TypeFor[K]())
}

// GetSingle looks key up in the unique index attached at position number.
// The index's key type need not be the Manager's primary key type.
func GetSingle[K2, K comparable, V any](m *Manager[K, V], key K2, number int) (V, bool, error) {
	var zero V
	idx := m.Index(number)
	if idx == nil {
		return zero, false, errors.Newf(ErrIndexNotFound, "no index at position %d", number)
	}
	s, err := AsSingle[K2](idx)
	if err != nil {
		return zero, false, err
	}
	v, ok := s.TryGetValue(key)
	return v, ok, nil
}
