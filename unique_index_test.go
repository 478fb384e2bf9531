// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist_test

import (
	"testing"

	"github.com/featurebasedb/indexedlist"
	"github.com/featurebasedb/indexedlist/slots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueIndex_LastWriterWins(t *testing.T) {
	store := slots.NewStore[person](0)
	store.Append(person{ID: 1, Name: "first"})
	store.Append(person{ID: 1, Name: "second"})

	ids := indexedlist.NewUniqueIndex("ids", personID)
	ids.Reindex(indexedlist.NewSource(store))
	assert.Equal(t, "second", ids.Get(1).Name)

	ids.ApplyValue(person{ID: 1, Name: "first"}, 0)
	assert.Equal(t, "first", ids.Get(1).Name)
	assert.Equal(t, 1, ids.Len())
}

func TestUniqueIndex_Lookups(t *testing.T) {
	m := mustNewManager(t, []person{{ID: 4, Name: "ann"}, {ID: 9, Name: "bob"}})

	slot, ok := m.byID.TryGetIndex(person{ID: 9})
	assert.True(t, ok)
	assert.Equal(t, 1, slot)

	slot, ok = m.byID.TryGetKeyIndex(5)
	assert.False(t, ok)
	assert.Equal(t, -1, slot)

	v, ok := m.byID.TryGetValue(4)
	assert.True(t, ok)
	assert.Equal(t, "ann", v.Name)

	_, ok = m.byID.TryGetValue(5)
	assert.False(t, ok)
	assert.Equal(t, person{}, m.byID.Get(5))
	assert.Equal(t, 9, m.byID.GetKey(person{ID: 9}))
	assert.ElementsMatch(t, []int{4, 9}, m.byID.Keys())
	assert.Equal(t, []string{"ann", "bob"}, names(collect(m.byID.Values())))
}

func TestUniqueIndex_RemoveOnlyOwnSlot(t *testing.T) {
	store := slots.NewStoreFrom([]person{{ID: 1}, {ID: 1}})
	ids := indexedlist.NewUniqueIndex("ids", personID)
	ids.Reindex(indexedlist.NewSource(store))

	ids.RemoveValue(person{ID: 1}, 0)
	slot, ok := ids.TryGetKeyIndex(1)
	assert.True(t, ok)
	assert.Equal(t, 1, slot)

	ids.RemoveValue(person{ID: 1}, 1)
	_, ok = ids.TryGetKeyIndex(1)
	assert.False(t, ok)
}

func TestSortedUniqueIndex(t *testing.T) {
	ids := indexedlist.NewSortedUniqueIndex("ids", personID, indexedlist.Ordered[int]())
	m, err := indexedlist.NewManager(
		indexedlist.OptManagerValues[int]([]person{{ID: 30, Name: "c"}, {ID: 10, Name: "a"}, {ID: 20, Name: "b"}}),
		indexedlist.OptManagerIndexes[int](indexedlist.Index[person](ids)),
	)
	require.NoError(t, err)

	assert.Equal(t, []int{10, 20, 30}, ids.Keys())
	assert.Equal(t, []string{"a", "b", "c"}, names(collect(ids.Values())))
	assert.Equal(t, 3, ids.Live())

	require.NoError(t, m.RemoveAt(1))
	assert.Equal(t, []int{20, 30}, ids.Keys())
	assert.Equal(t, 1, ids.Dead())
	assert.Equal(t, 2, ids.Live())
	_, ok := ids.TryGetValue(10)
	assert.False(t, ok)
	_, ok = ids.TryGetKeyIndex(10)
	assert.False(t, ok)

	// Reusing a dead key revives it.
	slot := m.Append(person{ID: 10, Name: "a2"})
	assert.Equal(t, 1, slot)
	assert.Equal(t, 0, ids.Dead())
	assert.Equal(t, "a2", ids.Get(10).Name)
}

func TestSortedUniqueIndex_Pack(t *testing.T) {
	var people []person
	for i := 0; i < 20; i++ {
		people = append(people, person{ID: i})
	}
	ids := indexedlist.NewSortedUniqueIndex("ids", personID, indexedlist.Ordered[int]())
	m, err := indexedlist.NewManager(
		indexedlist.OptManagerValues[int](people),
		indexedlist.OptManagerIndexes[int](indexedlist.Index[person](ids)),
	)
	require.NoError(t, err)

	require.NoError(t, m.RemoveAt(0))
	assert.False(t, ids.Pack(), "1 dead of 19 live")

	require.NoError(t, m.RemoveAt(1))
	assert.True(t, ids.Pack(), "2 dead of 18 live")
	assert.Equal(t, 0, ids.Dead())
	assert.Equal(t, 18, ids.Live())
	assert.False(t, ids.Pack())
}
