// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package slots_test

import (
	"testing"

	"github.com/featurebasedb/indexedlist/slots"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservable_Events(t *testing.T) {
	o := slots.NewObservable(slots.NewStoreFrom([]string{"a"}))
	var got []slots.Change[string]
	o.Subscribe(func(c slots.Change[string]) {
		// The cell is already updated when the handler runs.
		v, ok := o.At(c.Slot)
		if c.HasNew {
			assert.True(t, ok)
			assert.Equal(t, c.New, v)
		} else if c.Slot >= 0 {
			assert.False(t, ok)
		}
		got = append(got, c)
	})

	slot := o.Append("b")
	require.NoError(t, o.Set(slot, "c"))
	require.NoError(t, o.RemoveAt(0))
	require.NoError(t, o.RemoveAt(0)) // already free: no event
	o.Clear()

	exp := []slots.Change[string]{
		{New: "b", HasNew: true, Slot: 1},
		{Old: "b", HasOld: true, New: "c", HasNew: true, Slot: 1},
		{Old: "a", HasOld: true, Slot: 0},
		{Slot: -1},
	}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Fatalf("unexpected changes (-want +got):\n%s", diff)
	}
	assert.True(t, got[3].IsReset())
	assert.False(t, got[2].IsReset())
}

func TestObservable_SetErrorEmitsNothing(t *testing.T) {
	o := slots.NewObservable[int](nil)
	called := false
	o.Subscribe(func(slots.Change[int]) { called = true })
	assert.Error(t, o.Set(4, 1))
	assert.Error(t, o.RemoveAt(4))
	assert.False(t, called)
}

func TestObservable_SetOnFreeSlot(t *testing.T) {
	o := slots.NewObservable(slots.NewStoreFrom([]int{1, 2}))
	require.NoError(t, o.RemoveAt(0))

	var last slots.Change[int]
	o.Subscribe(func(c slots.Change[int]) { last = c })
	require.NoError(t, o.Set(0, 9))
	assert.False(t, last.HasOld)
	assert.True(t, last.HasNew)
	assert.Equal(t, 0, o.Free())
}
